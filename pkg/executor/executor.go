// Package executor 提供课表的事务化变更执行
package executor

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paike/paike/pkg/errors"
	"github.com/paike/paike/pkg/logger"
	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/rules"
	"github.com/paike/paike/pkg/validator"
)

// Recorder 历史记录接收方，由历史管理器实现
type Recorder interface {
	Add(op model.Operation) uuid.UUID
}

// Executor 变更执行器：在用课表的唯一写入方
// 所有变更原子生效，任一前置校验失败则课表保持原样
type Executor struct {
	schedule *model.Schedule
	cost     rules.CostFunc
	detector *validator.Detector
	recorder Recorder
	log      *logger.EditorLogger
}

// New 创建绑定到单张在用课表的执行器
func New(s *model.Schedule, eval *rules.Evaluator, cost rules.CostFunc, recorder Recorder) *Executor {
	return &Executor{
		schedule: s,
		cost:     cost,
		detector: validator.NewDetector(eval),
		recorder: recorder,
		log:      logger.NewEditorLogger(),
	}
}

// Schedule 返回在用课表
func (ex *Executor) Schedule() *model.Schedule {
	return ex.schedule
}

// ApplyMove 把课程移动到新槽位，返回移动后该课程的全网格冲突
func (ex *Executor) ApplyMove(entry *model.ScheduleEntry, newSlot model.TimeSlot) (map[model.TimeSlot]model.ConflictInfo, error) {
	live := ex.schedule.FindLesson(entry.ClassID, entry.SubjectID, entry.TeacherID, entry.Slot, entry.WeekType)
	if live == nil {
		return nil, errors.LessonNotFound(entry.ClassID, entry.SubjectID, entry.TeacherID)
	}
	if live.IsFixed {
		return nil, errors.FixedEntry(entry.ClassID, entry.SubjectID)
	}
	if !newSlot.Valid(ex.schedule.Meta.CycleDays, ex.schedule.Meta.PeriodsPerDay) {
		return nil, errors.InvalidInput("slot", fmt.Sprintf("槽位%s超出网格范围", newSlot))
	}
	if newSlot == live.Slot {
		return ex.detector.DetectAll(ex.schedule, live), nil
	}

	from := live.Slot
	live.Slot = newSlot
	ex.commit()

	ex.record(model.Operation{
		Type:        model.OpMove,
		Description: fmt.Sprintf("移动课程：班级%d科目%d %s→%s", live.ClassID, live.SubjectID, from, newSlot),
		Payload: model.MovePayload{
			ClassID:   live.ClassID,
			SubjectID: live.SubjectID,
			TeacherID: live.TeacherID,
			WeekType:  live.WeekType,
			FromSlot:  from,
			ToSlot:    newSlot,
		},
		Undoable: true,
	})

	return ex.detector.DetectAll(ex.schedule, live), nil
}

// ApplySwap 执行一条调课建议
// 任一步与课表当前状态不符（过期建议）则整体拒绝，不做部分应用
func (ex *Executor) ApplySwap(sug model.SwapSuggestion) error {
	if len(sug.Moves) < 2 {
		return errors.InvalidInput("moves", "调课建议至少包含两步移动")
	}

	// 先整体校验，再统一落位
	lessons := make([]*model.ScheduleEntry, len(sug.Moves))
	for i, m := range sug.Moves {
		live := ex.schedule.FindLesson(m.ClassID, m.SubjectID, m.TeacherID, m.FromSlot, m.WeekType)
		if live == nil {
			return errors.StaleSuggestion(m.ClassID, m.SubjectID, m.FromSlot.String())
		}
		if live.IsFixed {
			return errors.FixedEntry(m.ClassID, m.SubjectID)
		}
		lessons[i] = live
	}

	for i, m := range sug.Moves {
		lessons[i].Slot = m.ToSlot
	}
	ex.commit()

	ex.record(model.Operation{
		Type:        model.OpSwap,
		Description: sug.Description,
		Payload:     model.SwapPayload{Moves: sug.Moves},
		Undoable:    true,
	})
	return nil
}

// SetFixed 设置或取消课程的固定标志
func (ex *Executor) SetFixed(entry *model.ScheduleEntry, fixed bool) error {
	live := ex.schedule.FindLesson(entry.ClassID, entry.SubjectID, entry.TeacherID, entry.Slot, entry.WeekType)
	if live == nil {
		return errors.LessonNotFound(entry.ClassID, entry.SubjectID, entry.TeacherID)
	}
	if live.IsFixed == fixed {
		return nil
	}

	prev := live.IsFixed
	live.IsFixed = fixed
	ex.commit()

	desc := "取消固定课程"
	if fixed {
		desc = "设置固定课程"
	}
	ex.record(model.Operation{
		Type:        model.OpSetFixed,
		Description: fmt.Sprintf("%s：班级%d科目%d %s", desc, live.ClassID, live.SubjectID, live.Slot),
		Payload: model.SetFixedPayload{
			ClassID:   live.ClassID,
			SubjectID: live.SubjectID,
			TeacherID: live.TeacherID,
			WeekType:  live.WeekType,
			Slot:      live.Slot,
			Prev:      prev,
			Next:      fixed,
		},
		Undoable: true,
	})
	return nil
}

// Replace 用新快照整体替换课表（外部生成协作方产出）
func (ex *Executor) Replace(snapshot *model.Schedule) error {
	if snapshot == nil {
		return errors.InvalidInput("snapshot", "快照为空")
	}

	before := ex.schedule.Clone()
	ex.schedule.Entries = snapshot.Clone().Entries
	ex.schedule.Meta = snapshot.Meta
	ex.commit()

	ex.record(model.Operation{
		Type:        model.OpGenerate,
		Description: fmt.Sprintf("整表替换：%d条课程", len(snapshot.Entries)),
		Payload: model.GeneratePayload{
			Before: before,
			After:  ex.schedule.Clone(),
		},
		Undoable: true,
	})
	return nil
}

// commit 变更落位后的统一收尾：重算代价并递增版本号
func (ex *Executor) commit() {
	if ex.cost != nil {
		ex.schedule.Cost = ex.cost(ex.schedule)
	}
	ex.schedule.Meta.Version++
}

// record 把操作提交给历史管理器
func (ex *Executor) record(op model.Operation) {
	if ex.recorder == nil {
		return
	}
	id := ex.recorder.Add(op)
	ex.log.MutationApplied(string(op.Type), id.String(), op.Description)
}

// ApplyOperation 按操作负载正向或反向落位，供撤销/重做路径复用
// 不产生新的历史记录
func (ex *Executor) ApplyOperation(op model.Operation, inverse bool) error {
	switch p := op.Payload.(type) {
	case model.MovePayload:
		from, to := p.FromSlot, p.ToSlot
		if inverse {
			from, to = to, from
		}
		live := ex.schedule.FindLesson(p.ClassID, p.SubjectID, p.TeacherID, from, p.WeekType)
		if live == nil {
			return errors.LessonNotFound(p.ClassID, p.SubjectID, p.TeacherID)
		}
		live.Slot = to
		ex.commit()
		return nil

	case model.SwapPayload:
		moves := p.Moves
		if inverse {
			reversed := make([]model.SwapMove, len(moves))
			for i, m := range moves {
				reversed[len(moves)-1-i] = m.Reversed()
			}
			moves = reversed
		}
		lessons := make([]*model.ScheduleEntry, len(moves))
		for i, m := range moves {
			live := ex.schedule.FindLesson(m.ClassID, m.SubjectID, m.TeacherID, m.FromSlot, m.WeekType)
			if live == nil {
				return errors.StaleSuggestion(m.ClassID, m.SubjectID, m.FromSlot.String())
			}
			lessons[i] = live
		}
		for i, m := range moves {
			lessons[i].Slot = m.ToSlot
		}
		ex.commit()
		return nil

	case model.SetFixedPayload:
		live := ex.schedule.FindLesson(p.ClassID, p.SubjectID, p.TeacherID, p.Slot, p.WeekType)
		if live == nil {
			return errors.LessonNotFound(p.ClassID, p.SubjectID, p.TeacherID)
		}
		if inverse {
			live.IsFixed = p.Prev
		} else {
			live.IsFixed = p.Next
		}
		ex.commit()
		return nil

	case model.GeneratePayload:
		snapshot := p.After
		if inverse {
			snapshot = p.Before
		}
		if snapshot == nil {
			return errors.InvalidInput("payload", "整表替换负载缺少快照")
		}
		restored := snapshot.Clone()
		ex.schedule.Entries = restored.Entries
		ex.schedule.Cost = restored.Cost
		ex.schedule.Meta = restored.Meta
		return nil

	case model.BatchPayload:
		ops := p.Operations
		if inverse {
			for i := len(ops) - 1; i >= 0; i-- {
				if err := ex.ApplyOperation(ops[i], true); err != nil {
					return err
				}
			}
			return nil
		}
		for _, sub := range ops {
			if err := ex.ApplyOperation(sub, false); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.InvalidInput("payload", fmt.Sprintf("无法回放的操作类型: %s", op.Type))
	}
}
