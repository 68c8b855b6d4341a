// Package swap 提供阻塞放置的调课建议搜索
package swap

import (
	"context"
	"fmt"
	"sort"

	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/rules"
	"github.com/paike/paike/pkg/validator"
)

// Options 搜索选项
type Options struct {
	MaxSuggestions int // 最大建议数量
	ChainMaxDepth  int // 链式调整的最大移动步数
	MaxExplored    int // 链式搜索的状态探索上限
}

// DefaultOptions 返回默认搜索选项
func DefaultOptions() *Options {
	return &Options{
		MaxSuggestions: 5,
		ChainMaxDepth:  4,
		MaxExplored:    2000,
	}
}

// Searcher 调课建议搜索引擎
// 搜索过程只在课表副本上模拟，绝不修改在用课表
type Searcher struct {
	eval     *rules.Evaluator
	detector *validator.Detector
	cost     rules.CostFunc
}

// NewSearcher 创建搜索引擎，cost 为外部代价函数
func NewSearcher(eval *rules.Evaluator, cost rules.CostFunc) *Searcher {
	return &Searcher{
		eval:     eval,
		detector: validator.NewDetector(eval),
		cost:     cost,
	}
}

// Suggest 为被阻塞的放置搜索调课建议
// 结果按 CostImpact 升序排列，同分时 Simple < Triangle < Chain，再按发现顺序
// 目标课程不存在、槽位本就可放、或搜索上限耗尽时返回空列表而非错误
func (sr *Searcher) Suggest(ctx context.Context, s *model.Schedule, classID, teacherID int64, desired model.TimeSlot, opts *Options) []model.SwapSuggestion {
	if opts == nil {
		opts = DefaultOptions()
	}

	target := s.FindByClassTeacher(classID, teacherID)
	if target == nil || target.IsFixed {
		return nil
	}
	if target.Slot == desired {
		return nil
	}

	// 槽位本就合法可放时无需调课
	if !sr.detector.Evaluate(s, target, desired).Blocked() {
		return nil
	}

	blockers := sr.blockingEntries(s, target, desired)
	if len(blockers) == 0 {
		return nil
	}

	var suggestions []model.SwapSuggestion
	suggestions = append(suggestions, sr.findSimple(s, target, desired, blockers)...)
	suggestions = append(suggestions, sr.findTriangle(s, target, desired, blockers)...)
	chains, cancelled := sr.findChains(ctx, s, target, desired, blockers, opts)
	if cancelled {
		// 被取代的搜索结果一律丢弃
		return nil
	}
	suggestions = append(suggestions, chains...)

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].CostImpact != suggestions[j].CostImpact {
			return suggestions[i].CostImpact < suggestions[j].CostImpact
		}
		return suggestions[i].Type.Rank() < suggestions[j].Type.Rank()
	})

	if len(suggestions) > opts.MaxSuggestions {
		suggestions = suggestions[:opts.MaxSuggestions]
	}
	return suggestions
}

// blockingEntries 定位目标槽位上与目标课程冲突的可移动记录
func (sr *Searcher) blockingEntries(s *model.Schedule, target *model.ScheduleEntry, desired model.TimeSlot) []*model.ScheduleEntry {
	week := target.EffectiveWeekType()
	var blockers []*model.ScheduleEntry
	for _, e := range s.EntriesAt(desired) {
		if e.SameLesson(target) || !e.EffectiveWeekType().Overlaps(week) {
			continue
		}
		if e.ClassID == target.ClassID || e.TeacherID == target.TeacherID {
			blockers = append(blockers, e)
		}
	}
	return blockers
}

// findSimple 二元互换：目标课程与阻塞课程互换槽位
func (sr *Searcher) findSimple(s *model.Schedule, target *model.ScheduleEntry, desired model.TimeSlot, blockers []*model.ScheduleEntry) []model.SwapSuggestion {
	var result []model.SwapSuggestion
	for _, b := range blockers {
		if b.IsFixed {
			continue
		}
		moves := []model.SwapMove{
			moveOf(target, desired),
			moveOf(b, target.Slot),
		}
		if sug, ok := sr.buildSuggestion(s, model.SwapSimple, moves,
			fmt.Sprintf("与%s的课程互换", b.Slot)); ok {
			result = append(result, sug)
		}
	}
	return result
}

// findTriangle 三角轮换：目标→阻塞者槽位由第三方补位
func (sr *Searcher) findTriangle(s *model.Schedule, target *model.ScheduleEntry, desired model.TimeSlot, blockers []*model.ScheduleEntry) []model.SwapSuggestion {
	var result []model.SwapSuggestion
	for _, b := range blockers {
		if b.IsFixed {
			continue
		}
		for _, c := range s.Entries {
			if c.IsFixed || c.SameLesson(target) || c.SameLesson(b) {
				continue
			}
			if c.Slot == desired || c.Slot == target.Slot {
				continue
			}
			moves := []model.SwapMove{
				moveOf(target, desired),
				moveOf(b, c.Slot),
				moveOf(c, target.Slot),
			}
			if sug, ok := sr.buildSuggestion(s, model.SwapTriangle, moves,
				fmt.Sprintf("三角轮换：%s→%s→%s", target.Slot, desired, c.Slot)); ok {
				result = append(result, sug)
			}
		}
	}
	return result
}

// moveOf 构造一步移动
func moveOf(e *model.ScheduleEntry, to model.TimeSlot) model.SwapMove {
	return model.SwapMove{
		ClassID:   e.ClassID,
		SubjectID: e.SubjectID,
		TeacherID: e.TeacherID,
		WeekType:  e.WeekType,
		FromSlot:  e.Slot,
		ToSlot:    to,
	}
}

// applyMoves 在副本上执行全部移动，任一步找不到对应记录返回失败
func applyMoves(s *model.Schedule, moves []model.SwapMove) (*model.Schedule, bool) {
	applied := s.Clone()
	for _, m := range moves {
		e := applied.FindLesson(m.ClassID, m.SubjectID, m.TeacherID, m.FromSlot, m.WeekType)
		if e == nil {
			return nil, false
		}
		e.Slot = m.ToSlot
	}
	return applied, true
}

// buildSuggestion 在副本上模拟全部移动并校验零新增硬冲突，计算代价变化
func (sr *Searcher) buildSuggestion(s *model.Schedule, typ model.SwapType, moves []model.SwapMove, desc string) (model.SwapSuggestion, bool) {
	applied, ok := applyMoves(s, moves)
	if !ok {
		return model.SwapSuggestion{}, false
	}

	// 每个被移动的课程在新位置都必须可放
	for _, m := range moves {
		moved := applied.FindLesson(m.ClassID, m.SubjectID, m.TeacherID, m.ToSlot, m.WeekType)
		if moved == nil {
			return model.SwapSuggestion{}, false
		}
		if sr.eval.Evaluate(applied, moved, m.ToSlot).Blocked() {
			return model.SwapSuggestion{}, false
		}
	}

	impact := 0
	if sr.cost != nil {
		impact = sr.cost(applied) - sr.cost(s)
	}

	return model.SwapSuggestion{
		Type:        typ,
		Moves:       moves,
		CostImpact:  impact,
		Description: desc,
	}, true
}
