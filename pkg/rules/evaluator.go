package rules

import (
	"fmt"
	"strings"

	"github.com/paike/paike/pkg/model"
)

// 节次偏好的判定边界：前 earlyPeriods 节算早课，后 latePeriods 节算晚课
const (
	earlyPeriods = 2
	latePeriods  = 2
)

// Evaluator 约束评估器，只读地评估一次候选放置
type Evaluator struct {
	ref ReferenceData
}

// NewEvaluator 创建约束评估器，ref 为空时使用空基础数据
func NewEvaluator(ref ReferenceData) *Evaluator {
	if ref == nil {
		ref = NewStaticData()
	}
	return &Evaluator{ref: ref}
}

// Evaluate 评估把 candidate 放到 target 槽位的冲突情况
// 按优先级检查，首个硬约束冲突立即返回，软约束冲突累积后汇总
func (ev *Evaluator) Evaluate(s *model.Schedule, candidate *model.ScheduleEntry, target model.TimeSlot) model.ConflictInfo {
	week := candidate.EffectiveWeekType()

	// 1. 固定课程不可移动
	if candidate.IsFixed && target != candidate.Slot {
		return blocked(target, model.KindFixedEntry,
			fmt.Sprintf("固定课程不可移动到%s", target))
	}

	// 2. 教师占用
	if e := otherOccupant(s, candidate, target, week, byTeacher); e != nil {
		return blocked(target, model.KindTeacherBusy,
			fmt.Sprintf("教师%d在%s已有课程", candidate.TeacherID, target))
	}

	// 3. 班级占用
	if e := otherOccupant(s, candidate, target, week, byClass); e != nil {
		return blocked(target, model.KindClassBusy,
			fmt.Sprintf("班级%d在%s已有课程", candidate.ClassID, target))
	}

	// 4. 科目禁排槽位
	if ev.ref.ForbiddenMask(candidate.SubjectID).HasSlot(target, s.Meta.PeriodsPerDay) {
		return blocked(target, model.KindForbiddenSlot,
			fmt.Sprintf("科目%d禁止排在%s", candidate.SubjectID, target))
	}

	// 5. 教师互斥
	for _, rule := range ev.ref.Exclusions(candidate.TeacherID) {
		other, ok := rule.Other(candidate.TeacherID)
		if !ok || !rule.AppliesAt(target) {
			continue
		}
		if s.TeacherOccupied(other, target, week) != nil {
			return blocked(target, model.KindMutualExclusion,
				fmt.Sprintf("教师%d与教师%d互斥，%s已被占用", candidate.TeacherID, other, target))
		}
	}

	// 6. 软约束：不排课时间与节次偏好
	var warnings []model.ConflictInfo

	if ev.ref.BlockedMask(candidate.TeacherID).HasSlot(target, s.Meta.PeriodsPerDay) {
		warnings = append(warnings, warning(target, model.KindPreferenceViolation,
			fmt.Sprintf("教师%d不希望在%s排课", candidate.TeacherID, target)))
	}

	switch ev.ref.Bias(candidate.TeacherID) {
	case BiasAvoidEarly:
		if target.Period < earlyPeriods {
			warnings = append(warnings, warning(target, model.KindTimeBiasViolation,
				fmt.Sprintf("教师%d不喜欢早课，%s偏早", candidate.TeacherID, target)))
		}
	case BiasAvoidLate:
		if target.Period >= s.Meta.PeriodsPerDay-latePeriods {
			warnings = append(warnings, warning(target, model.KindTimeBiasViolation,
				fmt.Sprintf("教师%d不喜欢晚课，%s偏晚", candidate.TeacherID, target)))
		}
	}

	if len(warnings) == 0 {
		return model.ConflictInfo{Slot: target, Severity: model.SeverityAvailable}
	}

	// 汇总全部软约束提醒
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.Description
	}
	return model.ConflictInfo{
		Slot:        target,
		Kind:        warnings[0].Kind,
		Severity:    model.SeverityWarning,
		Description: strings.Join(parts, "；"),
	}
}

type occupantKey int

const (
	byTeacher occupantKey = iota
	byClass
)

// otherOccupant 查找 target 槽位上与候选记录冲突的其他记录，排除候选自身
func otherOccupant(s *model.Schedule, candidate *model.ScheduleEntry, target model.TimeSlot, week model.WeekType, key occupantKey) *model.ScheduleEntry {
	for _, e := range s.Entries {
		if e.Slot != target || e.SameLesson(candidate) {
			continue
		}
		if !e.EffectiveWeekType().Overlaps(week) {
			continue
		}
		switch key {
		case byTeacher:
			if e.TeacherID == candidate.TeacherID {
				return e
			}
		case byClass:
			if e.ClassID == candidate.ClassID {
				return e
			}
		}
	}
	return nil
}

func blocked(slot model.TimeSlot, kind model.ConflictKind, desc string) model.ConflictInfo {
	return model.ConflictInfo{Slot: slot, Kind: kind, Severity: model.SeverityBlocked, Description: desc}
}

func warning(slot model.TimeSlot, kind model.ConflictKind, desc string) model.ConflictInfo {
	return model.ConflictInfo{Slot: slot, Kind: kind, Severity: model.SeverityWarning, Description: desc}
}
