// Package validator 提供课表冲突检测
package validator

import (
	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/rules"
)

// Detector 冲突检测器，对整张网格逐槽位运行约束评估
// 纯函数语义：不修改传入课表，结果确定
type Detector struct {
	eval *rules.Evaluator
}

// NewDetector 创建冲突检测器
func NewDetector(eval *rules.Evaluator) *Detector {
	return &Detector{eval: eval}
}

// DetectAll 评估 entry 在全网格每个槽位的放置情况
// 评估前先从副本中摘除 entry 自身，避免与自己冲突
func (d *Detector) DetectAll(s *model.Schedule, entry *model.ScheduleEntry) map[model.TimeSlot]model.ConflictInfo {
	working := withoutEntry(s, entry)

	result := make(map[model.TimeSlot]model.ConflictInfo, s.Meta.CycleDays*s.Meta.PeriodsPerDay)
	for day := 0; day < s.Meta.CycleDays; day++ {
		for period := 0; period < s.Meta.PeriodsPerDay; period++ {
			slot := model.TimeSlot{Day: day, Period: period}
			result[slot] = d.eval.Evaluate(working, entry, slot)
		}
	}
	return result
}

// Evaluate 评估单个槽位，同样摘除 entry 自身
func (d *Detector) Evaluate(s *model.Schedule, entry *model.ScheduleEntry, target model.TimeSlot) model.ConflictInfo {
	return d.eval.Evaluate(withoutEntry(s, entry), entry, target)
}

// withoutEntry 构造不含指定记录的浅副本
func withoutEntry(s *model.Schedule, entry *model.ScheduleEntry) *model.Schedule {
	working := &model.Schedule{
		Entries: make([]*model.ScheduleEntry, 0, len(s.Entries)),
		Cost:    s.Cost,
		Meta:    s.Meta,
	}
	removed := false
	for _, e := range s.Entries {
		if !removed && e.SameLesson(entry) {
			removed = true
			continue
		}
		working.Entries = append(working.Entries, e)
	}
	return working
}
