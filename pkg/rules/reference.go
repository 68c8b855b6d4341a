// Package rules 提供候选放置的硬/软约束评估
package rules

import "github.com/paike/paike/pkg/model"

// ExclusionScope 教师互斥规则的生效范围
type ExclusionScope string

const (
	ExclusionAllTime       ExclusionScope = "all_time"       // 全时段互斥
	ExclusionSpecificSlots ExclusionScope = "specific_slots" // 指定槽位互斥
)

// MutualExclusion 教师互斥规则：两位教师不得同时占用互斥槽位
type MutualExclusion struct {
	TeacherA int64            `json:"teacher_a"`
	TeacherB int64            `json:"teacher_b"`
	Scope    ExclusionScope   `json:"scope"`
	Slots    []model.TimeSlot `json:"slots,omitempty"` // Scope 为 specific_slots 时生效
}

// Other 返回互斥对中的另一位教师，教师不在规则中时返回 false
func (r MutualExclusion) Other(teacherID int64) (int64, bool) {
	switch teacherID {
	case r.TeacherA:
		return r.TeacherB, true
	case r.TeacherB:
		return r.TeacherA, true
	default:
		return 0, false
	}
}

// AppliesAt 检查规则在指定槽位是否生效
func (r MutualExclusion) AppliesAt(slot model.TimeSlot) bool {
	if r.Scope == ExclusionAllTime {
		return true
	}
	for _, s := range r.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// TimeBias 教师节次偏好
type TimeBias string

const (
	BiasNone       TimeBias = ""            // 无偏好
	BiasAvoidEarly TimeBias = "avoid_early" // 不喜欢早课
	BiasAvoidLate  TimeBias = "avoid_late"  // 不喜欢晚课
)

// ReferenceData 只读基础数据接口，由外部字典存储提供
// 评估器只消费数据，不关心数据如何落库
type ReferenceData interface {
	// ForbiddenMask 返回科目的禁排槽位掩码
	ForbiddenMask(subjectID int64) model.SlotMask

	// BlockedMask 返回教师的不排课槽位掩码（软约束）
	BlockedMask(teacherID int64) model.SlotMask

	// Bias 返回教师的节次偏好
	Bias(teacherID int64) TimeBias

	// Exclusions 返回涉及指定教师的互斥规则
	Exclusions(teacherID int64) []MutualExclusion
}

// StaticData 内存态基础数据，用于测试和离线场景
type StaticData struct {
	ForbiddenMasks map[int64]model.SlotMask
	BlockedMasks   map[int64]model.SlotMask
	Biases         map[int64]TimeBias
	ExclusionRules []MutualExclusion
}

// NewStaticData 创建空的内存基础数据
func NewStaticData() *StaticData {
	return &StaticData{
		ForbiddenMasks: make(map[int64]model.SlotMask),
		BlockedMasks:   make(map[int64]model.SlotMask),
		Biases:         make(map[int64]TimeBias),
	}
}

// ForbiddenMask 实现 ReferenceData
func (d *StaticData) ForbiddenMask(subjectID int64) model.SlotMask {
	return d.ForbiddenMasks[subjectID]
}

// BlockedMask 实现 ReferenceData
func (d *StaticData) BlockedMask(teacherID int64) model.SlotMask {
	return d.BlockedMasks[teacherID]
}

// Bias 实现 ReferenceData
func (d *StaticData) Bias(teacherID int64) TimeBias {
	return d.Biases[teacherID]
}

// Exclusions 实现 ReferenceData
func (d *StaticData) Exclusions(teacherID int64) []MutualExclusion {
	var result []MutualExclusion
	for _, r := range d.ExclusionRules {
		if _, ok := r.Other(teacherID); ok {
			result = append(result, r)
		}
	}
	return result
}

// CostFunc 外部代价函数，用于为课表打分并排序调课建议
type CostFunc func(*model.Schedule) int
