// Package model 定义课表编辑引擎的核心数据模型
package model

import (
	"fmt"
	"strconv"
)

// TimeSlot 课表网格坐标（周几第几节）
type TimeSlot struct {
	Day    int `json:"day"`    // 0..cycleDays-1
	Period int `json:"period"` // 0..periodsPerDay-1
}

// Index 返回槽位在 64 位掩码中的位序号
func (t TimeSlot) Index(periodsPerDay int) int {
	return t.Day*periodsPerDay + t.Period
}

// Valid 检查槽位是否在网格范围内
func (t TimeSlot) Valid(cycleDays, periodsPerDay int) bool {
	return t.Day >= 0 && t.Day < cycleDays && t.Period >= 0 && t.Period < periodsPerDay
}

var dayNames = []string{"一", "二", "三", "四", "五", "六", "日"}

// String 返回槽位的可读描述
func (t TimeSlot) String() string {
	if t.Day >= 0 && t.Day < len(dayNames) {
		return fmt.Sprintf("周%s第%d节", dayNames[t.Day], t.Period+1)
	}
	return fmt.Sprintf("第%d天第%d节", t.Day+1, t.Period+1)
}

// WeekType 单双周类型
type WeekType string

const (
	WeekEvery WeekType = "every" // 每周
	WeekOdd   WeekType = "odd"   // 单周
	WeekEven  WeekType = "even"  // 双周
)

// Overlaps 检查两个周类型是否会在同一周出现
// 每周与任何类型重叠；单周与单周/每周重叠；双周与双周/每周重叠；单双周互不重叠
func (w WeekType) Overlaps(other WeekType) bool {
	if w == WeekEvery || other == WeekEvery {
		return true
	}
	return w == other
}

// SlotMask 槽位掩码（64 位，位序号 = day*periodsPerDay+period）
// 用于禁排槽位、教师不排课时间等位图字段
type SlotMask uint64

// Has 检查指定位是否置位
func (m SlotMask) Has(index int) bool {
	if index < 0 || index > 63 {
		return false
	}
	return m&(1<<uint(index)) != 0
}

// Set 返回置位后的掩码
func (m SlotMask) Set(index int) SlotMask {
	if index < 0 || index > 63 {
		return m
	}
	return m | (1 << uint(index))
}

// Clear 返回清位后的掩码
func (m SlotMask) Clear(index int) SlotMask {
	if index < 0 || index > 63 {
		return m
	}
	return m &^ (1 << uint(index))
}

// HasSlot 检查槽位对应的位是否置位
func (m SlotMask) HasSlot(slot TimeSlot, periodsPerDay int) bool {
	return m.Has(slot.Index(periodsPerDay))
}

// Validate 检查掩码在给定网格尺寸下是否有效
// 网格尺寸变化后必须重新校验：任何超出 cycleDays*periodsPerDay 的置位都视为无效
func (m SlotMask) Validate(cycleDays, periodsPerDay int) bool {
	total := cycleDays * periodsPerDay
	if total <= 0 || total > 64 {
		return false
	}
	if total == 64 {
		return true
	}
	return uint64(m)>>uint(total) == 0
}

// String 以十进制字符串序列化掩码
func (m SlotMask) String() string {
	return strconv.FormatUint(uint64(m), 10)
}

// ParseSlotMask 解析十进制或 0x 前缀十六进制的掩码字符串
func ParseSlotMask(s string) (SlotMask, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("解析槽位掩码失败: %w", err)
	}
	return SlotMask(v), nil
}
