package model

import "time"

// ScheduleEntry 一条课表记录：某班级的某科目由某教师在某槽位上课
type ScheduleEntry struct {
	ClassID   int64    `json:"class_id"`
	SubjectID int64    `json:"subject_id"`
	TeacherID int64    `json:"teacher_id"`
	Slot      TimeSlot `json:"slot"`
	IsFixed   bool     `json:"is_fixed"`   // 固定课程不允许被调整
	WeekType  WeekType `json:"week_type"`
}

// EffectiveWeekType 返回周类型，空值按每周处理
func (e *ScheduleEntry) EffectiveWeekType() WeekType {
	if e.WeekType == "" {
		return WeekEvery
	}
	return e.WeekType
}

// SameLesson 检查是否为同一条课表记录（班级/科目/教师/槽位/周类型全部相同）
func (e *ScheduleEntry) SameLesson(other *ScheduleEntry) bool {
	return e.ClassID == other.ClassID &&
		e.SubjectID == other.SubjectID &&
		e.TeacherID == other.TeacherID &&
		e.Slot == other.Slot &&
		e.EffectiveWeekType() == other.EffectiveWeekType()
}

// ScheduleMeta 课表元数据
type ScheduleMeta struct {
	CycleDays     int       `json:"cycle_days"`
	PeriodsPerDay int       `json:"periods_per_day"`
	GeneratedAt   time.Time `json:"generated_at"`
	Version       int       `json:"version"`
}

// Schedule 一张完整课表，由编辑会话独占持有，仅允许变更执行器修改
type Schedule struct {
	Entries []*ScheduleEntry `json:"entries"`
	Cost    int              `json:"cost"`
	Meta    ScheduleMeta     `json:"meta"`
}

// NewSchedule 创建空课表
func NewSchedule(cycleDays, periodsPerDay int) *Schedule {
	return &Schedule{
		Entries: make([]*ScheduleEntry, 0),
		Meta: ScheduleMeta{
			CycleDays:     cycleDays,
			PeriodsPerDay: periodsPerDay,
			GeneratedAt:   time.Now(),
			Version:       1,
		},
	}
}

// Clone 深拷贝课表
func (s *Schedule) Clone() *Schedule {
	clone := &Schedule{
		Entries: make([]*ScheduleEntry, len(s.Entries)),
		Cost:    s.Cost,
		Meta:    s.Meta,
	}
	for i, e := range s.Entries {
		copied := *e
		clone.Entries[i] = &copied
	}
	return clone
}

// EntriesAt 返回占用指定槽位的所有记录
func (s *Schedule) EntriesAt(slot TimeSlot) []*ScheduleEntry {
	var result []*ScheduleEntry
	for _, e := range s.Entries {
		if e.Slot == slot {
			result = append(result, e)
		}
	}
	return result
}

// ClassOccupied 查找指定班级在槽位上与给定周类型重叠的记录
func (s *Schedule) ClassOccupied(classID int64, slot TimeSlot, week WeekType) *ScheduleEntry {
	for _, e := range s.Entries {
		if e.ClassID == classID && e.Slot == slot && e.EffectiveWeekType().Overlaps(week) {
			return e
		}
	}
	return nil
}

// TeacherOccupied 查找指定教师在槽位上与给定周类型重叠的记录
func (s *Schedule) TeacherOccupied(teacherID int64, slot TimeSlot, week WeekType) *ScheduleEntry {
	for _, e := range s.Entries {
		if e.TeacherID == teacherID && e.Slot == slot && e.EffectiveWeekType().Overlaps(week) {
			return e
		}
	}
	return nil
}

// FindLesson 按课程定位记录（班级+科目+教师+槽位+周类型）
// 同一槽位允许互不重叠的单双周记录共存，周类型必须参与匹配
func (s *Schedule) FindLesson(classID, subjectID, teacherID int64, slot TimeSlot, week WeekType) *ScheduleEntry {
	if week == "" {
		week = WeekEvery
	}
	for _, e := range s.Entries {
		if e.ClassID == classID && e.SubjectID == subjectID && e.TeacherID == teacherID &&
			e.Slot == slot && e.EffectiveWeekType() == week {
			return e
		}
	}
	return nil
}

// FindByClassTeacher 按班级和教师定位第一条记录
func (s *Schedule) FindByClassTeacher(classID, teacherID int64) *ScheduleEntry {
	for _, e := range s.Entries {
		if e.ClassID == classID && e.TeacherID == teacherID {
			return e
		}
	}
	return nil
}

// AddEntry 追加一条记录
func (s *Schedule) AddEntry(e *ScheduleEntry) {
	s.Entries = append(s.Entries, e)
}

// RemoveEntry 移除与给定记录相同的课程，返回是否移除成功
func (s *Schedule) RemoveEntry(target *ScheduleEntry) bool {
	for i, e := range s.Entries {
		if e.SameLesson(target) {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// entryKey 记录的集合键
func entryKey(e *ScheduleEntry) [7]int64 {
	week := int64(0)
	switch e.EffectiveWeekType() {
	case WeekOdd:
		week = 1
	case WeekEven:
		week = 2
	}
	fixed := int64(0)
	if e.IsFixed {
		fixed = 1
	}
	return [7]int64{e.ClassID, e.SubjectID, e.TeacherID, int64(e.Slot.Day), int64(e.Slot.Period), week, fixed}
}

// SameEntries 检查两张课表的记录集合是否相等（与顺序无关）
func (s *Schedule) SameEntries(other *Schedule) bool {
	if len(s.Entries) != len(other.Entries) {
		return false
	}
	counts := make(map[[7]int64]int, len(s.Entries))
	for _, e := range s.Entries {
		counts[entryKey(e)]++
	}
	for _, e := range other.Entries {
		counts[entryKey(e)]--
		if counts[entryKey(e)] < 0 {
			return false
		}
	}
	return true
}
