package validator

import (
	"testing"

	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/rules"
)

func slot(day, period int) model.TimeSlot {
	return model.TimeSlot{Day: day, Period: period}
}

func buildSchedule() *model.Schedule {
	s := model.NewSchedule(5, 8)
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0)})
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 11, TeacherID: 102, Slot: slot(0, 1), IsFixed: true})
	s.AddEntry(&model.ScheduleEntry{ClassID: 2, SubjectID: 10, TeacherID: 101, Slot: slot(1, 0)})
	return s
}

func TestDetector_DetectAll(t *testing.T) {
	s := buildSchedule()
	d := NewDetector(rules.NewEvaluator(nil))

	math := s.Entries[0]
	grid := d.DetectAll(s, math)

	if len(grid) != 5*8 {
		t.Fatalf("Expected %d evaluated slots, got %d", 5*8, len(grid))
	}

	// 自身槽位不应与自己冲突
	if grid[slot(0, 0)].Severity != model.SeverityAvailable {
		t.Errorf("Own slot should be available, got %s", grid[slot(0, 0)].Severity)
	}

	// 班级1的固定语文课占用(0,1)
	if c := grid[slot(0, 1)]; c.Kind != model.KindClassBusy || !c.Blocked() {
		t.Errorf("Slot (0,1) should be blocked class_busy, got %s/%s", c.Severity, c.Kind)
	}

	// 教师101在(1,0)给班级2上课
	if c := grid[slot(1, 0)]; c.Kind != model.KindTeacherBusy || !c.Blocked() {
		t.Errorf("Slot (1,0) should be blocked teacher_busy, got %s/%s", c.Severity, c.Kind)
	}

	// 无其他规则时空槽位可放
	if grid[slot(3, 3)].Severity != model.SeverityAvailable {
		t.Errorf("Slot (3,3) should be available, got %s", grid[slot(3, 3)].Severity)
	}
}

func TestDetector_Deterministic(t *testing.T) {
	s := buildSchedule()
	d := NewDetector(rules.NewEvaluator(nil))

	first := d.DetectAll(s, s.Entries[0])
	second := d.DetectAll(s, s.Entries[0])

	for sl, info := range first {
		if second[sl] != info {
			t.Fatalf("Detection not deterministic at %s", sl)
		}
	}
}

func TestDetector_DoesNotMutate(t *testing.T) {
	s := buildSchedule()
	d := NewDetector(rules.NewEvaluator(nil))

	before := s.Clone()
	d.DetectAll(s, s.Entries[0])

	if !s.SameEntries(before) || len(s.Entries) != len(before.Entries) {
		t.Error("DetectAll must not mutate the schedule")
	}
}

func TestDetector_FixedEntryGrid(t *testing.T) {
	s := buildSchedule()
	d := NewDetector(rules.NewEvaluator(nil))

	chinese := s.Entries[1]
	grid := d.DetectAll(s, chinese)

	// 固定课程：除自身槽位外全部被固定规则阻止
	for sl, info := range grid {
		if sl == chinese.Slot {
			if info.Blocked() {
				t.Errorf("Own slot of a fixed entry should not be blocked: %s", info.Description)
			}
			continue
		}
		if info.Kind != model.KindFixedEntry || !info.Blocked() {
			t.Errorf("Slot %s should be blocked fixed_entry, got %s/%s", sl, info.Severity, info.Kind)
		}
	}
}
