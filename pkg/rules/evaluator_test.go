package rules

import (
	"strings"
	"testing"

	"github.com/paike/paike/pkg/model"
)

func slot(day, period int) model.TimeSlot {
	return model.TimeSlot{Day: day, Period: period}
}

// buildSchedule 组装测试课表：班级1的数学（教师101）和固定的语文（教师102）
func buildSchedule() *model.Schedule {
	s := model.NewSchedule(5, 8)
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0)})
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 11, TeacherID: 102, Slot: slot(0, 1), IsFixed: true})
	return s
}

func TestEvaluator_ClassBusy(t *testing.T) {
	s := buildSchedule()
	ev := NewEvaluator(nil)

	// 班级1在(0,1)已有固定语文课，移动数学课过去应为硬冲突
	math := s.Entries[0]
	result := ev.Evaluate(s, math, slot(0, 1))

	if result.Severity != model.SeverityBlocked {
		t.Fatalf("Expected blocked, got %s", result.Severity)
	}
	if result.Kind != model.KindClassBusy {
		t.Errorf("Expected class_busy, got %s", result.Kind)
	}
}

func TestEvaluator_TeacherBusy(t *testing.T) {
	s := model.NewSchedule(5, 8)
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0)})
	s.AddEntry(&model.ScheduleEntry{ClassID: 2, SubjectID: 10, TeacherID: 101, Slot: slot(2, 3)})
	ev := NewEvaluator(nil)

	result := ev.Evaluate(s, s.Entries[0], slot(2, 3))
	if result.Kind != model.KindTeacherBusy || !result.Blocked() {
		t.Errorf("Expected blocked teacher_busy, got %s/%s", result.Severity, result.Kind)
	}
}

func TestEvaluator_TeacherBusyWeekTypes(t *testing.T) {
	ev := NewEvaluator(nil)

	tests := []struct {
		name      string
		existing  model.WeekType
		candidate model.WeekType
		blocked   bool
	}{
		{"every vs every", model.WeekEvery, model.WeekEvery, true},
		{"odd vs even", model.WeekOdd, model.WeekEven, false},
		{"odd vs odd", model.WeekOdd, model.WeekOdd, true},
		{"every vs odd", model.WeekEvery, model.WeekOdd, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.NewSchedule(5, 8)
			s.AddEntry(&model.ScheduleEntry{ClassID: 2, SubjectID: 10, TeacherID: 101, Slot: slot(1, 1), WeekType: tt.existing})
			candidate := &model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0), WeekType: tt.candidate}
			s.AddEntry(candidate)

			got := ev.Evaluate(s, candidate, slot(1, 1)).Blocked()
			if got != tt.blocked {
				t.Errorf("blocked = %v, want %v", got, tt.blocked)
			}
		})
	}
}

func TestEvaluator_FixedEntry(t *testing.T) {
	s := buildSchedule()
	ev := NewEvaluator(nil)

	chinese := s.Entries[1]
	result := ev.Evaluate(s, chinese, slot(3, 3))
	if result.Kind != model.KindFixedEntry || !result.Blocked() {
		t.Errorf("Expected blocked fixed_entry, got %s/%s", result.Severity, result.Kind)
	}

	// 固定课程留在原槽位不算冲突
	result = ev.Evaluate(s, chinese, chinese.Slot)
	if result.Kind == model.KindFixedEntry {
		t.Error("Fixed entry at its own slot should not be blocked by the fixed rule")
	}
}

func TestEvaluator_ForbiddenSlot(t *testing.T) {
	s := buildSchedule()
	ref := NewStaticData()
	// 禁止科目10排在(1,0)，即位序号8
	ref.ForbiddenMasks[10] = model.SlotMask(0).Set(slot(1, 0).Index(8))
	ev := NewEvaluator(ref)

	result := ev.Evaluate(s, s.Entries[0], slot(1, 0))
	if result.Kind != model.KindForbiddenSlot || !result.Blocked() {
		t.Errorf("Expected blocked forbidden_slot, got %s/%s", result.Severity, result.Kind)
	}
}

func TestEvaluator_MutualExclusion(t *testing.T) {
	s := model.NewSchedule(5, 8)
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0)})
	s.AddEntry(&model.ScheduleEntry{ClassID: 2, SubjectID: 12, TeacherID: 103, Slot: slot(2, 2)})

	ref := NewStaticData()
	ref.ExclusionRules = []MutualExclusion{
		{TeacherA: 101, TeacherB: 103, Scope: ExclusionAllTime},
	}
	ev := NewEvaluator(ref)

	result := ev.Evaluate(s, s.Entries[0], slot(2, 2))
	if result.Kind != model.KindMutualExclusion || !result.Blocked() {
		t.Errorf("Expected blocked mutual_exclusion, got %s/%s", result.Severity, result.Kind)
	}

	// 指定槽位互斥：仅列出的槽位生效
	ref.ExclusionRules = []MutualExclusion{
		{TeacherA: 101, TeacherB: 103, Scope: ExclusionSpecificSlots, Slots: []model.TimeSlot{slot(3, 3)}},
	}
	result = ev.Evaluate(s, s.Entries[0], slot(2, 2))
	if result.Kind == model.KindMutualExclusion {
		t.Error("Exclusion limited to (3,3) should not fire at (2,2)")
	}
}

func TestEvaluator_SoftWarnings(t *testing.T) {
	s := buildSchedule()
	ref := NewStaticData()
	// 教师101不希望在(4,0)排课，且不喜欢早课
	ref.BlockedMasks[101] = model.SlotMask(0).Set(slot(4, 0).Index(8))
	ref.Biases[101] = BiasAvoidEarly
	ev := NewEvaluator(ref)

	result := ev.Evaluate(s, s.Entries[0], slot(4, 0))
	if result.Severity != model.SeverityWarning {
		t.Fatalf("Expected warning, got %s", result.Severity)
	}
	// 两条软约束提醒应全部汇总进描述
	if !strings.Contains(result.Description, "不希望") || !strings.Contains(result.Description, "早课") {
		t.Errorf("Description should mention both warnings: %s", result.Description)
	}
}

func TestEvaluator_AvoidLate(t *testing.T) {
	s := buildSchedule()
	ref := NewStaticData()
	ref.Biases[101] = BiasAvoidLate
	ev := NewEvaluator(ref)

	// 8节课的最后两节算晚课
	if ev.Evaluate(s, s.Entries[0], slot(2, 7)).Severity != model.SeverityWarning {
		t.Error("Period 7 should be a late-period warning")
	}
	if ev.Evaluate(s, s.Entries[0], slot(2, 4)).Severity != model.SeverityAvailable {
		t.Error("Period 4 should be available")
	}
}

func TestEvaluator_Available(t *testing.T) {
	s := buildSchedule()
	ev := NewEvaluator(nil)

	result := ev.Evaluate(s, s.Entries[0], slot(3, 4))
	if result.Severity != model.SeverityAvailable {
		t.Errorf("Expected available, got %s: %s", result.Severity, result.Description)
	}
}
