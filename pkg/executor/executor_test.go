package executor

import (
	"testing"

	"github.com/paike/paike/pkg/errors"
	"github.com/paike/paike/pkg/history"
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

// countEntries 简单代价函数：按第0天的课程数打分
func countEntries(s *model.Schedule) int {
	n := 0
	for _, e := range s.Entries {
		if e.Slot.Day == 0 {
			n++
		}
	}
	return n
}

func newExecutor(s *model.Schedule) (*Executor, *history.Manager) {
	hist := history.NewManager(10)
	ex := New(s, rules.NewEvaluator(nil), countEntries, hist)
	hist.SetApplier(ex)
	return ex, hist
}

func TestExecutor_ApplyMove(t *testing.T) {
	s := buildSchedule()
	ex, hist := newExecutor(s)

	math := *s.Entries[0]
	conflicts, err := ex.ApplyMove(&math, slot(2, 3))
	if err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	if len(conflicts) != 5*8 {
		t.Errorf("Expected full-grid conflicts, got %d slots", len(conflicts))
	}
	if s.FindLesson(1, 10, 101, slot(2, 3), model.WeekEvery) == nil {
		t.Error("Entry should be at its new slot")
	}
	if hist.Count() != 1 {
		t.Errorf("Expected 1 recorded operation, got %d", hist.Count())
	}
	if s.Cost != countEntries(s) {
		t.Errorf("Cost not recomputed: %d", s.Cost)
	}
}

func TestExecutor_FixedEntryRejected(t *testing.T) {
	s := buildSchedule()
	ex, hist := newExecutor(s)

	before := s.Clone()
	chinese := *s.Entries[1]
	_, err := ex.ApplyMove(&chinese, slot(3, 3))

	if !errors.Is(err, errors.CodeFixedEntry) {
		t.Fatalf("Expected FIXED_ENTRY error, got %v", err)
	}
	if !s.SameEntries(before) || s.Cost != before.Cost || s.Meta.Version != before.Meta.Version {
		t.Error("Rejected move must leave the schedule unchanged")
	}
	if hist.Count() != 0 {
		t.Error("Rejected move must not be recorded")
	}
}

func TestExecutor_MoveUndoRedoRoundTrip(t *testing.T) {
	s := buildSchedule()
	ex, hist := newExecutor(s)

	before := s.Clone()
	math := *s.Entries[0]
	if _, err := ex.ApplyMove(&math, slot(2, 3)); err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	after := s.Clone()

	if !hist.Undo() {
		t.Fatal("Undo should succeed")
	}
	if !s.SameEntries(before) {
		t.Error("Undo must restore the pre-mutation entry set")
	}

	if !hist.Redo() {
		t.Fatal("Redo should succeed")
	}
	if !s.SameEntries(after) {
		t.Error("Redo must restore the post-mutation entry set")
	}
}

func TestExecutor_ApplySwap(t *testing.T) {
	s := model.NewSchedule(5, 8)
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0)})
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 11, TeacherID: 102, Slot: slot(0, 1)})
	ex, hist := newExecutor(s)

	before := s.Clone()
	sug := model.SwapSuggestion{
		Type: model.SwapSimple,
		Moves: []model.SwapMove{
			{ClassID: 1, SubjectID: 10, TeacherID: 101, FromSlot: slot(0, 0), ToSlot: slot(0, 1)},
			{ClassID: 1, SubjectID: 11, TeacherID: 102, FromSlot: slot(0, 1), ToSlot: slot(0, 0)},
		},
		Description: "二元互换",
	}

	if err := ex.ApplySwap(sug); err != nil {
		t.Fatalf("ApplySwap failed: %v", err)
	}
	if s.FindLesson(1, 10, 101, slot(0, 1), model.WeekEvery) == nil || s.FindLesson(1, 11, 102, slot(0, 0), model.WeekEvery) == nil {
		t.Error("Both legs should have moved")
	}
	after := s.Clone()

	// 撤销/重做往返
	if !hist.Undo() || !s.SameEntries(before) {
		t.Error("Undo must restore the pre-swap schedule")
	}
	if !hist.Redo() || !s.SameEntries(after) {
		t.Error("Redo must restore the post-swap schedule")
	}
}

func TestExecutor_StaleSwapRejected(t *testing.T) {
	s := model.NewSchedule(5, 8)
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0)})
	s.AddEntry(&model.ScheduleEntry{ClassID: 1, SubjectID: 11, TeacherID: 102, Slot: slot(0, 1)})
	ex, hist := newExecutor(s)

	before := s.Clone()
	// 第二步与课表当前状态不符
	sug := model.SwapSuggestion{
		Type: model.SwapSimple,
		Moves: []model.SwapMove{
			{ClassID: 1, SubjectID: 10, TeacherID: 101, FromSlot: slot(0, 0), ToSlot: slot(0, 1)},
			{ClassID: 1, SubjectID: 11, TeacherID: 102, FromSlot: slot(4, 4), ToSlot: slot(0, 0)},
		},
	}

	err := ex.ApplySwap(sug)
	if !errors.Is(err, errors.CodeStaleSuggestion) {
		t.Fatalf("Expected STALE_SUGGESTION error, got %v", err)
	}
	// 整体拒绝：第一步也不得生效
	if !s.SameEntries(before) {
		t.Error("Stale swap must not be partially applied")
	}
	if hist.Count() != 0 {
		t.Error("Rejected swap must not be recorded")
	}
}

func TestExecutor_SetFixedRoundTrip(t *testing.T) {
	s := buildSchedule()
	ex, hist := newExecutor(s)

	math := *s.Entries[0]
	if err := ex.SetFixed(&math, true); err != nil {
		t.Fatalf("SetFixed failed: %v", err)
	}
	if !s.Entries[0].IsFixed {
		t.Fatal("Entry should be fixed")
	}

	if !hist.Undo() {
		t.Fatal("Undo should succeed")
	}
	if s.Entries[0].IsFixed {
		t.Error("Undo must restore the prior fixed flag")
	}
	if !hist.Redo() {
		t.Fatal("Redo should succeed")
	}
	if !s.Entries[0].IsFixed {
		t.Error("Redo must re-apply the fixed flag")
	}
}

func TestExecutor_SetFixedNoChange(t *testing.T) {
	s := buildSchedule()
	ex, hist := newExecutor(s)

	chinese := *s.Entries[1]
	if err := ex.SetFixed(&chinese, true); err != nil {
		t.Fatalf("SetFixed failed: %v", err)
	}
	// 无变化时不产生历史记录
	if hist.Count() != 0 {
		t.Error("A no-op SetFixed must not be recorded")
	}
}

func TestExecutor_ReplaceRoundTrip(t *testing.T) {
	s := buildSchedule()
	ex, hist := newExecutor(s)
	before := s.Clone()

	snapshot := model.NewSchedule(5, 8)
	snapshot.AddEntry(&model.ScheduleEntry{ClassID: 3, SubjectID: 12, TeacherID: 103, Slot: slot(4, 4)})

	if err := ex.Replace(snapshot); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if len(s.Entries) != 1 || s.Entries[0].ClassID != 3 {
		t.Fatal("Schedule should hold the new snapshot")
	}

	// 整表替换保留完整快照，撤销必须还原全部记录
	if !hist.Undo() {
		t.Fatal("Undo should succeed")
	}
	if !s.SameEntries(before) {
		t.Error("Undo of a generate operation must restore the full prior snapshot")
	}
}

func TestExecutor_MoveMatchesWeekType(t *testing.T) {
	s := model.NewSchedule(5, 8)
	odd := &model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0), WeekType: model.WeekOdd}
	even := &model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0), WeekType: model.WeekEven}
	s.AddEntry(odd)
	s.AddEntry(even)
	ex, hist := newExecutor(s)

	// 单双周记录共享同一槽位，移动双周记录不得波及单周记录
	moved := *even
	if _, err := ex.ApplyMove(&moved, slot(2, 2)); err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	if even.Slot != slot(2, 2) {
		t.Errorf("Even-week entry should be at %s, got %s", slot(2, 2), even.Slot)
	}
	if odd.Slot != slot(0, 0) {
		t.Errorf("Odd-week entry must stay at %s, got %s", slot(0, 0), odd.Slot)
	}

	if !hist.Undo() {
		t.Fatal("Undo should succeed")
	}
	if even.Slot != slot(0, 0) || odd.Slot != slot(0, 0) {
		t.Error("Undo must move the even-week entry back without touching the odd-week one")
	}
}

func TestExecutor_SetFixedMatchesWeekType(t *testing.T) {
	s := model.NewSchedule(5, 8)
	odd := &model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0), WeekType: model.WeekOdd}
	even := &model.ScheduleEntry{ClassID: 1, SubjectID: 10, TeacherID: 101, Slot: slot(0, 0), WeekType: model.WeekEven}
	s.AddEntry(odd)
	s.AddEntry(even)
	ex, hist := newExecutor(s)

	target := *even
	if err := ex.SetFixed(&target, true); err != nil {
		t.Fatalf("SetFixed failed: %v", err)
	}
	if !even.IsFixed || odd.IsFixed {
		t.Error("Only the even-week entry should be fixed")
	}

	if !hist.Undo() {
		t.Fatal("Undo should succeed")
	}
	if even.IsFixed || odd.IsFixed {
		t.Error("Undo must clear the flag on the even-week entry only")
	}
}

func TestExecutor_NoOpMoveSkipped(t *testing.T) {
	s := buildSchedule()
	ex, hist := newExecutor(s)

	before := s.Clone()
	math := *s.Entries[0]
	conflicts, err := ex.ApplyMove(&math, math.Slot)
	if err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	if len(conflicts) != 5*8 {
		t.Errorf("A no-op move still reports the full grid, got %d slots", len(conflicts))
	}
	if hist.Count() != 0 {
		t.Error("A no-op move must not be recorded")
	}
	if s.Meta.Version != before.Meta.Version {
		t.Error("A no-op move must not bump the version")
	}
}

func TestExecutor_MoveOutOfGrid(t *testing.T) {
	s := buildSchedule()
	ex, _ := newExecutor(s)

	math := *s.Entries[0]
	if _, err := ex.ApplyMove(&math, slot(9, 9)); !errors.Is(err, errors.CodeInvalidInput) {
		t.Errorf("Expected INVALID_INPUT for an out-of-grid slot, got %v", err)
	}
}
