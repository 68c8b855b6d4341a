package model

// Severity 冲突严重程度，Available < Warning < Blocked
type Severity int

const (
	SeverityAvailable Severity = iota // 可放置
	SeverityWarning                   // 软约束提醒
	SeverityBlocked                   // 硬约束阻止
)

// String 返回严重程度的可读名称
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityBlocked:
		return "blocked"
	default:
		return "available"
	}
}

// ConflictKind 冲突类型标识
type ConflictKind string

const (
	// 硬约束
	KindFixedEntry      ConflictKind = "fixed_entry"      // 固定课程不可移动
	KindTeacherBusy     ConflictKind = "teacher_busy"     // 教师已有课
	KindClassBusy       ConflictKind = "class_busy"       // 班级已有课
	KindForbiddenSlot   ConflictKind = "forbidden_slot"   // 科目禁排槽位
	KindMutualExclusion ConflictKind = "mutual_exclusion" // 教师互斥

	// 软约束
	KindPreferenceViolation ConflictKind = "preference_violation" // 教师不排课时间
	KindTimeBiasViolation   ConflictKind = "time_bias_violation"  // 偏早/偏晚节次
)

// IsHard 检查冲突类型是否属于硬约束
func (k ConflictKind) IsHard() bool {
	switch k {
	case KindPreferenceViolation, KindTimeBiasViolation:
		return false
	default:
		return true
	}
}

// ConflictInfo 单个槽位的放置评估结果
type ConflictInfo struct {
	Slot        TimeSlot     `json:"slot"`
	Kind        ConflictKind `json:"kind,omitempty"`
	Severity    Severity     `json:"severity"`
	Description string       `json:"description,omitempty"`
}

// Blocked 检查是否为硬约束冲突
func (c ConflictInfo) Blocked() bool {
	return c.Severity == SeverityBlocked
}
