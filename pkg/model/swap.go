package model

// SwapType 调课建议类型
type SwapType string

const (
	SwapSimple   SwapType = "simple"   // 二元互换
	SwapTriangle SwapType = "triangle" // 三角轮换
	SwapChain    SwapType = "chain"    // 链式调整
)

// Rank 返回类型排序权重，Simple < Triangle < Chain
func (t SwapType) Rank() int {
	switch t {
	case SwapSimple:
		return 0
	case SwapTriangle:
		return 1
	default:
		return 2
	}
}

// SwapMove 调课建议中的一步移动
type SwapMove struct {
	ClassID   int64    `json:"class_id"`
	SubjectID int64    `json:"subject_id"`
	TeacherID int64    `json:"teacher_id"`
	WeekType  WeekType `json:"week_type,omitempty"`
	FromSlot  TimeSlot `json:"from_slot"`
	ToSlot    TimeSlot `json:"to_slot"`
}

// Reversed 返回反向移动
func (m SwapMove) Reversed() SwapMove {
	m.FromSlot, m.ToSlot = m.ToSlot, m.FromSlot
	return m
}

// SwapSuggestion 一条调课建议：同时执行全部移动后不产生新的硬约束冲突
// 移动数量：Simple 为 2，Triangle 为 3，Chain 至少 4
type SwapSuggestion struct {
	Type        SwapType   `json:"type"`
	Moves       []SwapMove `json:"moves"`
	CostImpact  int        `json:"cost_impact"`
	Description string     `json:"description"`
}
