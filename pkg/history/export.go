package history

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/paike/paike/pkg/model"
)

// Snapshot 历史的序列化形态
// historyStack 为完整时间线，currentIndex 指向撤销栈顶之后的位置
type Snapshot struct {
	HistoryStack []model.Operation `json:"historyStack"`
	CurrentIndex int               `json:"currentIndex"`
	ExportedAt   time.Time         `json:"exportedAt"`
}

// Export 导出历史为 JSON 字符串
func (m *Manager) Export() (string, error) {
	stack := make([]model.Operation, 0, len(m.undoStack)+len(m.redoStack))
	stack = append(stack, m.undoStack...)
	// 重做栈按时间线顺序接在后面
	for i := len(m.redoStack) - 1; i >= 0; i-- {
		stack = append(stack, m.redoStack[i])
	}

	data, err := json.Marshal(Snapshot{
		HistoryStack: stack,
		CurrentIndex: len(m.undoStack),
		ExportedAt:   time.Now(),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Import 从 JSON 字符串恢复历史
// 先整体校验结构，非法输入返回 false 且不触碰现有状态
func (m *Manager) Import(data string) bool {
	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return false
	}
	if snap.CurrentIndex < 0 || snap.CurrentIndex > len(snap.HistoryStack) {
		return false
	}
	for i := range snap.HistoryStack {
		op := &snap.HistoryStack[i]
		if !op.ValidType() || op.ID == uuid.Nil {
			return false
		}
	}

	undo := make([]model.Operation, 0, m.maxSize)
	undo = append(undo, snap.HistoryStack[:snap.CurrentIndex]...)
	if len(undo) > m.maxSize {
		undo = undo[len(undo)-m.maxSize:]
	}

	redo := make([]model.Operation, 0)
	for i := len(snap.HistoryStack) - 1; i >= snap.CurrentIndex; i-- {
		redo = append(redo, snap.HistoryStack[i])
	}

	m.undoStack = undo
	m.redoStack = redo
	return true
}
