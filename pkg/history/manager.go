// Package history 提供变更历史的撤销/重做管理
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paike/paike/pkg/logger"
	"github.com/paike/paike/pkg/model"
)

// DefaultMaxSize 撤销栈的默认容量
const DefaultMaxSize = 50

// persistTimeout 单次持久化写入的超时
const persistTimeout = 3 * time.Second

// Applier 操作回放接口，由变更执行器实现
// inverse 为 true 时按预计算的逆操作回放
type Applier interface {
	ApplyOperation(op model.Operation, inverse bool) error
}

// Store 键值持久化抽象，落库由外部存储实现
type Store interface {
	Set(ctx context.Context, key, value string, expiry time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Manager 历史管理器：有界双栈（撤销/重做）
// 所有方法同步执行；持久化尽力而为，失败只记日志，不影响内存历史
type Manager struct {
	undoStack []model.Operation
	redoStack []model.Operation
	maxSize   int

	applier Applier
	store   Store
	key     string
	ttl     time.Duration
	log     *logger.EditorLogger
}

// NewManager 创建历史管理器，maxSize 非正时取默认容量
func NewManager(maxSize int) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Manager{
		undoStack: make([]model.Operation, 0, maxSize),
		redoStack: make([]model.Operation, 0),
		maxSize:   maxSize,
		log:       logger.NewEditorLogger(),
	}
}

// SetApplier 绑定操作回放方
func (m *Manager) SetApplier(a Applier) {
	m.applier = a
}

// SetStore 绑定持久化存储，key 为会话历史的存储键
func (m *Manager) SetStore(store Store, key string, ttl time.Duration) {
	m.store = store
	m.key = key
	m.ttl = ttl
}

// Add 记录一次已执行的操作并返回操作ID
// 超出容量时淘汰最旧记录；任何新增都会清空重做栈
func (m *Manager) Add(op model.Operation) uuid.UUID {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now()
	}

	m.undoStack = append(m.undoStack, op)
	if len(m.undoStack) > m.maxSize {
		m.undoStack = m.undoStack[1:]
	}
	m.redoStack = m.redoStack[:0]

	m.persist()
	return op.ID
}

// Undo 撤销最近一次操作
// 栈空、栈顶不可撤销、未绑定回放方或回放失败时返回 false，状态不变
func (m *Manager) Undo() bool {
	if len(m.undoStack) == 0 || m.applier == nil {
		return false
	}
	top := m.undoStack[len(m.undoStack)-1]
	if !top.Undoable {
		return false
	}

	if err := m.applier.ApplyOperation(top, true); err != nil {
		m.log.UndoFailed(top.ID.String(), err)
		return false
	}

	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.redoStack = append(m.redoStack, top)
	m.persist()
	return true
}

// Redo 重做最近一次被撤销的操作
func (m *Manager) Redo() bool {
	if len(m.redoStack) == 0 || m.applier == nil {
		return false
	}
	top := m.redoStack[len(m.redoStack)-1]

	if err := m.applier.ApplyOperation(top, false); err != nil {
		m.log.RedoFailed(top.ID.String(), err)
		return false
	}

	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.undoStack = append(m.undoStack, top)
	m.persist()
	return true
}

// Clear 清空全部历史
func (m *Manager) Clear() {
	m.undoStack = m.undoStack[:0]
	m.redoStack = m.redoStack[:0]
	if m.store != nil && m.key != "" {
		store, key := m.store, m.key
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := store.Remove(ctx, key); err != nil {
				m.log.PersistenceFailure(key, err)
			}
		}()
	}
}

// Count 返回撤销栈长度
func (m *Manager) Count() int {
	return len(m.undoStack)
}

// CanUndo 检查是否可撤销
func (m *Manager) CanUndo() bool {
	return len(m.undoStack) > 0 && m.undoStack[len(m.undoStack)-1].Undoable
}

// CanRedo 检查是否可重做
func (m *Manager) CanRedo() bool {
	return len(m.redoStack) > 0
}

// Oldest 返回撤销栈中最旧的操作，栈空时返回 false
func (m *Manager) Oldest() (model.Operation, bool) {
	if len(m.undoStack) == 0 {
		return model.Operation{}, false
	}
	return m.undoStack[0], true
}

// persist 尽力而为地保存历史快照，失败只记日志
// 发后即忘：快照在交互线程上导出，写入在后台带超时进行，慢存储不阻塞后续变更
func (m *Manager) persist() {
	if m.store == nil || m.key == "" {
		return
	}
	data, err := m.Export()
	if err != nil {
		m.log.PersistenceFailure(m.key, err)
		return
	}

	store, key, ttl := m.store, m.key, m.ttl
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := store.Set(ctx, key, data, ttl); err != nil {
			m.log.PersistenceFailure(key, err)
		}
	}()
}
