package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationType 操作类型
type OperationType string

const (
	OpMove     OperationType = "move"      // 单条课程移动
	OpSwap     OperationType = "swap"      // 调课（多步移动）
	OpSetFixed OperationType = "set_fixed" // 设置/取消固定
	OpGenerate OperationType = "generate"  // 整表替换（保留完整快照）
	OpBatch    OperationType = "batch"     // 批量操作
)

// OperationPayload 操作负载，按操作类型区分的具体结构
type OperationPayload interface {
	payloadType() OperationType
}

// MovePayload 移动操作负载（前后槽位差量）
type MovePayload struct {
	ClassID   int64    `json:"class_id"`
	SubjectID int64    `json:"subject_id"`
	TeacherID int64    `json:"teacher_id"`
	WeekType  WeekType `json:"week_type,omitempty"`
	FromSlot  TimeSlot `json:"from_slot"`
	ToSlot    TimeSlot `json:"to_slot"`
}

func (MovePayload) payloadType() OperationType { return OpMove }

// SwapPayload 调课操作负载
type SwapPayload struct {
	Moves []SwapMove `json:"moves"`
}

func (SwapPayload) payloadType() OperationType { return OpSwap }

// SetFixedPayload 固定标志变更负载
type SetFixedPayload struct {
	ClassID   int64    `json:"class_id"`
	SubjectID int64    `json:"subject_id"`
	TeacherID int64    `json:"teacher_id"`
	WeekType  WeekType `json:"week_type,omitempty"`
	Slot      TimeSlot `json:"slot"`
	Prev      bool     `json:"prev"`
	Next      bool     `json:"next"`
}

func (SetFixedPayload) payloadType() OperationType { return OpSetFixed }

// GeneratePayload 整表替换负载，前后完整快照
type GeneratePayload struct {
	Before *Schedule `json:"before"`
	After  *Schedule `json:"after"`
}

func (GeneratePayload) payloadType() OperationType { return OpGenerate }

// BatchPayload 批量操作负载，撤销时按逆序回滚
type BatchPayload struct {
	Operations []Operation `json:"operations"`
}

func (BatchPayload) payloadType() OperationType { return OpBatch }

// Operation 一次已执行的变更，仅由变更执行器创建
type Operation struct {
	ID          uuid.UUID        `json:"id"`
	Type        OperationType    `json:"type"`
	Description string           `json:"description"`
	Payload     OperationPayload `json:"payload"`
	Undoable    bool             `json:"undoable"`
	Timestamp   time.Time        `json:"timestamp"`
}

// operationJSON 序列化信封，负载按类型延迟解析
type operationJSON struct {
	ID          uuid.UUID       `json:"id"`
	Type        OperationType   `json:"type"`
	Description string          `json:"description"`
	Payload     json.RawMessage `json:"payload"`
	Undoable    bool            `json:"undoable"`
	Timestamp   time.Time       `json:"timestamp"`
}

// MarshalJSON 实现操作的带类型标签序列化
func (o Operation) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	if o.Payload != nil {
		data, err := json.Marshal(o.Payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(operationJSON{
		ID:          o.ID,
		Type:        o.Type,
		Description: o.Description,
		Payload:     raw,
		Undoable:    o.Undoable,
		Timestamp:   o.Timestamp,
	})
}

// UnmarshalJSON 按类型标签还原具体负载
func (o *Operation) UnmarshalJSON(data []byte) error {
	var env operationJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	o.ID = env.ID
	o.Type = env.Type
	o.Description = env.Description
	o.Undoable = env.Undoable
	o.Timestamp = env.Timestamp
	o.Payload = nil

	if len(env.Payload) == 0 {
		return nil
	}

	switch env.Type {
	case OpMove:
		var p MovePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		o.Payload = p
	case OpSwap:
		var p SwapPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		o.Payload = p
	case OpSetFixed:
		var p SetFixedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		o.Payload = p
	case OpGenerate:
		var p GeneratePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		o.Payload = p
	case OpBatch:
		var p BatchPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		o.Payload = p
	default:
		return fmt.Errorf("未知的操作类型: %s", env.Type)
	}

	return nil
}

// ValidType 检查操作类型是否合法
func (o *Operation) ValidType() bool {
	switch o.Type {
	case OpMove, OpSwap, OpSetFixed, OpGenerate, OpBatch:
		return true
	default:
		return false
	}
}
