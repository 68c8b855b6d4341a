// Package repository 提供只读基础数据的数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/rules"
)

// DB 数据库查询接口
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ReferenceRepository 基础数据仓储
// 一次性把字典数据加载进内存，编辑期间作为 rules.ReferenceData 只读提供
type ReferenceRepository struct {
	db DB

	teacherNames   map[int64]string
	classNames     map[int64]string
	subjectNames   map[int64]string
	forbiddenMasks map[int64]model.SlotMask
	blockedMasks   map[int64]model.SlotMask
	biases         map[int64]rules.TimeBias
	exclusions     []rules.MutualExclusion
}

var _ rules.ReferenceData = (*ReferenceRepository)(nil)

// NewReferenceRepository 创建基础数据仓储
func NewReferenceRepository(db DB) *ReferenceRepository {
	return &ReferenceRepository{
		db:             db,
		teacherNames:   make(map[int64]string),
		classNames:     make(map[int64]string),
		subjectNames:   make(map[int64]string),
		forbiddenMasks: make(map[int64]model.SlotMask),
		blockedMasks:   make(map[int64]model.SlotMask),
		biases:         make(map[int64]rules.TimeBias),
	}
}

// LoadAll 加载全部字典数据
// 网格尺寸变化后必须重新调用并校验掩码
func (r *ReferenceRepository) LoadAll(ctx context.Context, cycleDays, periodsPerDay int) error {
	if err := r.loadSubjects(ctx, cycleDays, periodsPerDay); err != nil {
		return err
	}
	if err := r.loadTeachers(ctx, cycleDays, periodsPerDay); err != nil {
		return err
	}
	if err := r.loadClasses(ctx); err != nil {
		return err
	}
	return r.loadExclusions(ctx)
}

// loadSubjects 加载科目字典与禁排掩码
func (r *ReferenceRepository) loadSubjects(ctx context.Context, cycleDays, periodsPerDay int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(forbidden_mask, '0')
		FROM subjects
		WHERE deleted_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("查询科目字典失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name, maskStr string
		if err := rows.Scan(&id, &name, &maskStr); err != nil {
			return fmt.Errorf("扫描科目记录失败: %w", err)
		}
		mask, err := model.ParseSlotMask(maskStr)
		if err != nil {
			return fmt.Errorf("科目%d: %w", id, err)
		}
		if !mask.Validate(cycleDays, periodsPerDay) {
			return fmt.Errorf("科目%d的禁排掩码超出网格范围，需要重新配置", id)
		}
		r.subjectNames[id] = name
		r.forbiddenMasks[id] = mask
	}
	return rows.Err()
}

// loadTeachers 加载教师字典、不排课掩码与节次偏好
func (r *ReferenceRepository) loadTeachers(ctx context.Context, cycleDays, periodsPerDay int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(blocked_mask, '0'), COALESCE(time_bias, '')
		FROM teachers
		WHERE deleted_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("查询教师字典失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name, maskStr, bias string
		if err := rows.Scan(&id, &name, &maskStr, &bias); err != nil {
			return fmt.Errorf("扫描教师记录失败: %w", err)
		}
		mask, err := model.ParseSlotMask(maskStr)
		if err != nil {
			return fmt.Errorf("教师%d: %w", id, err)
		}
		if !mask.Validate(cycleDays, periodsPerDay) {
			return fmt.Errorf("教师%d的不排课掩码超出网格范围，需要重新配置", id)
		}
		r.teacherNames[id] = name
		r.blockedMasks[id] = mask
		r.biases[id] = rules.TimeBias(bias)
	}
	return rows.Err()
}

// loadClasses 加载班级字典
func (r *ReferenceRepository) loadClasses(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name
		FROM classes
		WHERE deleted_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("查询班级字典失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("扫描班级记录失败: %w", err)
		}
		r.classNames[id] = name
	}
	return rows.Err()
}

// loadExclusions 加载教师互斥规则
func (r *ReferenceRepository) loadExclusions(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT teacher_a, teacher_b, scope, COALESCE(slots, '[]')
		FROM teacher_exclusions
		WHERE deleted_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("查询互斥规则失败: %w", err)
	}
	defer rows.Close()

	r.exclusions = r.exclusions[:0]
	for rows.Next() {
		var rule rules.MutualExclusion
		var scope string
		var slotsJSON []byte
		if err := rows.Scan(&rule.TeacherA, &rule.TeacherB, &scope, &slotsJSON); err != nil {
			return fmt.Errorf("扫描互斥规则失败: %w", err)
		}
		rule.Scope = rules.ExclusionScope(scope)
		if rule.Scope == rules.ExclusionSpecificSlots {
			if err := json.Unmarshal(slotsJSON, &rule.Slots); err != nil {
				return fmt.Errorf("解析互斥槽位失败: %w", err)
			}
		}
		r.exclusions = append(r.exclusions, rule)
	}
	return rows.Err()
}

// ForbiddenMask 实现 rules.ReferenceData
func (r *ReferenceRepository) ForbiddenMask(subjectID int64) model.SlotMask {
	return r.forbiddenMasks[subjectID]
}

// BlockedMask 实现 rules.ReferenceData
func (r *ReferenceRepository) BlockedMask(teacherID int64) model.SlotMask {
	return r.blockedMasks[teacherID]
}

// Bias 实现 rules.ReferenceData
func (r *ReferenceRepository) Bias(teacherID int64) rules.TimeBias {
	return r.biases[teacherID]
}

// Exclusions 实现 rules.ReferenceData
func (r *ReferenceRepository) Exclusions(teacherID int64) []rules.MutualExclusion {
	var result []rules.MutualExclusion
	for _, rule := range r.exclusions {
		if _, ok := rule.Other(teacherID); ok {
			result = append(result, rule)
		}
	}
	return result
}

// TeacherName 返回教师名称，未知ID返回空串
func (r *ReferenceRepository) TeacherName(id int64) string {
	return r.teacherNames[id]
}

// ClassName 返回班级名称
func (r *ReferenceRepository) ClassName(id int64) string {
	return r.classNames[id]
}

// SubjectName 返回科目名称
func (r *ReferenceRepository) SubjectName(id int64) string {
	return r.subjectNames[id]
}
