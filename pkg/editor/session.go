// Package editor 提供课表交互编辑会话
//
// 会话独占持有一张在用课表，串联约束评估、冲突检测、调课搜索、
// 变更执行与历史管理。单写者模型：同一会话同一时刻只有一次变更在途。
package editor

import (
	"context"
	"time"

	"github.com/paike/paike/pkg/executor"
	"github.com/paike/paike/pkg/history"
	"github.com/paike/paike/pkg/logger"
	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/rules"
	"github.com/paike/paike/pkg/swap"
	"github.com/paike/paike/pkg/validator"
)

// Source 课表来源（加载/生成），由外部生成协作方实现
type Source interface {
	Load(ctx context.Context) (*model.Schedule, error)
}

// Options 会话选项
type Options struct {
	MaxUndo    int           // 撤销栈容量
	Search     *swap.Options // 调课搜索选项
	Store      history.Store // 历史持久化存储，可为空
	HistoryKey string        // 历史存储键
	HistoryTTL time.Duration // 历史存储过期时间
}

// Session 编辑会话
type Session struct {
	schedule *model.Schedule
	detector *validator.Detector
	searcher *swap.Searcher
	exec     *executor.Executor
	hist     *history.Manager
	search   *swap.Options
	log      *logger.EditorLogger
}

// New 创建编辑会话
// ref 为只读基础数据，cost 为外部代价函数，opts 为空时使用默认值
func New(s *model.Schedule, ref rules.ReferenceData, cost rules.CostFunc, opts *Options) *Session {
	if opts == nil {
		opts = &Options{}
	}
	eval := rules.NewEvaluator(ref)

	hist := history.NewManager(opts.MaxUndo)
	if opts.Store != nil && opts.HistoryKey != "" {
		hist.SetStore(opts.Store, opts.HistoryKey, opts.HistoryTTL)
	}

	exec := executor.New(s, eval, cost, hist)
	hist.SetApplier(exec)

	searchOpts := opts.Search
	if searchOpts == nil {
		searchOpts = swap.DefaultOptions()
	}

	return &Session{
		schedule: s,
		detector: validator.NewDetector(eval),
		searcher: swap.NewSearcher(eval, cost),
		exec:     exec,
		hist:     hist,
		search:   searchOpts,
		log:      logger.NewEditorLogger(),
	}
}

// Open 通过课表来源创建编辑会话
func Open(ctx context.Context, src Source, ref rules.ReferenceData, cost rules.CostFunc, opts *Options) (*Session, error) {
	s, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(s, ref, cost, opts), nil
}

// Schedule 返回在用课表
func (sess *Session) Schedule() *model.Schedule {
	return sess.schedule
}

// DetectAll 返回课程在全网格每个槽位的放置评估，供渲染层做冲突蒙层
// 可在未提交的变更进行期间对快照并发调用
func (sess *Session) DetectAll(entry *model.ScheduleEntry) map[model.TimeSlot]model.ConflictInfo {
	return sess.detector.DetectAll(sess.schedule, entry)
}

// SuggestSwaps 为被阻塞的放置搜索调课建议
// 传入的 ctx 被取消时搜索尽快终止，结果丢弃
func (sess *Session) SuggestSwaps(ctx context.Context, classID, teacherID int64, desired model.TimeSlot) []model.SwapSuggestion {
	start := time.Now()
	result := sess.searcher.Suggest(ctx, sess.schedule, classID, teacherID, desired, sess.search)
	sess.log.SearchComplete(len(result), time.Since(start))
	return result
}

// ApplyMove 移动课程并返回移动后的全网格冲突
func (sess *Session) ApplyMove(entry *model.ScheduleEntry, newSlot model.TimeSlot) (map[model.TimeSlot]model.ConflictInfo, error) {
	return sess.exec.ApplyMove(entry, newSlot)
}

// ApplySwap 执行一条调课建议
func (sess *Session) ApplySwap(sug model.SwapSuggestion) error {
	return sess.exec.ApplySwap(sug)
}

// SetFixed 设置或取消课程的固定标志
func (sess *Session) SetFixed(entry *model.ScheduleEntry, fixed bool) error {
	return sess.exec.SetFixed(entry, fixed)
}

// Replace 用外部生成的新快照整体替换课表
func (sess *Session) Replace(snapshot *model.Schedule) error {
	return sess.exec.Replace(snapshot)
}

// Undo 撤销最近一次操作
func (sess *Session) Undo() bool {
	return sess.hist.Undo()
}

// Redo 重做最近一次被撤销的操作
func (sess *Session) Redo() bool {
	return sess.hist.Redo()
}

// CanUndo 工具栏状态：是否可撤销
func (sess *Session) CanUndo() bool {
	return sess.hist.CanUndo()
}

// CanRedo 工具栏状态：是否可重做
func (sess *Session) CanRedo() bool {
	return sess.hist.CanRedo()
}

// HistoryCount 返回历史记录数量
func (sess *Session) HistoryCount() int {
	return sess.hist.Count()
}

// ExportHistory 导出历史
func (sess *Session) ExportHistory() (string, error) {
	return sess.hist.Export()
}

// ImportHistory 导入历史，非法输入返回 false 且状态不变
func (sess *Session) ImportHistory(data string) bool {
	return sess.hist.Import(data)
}

// ClearHistory 清空历史
func (sess *Session) ClearHistory() {
	sess.hist.Clear()
}
