package swap

import (
	"context"
	"fmt"

	"github.com/paike/paike/pkg/model"
)

// 链式调整至少包含的移动步数
const chainMinMoves = 4

// chainSearch 链式调整的有界迭代加深搜索
// 图的节点是课表记录，边表示“若 Y 腾出槽位则 X 可以占用”
// 每条路径维护独立的已访问集合保证无环，探索计数上限保证确定性终止
type chainSearch struct {
	searcher *Searcher
	schedule *model.Schedule
	target   *model.ScheduleEntry
	desired  model.TimeSlot

	maxExplored int
	explored    int
	limit       int // 当前迭代的移动步数上限

	results   []model.SwapSuggestion
	maxChains int
	cancelled bool
}

// findChains 搜索链式调整建议
// 迭代加深：每轮只收集恰好等于当前步数上限的环，避免跨轮重复
func (sr *Searcher) findChains(ctx context.Context, s *model.Schedule, target *model.ScheduleEntry, desired model.TimeSlot, blockers []*model.ScheduleEntry, opts *Options) ([]model.SwapSuggestion, bool) {
	if opts.ChainMaxDepth < chainMinMoves {
		return nil, false
	}

	cs := &chainSearch{
		searcher:    sr,
		schedule:    s,
		target:      target,
		desired:     desired,
		maxExplored: opts.MaxExplored,
		maxChains:   opts.MaxSuggestions,
	}

	for limit := chainMinMoves; limit <= opts.ChainMaxDepth; limit++ {
		cs.limit = limit
		for _, b := range blockers {
			if b.IsFixed {
				continue
			}
			visited := map[*model.ScheduleEntry]bool{target: true, b: true}
			moves := []model.SwapMove{moveOf(target, desired)}
			cs.extend(ctx, moves, b, visited)
			if cs.done() {
				return cs.results, cs.cancelled
			}
		}
	}
	return cs.results, cs.cancelled
}

// done 检查搜索是否应当停止
func (cs *chainSearch) done() bool {
	return cs.cancelled || cs.explored > cs.maxExplored || len(cs.results) >= cs.maxChains
}

// extend 为被腾出槽位的 displaced 记录寻找去处
// moves 已含前序移动；displaced 的落点尚未确定
func (cs *chainSearch) extend(ctx context.Context, moves []model.SwapMove, displaced *model.ScheduleEntry, visited map[*model.ScheduleEntry]bool) {
	// 每次迭代检查协作取消，保证搜索可被及时取代
	if ctx.Err() != nil {
		cs.cancelled = true
		return
	}
	cs.explored++
	if cs.done() {
		return
	}

	steps := len(moves) + 1 // displaced 落位后的总步数

	// 闭环：displaced 回到目标课程腾出的原槽位
	if steps == cs.limit {
		closing := append(append([]model.SwapMove{}, moves...), moveOf(displaced, cs.target.Slot))
		if sug, ok := cs.searcher.buildSuggestion(cs.schedule, model.SwapChain, closing,
			fmt.Sprintf("链式调整（%d步）", steps)); ok {
			cs.results = append(cs.results, sug)
		}
		return
	}

	// 继续扩展：displaced 占用下一个记录的槽位，将其挤出
	for _, next := range cs.schedule.Entries {
		if cs.done() {
			return
		}
		if next.IsFixed || visited[next] {
			continue
		}
		if next.Slot == displaced.Slot || next.Slot == cs.desired {
			continue
		}
		if !cs.canHop(moves, displaced, next) {
			continue
		}

		visited[next] = true
		cs.extend(ctx, append(append([]model.SwapMove{}, moves...), moveOf(displaced, next.Slot)), next, visited)
		delete(visited, next)
	}
}

// canHop 检查在已执行前序移动且 next 腾出槽位的前提下，displaced 能否合法占用 next 的槽位
func (cs *chainSearch) canHop(moves []model.SwapMove, displaced, next *model.ScheduleEntry) bool {
	working, ok := applyMoves(cs.schedule, moves)
	if !ok {
		return false
	}
	if !working.RemoveEntry(displaced) || !working.RemoveEntry(next) {
		return false
	}
	candidate := *displaced
	return !cs.searcher.eval.Evaluate(working, &candidate, next.Slot).Blocked()
}
