// Package task 提供按帧推进、可取消的多帧脚本任务
//
// 跳跃弧线、受击闪烁这类跨多帧的脚本序列在每个 NPC 自己的 Runner 上运行。
// 状态 Exit 或 NPC 回收时取消令牌，被取消的任务不会再被推进，
// 因此任务步骤永远不会触碰已销毁或已回收的 NPC。
package task

// Step 任务的单帧步骤，返回 true 表示任务完成
type Step func(dt float64) bool

type entry struct {
	id        uint64
	step      Step
	cancelled bool
	done      bool
}

// Runner 单个 NPC 的任务调度器（单线程，随 NPC 的 tick 推进）
type Runner struct {
	nextID  uint64
	tasks   []*entry
	ticking bool
}

// NewRunner 创建任务调度器
func NewRunner() *Runner {
	return &Runner{}
}

// Token 任务取消令牌
// 零值令牌无效，Cancel 为空操作
type Token struct {
	e *entry
}

// Cancel 取消任务；对已完成或已取消的任务无效果
func (t Token) Cancel() {
	if t.e != nil {
		t.e.cancelled = true
	}
}

// Valid 任务仍在运行（未完成且未取消）
func (t Token) Valid() bool {
	return t.e != nil && !t.e.cancelled && !t.e.done
}

// Start 启动任务，下一次 Tick 开始推进
func (r *Runner) Start(step Step) Token {
	r.nextID++
	e := &entry{id: r.nextID, step: step}
	r.tasks = append(r.tasks, e)
	return Token{e: e}
}

// Tick 推进所有有效任务一帧
// 任务步骤中启动的新任务从下一次 Tick 开始推进
func (r *Runner) Tick(dt float64) {
	r.ticking = true
	n := len(r.tasks)
	for i := 0; i < n; i++ {
		e := r.tasks[i]
		if e.cancelled || e.done {
			continue
		}
		if e.step(dt) {
			e.done = true
		}
	}
	r.ticking = false
	r.compact()
}

// CancelAll 取消所有任务（NPC 回收 / 禁用时调用）
func (r *Runner) CancelAll() {
	for _, e := range r.tasks {
		e.cancelled = true
	}
	if !r.ticking {
		r.compact()
	}
}

// Active 返回仍在运行的任务数
func (r *Runner) Active() int {
	count := 0
	for _, e := range r.tasks {
		if !e.cancelled && !e.done {
			count++
		}
	}
	return count
}

func (r *Runner) compact() {
	kept := r.tasks[:0]
	for _, e := range r.tasks {
		if !e.cancelled && !e.done {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(r.tasks); i++ {
		r.tasks[i] = nil
	}
	r.tasks = kept
}
