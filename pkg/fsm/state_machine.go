// Package fsm 提供单活动状态的有限状态机
//
// 状态生命周期：ChangeState(new) 依次调用 current.Exit()、切换 current、new.Enter()。
// 状态在 Update 中请求切换后应立即 return，不再访问自身字段。
package fsm

// State 状态接口
type State interface {
	Enter()
	Update(dt float64)
	Exit()
}

// Named 可选接口：提供用于日志与遥测的状态名
type Named interface {
	Name() string
}

// NameOf 返回状态名，未实现 Named 时返回 "<unnamed>"
func NameOf(s State) string {
	if s == nil {
		return "<none>"
	}
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "<unnamed>"
}

// TransitionHook 状态切换回调（在新状态 Enter 之前调用）
type TransitionHook func(from, to State)

// StateMachine 持有至多一个活动状态
type StateMachine struct {
	current      State
	transitions  int
	OnTransition TransitionHook
}

// New 创建空状态机
func New() *StateMachine {
	return &StateMachine{}
}

// Current 当前活动状态（可能为 nil）
func (m *StateMachine) Current() State {
	return m.current
}

// Transitions 累计切换次数
func (m *StateMachine) Transitions() int {
	return m.transitions
}

// ChangeState 切换到新状态
//
// 新状态在 Enter 之前即成为 current，因此 Enter 内部再次调用 ChangeState
// 会先正确地 Exit 这个新状态，而不会重复 Exit 旧状态。
func (m *StateMachine) ChangeState(next State) {
	prev := m.current
	if prev != nil {
		prev.Exit()
	}
	m.current = next
	m.transitions++
	if m.OnTransition != nil {
		m.OnTransition(prev, next)
	}
	if next != nil {
		next.Enter()
	}
}

// Update 转发到当前状态
func (m *StateMachine) Update(dt float64) {
	if m.current != nil {
		m.current.Update(dt)
	}
}

// Stop 退出当前状态并清空（不触发 OnTransition）
func (m *StateMachine) Stop() {
	if m.current != nil {
		prev := m.current
		m.current = nil
		prev.Exit()
	}
}

// Is 当前状态是否为类型 T
func Is[T State](m *StateMachine) bool {
	_, ok := m.current.(T)
	return ok
}

// As 以类型 T 取出当前状态
func As[T State](m *StateMachine) (T, bool) {
	s, ok := m.current.(T)
	return s, ok
}
