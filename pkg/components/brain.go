package components

import "github.com/decker502/wildlife/pkg/fsm"

// BrainComponent 持有 NPC 的状态机
type BrainComponent struct {
	Machine *fsm.StateMachine

	// StateTime 当前状态已持续的时间（秒）
	StateTime float64
}
