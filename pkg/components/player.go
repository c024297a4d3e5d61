package components

import "github.com/decker502/wildlife/pkg/utils"

// PlayerComponent 被追踪的玩家
// 速度由 PlayerTracker 根据位置差平滑得到，供预测追击与逃跑使用
type PlayerComponent struct {
	SmoothedVelocity utils.Vec3
	LastPosition     utils.Vec3
	HasLastPosition  bool

	// MoveTarget 玩家移动目标（调试视图点击设置），无目标时为 nil
	MoveTarget *utils.Vec3
	MoveSpeed  float64
}
