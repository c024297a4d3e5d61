// Package navmesh 定义行为层消费的导航服务契约，并提供基于网格的实现
//
// 行为层只通过 Mesh 与 Agent 两个接口访问导航：
//   - Mesh：静态查询（采样最近可行走点、最近边界）
//   - Agent：单个 NPC 的寻路代理（目的地、路径状态、瞬移、速度）
//
// FieldMesh / FieldAgent 是网格 A* 的参考实现，供演示与无头运行使用；
// 测试中可以用任意满足接口的替身代替。
package navmesh

import "github.com/decker502/wildlife/pkg/utils"

// EdgeHit 最近边界查询结果
type EdgeHit struct {
	// Position 边界上离查询点最近的点
	Position utils.Vec3
	// Distance 查询点到边界的水平距离
	Distance float64
	// Normal 边界法线（水平、单位长度，指向可行走区域内侧）
	Normal utils.Vec3
}

// Mesh 导航网格查询
type Mesh interface {
	// SamplePosition 在 maxDist 范围内寻找离 p 最近的可行走点
	SamplePosition(p utils.Vec3, maxDist float64) (utils.Vec3, bool)
	// FindClosestEdge 寻找离 p 最近的导航网格边界
	FindClosestEdge(p utils.Vec3) (EdgeHit, bool)
}

// Agent 单个 NPC 的寻路代理
type Agent interface {
	// SetDestination 请求新目的地，返回请求是否被接受
	SetDestination(p utils.Vec3) bool
	// ResetPath 清除当前路径
	ResetPath()
	// HasCompletePath 从当前位置到 p 是否存在完整路径
	HasCompletePath(p utils.Vec3) bool
	// Warp 瞬移到 p（p 必须在网格上）
	Warp(p utils.Vec3) bool

	Destination() utils.Vec3
	HasPath() bool
	RemainingDistance() float64
	Velocity() utils.Vec3
	PathPending() bool
	IsOnNavMesh() bool

	Enabled() bool
	SetEnabled(enabled bool)
	Speed() float64
	SetSpeed(speed float64)
	SetUpdateRotation(enabled bool)
	SetStopped(stopped bool)
	IsStopped() bool
}

// Stepper 由移动系统每帧推进的代理
type Stepper interface {
	Step(dt float64)
}
