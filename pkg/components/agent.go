package components

import (
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/task"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// AgentComponent NPC 的行为上下文：可调参数 + 运行时字段
//
// 由单个 NPC 独占。运行时字段只由行为系统修改；
// 回收/重生时必须通过 ResetRuntime 整体重置，不允许部分重置。
type AgentComponent struct {
	// ===== 身份 =====
	Archetype types.Archetype
	Species   string // 同种判定（集群、群猎、休息间距）

	// SpawnOrigin 出生点（家），生成后不可变
	SpawnOrigin utils.Vec3

	// Tuning 可调参数（只读）
	Tuning config.AgentTuning

	// Tasks 多帧脚本任务（跳跃弧线等）
	Tasks *task.Runner

	// ===== 运行时字段 =====

	// AttackCooldown 攻击冷却剩余时间
	AttackCooldown float64

	// 击退：剩余时间与总位移（KnockbackState 按时间分摊位移）
	KnockbackTimer  float64
	KnockbackVector utils.Vec3

	// 挑衅（Aggressive2 受击后先逃后反击）
	Provoked      bool
	ProvokedTimer float64

	// 冲锋
	ChargeAttempts       int
	ChargeCooldownActive bool
	ChargeCooldownTimer  float64

	// 跳跃会话（绝对时间截止）
	JumpSessionActive   bool
	JumpSessionDeadline float64

	// PackAttackReadyAt 群猎扑击可再次触发的绝对时间
	PackAttackReadyAt float64

	// 目的地节流
	LastDestination     utils.Vec3
	LastDestinationTime float64
	HasLastDestination  bool

	// Despawned 已回收，行为系统跳过该实体
	Despawned bool
}

// ResetRuntime 重置全部运行时字段并取消所有后台任务
func (a *AgentComponent) ResetRuntime() {
	if a.Tasks == nil {
		a.Tasks = task.NewRunner()
	}
	a.Tasks.CancelAll()

	a.AttackCooldown = 0
	a.KnockbackTimer = 0
	a.KnockbackVector = utils.Vec3{}
	a.Provoked = false
	a.ProvokedTimer = 0
	a.ChargeAttempts = 0
	a.ChargeCooldownActive = false
	a.ChargeCooldownTimer = 0
	a.JumpSessionActive = false
	a.JumpSessionDeadline = 0
	a.PackAttackReadyAt = 0
	a.LastDestination = utils.Vec3{}
	a.LastDestinationTime = 0
	a.HasLastDestination = false
	a.Despawned = false
}
