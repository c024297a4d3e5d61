package systems

import (
	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/utils"
)

// PlayerVelocitySmoothing 玩家速度指数平滑速率
const PlayerVelocitySmoothing = 8.0

// PlayerTracker 唯一有权改变“当前玩家”引用的系统
//
// 行为层通过 Player() 只读地获取玩家句柄；
// 玩家实体被销毁或死亡后视为缺席。
type PlayerTracker struct {
	entityManager *ecs.EntityManager
	playerID      ecs.EntityID
	hasPlayer     bool
}

// NewPlayerTracker 创建玩家追踪系统
func NewPlayerTracker(em *ecs.EntityManager) *PlayerTracker {
	return &PlayerTracker{entityManager: em}
}

// SetPlayer 设置被追踪的玩家
func (s *PlayerTracker) SetPlayer(id ecs.EntityID) {
	s.playerID = id
	s.hasPlayer = true
}

// ClearPlayer 清除玩家引用
func (s *PlayerTracker) ClearPlayer() {
	s.playerID = ecs.InvalidEntity
	s.hasPlayer = false
}

// Player 返回当前玩家（存在且存活时）
func (s *PlayerTracker) Player() (ecs.EntityID, bool) {
	if !s.hasPlayer || !s.entityManager.Exists(s.playerID) {
		return ecs.InvalidEntity, false
	}
	if health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, s.playerID); ok && health.IsDead {
		return ecs.InvalidEntity, false
	}
	return s.playerID, true
}

// Update 推进玩家移动目标并更新平滑速度与朝向
func (s *PlayerTracker) Update(dt float64) {
	id, ok := s.Player()
	if !ok || dt <= 0 {
		return
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		return
	}
	player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, id)
	if !ok {
		return
	}

	if player.MoveTarget != nil {
		target := *player.MoveTarget
		target.Y = transform.Position.Y
		transform.Position = utils.MoveTowards(transform.Position, target, player.MoveSpeed*dt)
		if utils.DistFlat(transform.Position, target) < 0.05 {
			player.MoveTarget = nil
		}
	}

	if !player.HasLastPosition {
		player.LastPosition = transform.Position
		player.HasLastPosition = true
		return
	}

	raw := transform.Position.Sub(player.LastPosition).Flat().Scale(1 / dt)
	player.LastPosition = transform.Position
	k := utils.ExpSmoothing(PlayerVelocitySmoothing, dt)
	player.SmoothedVelocity = player.SmoothedVelocity.Add(raw.Sub(player.SmoothedVelocity).Scale(k))
	if !raw.IsZero() {
		transform.Forward = raw.FlatNormalize()
	}
}
