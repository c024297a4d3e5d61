package behavior

import (
	"log"
	"math/rand"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/navmesh"
	"github.com/decker502/wildlife/pkg/spatial"
	"github.com/decker502/wildlife/pkg/systems"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// 日志输出间隔常量
const LogOutputFrameInterval = 100 // 日志输出间隔（每N帧输出一次）

// NeighborQuery 按半径查询附近 NPC（结果写入调用方缓冲区）
type NeighborQuery interface {
	Query(center utils.Vec3, radius float64, buf []spatial.Entry) []spatial.Entry
}

// TransitionFunc 状态切换通知（日志、遥测）
type TransitionFunc func(id ecs.EntityID, from, to string)

// BehaviorSystem NPC 行为控制器
//
// 每帧按固定顺序处理每个 NPC：
// 死亡检查 → 任务推进 → 锁定状态（击退、冲锋、扑击、空中跳跃）→ 冷却递减
// → 挑衅结算 → 跳跃会话安全阀 → 跳跃者侦测 → 状态机思考（受 LOD 限频）→ 卡死看门狗。
type BehaviorSystem struct {
	entityManager *ecs.EntityManager
	mesh          navmesh.Mesh
	neighbors     NeighborQuery
	players       systems.PlayerSource
	rng           *rand.Rand

	now             float64
	logFrameCounter int

	// Verbose 输出每一次状态切换
	Verbose bool

	// OnTransition 状态切换回调（可选）
	OnTransition TransitionFunc

	// DespawnHandler 死亡延迟结束后回收实体；为空时直接销毁实体
	DespawnHandler func(id ecs.EntityID)
}

// NewBehaviorSystem 创建行为系统
// 参数:
//   - em: EntityManager 实例
//   - mesh: 导航网格查询
//   - neighbors: 邻居查询（通常是 SpatialIndexSystem 的网格）
//   - players: 玩家引用（只读）
//   - rng: 随机源，为 nil 时使用固定种子
func NewBehaviorSystem(em *ecs.EntityManager, mesh navmesh.Mesh, neighbors NeighborQuery, players systems.PlayerSource, rng *rand.Rand) *BehaviorSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &BehaviorSystem{
		entityManager: em,
		mesh:          mesh,
		neighbors:     neighbors,
		players:       players,
		rng:           rng,
	}
}

// Now 模拟时间（秒）
func (s *BehaviorSystem) Now() float64 {
	return s.now
}

// Update 推进所有 NPC 一帧
func (s *BehaviorSystem) Update(dt float64) {
	s.now += dt

	entities := ecs.GetEntitiesWith3[*components.AgentComponent, *components.BrainComponent, *components.TransformComponent](s.entityManager)
	if len(entities) > 0 {
		s.logFrameCounter++
		if s.logFrameCounter%LogOutputFrameInterval == 1 {
			log.Printf("[BehaviorSystem] 更新 %d 个 NPC (t=%.1fs)", len(entities), s.now)
		}
	}

	for _, id := range entities {
		s.tickAgent(id, dt)
	}
}

// lockable 锁定状态：执行期间跳过其余决策逻辑
type lockable interface {
	Locked() bool
}

// stuckHandler 自带卡死处理的状态，全局看门狗不介入
type stuckHandler interface {
	HandlesStuck() bool
}

func (s *BehaviorSystem) tickAgent(id ecs.EntityID, dt float64) {
	c, ok := s.lookup(id)
	if !ok || c.agent.Despawned {
		return
	}
	a := c.agent
	t := &a.Tuning
	m := c.brain.Machine

	// 1. 死亡抢占一切
	if c.health.IsDead {
		if !fsm.Is[*DeadState](m) {
			s.changeState(c, s.newDead(id))
			return
		}
		c.brain.StateTime += dt
		m.Update(dt)
		return
	}

	if c.lod.Bucket == types.LODCull {
		return
	}

	// 2. 多帧脚本任务
	a.Tasks.Tick(dt)
	c.brain.StateTime += dt

	// 3. 锁定状态
	if isLocked(m.Current()) {
		m.Update(dt)
		s.trackStuckPosition(c)
		return
	}

	// 4. 冷却
	if a.AttackCooldown > 0 {
		a.AttackCooldown -= dt
	}
	if a.ChargeCooldownActive {
		a.ChargeCooldownTimer -= dt
		if a.ChargeCooldownTimer <= 0 {
			a.ChargeCooldownActive = false
			a.ChargeCooldownTimer = 0
			a.ChargeAttempts = 0
		}
	}

	// 5. 挑衅：延迟结束且已拉开距离后转为追击
	if a.Provoked {
		a.ProvokedTimer -= dt
		p, hasPlayer := s.player()
		if !hasPlayer {
			a.Provoked = false
		} else if a.ProvokedTimer <= 0 && utils.DistFlat(c.transform.Position, p.pos) >= t.FleeRange {
			a.Provoked = false
			a.ProvokedTimer = 0
			s.changeState(c, s.newChase(id))
			return
		}
	}

	// 6. 跳跃会话安全阀
	if a.JumpSessionActive && s.now >= a.JumpSessionDeadline &&
		!fsm.Is[*PerchRestState](m) && !fsm.Is[*JumpReturnHomeState](m) {
		log.Printf("[BehaviorSystem] 实体 %d 跳跃会话超时，强制返回栖息点", id)
		s.changeState(c, s.newJumpReturnHome(id))
		return
	}

	// 7. 跳跃者侦测（PerchRest 自身不做侦测）
	if a.Archetype == types.ArchetypeJumper && fsm.Is[*PerchRestState](m) && c.brain.StateTime >= t.RestDurationMin {
		if p, ok := s.player(); ok && utils.DistFlat(c.transform.Position, p.pos) <= t.JumpDetectionRange {
			s.changeState(c, s.newJumpAttack(id))
			return
		}
	}

	// 8. 思考（LOD 限频）
	lod := c.lod
	lod.PendingDt += dt
	lod.ThinkTimer -= dt
	if lod.ThinkTimer <= 0 {
		step := lod.PendingDt
		lod.PendingDt = 0
		lod.ThinkTimer = lod.ThinkInterval
		m.Update(step)
	}

	// 9. 卡死看门狗（不受思考限频影响）
	if cur := m.Current(); isLocked(cur) || handlesStuck(cur) {
		s.trackStuckPosition(c)
		return
	}
	s.watchStuck(c, dt)
}

func isLocked(st fsm.State) bool {
	l, ok := st.(lockable)
	return ok && l.Locked()
}

func handlesStuck(st fsm.State) bool {
	h, ok := st.(stuckHandler)
	return ok && h.HandlesStuck()
}

// changeState 切换 NPC 状态并清零状态计时
func (s *BehaviorSystem) changeState(c *agentCtx, next fsm.State) {
	c.brain.StateTime = 0
	c.brain.Machine.ChangeState(next)
}

// changeStateByID 用于切换其他 NPC 的状态（群猎召集）
func (s *BehaviorSystem) changeStateByID(id ecs.EntityID, next func(ecs.EntityID) fsm.State) bool {
	c, ok := s.lookup(id)
	if !ok || c.agent.Despawned {
		return false
	}
	s.changeState(c, next(id))
	return true
}

// StateName 返回 NPC 当前状态名（调试显示、统计）
func (s *BehaviorSystem) StateName(id ecs.EntityID) string {
	brain, ok := ecs.GetComponent[*components.BrainComponent](s.entityManager, id)
	if !ok {
		return fsm.NameOf(nil)
	}
	return fsm.NameOf(brain.Machine.Current())
}

// Hit 对 NPC 造成伤害并施加击退（未致死时）
func (s *BehaviorSystem) Hit(id ecs.EntityID, amount float64, impulse utils.Vec3) {
	if systems.ApplyDamage(s.entityManager, id, amount) {
		return
	}
	s.ApplyKnockback(id, impulse)
}

// ApplyKnockback 击退打断，按原型分派：
//   - 可挑衅原型：置挑衅标记，先逃跑，延迟结束后反击
//   - 冲锋原型：无条件重新蓄力
//   - 栖息/空中的跳跃者：忽略
//   - 其余：短暂的击退位移状态
func (s *BehaviorSystem) ApplyKnockback(id ecs.EntityID, impulse utils.Vec3) {
	c, ok := s.lookup(id)
	if !ok || c.agent.Despawned || c.health.IsDead {
		return
	}
	a := c.agent
	systems.StartFlash(s.entityManager, id, a.Tuning.KnockbackFlashDuration)

	switch c.policy().knockback {
	case knockbackProvoke:
		a.Provoked = true
		a.ProvokedTimer = a.Tuning.RetaliationDelay
		s.changeState(c, s.newFleeSimple(id))
		return
	case knockbackRecharge:
		s.changeState(c, s.newWindup(id))
		return
	case knockbackUnlessAirborne:
		m := c.brain.Machine
		if fsm.Is[*PerchRestState](m) {
			return
		}
		if j, ok := fsm.As[*JumpAttackState](m); ok && j.Locked() {
			return
		}
		if r, ok := fsm.As[*JumpReturnHomeState](m); ok && r.Locked() {
			return
		}
	}

	a.KnockbackVector = impulse.Flat()
	a.KnockbackTimer = a.Tuning.KnockbackDuration
	s.changeState(c, s.newKnockback(id))
}

// despawn 死亡延迟结束：取消后台任务后交给回收方
func (s *BehaviorSystem) despawn(id ecs.EntityID) {
	s.OnDespawned(id)
	if s.DespawnHandler != nil {
		s.DespawnHandler(id)
		return
	}
	s.entityManager.DestroyEntity(id)
}
