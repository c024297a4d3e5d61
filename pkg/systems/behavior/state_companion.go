package behavior

import (
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/spatial"
	"github.com/decker502/wildlife/pkg/systems"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// companionKnockback 同伴攻击造成的击退距离
const companionKnockback = 1.5

// CompanionFollowState 跟随：直接走向玩家，进入跟随距离后转为待机
type CompanionFollowState struct {
	stateBase
	buf []spatial.Entry
}

func (s *BehaviorSystem) newCompanionFollow(id ecs.EntityID) *CompanionFollowState {
	return &CompanionFollowState{
		stateBase: stateBase{sys: s, id: id},
		buf:       make([]spatial.Entry, 0, neighborCapacity),
	}
}

func (st *CompanionFollowState) Name() string { return "CompanionFollow" }

func (st *CompanionFollowState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.setSpeed(c, c.tuning().RunSpeed)
	st.sys.emitAnim(c, types.AnimRun)
}

func (st *CompanionFollowState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	p, ok := st.sys.player()
	if !ok {
		st.sys.halt(c)
		return
	}
	if target, ok := st.sys.nearestCompanionTarget(c, st.buf); ok {
		st.change(c, st.sys.newCompanionChase(st.id, target))
		return
	}
	if utils.DistFlat(c.pos(), p.pos) <= c.tuning().FollowDistance {
		st.change(c, st.sys.newCompanionIdle(st.id))
		return
	}
	st.sys.setDestinationSmart(c, p.pos, false)
}

func (st *CompanionFollowState) Exit() {}

// CompanionIdleState 待机：围绕玩家随机取环绕点并叠加集群偏移，
// 目标变化小于阈值时不重新寻路
type CompanionIdleState struct {
	stateBase
	orbit     utils.Vec3
	rerollIn  float64
	lastGoal  utils.Vec3
	hasGoal   bool
	targetBuf []spatial.Entry
	flockBuf  []spatial.Entry
}

func (s *BehaviorSystem) newCompanionIdle(id ecs.EntityID) *CompanionIdleState {
	return &CompanionIdleState{
		stateBase: stateBase{sys: s, id: id},
		targetBuf: make([]spatial.Entry, 0, neighborCapacity),
		flockBuf:  make([]spatial.Entry, 0, neighborCapacity),
	}
}

func (st *CompanionIdleState) Name() string { return "CompanionIdle" }

func (st *CompanionIdleState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.setSpeed(c, c.tuning().WalkSpeed)
	st.sys.emitAnim(c, types.AnimWalk)
	st.reroll(c)
	if p, ok := st.sys.player(); ok {
		st.steer(c, p, true)
	}
}

func (st *CompanionIdleState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	p, ok := st.sys.player()
	if !ok {
		st.sys.halt(c)
		return
	}
	if target, ok := st.sys.nearestCompanionTarget(c, st.targetBuf); ok {
		st.change(c, st.sys.newCompanionChase(st.id, target))
		return
	}
	t := c.tuning()
	if utils.DistFlat(c.pos(), p.pos) > t.FollowDistance+t.OrbitRadiusMax {
		st.change(c, st.sys.newCompanionFollow(st.id))
		return
	}

	st.rerollIn -= dt
	if st.rerollIn <= 0 {
		st.reroll(c)
	}

	st.steer(c, p, false)
}

// steer 朝玩家身边的环绕点移动；目标变化不超过 RepathThreshold 时不重新请求
func (st *CompanionIdleState) steer(c *agentCtx, p playerInfo, force bool) {
	t := c.tuning()
	goal := p.pos.Add(st.orbit).Add(st.sys.flockOffset(c, st.flockBuf, t.OrbitRadiusMin))
	if !force && st.hasGoal && utils.DistFlat(goal, st.lastGoal) <= t.RepathThreshold {
		return
	}
	target, ok := st.sys.sample(goal, t.SampleRadius)
	if !ok {
		return
	}
	if st.sys.setDestinationSmart(c, target, force) {
		st.lastGoal = goal
		st.hasGoal = true
	}
}

func (st *CompanionIdleState) Exit() {}

func (st *CompanionIdleState) reroll(c *agentCtx) {
	t := c.tuning()
	radius := utils.RandRange(st.sys.rng, t.OrbitRadiusMin, t.OrbitRadiusMax)
	st.orbit = utils.RandDirection(st.sys.rng).Scale(radius)
	st.rerollIn = t.OrbitRerollInterval + utils.RandRange(st.sys.rng, -t.OrbitRerollJitter, t.OrbitRerollJitter)
}

// companionTargetValid 目标仍存活且同伴未超出拴绳距离
func (s *BehaviorSystem) companionTargetValid(c *agentCtx, target ecs.EntityID) (utils.Vec3, bool) {
	if !s.alive(target) {
		return utils.Vec3{}, false
	}
	pos, ok := s.positionOf(target)
	if !ok {
		return utils.Vec3{}, false
	}
	if p, ok := s.player(); ok && utils.DistFlat(c.pos(), p.pos) > c.tuning().TetherDistance {
		return utils.Vec3{}, false
	}
	return pos, true
}

// CompanionChaseState 追击目标；目标失效或超出拴绳时回到跟随
type CompanionChaseState struct {
	stateBase
	target ecs.EntityID
}

func (s *BehaviorSystem) newCompanionChase(id, target ecs.EntityID) *CompanionChaseState {
	return &CompanionChaseState{stateBase: stateBase{sys: s, id: id}, target: target}
}

func (st *CompanionChaseState) Name() string { return "CompanionChase" }

// Target 追击目标
func (st *CompanionChaseState) Target() ecs.EntityID { return st.target }

func (st *CompanionChaseState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.setSpeed(c, c.tuning().RunSpeed)
	st.sys.emitAnim(c, types.AnimRun)
	if pos, ok := st.sys.positionOf(st.target); ok {
		st.sys.setDestinationSmart(c, pos, true)
	}
}

func (st *CompanionChaseState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	pos, ok := st.sys.companionTargetValid(c, st.target)
	if !ok {
		st.change(c, st.sys.newCompanionFollow(st.id))
		return
	}
	if utils.DistFlat(c.pos(), pos) <= c.tuning().AttackRange {
		st.change(c, st.sys.newCompanionAttack(st.id, st.target))
		return
	}
	st.sys.setDestinationSmart(c, pos, false)
}

func (st *CompanionChaseState) Exit() {}

// CompanionAttackState 攻击目标：进入时与每次冷却结束时造成伤害并击退
type CompanionAttackState struct {
	stateBase
	target ecs.EntityID
}

func (s *BehaviorSystem) newCompanionAttack(id, target ecs.EntityID) *CompanionAttackState {
	return &CompanionAttackState{stateBase: stateBase{sys: s, id: id}, target: target}
}

func (st *CompanionAttackState) Name() string { return "CompanionAttack" }

// Target 攻击目标
func (st *CompanionAttackState) Target() ecs.EntityID { return st.target }

func (st *CompanionAttackState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.halt(c)
	st.sys.emitAnim(c, types.AnimAttack)
	if pos, ok := st.sys.companionTargetValid(c, st.target); ok {
		st.strike(c, pos)
	}
}

func (st *CompanionAttackState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	pos, ok := st.sys.companionTargetValid(c, st.target)
	if !ok {
		st.change(c, st.sys.newCompanionFollow(st.id))
		return
	}
	t := c.tuning()
	if utils.DistFlat(c.pos(), pos) > t.AttackRange*1.5 {
		st.change(c, st.sys.newCompanionChase(st.id, st.target))
		return
	}
	faceTowards(c, pos, t.AngularSpeed, dt)
	st.strike(c, pos)
}

func (st *CompanionAttackState) Exit() {}

func (st *CompanionAttackState) strike(c *agentCtx, targetPos utils.Vec3) {
	a := c.agent
	if a.AttackCooldown > 0 {
		return
	}
	a.AttackCooldown = a.Tuning.AttackCooldown
	st.sys.emitAnim(c, types.AnimAttack)
	if systems.ApplyDamage(st.sys.entityManager, st.target, a.Tuning.AttackDamage) {
		return
	}
	push := targetPos.Sub(c.pos()).FlatNormalize().Scale(companionKnockback)
	st.sys.ApplyKnockback(st.target, push)
}
