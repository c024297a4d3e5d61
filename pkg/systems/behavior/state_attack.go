package behavior

import (
	"log"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/systems"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// AttackState 攻击：停下、面向玩家，冷却结束时在 Enter 立即造成伤害；
// 持续 AttackDuration 后重新评估距离。
type AttackState struct {
	stateBase
	timer float64
}

func (s *BehaviorSystem) newAttack(id ecs.EntityID) *AttackState {
	return &AttackState{stateBase: stateBase{sys: s, id: id}}
}

func (st *AttackState) Name() string { return "Attack" }

func (st *AttackState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.halt(c)
	st.sys.emitAnim(c, types.AnimAttack)
	if p, ok := st.sys.player(); ok {
		st.sys.strikePlayer(c, p)
	}
}

func (st *AttackState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	p, ok := st.sys.player()
	if !ok {
		st.change(c, st.sys.newWander(st.id))
		return
	}
	if leashBroken(c, p) {
		st.change(c, st.sys.newReturnToBase(st.id))
		return
	}

	t := c.tuning()
	faceTowards(c, p.pos, t.AngularSpeed, dt)
	st.timer += dt
	if st.timer < t.AttackDuration {
		return
	}

	switch {
	case canAttack(c, p.pos):
		st.change(c, st.sys.newAttack(st.id))
	case utils.DistFlat(c.pos(), p.pos) <= t.DetectionRange:
		st.change(c, c.policy().pursue(st.sys, c))
	default:
		st.change(c, st.sys.newWander(st.id))
	}
}

func (st *AttackState) Exit() {}

// strikePlayer 攻击冷却结束时对玩家造成一次伤害并重置冷却
func (s *BehaviorSystem) strikePlayer(c *agentCtx, p playerInfo) bool {
	a := c.agent
	if a.AttackCooldown > 0 {
		return false
	}
	a.AttackCooldown = a.Tuning.AttackCooldown
	systems.ApplyDamage(s.entityManager, p.id, a.Tuning.AttackDamage)
	if s.Verbose {
		log.Printf("[BehaviorSystem] 实体 %d 攻击玩家 %d (伤害 %.0f)", c.id, p.id, a.Tuning.AttackDamage)
	}
	return true
}

// ChaseState 标准追击：按导航间隔重新寻路
type ChaseState struct {
	stateBase
}

func (s *BehaviorSystem) newChase(id ecs.EntityID) *ChaseState {
	return &ChaseState{stateBase: stateBase{sys: s, id: id}}
}

func (st *ChaseState) Name() string { return "Chase" }

func (st *ChaseState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.setSpeed(c, c.tuning().RunSpeed)
	st.sys.emitAnim(c, types.AnimRun)
	if p, ok := st.sys.player(); ok {
		st.sys.setDestinationSmart(c, p.pos, true)
	}
}

func (st *ChaseState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	p, ok := st.sys.player()
	if !ok {
		st.change(c, st.sys.newWander(st.id))
		return
	}
	if next := st.sys.chaseDecision(c, p); next != nil {
		st.change(c, next)
		return
	}

	t := c.tuning()
	if utils.DistFlat(c.pos(), p.pos) <= t.AttackRange {
		faceTowards(c, p.pos, t.AngularSpeed, dt)
	}
	st.sys.setDestinationSmart(c, p.pos, false)
}

func (st *ChaseState) Exit() {
	if c, ok := st.ctx(); ok {
		st.sys.setSpeed(c, c.tuning().WalkSpeed)
	}
}

// chaseDecision 追击类状态共享的判定：领地 → 攻击 → 丢失目标
func (s *BehaviorSystem) chaseDecision(c *agentCtx, p playerInfo) fsm.State {
	t := c.tuning()
	if leashBroken(c, p) {
		return s.newReturnToBase(c.id)
	}
	if canAttack(c, p.pos) {
		return s.newAttack(c.id)
	}
	if utils.DistFlat(c.pos(), p.pos) > t.DetectionRange*t.ChaseLoseMultiplier {
		return s.newWander(c.id)
	}
	return nil
}
