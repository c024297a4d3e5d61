package behavior

import (
	"log"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/systems"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// chargeArriveDistance 到达冲锋终点的判定距离
const chargeArriveDistance = 0.5

// WindupState 蓄力：转向玩家，持续 WindupDuration 后冲锋
type WindupState struct {
	stateBase
	timer float64
}

func (s *BehaviorSystem) newWindup(id ecs.EntityID) *WindupState {
	return &WindupState{stateBase: stateBase{sys: s, id: id}}
}

func (st *WindupState) Name() string { return "Windup" }
func (st *WindupState) Locked() bool { return true }

func (st *WindupState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.halt(c)
	st.sys.emitAnim(c, types.AnimIdle)
}

func (st *WindupState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if c.agent.ChargeCooldownActive {
		st.change(c, st.sys.newReturnToBase(st.id))
		return
	}
	p, ok := st.sys.player()
	if !ok {
		st.change(c, st.sys.newWander(st.id))
		return
	}
	t := c.tuning()
	if leashBroken(c, p) || utils.DistFlat(c.pos(), p.pos) > t.ChargeDetectionRange {
		st.change(c, st.sys.newReturnToBase(st.id))
		return
	}

	faceTowards(c, p.pos, t.AngularSpeed, dt)
	st.timer += dt
	if st.timer >= t.WindupDuration {
		st.change(c, st.sys.newCharge(st.id))
		return
	}
}

func (st *WindupState) Exit() {}

// ChargeState 冲锋：方向在进入时冻结，冲向玩家身后的越过点
//
// 结束条件：计时结束、到达越过点、或近身命中。
// 命中总是回家重置；未命中时若仍有次数、玩家仍在范围内且无冷却则重新蓄力。
type ChargeState struct {
	stateBase
	timer     float64
	dir       utils.Vec3
	overshoot utils.Vec3
}

func (s *BehaviorSystem) newCharge(id ecs.EntityID) *ChargeState {
	return &ChargeState{stateBase: stateBase{sys: s, id: id}}
}

func (st *ChargeState) Name() string { return "Charge" }
func (st *ChargeState) Locked() bool { return true }

func (st *ChargeState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	a := c.agent
	t := c.tuning()

	a.ChargeAttempts++
	if a.ChargeAttempts >= t.MaxChargeAttempts {
		st.sys.armChargeCooldown(c)
	}

	st.dir = c.transform.Forward.FlatNormalize()
	target := c.pos().Add(st.dir.Scale(t.ChargeOvershoot))
	if p, ok := st.sys.player(); ok {
		if d := p.pos.Sub(c.pos()).FlatNormalize(); !d.IsZero() {
			st.dir = d
		}
		target = p.pos
	}
	if st.dir.IsZero() {
		st.dir = utils.Forward
	}
	st.overshoot = target.Add(st.dir.Scale(t.ChargeOvershoot))
	if p, ok := st.sys.sample(st.overshoot, t.ChargeOvershoot); ok {
		st.overshoot = p
	}

	if c.nav != nil {
		c.nav.SetUpdateRotation(false)
	}
	st.sys.setSpeed(c, t.ChargeSpeed)
	st.sys.setDestinationSmart(c, st.overshoot, true)
	st.sys.emitAnim(c, types.AnimRun)
}

func (st *ChargeState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	t := c.tuning()
	c.transform.Forward = utils.RotateTowardsY(c.transform.Forward, st.dir, t.ChargeTurnRate*dt)
	st.timer += dt

	p, hasPlayer := st.sys.player()
	if hasPlayer && utils.DistFlat(c.pos(), p.pos) <= t.ChargeDamageRadius {
		systems.ApplyDamage(st.sys.entityManager, p.id, t.ChargeDamage)
		st.sys.armChargeCooldown(c)
		if st.sys.Verbose {
			log.Printf("[BehaviorSystem] 实体 %d 冲锋命中玩家 %d", st.id, p.id)
		}
		st.change(c, st.sys.newReturnToBase(st.id))
		return
	}

	if st.timer < t.ChargeDuration && utils.DistFlat(c.pos(), st.overshoot) > chargeArriveDistance {
		return
	}

	// 未命中
	a := c.agent
	if hasPlayer && !a.ChargeCooldownActive && a.ChargeAttempts < t.MaxChargeAttempts &&
		!leashBroken(c, p) && utils.DistFlat(c.pos(), p.pos) <= t.ChargeDetectionRange {
		st.change(c, st.sys.newWindup(st.id))
		return
	}
	st.change(c, st.sys.newReturnToBase(st.id))
}

func (st *ChargeState) Exit() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if c.nav != nil {
		c.nav.SetUpdateRotation(true)
	}
	st.sys.halt(c)
	st.sys.setSpeed(c, c.tuning().WalkSpeed)
}

// armChargeCooldown 启动冲锋冷却；冷却结束时尝试次数清零
func (s *BehaviorSystem) armChargeCooldown(c *agentCtx) {
	c.agent.ChargeCooldownActive = true
	c.agent.ChargeCooldownTimer = c.agent.Tuning.ChargeCooldownDuration
}
