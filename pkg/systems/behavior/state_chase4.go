package behavior

import (
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// chasePhase 变速追击的速度阶段
type chasePhase int

const (
	phaseNormal chasePhase = iota
	phaseSurge
	phaseFatigue
)

func (p chasePhase) String() string {
	switch p {
	case phaseSurge:
		return "surge"
	case phaseFatigue:
		return "fatigue"
	default:
		return "normal"
	}
}

func (p chasePhase) next() chasePhase {
	return (p + 1) % 3
}

func (p chasePhase) duration(t *config.AgentTuning) float64 {
	switch p {
	case phaseSurge:
		return t.SurgePhaseDuration
	case phaseFatigue:
		return t.FatiguePhaseDuration
	default:
		return t.NormalPhaseDuration
	}
}

func (p chasePhase) multiplier(t *config.AgentTuning) float64 {
	switch p {
	case phaseSurge:
		return t.SurgeSpeedMultiplier
	case phaseFatigue:
		return t.FatigueSpeedMultiplier
	default:
		return 1
	}
}

// turnSpeedFactor 转向越急速度越低：0° 为 1，180° 线性降到 floor
func turnSpeedFactor(turnDeg, floor float64) float64 {
	return utils.Lerp(1, floor, utils.Clamp01(turnDeg/180))
}

// predictTarget 玩家当前位置加上截断后的速度外推
func predictTarget(p playerInfo, predictionTime, maxDistance float64) utils.Vec3 {
	return p.pos.Add(p.vel.Scale(predictionTime).ClampLen(maxDistance))
}

// ChaseType4State 变速追击：Normal → Surge → Fatigue 循环、预测截击、转向速率上限
type ChaseType4State struct {
	stateBase
	phase      chasePhase
	phaseTimer float64
}

func (s *BehaviorSystem) newChaseType4(id ecs.EntityID) *ChaseType4State {
	return &ChaseType4State{stateBase: stateBase{sys: s, id: id}}
}

func (st *ChaseType4State) Name() string { return "ChaseType4" }

func (st *ChaseType4State) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.phase = phaseNormal
	st.phaseTimer = 0
	if c.nav != nil {
		c.nav.SetUpdateRotation(false)
	}
	st.sys.setSpeed(c, c.tuning().RunSpeed)
	st.sys.emitAnim(c, types.AnimRun)
	if p, ok := st.sys.player(); ok {
		st.sys.setDestinationSmart(c, p.pos, true)
	}
}

func (st *ChaseType4State) Update(dt float64) {
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
	st.advancePhase(t, dt)

	target := predictTarget(p, t.PredictionTime, t.MaxPredictionDistance)
	desired := target.Sub(c.pos()).Flat()
	turn := utils.AngleY(c.transform.Forward, desired)
	if !desired.IsZero() {
		c.transform.Forward = utils.RotateTowardsY(c.transform.Forward, desired, t.MaxTurnRate*dt)
	}
	st.sys.setSpeed(c, t.RunSpeed*st.phase.multiplier(t)*turnSpeedFactor(turn, t.TurnSpeedFloor))
	st.sys.setDestinationSmart(c, target, false)
}

func (st *ChaseType4State) Exit() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if c.nav != nil {
		c.nav.SetUpdateRotation(true)
	}
	st.sys.setSpeed(c, c.tuning().WalkSpeed)
}

// advancePhase 推进速度阶段计时，允许一次 dt 跨越多个阶段
func (st *ChaseType4State) advancePhase(t *config.AgentTuning, dt float64) {
	st.phaseTimer += dt
	for i := 0; i < 3; i++ {
		d := st.phase.duration(t)
		if d <= 0 || st.phaseTimer < d {
			return
		}
		st.phaseTimer -= d
		st.phase = st.phase.next()
	}
}
