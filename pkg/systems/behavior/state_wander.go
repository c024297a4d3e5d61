package behavior

import (
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/spatial"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// WanderState 漫游：随机取可达点，离家近时有概率转为休息
type WanderState struct {
	stateBase
	timer float64
}

func (s *BehaviorSystem) newWander(id ecs.EntityID) *WanderState {
	return &WanderState{stateBase: stateBase{sys: s, id: id}}
}

func (st *WanderState) Name() string { return "Wander" }

func (st *WanderState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.setSpeed(c, c.tuning().WalkSpeed)
	st.sys.emitAnim(c, types.AnimWalk)
	st.repath(c)
}

func (st *WanderState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if next := st.sys.detectFor(c); next != nil {
		st.change(c, next)
		return
	}

	t := c.tuning()
	st.timer += dt
	if !arrived(c) && st.timer < t.WanderInterval {
		return
	}
	if utils.DistFlat(c.pos(), c.home()) <= t.HomeRadius && utils.Chance(st.sys.rng, t.WanderRestChance) {
		st.change(c, st.sys.newRest(st.id))
		return
	}
	st.repath(c)
}

func (st *WanderState) Exit() {}

func (st *WanderState) repath(c *agentCtx) {
	st.timer = 0
	if p, ok := st.sys.pickWanderPoint(c); ok {
		st.sys.setDestinationSmart(c, p, true)
	}
}

// RestState 休息：原地待机或进食，与同种邻居保持间距
type RestState struct {
	stateBase
	timer    float64
	duration float64
	buf      []spatial.Entry
}

func (s *BehaviorSystem) newRest(id ecs.EntityID) *RestState {
	return &RestState{
		stateBase: stateBase{sys: s, id: id},
		buf:       make([]spatial.Entry, 0, neighborCapacity),
	}
}

func (st *RestState) Name() string { return "Rest" }

func (st *RestState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	t := c.tuning()
	st.sys.halt(c)
	st.duration = utils.RandRange(st.sys.rng, t.RestDurationMin, t.RestDurationMax)
	cue := types.AnimRest
	if utils.Chance(st.sys.rng, t.EatProbability) {
		cue = types.AnimEat
	}
	st.sys.emitAnim(c, cue)
}

func (st *RestState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if next := st.sys.detectFor(c); next != nil {
		st.change(c, next)
		return
	}

	if push := st.sys.restSpacing(c, st.buf, dt); !push.IsZero() {
		if p, ok := st.sys.sample(c.pos().Add(push), push.FlatLen()+0.1); ok {
			c.transform.Position = p
		}
	}

	st.timer += dt
	if st.timer >= st.duration {
		st.change(c, st.sys.newWander(st.id))
		return
	}
}

func (st *RestState) Exit() {}
