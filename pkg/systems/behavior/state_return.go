package behavior

import (
	"log"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// ReturnToBaseState 回家：不完整路径时逐段朝家迈进，自带更紧的卡死看门狗，
// 到达后短暂停留再转为休息；途中仍按领地规则重新交战。
type ReturnToBaseState struct {
	stateBase
	arrived   bool
	restTimer float64
	stuckTime float64
	lastPos   utils.Vec3
}

func (s *BehaviorSystem) newReturnToBase(id ecs.EntityID) *ReturnToBaseState {
	return &ReturnToBaseState{stateBase: stateBase{sys: s, id: id}}
}

func (st *ReturnToBaseState) Name() string       { return "ReturnToBase" }
func (st *ReturnToBaseState) HandlesStuck() bool { return true }

func (st *ReturnToBaseState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.lastPos = c.pos()
	st.sys.setSpeed(c, c.tuning().WalkSpeed)
	st.sys.emitAnim(c, types.AnimWalk)
	st.route(c, true)
}

func (st *ReturnToBaseState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if next := st.sys.detectFor(c); next != nil {
		st.change(c, next)
		return
	}

	t := c.tuning()
	pos := c.pos()
	if st.arrived || utils.DistFlat(pos, c.home()) <= t.ArriveDistance() {
		if !st.arrived {
			st.arrived = true
			st.sys.halt(c)
			st.sys.emitAnim(c, types.AnimIdle)
		}
		st.restTimer += dt
		if st.restTimer >= t.ReturnRestTime {
			st.change(c, st.sys.newRest(st.id))
			return
		}
		return
	}

	if utils.DistFlat(pos, st.lastPos) < t.StuckDisplacementEpsilon {
		st.stuckTime += dt
	} else {
		st.stuckTime = 0
	}
	st.lastPos = pos

	switch {
	case st.stuckTime >= t.ReturnStuckTimeout:
		st.stuckTime = 0
		c.stuck.Recoveries++
		if !st.route(c, true) {
			log.Printf("[BehaviorSystem] 实体 %d 回家受阻，原地等待", st.id)
		}
	case arrived(c):
		st.route(c, false)
	}
}

func (st *ReturnToBaseState) Exit() {}

// route 直接可达时走向家，否则朝家方向找可达的中间点
func (st *ReturnToBaseState) route(c *agentCtx, force bool) bool {
	home := c.home()
	if reachable(c, home) {
		return st.sys.setDestinationSmart(c, home, force)
	}
	if p, ok := st.sys.findReachableToward(c, home); ok {
		return st.sys.setDestinationSmart(c, p, force)
	}
	return false
}
