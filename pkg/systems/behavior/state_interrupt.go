package behavior

import (
	"log"
	"math"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// KnockbackState 击退：在持续时间内沿击退向量位移，期间不做任何决策
type KnockbackState struct {
	stateBase
}

func (s *BehaviorSystem) newKnockback(id ecs.EntityID) *KnockbackState {
	return &KnockbackState{stateBase: stateBase{sys: s, id: id}}
}

func (st *KnockbackState) Name() string { return "Knockback" }
func (st *KnockbackState) Locked() bool { return true }

func (st *KnockbackState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if c.agent.KnockbackTimer <= 0 {
		c.agent.KnockbackTimer = c.tuning().KnockbackDuration
	}
	st.sys.halt(c)
	st.sys.emitAnim(c, types.AnimIdle)
}

// Update 按 KnockbackTimer 倒计时，把 KnockbackVector 均匀分摊到击退时长内
func (st *KnockbackState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	t := c.tuning()
	a := c.agent

	step := math.Min(dt, a.KnockbackTimer)
	a.KnockbackTimer -= dt
	if step > 0 && t.KnockbackDuration > 0 && !a.KnockbackVector.IsZero() {
		delta := a.KnockbackVector.Scale(step / t.KnockbackDuration)
		if p, ok := st.sys.sample(c.pos().Add(delta), delta.Len()+0.1); ok {
			p.Y = c.pos().Y
			c.transform.Position = p
		}
	}

	if a.KnockbackTimer <= 0 {
		a.KnockbackTimer = 0
		a.KnockbackVector = utils.Vec3{}
		st.change(c, st.sys.newWander(st.id))
		return
	}
}

func (st *KnockbackState) Exit() {}

// DeadState 终止状态：停止移动，DespawnDelay 后回收；从不切换状态
type DeadState struct {
	stateBase
	timer     float64
	despawned bool
}

func (s *BehaviorSystem) newDead(id ecs.EntityID) *DeadState {
	return &DeadState{stateBase: stateBase{sys: s, id: id}}
}

func (st *DeadState) Name() string { return "Dead" }

func (st *DeadState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	c.agent.Tasks.CancelAll()
	st.sys.halt(c)
	if c.nav != nil {
		c.nav.SetStopped(true)
	}
	st.sys.emitAnim(c, types.AnimDie)
	log.Printf("[BehaviorSystem] 实体 %d (%s) 死亡，%.1fs 后回收", st.id, c.agent.Archetype, c.tuning().DespawnDelay)
}

func (st *DeadState) Update(dt float64) {
	if st.despawned {
		return
	}
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.timer += dt
	if st.timer >= c.tuning().DespawnDelay {
		st.despawned = true
		st.sys.despawn(st.id)
	}
}

func (st *DeadState) Exit() {}
