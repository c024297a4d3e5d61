package behavior

import (
	"log"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
)

// OnSpawned 初始化（或从回收池重新激活的）NPC
//
// 重置全部运行时字段，重新挂接导航代理，并按原型进入初始状态。
// 从回收池取出的实体必须先调用本方法才会参与行为更新。
func (s *BehaviorSystem) OnSpawned(id ecs.EntityID) bool {
	c, ok := s.lookup(id)
	if !ok {
		log.Printf("[BehaviorSystem] 警告：实体 %d 缺少行为组件，无法激活", id)
		return false
	}
	m := c.brain.Machine
	m.Stop()
	c.brain.StateTime = 0

	c.agent.ResetRuntime()
	c.stuck.LastPosition = c.pos()
	c.stuck.HasLast = true
	c.stuck.StuckTime = 0
	c.stuck.Recoveries = 0
	c.lod.EvalTimer = 0
	c.lod.ThinkTimer = 0
	c.lod.PendingDt = 0

	if c.nav != nil {
		c.nav.SetEnabled(true)
		c.nav.SetStopped(false)
		c.nav.ResetPath()
		c.nav.SetUpdateRotation(true)
		c.nav.SetSpeed(c.tuning().WalkSpeed)
	}

	m.OnTransition = func(from, to fsm.State) {
		fromName, toName := fsm.NameOf(from), fsm.NameOf(to)
		if s.Verbose {
			log.Printf("[BehaviorSystem] 实体 %d: %s -> %s", id, fromName, toName)
		}
		if s.OnTransition != nil {
			s.OnTransition(id, fromName, toName)
		}
	}

	s.changeState(c, c.policy().initial(s, id))
	return true
}

// OnDespawned 停用 NPC：取消后台任务、停止导航并退出状态机
//
// 之后行为系统跳过该实体，直到再次调用 OnSpawned。
func (s *BehaviorSystem) OnDespawned(id ecs.EntityID) {
	c, ok := s.lookup(id)
	if !ok {
		return
	}
	c.agent.Tasks.CancelAll()
	if c.nav != nil {
		c.nav.ResetPath()
		c.nav.SetStopped(true)
	}
	c.brain.Machine.Stop()
	c.agent.Despawned = true
}
