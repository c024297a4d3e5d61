package behavior

import (
	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/navmesh"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// agentCtx 一次调用内使用的 NPC 组件视图
//
// 状态对象只保存 EntityID，每次 Enter/Update/Exit 重新查询；
// 实体被销毁后查询失败，过期的状态对象随之变为空操作。
type agentCtx struct {
	id        ecs.EntityID
	agent     *components.AgentComponent
	brain     *components.BrainComponent
	transform *components.TransformComponent
	health    *components.HealthComponent
	lod       *components.LODComponent
	stuck     *components.StuckComponent
	anim      *components.AnimationCommandComponent
	nav       navmesh.Agent // 可能为 nil
}

func (s *BehaviorSystem) lookup(id ecs.EntityID) (*agentCtx, bool) {
	em := s.entityManager
	c := &agentCtx{id: id}
	var ok bool
	if c.agent, ok = ecs.GetComponent[*components.AgentComponent](em, id); !ok {
		return nil, false
	}
	if c.brain, ok = ecs.GetComponent[*components.BrainComponent](em, id); !ok || c.brain.Machine == nil {
		return nil, false
	}
	if c.transform, ok = ecs.GetComponent[*components.TransformComponent](em, id); !ok {
		return nil, false
	}
	if c.health, ok = ecs.GetComponent[*components.HealthComponent](em, id); !ok {
		return nil, false
	}
	if c.lod, ok = ecs.GetComponent[*components.LODComponent](em, id); !ok {
		return nil, false
	}
	if c.stuck, ok = ecs.GetComponent[*components.StuckComponent](em, id); !ok {
		return nil, false
	}
	c.anim, _ = ecs.GetComponent[*components.AnimationCommandComponent](em, id)
	if nav, ok := ecs.GetComponent[*components.NavAgentComponent](em, id); ok && nav.Agent != nil {
		c.nav = nav.Agent
	}
	return c, true
}

func (c *agentCtx) tuning() *config.AgentTuning { return &c.agent.Tuning }
func (c *agentCtx) pos() utils.Vec3             { return c.transform.Position }
func (c *agentCtx) home() utils.Vec3            { return c.agent.SpawnOrigin }

func (c *agentCtx) policy() *archetypePolicy {
	return policyFor(c.agent.Archetype)
}

// alive 实体存在、未死亡且未回收
func (s *BehaviorSystem) alive(id ecs.EntityID) bool {
	health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id)
	if !ok || health.IsDead {
		return false
	}
	if agent, ok := ecs.GetComponent[*components.AgentComponent](s.entityManager, id); ok && agent.Despawned {
		return false
	}
	return true
}

// positionOf 任意实体的位置
func (s *BehaviorSystem) positionOf(id ecs.EntityID) (utils.Vec3, bool) {
	tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		return utils.Vec3{}, false
	}
	return tr.Position, true
}

// stateBase 所有状态共享的句柄
type stateBase struct {
	sys *BehaviorSystem
	id  ecs.EntityID
}

func (b stateBase) ctx() (*agentCtx, bool) {
	c, ok := b.sys.lookup(b.id)
	if !ok || c.agent.Despawned {
		return nil, false
	}
	return c, true
}

// change 切换本 NPC 的状态；调用后必须立即 return
func (b stateBase) change(c *agentCtx, next fsm.State) {
	b.sys.changeState(c, next)
}

// emitAnim 发出语义动画指令（即发即弃）
func (s *BehaviorSystem) emitAnim(c *agentCtx, cue types.AnimCue) {
	if c.anim == nil {
		return
	}
	if c.anim.Cue == cue && !c.anim.Processed {
		return
	}
	c.anim.Cue = cue
	c.anim.Processed = false
	c.anim.Timestamp = s.now
}
