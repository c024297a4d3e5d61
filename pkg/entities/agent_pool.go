package entities

import (
	"fmt"
	"log"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
)

// AgentPool 回收 NPC 组件结构体的对象池
//
// 回收时立即销毁实体，重新取出时总是分配新的 EntityID：
// 旧 ID 上的组件查询随即失效，持有旧句柄的状态对象只会得到查询失败，
// 而不会读写被复用的组件。
type AgentPool struct {
	em     *ecs.EntityManager
	newNav NavFactory
	free   []*agentParts

	// 统计
	Created  int
	Reused   int
	Released int
}

// NewAgentPool 创建对象池
func NewAgentPool(em *ecs.EntityManager, newNav NavFactory) *AgentPool {
	return &AgentPool{em: em, newNav: newNav}
}

// Acquire 取出（或新建）一个 NPC
func (p *AgentPool) Acquire(spec AgentSpec) (ecs.EntityID, error) {
	n := len(p.free)
	if n == 0 {
		id, err := NewAgentEntity(p.em, spec, p.newNav)
		if err == nil {
			p.Created++
		}
		return id, err
	}

	parts := p.free[n-1]
	if err := parts.configure(spec); err != nil {
		return 0, err
	}
	p.free = p.free[:n-1]
	if parts.nav.Agent != nil {
		parts.nav.Agent.SetEnabled(true)
		parts.nav.Agent.ResetPath()
		parts.nav.Agent.SetSpeed(parts.agent.Tuning.WalkSpeed)
		parts.nav.Attached = true
	}
	p.Reused++
	return parts.attach(p.em), nil
}

// Release 回收 NPC：实体立即销毁，组件结构体进入空闲列表
// 调用方负责先执行行为系统的 OnDespawned
func (p *AgentPool) Release(id ecs.EntityID) error {
	parts, ok := collectParts(p.em, id)
	if !ok {
		return fmt.Errorf("entity %d is not a pooled agent", id)
	}
	parts.agent.ResetRuntime()
	parts.brain.Machine.Stop()
	if parts.nav.Agent != nil {
		parts.nav.Agent.ResetPath()
		parts.nav.Agent.SetEnabled(false)
	}
	p.em.DestroyEntityNow(id)
	p.free = append(p.free, parts)
	p.Released++
	log.Printf("[AgentPool] released entity %d (free=%d)", id, len(p.free))
	return nil
}

// Free 空闲数量
func (p *AgentPool) Free() int {
	return len(p.free)
}

func collectParts(em *ecs.EntityManager, id ecs.EntityID) (*agentParts, bool) {
	parts := &agentParts{}
	var ok bool
	if parts.transform, ok = ecs.GetComponent[*components.TransformComponent](em, id); !ok {
		return nil, false
	}
	if parts.health, ok = ecs.GetComponent[*components.HealthComponent](em, id); !ok {
		return nil, false
	}
	if parts.agent, ok = ecs.GetComponent[*components.AgentComponent](em, id); !ok {
		return nil, false
	}
	if parts.brain, ok = ecs.GetComponent[*components.BrainComponent](em, id); !ok {
		return nil, false
	}
	if parts.lod, ok = ecs.GetComponent[*components.LODComponent](em, id); !ok {
		return nil, false
	}
	if parts.stuck, ok = ecs.GetComponent[*components.StuckComponent](em, id); !ok {
		return nil, false
	}
	if parts.anim, ok = ecs.GetComponent[*components.AnimationCommandComponent](em, id); !ok {
		return nil, false
	}
	if parts.nav, ok = ecs.GetComponent[*components.NavAgentComponent](em, id); !ok {
		parts.nav = &components.NavAgentComponent{}
	}
	return parts, true
}
