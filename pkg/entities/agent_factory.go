package entities

import (
	"fmt"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/navmesh"
	"github.com/decker502/wildlife/pkg/task"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

const (
	// AgentDefaultHealth NPC 默认生命值
	AgentDefaultHealth = 100.0

	// PlayerDefaultHealth 玩家默认生命值
	PlayerDefaultHealth = 500.0
)

// NavFactory 为实体创建寻路代理
// 代理通过 pos/fwd 指针直接写回变换组件
type NavFactory func(pos, fwd *utils.Vec3, tuning *config.AgentTuning) navmesh.Agent

// FieldNavFactory 返回基于 FieldMesh 的代理工厂
func FieldNavFactory(mesh *navmesh.FieldMesh) NavFactory {
	return func(pos, fwd *utils.Vec3, tuning *config.AgentTuning) navmesh.Agent {
		return navmesh.NewFieldAgent(mesh, pos, fwd, tuning.WalkSpeed, tuning.AngularSpeed)
	}
}

// AgentSpec NPC 生成参数
type AgentSpec struct {
	Archetype types.Archetype
	Species   string
	Position  utils.Vec3
	Forward   utils.Vec3 // 为零时使用 +Z
	Tuning    config.AgentTuning
	MaxHealth float64 // 为零时使用 AgentDefaultHealth
}

// agentParts 一个 NPC 的全部组件指针，回收池复用这些结构体
type agentParts struct {
	transform *components.TransformComponent
	health    *components.HealthComponent
	agent     *components.AgentComponent
	brain     *components.BrainComponent
	lod       *components.LODComponent
	stuck     *components.StuckComponent
	nav       *components.NavAgentComponent
	anim      *components.AnimationCommandComponent
}

// NewAgentEntity 创建 NPC 实体
//
// 只负责组装组件；初始状态由行为系统的 OnSpawned 选择。
//
// 返回:
//   - ecs.EntityID: 新实体ID
//   - error: 参数无效时返回错误
func NewAgentEntity(em *ecs.EntityManager, spec AgentSpec, newNav NavFactory) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	parts := &agentParts{
		transform: &components.TransformComponent{},
		health:    &components.HealthComponent{},
		agent:     &components.AgentComponent{Tasks: task.NewRunner()},
		brain:     &components.BrainComponent{Machine: fsm.New()},
		lod:       &components.LODComponent{},
		stuck:     &components.StuckComponent{},
		nav:       &components.NavAgentComponent{},
		anim:      &components.AnimationCommandComponent{},
	}
	if err := parts.configure(spec); err != nil {
		return 0, err
	}
	if newNav != nil {
		parts.nav.Agent = newNav(&parts.transform.Position, &parts.transform.Forward, &parts.agent.Tuning)
		parts.nav.Attached = true
	}
	return parts.attach(em), nil
}

// configure 按生成参数重置所有组件字段
func (p *agentParts) configure(spec AgentSpec) error {
	if spec.Archetype == types.ArchetypeUnknown {
		return fmt.Errorf("agent archetype must be set")
	}
	if err := spec.Tuning.Validate(); err != nil {
		return fmt.Errorf("invalid tuning for %s: %w", spec.Archetype, err)
	}

	fwd := spec.Forward.FlatNormalize()
	if fwd.IsZero() {
		fwd = utils.Forward
	}
	*p.transform = components.TransformComponent{Position: spec.Position, Forward: fwd}

	maxHealth := spec.MaxHealth
	if maxHealth <= 0 {
		maxHealth = AgentDefaultHealth
	}
	*p.health = components.HealthComponent{CurrentHealth: maxHealth, MaxHealth: maxHealth}

	p.agent.Archetype = spec.Archetype
	p.agent.Species = spec.Species
	p.agent.SpawnOrigin = spec.Position
	p.agent.Tuning = spec.Tuning.Clone()
	p.agent.ResetRuntime()

	p.brain.Machine.Stop()
	p.brain.StateTime = 0
	*p.lod = components.LODComponent{Bucket: types.LODMid}
	*p.stuck = components.StuckComponent{}
	*p.anim = components.AnimationCommandComponent{Processed: true}
	return nil
}

func (p *agentParts) attach(em *ecs.EntityManager) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, p.transform)
	ecs.AddComponent(em, id, p.health)
	ecs.AddComponent(em, id, p.agent)
	ecs.AddComponent(em, id, p.brain)
	ecs.AddComponent(em, id, p.lod)
	ecs.AddComponent(em, id, p.stuck)
	if p.nav.Agent != nil {
		ecs.AddComponent(em, id, p.nav)
	}
	ecs.AddComponent(em, id, p.anim)
	return id
}

// NewPlayerEntity 创建玩家实体
func NewPlayerEntity(em *ecs.EntityManager, pos utils.Vec3, moveSpeed float64) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.TransformComponent{Position: pos, Forward: utils.Forward})
	ecs.AddComponent(em, id, &components.HealthComponent{CurrentHealth: PlayerDefaultHealth, MaxHealth: PlayerDefaultHealth})
	ecs.AddComponent(em, id, &components.PlayerComponent{MoveSpeed: moveSpeed})
	return id
}
