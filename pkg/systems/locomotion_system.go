package systems

import (
	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/navmesh"
)

// LocomotionSystem 推进所有已挂接的导航代理
type LocomotionSystem struct {
	entityManager *ecs.EntityManager
}

// NewLocomotionSystem 创建移动系统
func NewLocomotionSystem(em *ecs.EntityManager) *LocomotionSystem {
	return &LocomotionSystem{entityManager: em}
}

// Update 推进一帧
func (s *LocomotionSystem) Update(dt float64) {
	entities := ecs.GetEntitiesWith1[*components.NavAgentComponent](s.entityManager)
	for _, id := range entities {
		nav, ok := ecs.GetComponent[*components.NavAgentComponent](s.entityManager, id)
		if !ok || !nav.Attached || nav.Agent == nil {
			continue
		}
		if stepper, ok := nav.Agent.(navmesh.Stepper); ok {
			stepper.Step(dt)
		}
	}
}
