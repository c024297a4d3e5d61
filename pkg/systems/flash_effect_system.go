package systems

import (
	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
)

// FlashEffectSystem 受击闪烁效果系统
// 推进闪烁计时、线性衰减强度，结束后移除组件
type FlashEffectSystem struct {
	entityManager *ecs.EntityManager
}

// NewFlashEffectSystem 创建闪烁效果系统
func NewFlashEffectSystem(em *ecs.EntityManager) *FlashEffectSystem {
	return &FlashEffectSystem{
		entityManager: em,
	}
}

// Update 更新所有闪烁效果
func (s *FlashEffectSystem) Update(dt float64) {
	entities := ecs.GetEntitiesWith1[*components.FlashEffectComponent](s.entityManager)

	for _, entity := range entities {
		flash, ok := ecs.GetComponent[*components.FlashEffectComponent](s.entityManager, entity)
		if !ok || !flash.IsActive {
			continue
		}

		flash.Elapsed += dt
		if flash.Elapsed >= flash.Duration {
			ecs.RemoveComponent[*components.FlashEffectComponent](s.entityManager, entity)
			continue
		}
		flash.Intensity = 1 - flash.Elapsed/flash.Duration
	}
}

// StartFlash 为实体添加（或重置）闪烁效果
func StartFlash(em *ecs.EntityManager, id ecs.EntityID, duration float64) {
	if duration <= 0 || !em.Exists(id) {
		return
	}
	if flash, ok := ecs.GetComponent[*components.FlashEffectComponent](em, id); ok {
		flash.Elapsed = 0
		flash.Duration = duration
		flash.Intensity = 1
		flash.IsActive = true
		return
	}
	ecs.AddComponent(em, id, &components.FlashEffectComponent{
		Duration:  duration,
		Intensity: 1,
		IsActive:  true,
	})
}
