package components

import "github.com/decker502/wildlife/pkg/ecs"

// HealthComponent 存储实体的生命值信息
// 用于玩家与所有 NPC；伤害通过 systems.ApplyDamage 施加
type HealthComponent struct {
	CurrentHealth float64 // 当前生命值
	MaxHealth     float64 // 最大生命值
	IsDead        bool    // 生命值归零后置为 true，不再恢复

	// OnDeath 死亡回调（可选），在 IsDead 首次变为 true 时调用一次
	OnDeath func(id ecs.EntityID)
}
