package systems

import (
	"log"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
)

// ApplyDamage 对实体施加伤害
//
// 返回值 died 仅在本次伤害导致死亡时为 true；
// 已死亡或没有生命值组件的实体忽略伤害。
func ApplyDamage(em *ecs.EntityManager, id ecs.EntityID, amount float64) (died bool) {
	health, ok := ecs.GetComponent[*components.HealthComponent](em, id)
	if !ok || health.IsDead || amount <= 0 {
		return false
	}

	health.CurrentHealth -= amount
	if health.CurrentHealth > 0 {
		return false
	}

	health.CurrentHealth = 0
	health.IsDead = true
	log.Printf("[Damage] 实体 %d 死亡", id)
	if health.OnDeath != nil {
		health.OnDeath(id)
	}
	return true
}
