// Package types 定义共享的基础类型
package types

// Archetype 定义 NPC 的行为原型
// 原型决定了哪些状态可达，以及共享状态（Wander/Rest）中的分支
type Archetype int

const (
	// ArchetypeUnknown 未知原型
	ArchetypeUnknown Archetype = iota

	// 被动原型（逃跑精度由低到高）
	ArchetypePassiveVeryEasy // 极简逃跑：固定方向直到撞边
	ArchetypePassiveSimple   // 简单逃跑：每帧背离玩家
	ArchetypePassiveFull     // 完整逃跑：之字形 + 预测 + 边缘滑行

	// 攻击原型
	ArchetypeAggressive1 // 无领地约束的追击者
	ArchetypeAggressive2 // 有领地约束，受击后先逃再反击
	ArchetypeAggressive3 // 冲锋者：蓄力 -> 冲锋
	ArchetypeAggressive4 // 变速追击者：常速 -> 爆发 -> 疲劳

	// 特殊原型
	ArchetypeCompanion  // 同伴：跟随玩家并攻击附近目标
	ArchetypePackHunter // 群猎者：集结后包围玩家
	ArchetypeJumper     // 跳跃者：栖息点起跳扑击
)

var archetypeNames = map[Archetype]string{
	ArchetypeUnknown:         "unknown",
	ArchetypePassiveVeryEasy: "passive_very_easy",
	ArchetypePassiveSimple:   "passive_simple",
	ArchetypePassiveFull:     "passive_full",
	ArchetypeAggressive1:     "aggressive_1",
	ArchetypeAggressive2:     "aggressive_2",
	ArchetypeAggressive3:     "aggressive_3",
	ArchetypeAggressive4:     "aggressive_4",
	ArchetypeCompanion:       "companion",
	ArchetypePackHunter:      "pack_hunter",
	ArchetypeJumper:          "jumper",
}

// String 返回原型的配置键名（与 archetypes.yaml 中的键一致）
func (a Archetype) String() string {
	if name, ok := archetypeNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseArchetype 从配置键名解析原型
func ParseArchetype(name string) (Archetype, bool) {
	for a, n := range archetypeNames {
		if n == name && a != ArchetypeUnknown {
			return a, true
		}
	}
	return ArchetypeUnknown, false
}

// AllArchetypes 返回所有有效原型（按枚举顺序）
func AllArchetypes() []Archetype {
	return []Archetype{
		ArchetypePassiveVeryEasy,
		ArchetypePassiveSimple,
		ArchetypePassiveFull,
		ArchetypeAggressive1,
		ArchetypeAggressive2,
		ArchetypeAggressive3,
		ArchetypeAggressive4,
		ArchetypeCompanion,
		ArchetypePackHunter,
		ArchetypeJumper,
	}
}

// IsPassive 是否为被动原型
func (a Archetype) IsPassive() bool {
	return a >= ArchetypePassiveVeryEasy && a <= ArchetypePassiveFull
}

// IsAggressive 是否为攻击原型（1-4）
func (a Archetype) IsAggressive() bool {
	return a >= ArchetypeAggressive1 && a <= ArchetypeAggressive4
}
