package components

// FlashEffectComponent 受击闪烁效果组件
// NPC 受到击退时短暂闪白，由 FlashEffectSystem 推进并在结束后移除
type FlashEffectComponent struct {
	// Duration 闪烁持续时间（秒）
	Duration float64

	// Elapsed 已经过的时间（秒）
	Elapsed float64

	// Intensity 闪烁强度（0.0 - 1.0），随时间线性衰减
	Intensity float64

	// IsActive 是否激活
	IsActive bool
}
