package components

import "github.com/decker502/wildlife/pkg/utils"

// StuckComponent 卡死看门狗状态
type StuckComponent struct {
	LastPosition utils.Vec3
	HasLast      bool
	StuckTime    float64

	// Recoveries 累计恢复次数（调试用）
	Recoveries int
}
