package components

import "github.com/decker502/wildlife/pkg/types"

// LODComponent 实体的细节层级调度状态
type LODComponent struct {
	Bucket types.LODBucket

	// EvalTimer 距离下一次分桶评估的剩余时间
	EvalTimer float64

	// ThinkTimer 距离下一次状态机 Update 的剩余时间
	ThinkTimer float64

	// ThinkInterval / NavInterval 当前分桶对应的间隔
	ThinkInterval float64
	NavInterval   float64

	// PendingDt 被限频跳过的累计时间，下一次思考时一并传入状态机
	PendingDt float64
}
