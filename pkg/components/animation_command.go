package components

import "github.com/decker502/wildlife/pkg/types"

// AnimationCommandComponent 动画播放命令组件(纯数据)
//
// 行为层写入语义指令，表现层读取后置 Processed = true。
// 相同指令在未处理前重复发出会被忽略；一个实体同时只有一个待处理指令。
type AnimationCommandComponent struct {
	// Cue 语义动画指令
	Cue types.AnimCue

	// Processed 表现层是否已处理
	Processed bool

	// Timestamp 发出指令时的模拟时间（秒）
	Timestamp float64
}
