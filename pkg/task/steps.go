package task

// Timed 持续 duration 秒的步骤，每帧以归一化进度 [0,1] 调用 fn
// 最后一帧保证以进度 1 调用
func Timed(duration float64, fn func(progress float64)) Step {
	elapsed := 0.0
	return func(dt float64) bool {
		elapsed += dt
		if duration <= 0 || elapsed >= duration {
			fn(1)
			return true
		}
		fn(elapsed / duration)
		return false
	}
}

// Wait 等待 duration 秒
func Wait(duration float64) Step {
	return Timed(duration, func(float64) {})
}

// Do 立即执行一次 fn 并完成
func Do(fn func()) Step {
	return func(float64) bool {
		fn()
		return true
	}
}

// Sequence 依次执行多个步骤，前一个完成后的下一帧开始下一个
func Sequence(steps ...Step) Step {
	i := 0
	return func(dt float64) bool {
		if i >= len(steps) {
			return true
		}
		if steps[i](dt) {
			i++
		}
		return i >= len(steps)
	}
}
