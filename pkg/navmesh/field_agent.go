package navmesh

import (
	"github.com/decker502/wildlife/pkg/utils"
)

// FieldAgent 在 FieldMesh 上移动的运动学寻路代理
//
// 位置与朝向通过指针直接写回所属实体的变换组件，
// 由移动系统每帧调用 Step 推进。路径同步计算，因此 PathPending 恒为 false。
type FieldAgent struct {
	mesh *FieldMesh
	pos  *utils.Vec3
	fwd  *utils.Vec3

	enabled        bool
	stopped        bool
	updateRotation bool
	speed          float64
	angularSpeed   float64

	// StoppingDistance 与终点距离小于该值即视为到达
	StoppingDistance float64

	path     []utils.Vec3
	pathIdx  int
	complete bool
	dest     utils.Vec3
	velocity utils.Vec3

	// RequestCount 累计被接受的目的地请求次数（调试面板与测试使用）
	RequestCount int
}

// NewFieldAgent 创建绑定到位置/朝向的代理
func NewFieldAgent(mesh *FieldMesh, pos, fwd *utils.Vec3, speed, angularSpeed float64) *FieldAgent {
	return &FieldAgent{
		mesh:             mesh,
		pos:              pos,
		fwd:              fwd,
		enabled:          true,
		updateRotation:   true,
		speed:            speed,
		angularSpeed:     angularSpeed,
		StoppingDistance: 0.1,
	}
}

func (a *FieldAgent) SetDestination(p utils.Vec3) bool {
	if !a.enabled || !a.mesh.OnMesh(*a.pos) {
		return false
	}
	path, complete := a.mesh.FindPath(*a.pos, p)
	if len(path) == 0 {
		return false
	}
	a.path = path
	a.pathIdx = 0
	a.complete = complete
	a.dest = p
	a.RequestCount++
	return true
}

func (a *FieldAgent) ResetPath() {
	a.path = nil
	a.pathIdx = 0
	a.velocity = utils.Vec3{}
}

func (a *FieldAgent) HasCompletePath(p utils.Vec3) bool {
	if !a.mesh.OnMesh(*a.pos) {
		return false
	}
	_, complete := a.mesh.FindPath(*a.pos, p)
	return complete
}

func (a *FieldAgent) Warp(p utils.Vec3) bool {
	q, ok := a.mesh.SamplePosition(p, 1.0)
	if !ok {
		return false
	}
	*a.pos = q
	a.ResetPath()
	return true
}

func (a *FieldAgent) Destination() utils.Vec3 { return a.dest }
func (a *FieldAgent) HasPath() bool           { return a.pathIdx < len(a.path) }
func (a *FieldAgent) Velocity() utils.Vec3    { return a.velocity }
func (a *FieldAgent) PathPending() bool       { return false }
func (a *FieldAgent) IsOnNavMesh() bool       { return a.enabled && a.mesh.OnMesh(*a.pos) }
func (a *FieldAgent) Enabled() bool           { return a.enabled }
func (a *FieldAgent) Speed() float64          { return a.speed }
func (a *FieldAgent) SetSpeed(speed float64)  { a.speed = speed }
func (a *FieldAgent) IsStopped() bool         { return a.stopped }
func (a *FieldAgent) SetStopped(stopped bool) { a.stopped = stopped }

// PathComplete 当前路径是否完整到达目的地
func (a *FieldAgent) PathComplete() bool { return a.complete }

// Path 返回剩余路径点（调试绘制用）
func (a *FieldAgent) Path() []utils.Vec3 {
	if !a.HasPath() {
		return nil
	}
	return a.path[a.pathIdx:]
}

func (a *FieldAgent) SetUpdateRotation(enabled bool) { a.updateRotation = enabled }

func (a *FieldAgent) SetEnabled(enabled bool) {
	a.enabled = enabled
	if !enabled {
		a.ResetPath()
	}
}

// RemainingDistance 沿剩余路径的水平距离
func (a *FieldAgent) RemainingDistance() float64 {
	if !a.HasPath() {
		return 0
	}
	total := 0.0
	prev := *a.pos
	for _, p := range a.path[a.pathIdx:] {
		total += utils.DistFlat(prev, p)
		prev = p
	}
	return total
}

// Step 沿路径推进一帧
func (a *FieldAgent) Step(dt float64) {
	if dt <= 0 {
		return
	}
	if !a.enabled || a.stopped || !a.HasPath() {
		a.velocity = utils.Vec3{}
		return
	}

	start := *a.pos
	budget := a.speed * dt
	cur := start
	for budget > 0 && a.HasPath() {
		target := a.path[a.pathIdx]
		target.Y = cur.Y
		d := utils.DistFlat(cur, target)
		last := a.pathIdx == len(a.path)-1
		if last && d <= a.StoppingDistance {
			a.pathIdx = len(a.path)
			break
		}
		if d <= budget {
			cur = target
			budget -= d
			a.pathIdx++
			continue
		}
		cur = utils.MoveTowards(cur, target, budget)
		budget = 0
	}

	*a.pos = cur
	a.velocity = cur.Sub(start).Scale(1 / dt)
	if a.updateRotation && a.fwd != nil && !a.velocity.Flat().IsZero() {
		*a.fwd = utils.RotateTowardsY(*a.fwd, a.velocity, a.angularSpeed*dt)
	}
}
