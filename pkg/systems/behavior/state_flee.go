package behavior

import (
	"math"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// fleeDirectionSpread VeryEasy 随机逃跑方向的半角
const fleeDirectionSpread = 45.0

// fleeExit 所有逃跑档位共享的退出判定
//
// 玩家缺席或距离超过 FleeRange × FleeExitMultiplier 时回到漫游；
// 处于挑衅中的 NPC 不自行退出，由控制器在反击延迟结束后转为追击。
func (s *BehaviorSystem) fleeExit(c *agentCtx) (playerInfo, fsm.State) {
	p, ok := s.player()
	if !ok {
		c.agent.Provoked = false
		return p, s.newWander(c.id)
	}
	t := c.tuning()
	if !c.agent.Provoked && utils.DistFlat(c.pos(), p.pos) > t.FleeRange*t.FleeExitMultiplier {
		return p, s.newWander(c.id)
	}
	return p, nil
}

// fleeTarget 沿方向前探 FleeLookahead 并投影到网格；失败时缩短距离重试
func (s *BehaviorSystem) fleeTarget(c *agentCtx, dir utils.Vec3) (utils.Vec3, bool) {
	t := c.tuning()
	for dist := t.FleeLookahead; dist >= minReachableStep; dist *= 0.5 {
		if p, ok := s.sample(c.pos().Add(dir.Scale(dist)), t.SampleRadius); ok {
			return p, true
		}
	}
	return utils.Vec3{}, false
}

// edgeThreat 靠近边界且方向朝外时返回边界信息
func (s *BehaviorSystem) edgeThreat(c *agentCtx, dir utils.Vec3) (normal utils.Vec3, weight float64, ok bool) {
	if s.mesh == nil {
		return utils.Vec3{}, 0, false
	}
	margin := c.tuning().FleeEdgeMargin
	edge, found := s.mesh.FindClosestEdge(c.pos())
	if !found || edge.Distance >= margin || dir.Dot(edge.Normal) >= 0 {
		return utils.Vec3{}, 0, false
	}
	return edge.Normal, 1 - edge.Distance/margin, true
}

func (s *BehaviorSystem) enterFlee(c *agentCtx) {
	s.setSpeed(c, c.tuning().FleeSpeed)
	s.emitAnim(c, types.AnimRun)
}

func (s *BehaviorSystem) exitFlee(c *agentCtx) {
	s.setSpeed(c, c.tuning().WalkSpeed)
}

// FleeVeryEasyState 最低档逃跑：随机选一个背离玩家的方向并保持，直到边界迫使换向
type FleeVeryEasyState struct {
	stateBase
	dir utils.Vec3
}

func (s *BehaviorSystem) newFleeVeryEasy(id ecs.EntityID) *FleeVeryEasyState {
	return &FleeVeryEasyState{stateBase: stateBase{sys: s, id: id}}
}

func (st *FleeVeryEasyState) Name() string { return "FleeVeryEasy" }

func (st *FleeVeryEasyState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.enterFlee(c)
	away := c.transform.Forward.FlatNormalize()
	if p, ok := st.sys.player(); ok {
		if d := c.pos().Sub(p.pos).FlatNormalize(); !d.IsZero() {
			away = d
		}
	}
	if away.IsZero() {
		away = utils.RandDirection(st.sys.rng)
	}
	st.dir = away.RotateY(utils.RandRange(st.sys.rng, -fleeDirectionSpread, fleeDirectionSpread))
	if target, ok := st.sys.fleeTarget(c, st.dir); ok {
		st.sys.setDestinationSmart(c, target, true)
	}
}

func (st *FleeVeryEasyState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if _, next := st.sys.fleeExit(c); next != nil {
		st.change(c, next)
		return
	}
	if normal, _, threatened := st.sys.edgeThreat(c, st.dir); threatened {
		st.dir = normal.RotateY(utils.RandRange(st.sys.rng, -60, 60))
	}
	if target, ok := st.sys.fleeTarget(c, st.dir); ok {
		st.sys.setDestinationSmart(c, target, false)
	}
}

func (st *FleeVeryEasyState) Exit() {
	if c, ok := st.ctx(); ok {
		st.sys.exitFlee(c)
	}
}

// FleeSimpleState 中档逃跑：每次思考重新计算背离玩家的方向，并参考边界法线
type FleeSimpleState struct {
	stateBase
}

func (s *BehaviorSystem) newFleeSimple(id ecs.EntityID) *FleeSimpleState {
	return &FleeSimpleState{stateBase: stateBase{sys: s, id: id}}
}

func (st *FleeSimpleState) Name() string { return "FleeSimple" }

func (st *FleeSimpleState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.enterFlee(c)
	st.step(c, true)
}

func (st *FleeSimpleState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if _, next := st.sys.fleeExit(c); next != nil {
		st.change(c, next)
		return
	}
	st.step(c, false)
}

func (st *FleeSimpleState) step(c *agentCtx, force bool) {
	p, ok := st.sys.player()
	if !ok {
		return
	}
	dir := c.pos().Sub(p.pos).FlatNormalize()
	if dir.IsZero() {
		dir = c.transform.Forward.FlatNormalize().Scale(-1)
	}
	if normal, _, threatened := st.sys.edgeThreat(c, dir); threatened {
		dir = dir.Add(normal).FlatNormalize()
	}
	if target, ok := st.sys.fleeTarget(c, dir); ok {
		st.sys.setDestinationSmart(c, target, force)
	}
}

func (st *FleeSimpleState) Exit() {
	if c, ok := st.ctx(); ok {
		st.sys.exitFlee(c)
	}
}

// FleeFullState 完整逃跑：预测玩家位置、边界法线混合、之字形横摆、强制更新目的地，
// 并自带沿边界切向滑动的卡死处理。
type FleeFullState struct {
	stateBase
	phase     float64
	stuckTime float64
	lastPos   utils.Vec3
}

func (s *BehaviorSystem) newFleeFull(id ecs.EntityID) *FleeFullState {
	return &FleeFullState{stateBase: stateBase{sys: s, id: id}}
}

func (st *FleeFullState) Name() string       { return "FleeFull" }
func (st *FleeFullState) HandlesStuck() bool { return true }

func (st *FleeFullState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.enterFlee(c)
	st.lastPos = c.pos()
}

func (st *FleeFullState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	p, next := st.sys.fleeExit(c)
	if next != nil {
		st.change(c, next)
		return
	}

	t := c.tuning()
	st.phase += dt
	pos := c.pos()

	// 卡死：沿最近边界的切线滑开
	if utils.DistFlat(pos, st.lastPos) < t.StuckDisplacementEpsilon {
		st.stuckTime += dt
	} else {
		st.stuckTime = 0
	}
	st.lastPos = pos
	if st.stuckTime >= t.FleeStuckTimeout {
		st.stuckTime = 0
		if st.edgeSlide(c, p) {
			return
		}
	}

	away := pos.Sub(fleePrediction(p, t.FleePredictionTime)).FlatNormalize()
	if away.IsZero() {
		away = c.transform.Forward.FlatNormalize()
	}
	if normal, w, threatened := st.sys.edgeThreat(c, away); threatened {
		away = away.Scale(1 - w).Add(normal.Scale(w)).FlatNormalize()
		if away.IsZero() {
			away = normal
		}
	}

	lateral := away.RotateY(90)
	zig := math.Sin(2*math.Pi*t.FleeZigzagFrequency*st.phase) * t.FleeZigzagAmplitude
	cand := pos.Add(away.Scale(t.FleeLookahead)).Add(lateral.Scale(zig))
	if target, ok := st.sys.sample(cand, t.SampleRadius); ok {
		st.sys.setDestinationSmart(c, target, true)
	} else if target, ok := st.sys.fleeTarget(c, away); ok {
		st.sys.setDestinationSmart(c, target, true)
	}
}

// edgeSlide 沿最近边界的切向移动，选择远离玩家的一侧
func (st *FleeFullState) edgeSlide(c *agentCtx, p playerInfo) bool {
	if st.sys.mesh == nil {
		return false
	}
	edge, ok := st.sys.mesh.FindClosestEdge(c.pos())
	if !ok {
		return false
	}
	tangent := edge.Normal.RotateY(90)
	if tangent.Dot(c.pos().Sub(p.pos)) < 0 {
		tangent = tangent.Scale(-1)
	}
	t := c.tuning()
	cand := c.pos().Add(tangent.Scale(t.FleeLookahead)).Add(edge.Normal.Scale(t.EdgeSafetyMargin))
	target, ok := st.sys.sample(cand, t.SampleRadius)
	if !ok {
		return false
	}
	c.stuck.Recoveries++
	return st.sys.setDestinationSmart(c, target, true)
}

func (st *FleeFullState) Exit() {
	if c, ok := st.ctx(); ok {
		st.sys.exitFlee(c)
	}
}

// fleePrediction 玩家的预测位置：有速度时按速度外推，否则沿朝向外推
func fleePrediction(p playerInfo, predictionTime float64) utils.Vec3 {
	if p.vel.FlatLen() > 0.1 {
		return p.pos.Add(p.vel.Scale(predictionTime))
	}
	return p.pos.Add(p.fwd.Scale(predictionTime))
}
