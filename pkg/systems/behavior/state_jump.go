package behavior

import (
	"log"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/task"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// footArriveDistance 走到栖息点脚下的判定距离
const footArriveDistance = 0.75

// startJumpArc 在 NPC 的任务调度器上启动一段抛物线跳跃
//
// 跳跃期间禁用导航代理并直接写入位置；每一步都重新查询实体，
// 实体被回收或销毁后任务自动变为空操作（回收时令牌也会被取消）。
func (s *BehaviorSystem) startJumpArc(c *agentCtx, to utils.Vec3, landed func()) task.Token {
	id := c.id
	from := c.pos()
	t := c.tuning()
	if c.nav != nil {
		c.nav.SetEnabled(false)
	}
	if dir := to.Sub(from).FlatNormalize(); !dir.IsZero() {
		c.transform.Forward = dir
	}
	s.emitAnim(c, types.AnimJump)

	height := t.JumpHeight
	return c.agent.Tasks.Start(task.Sequence(
		task.Timed(t.JumpDuration, func(progress float64) {
			if cc, ok := s.lookup(id); ok && !cc.agent.Despawned {
				cc.transform.Position = utils.ParabolicArc(from, to, height, progress)
			}
		}),
		task.Do(landed),
	))
}

// PerchRestState 栖息：导航代理禁用，只有控制器的跳跃者侦测能唤醒
type PerchRestState struct {
	stateBase
}

func (s *BehaviorSystem) newPerchRest(id ecs.EntityID) *PerchRestState {
	return &PerchRestState{stateBase: stateBase{sys: s, id: id}}
}

func (st *PerchRestState) Name() string { return "PerchRest" }

func (st *PerchRestState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.sys.halt(c)
	if c.nav != nil {
		c.nav.SetEnabled(false)
	}
	c.agent.JumpSessionActive = false
	st.sys.emitAnim(c, types.AnimRest)
}

func (st *PerchRestState) Update(dt float64) {}
func (st *PerchRestState) Exit()             {}

type jumpPhase int

const (
	jumpAirborne jumpPhase = iota
	jumpSettling
	jumpChasing
)

// JumpAttackState 跳向玩家附近的落点，落地后安顿到网格上，
// 再短暂追击并尝试攻击，最后返回栖息点
type JumpAttackState struct {
	stateBase
	phase   jumpPhase
	token   task.Token
	timer   float64
	retries int
}

func (s *BehaviorSystem) newJumpAttack(id ecs.EntityID) *JumpAttackState {
	return &JumpAttackState{stateBase: stateBase{sys: s, id: id}}
}

func (st *JumpAttackState) Name() string { return "JumpAttack" }

// Locked 空中阶段不可打断
func (st *JumpAttackState) Locked() bool { return st.phase == jumpAirborne }

// HandlesStuck 安顿阶段由自身重试处理
func (st *JumpAttackState) HandlesStuck() bool { return st.phase != jumpChasing }

func (st *JumpAttackState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	a := c.agent
	t := c.tuning()
	if !a.JumpSessionActive {
		a.JumpSessionActive = true
		a.JumpSessionDeadline = st.sys.now + t.JumpSessionDuration
	}

	p, ok := st.sys.player()
	if !ok {
		st.change(c, st.sys.newJumpReturnHome(st.id))
		return
	}
	landing, ok := st.sys.sample(p.pos.Add(utils.RandInsideCircle(st.sys.rng, t.JumpLandingRadius)), t.SampleRadius)
	if !ok {
		log.Printf("[BehaviorSystem] 实体 %d 找不到落点，放弃跳跃", st.id)
		st.change(c, st.sys.newJumpReturnHome(st.id))
		return
	}
	st.phase = jumpAirborne
	st.token = st.sys.startJumpArc(c, landing, st.landed)
}

// landed 跳跃任务的最后一步
func (st *JumpAttackState) landed() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if c.nav != nil {
		c.nav.SetEnabled(true)
	}
	st.phase = jumpSettling
	st.timer = 0
	st.retries = 0
}

func (st *JumpAttackState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	t := c.tuning()
	switch st.phase {
	case jumpAirborne:
		return

	case jumpSettling:
		if c.nav != nil && c.nav.IsOnNavMesh() {
			st.phase = jumpChasing
			st.timer = 0
			st.sys.setSpeed(c, t.RunSpeed)
			st.sys.emitAnim(c, types.AnimRun)
			return
		}
		st.timer += dt
		if st.timer < t.SettleInterval {
			return
		}
		st.timer = 0
		st.retries++
		if st.retries > t.SettleRetries {
			log.Printf("[BehaviorSystem] 实体 %d 落地后无法回到网格", st.id)
			st.change(c, st.sys.newJumpReturnHome(st.id))
			return
		}
		if q, ok := st.sys.sample(c.pos(), t.SampleRadius+t.JumpHeight); ok && c.nav != nil {
			c.nav.Warp(q)
		}

	case jumpChasing:
		st.timer += dt
		p, ok := st.sys.player()
		if !ok || st.timer >= t.JumpChaseDuration {
			st.change(c, st.sys.newJumpReturnHome(st.id))
			return
		}
		if utils.DistFlat(c.pos(), p.pos) <= t.AttackRange {
			st.sys.halt(c)
			faceTowards(c, p.pos, t.AngularSpeed, dt)
			// 冷却中不出手，但进入攻击范围后一律回家
			st.sys.strikePlayer(c, p)
			st.change(c, st.sys.newJumpReturnHome(st.id))
			return
		}
		st.sys.setDestinationSmart(c, p.pos, false)
	}
}

func (st *JumpAttackState) Exit() {
	st.token.Cancel()
	if c, ok := st.ctx(); ok {
		st.sys.setSpeed(c, c.tuning().WalkSpeed)
	}
}

// JumpReturnHomeState 走到栖息点脚下，再跳回栖息点
//
// 脚下落点按 FootSearchRadii 由近到远寻找，优先低于栖息点且可达的点；
// 找不到落点或长时间没有进展时直接从当前位置跳回。
type JumpReturnHomeState struct {
	stateBase
	foot       utils.Vec3
	hasFoot    bool
	airborne   bool
	token      task.Token
	bestDist   float64
	noProgress float64
}

func (s *BehaviorSystem) newJumpReturnHome(id ecs.EntityID) *JumpReturnHomeState {
	return &JumpReturnHomeState{stateBase: stateBase{sys: s, id: id}}
}

func (st *JumpReturnHomeState) Name() string       { return "JumpReturnHome" }
func (st *JumpReturnHomeState) Locked() bool       { return st.airborne }
func (st *JumpReturnHomeState) HandlesStuck() bool { return true }

func (st *JumpReturnHomeState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	t := c.tuning()
	if c.nav != nil && !c.nav.Enabled() {
		c.nav.SetEnabled(true)
	}
	st.sys.setSpeed(c, t.WalkSpeed)

	st.foot, st.hasFoot = st.sys.findPerchFoot(c)
	if !st.hasFoot || (c.nav != nil && !c.nav.IsOnNavMesh()) {
		st.jumpHome(c)
		return
	}
	st.bestDist = utils.DistFlat(c.pos(), st.foot)
	st.sys.emitAnim(c, types.AnimWalk)
	st.sys.setDestinationSmart(c, st.foot, true)
}

func (st *JumpReturnHomeState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok || st.airborne {
		return
	}
	t := c.tuning()
	d := utils.DistFlat(c.pos(), st.foot)
	if d <= footArriveDistance {
		st.jumpHome(c)
		return
	}
	if d < st.bestDist-t.StuckDisplacementEpsilon {
		st.bestDist = d
		st.noProgress = 0
	} else {
		st.noProgress += dt
	}
	if st.noProgress >= t.ReturnNoProgressTimeout {
		log.Printf("[BehaviorSystem] 实体 %d 返回栖息点无进展，直接跳回", st.id)
		st.jumpHome(c)
		return
	}
	if arrived(c) {
		st.sys.setDestinationSmart(c, st.foot, true)
	}
}

func (st *JumpReturnHomeState) jumpHome(c *agentCtx) {
	st.sys.halt(c)
	st.airborne = true
	id := st.id
	st.token = st.sys.startJumpArc(c, c.home(), func() {
		cc, ok := st.sys.lookup(id)
		if !ok || cc.agent.Despawned {
			return
		}
		cc.transform.Position = cc.home()
		st.airborne = false
		st.change(cc, st.sys.newPerchRest(id))
	})
}

func (st *JumpReturnHomeState) Exit() {
	st.token.Cancel()
	st.airborne = false
}

// findPerchFoot 在栖息点周围寻找地面落点：优先低于栖息点且可达的点，
// 其次任意可采样的点
func (s *BehaviorSystem) findPerchFoot(c *agentCtx) (utils.Vec3, bool) {
	t := c.tuning()
	perch := c.home()
	base := c.pos().Sub(perch).FlatNormalize()
	if base.IsZero() {
		base = utils.Forward
	}
	var fallback utils.Vec3
	hasFallback := false
	for _, r := range t.FootSearchRadii {
		for _, angle := range []float64{0, 45, -45, 90, -90, 180} {
			cand := perch.Add(base.RotateY(angle).Scale(r))
			cand.Y = perch.Y - t.JumpHeight
			p, ok := s.sample(cand, t.SampleRadius+t.JumpHeight)
			if !ok {
				continue
			}
			if p.Y < perch.Y && reachable(c, p) {
				return p, true
			}
			if !hasFallback {
				fallback, hasFallback = p, true
			}
		}
	}
	return fallback, hasFallback
}
