package behavior

import (
	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/utils"
)

const (
	// MinDestinationDeltaSq 新目的地与上一次目的地的最小平方距离
	MinDestinationDeltaSq = 0.04

	// arriveDistance 到达判定（剩余路径长度）
	arriveDistance = 0.5

	// minReachableStep 朝目标迈进的最小步长
	minReachableStep = 0.5
)

// playerInfo 玩家的只读快照
type playerInfo struct {
	id  ecs.EntityID
	pos utils.Vec3
	vel utils.Vec3
	fwd utils.Vec3
}

// player 返回当前玩家；玩家缺席时 ok 为 false
func (s *BehaviorSystem) player() (playerInfo, bool) {
	if s.players == nil {
		return playerInfo{}, false
	}
	id, ok := s.players.Player()
	if !ok {
		return playerInfo{}, false
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		return playerInfo{}, false
	}
	info := playerInfo{id: id, pos: tr.Position, fwd: tr.Forward.FlatNormalize()}
	if info.fwd.IsZero() {
		info.fwd = utils.Forward
	}
	if pc, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, id); ok {
		info.vel = pc.SmoothedVelocity.Flat()
	}
	return info, true
}

// setDestinationSmart 节流的目的地请求
//
// 非强制请求需同时满足：距上一次请求已过一个导航间隔，且与上一次目的地的
// 平方距离超过 MinDestinationDeltaSq。返回请求是否被下发。
func (s *BehaviorSystem) setDestinationSmart(c *agentCtx, p utils.Vec3, force bool) bool {
	if c.nav == nil || !c.nav.Enabled() {
		return false
	}
	a := c.agent
	if !force && a.HasLastDestination {
		if s.now-a.LastDestinationTime < c.lod.NavInterval {
			return false
		}
		if utils.DistSq(p, a.LastDestination) <= MinDestinationDeltaSq {
			return false
		}
	}
	if !c.nav.SetDestination(p) {
		return false
	}
	a.LastDestination = p
	a.LastDestinationTime = s.now
	a.HasLastDestination = true
	return true
}

// halt 停止移动并清除节流记录，下一次请求总能下发
func (s *BehaviorSystem) halt(c *agentCtx) {
	if c.nav != nil {
		c.nav.ResetPath()
	}
	c.agent.HasLastDestination = false
}

func (s *BehaviorSystem) setSpeed(c *agentCtx, speed float64) {
	if c.nav != nil {
		c.nav.SetSpeed(speed)
	}
}

// arrived 没有路径或剩余路径很短
func arrived(c *agentCtx) bool {
	if c.nav == nil {
		return true
	}
	if c.nav.PathPending() {
		return false
	}
	return !c.nav.HasPath() || c.nav.RemainingDistance() <= arriveDistance
}

// sample 把点投影到导航网格
func (s *BehaviorSystem) sample(p utils.Vec3, radius float64) (utils.Vec3, bool) {
	if s.mesh == nil {
		return utils.Vec3{}, false
	}
	return s.mesh.SamplePosition(p, radius)
}

// reachable 从当前位置到 p 是否有完整路径
func reachable(c *agentCtx, p utils.Vec3) bool {
	return c.nav != nil && c.nav.HasCompletePath(p)
}

// findReachableToward 朝目标寻找可达点：目标本身可达则直接返回，
// 否则沿方向按步长减半回退，直到找到有完整路径的采样点。
func (s *BehaviorSystem) findReachableToward(c *agentCtx, target utils.Vec3) (utils.Vec3, bool) {
	t := c.tuning()
	if p, ok := s.sample(target, t.SampleRadius); ok && reachable(c, p) {
		return p, true
	}
	pos := c.pos()
	dir := target.Sub(pos).FlatNormalize()
	if dir.IsZero() {
		return utils.Vec3{}, false
	}
	step := t.ReturnStepDistance
	if d := utils.DistFlat(pos, target); d < step {
		step = d
	}
	for ; step >= minReachableStep; step *= 0.5 {
		p, ok := s.sample(pos.Add(dir.Scale(step)), t.SampleRadius)
		if ok && reachable(c, p) {
			return p, true
		}
	}
	return utils.Vec3{}, false
}

// pickWanderPoint 离家过远时在出生点附近取点，否则在当前位置附近小幅抖动
func (s *BehaviorSystem) pickWanderPoint(c *agentCtx) (utils.Vec3, bool) {
	t := c.tuning()
	center, radius := c.pos(), t.WanderJitterRadius
	if utils.DistFlat(c.pos(), c.home()) > t.WanderRadius {
		center, radius = c.home(), t.WanderRadius*0.5
	}
	for i := 0; i < 4; i++ {
		cand := center.Add(utils.RandInsideCircle(s.rng, radius))
		p, ok := s.sample(cand, t.SampleRadius)
		if ok && reachable(c, p) {
			return p, true
		}
	}
	return utils.Vec3{}, false
}

// inTerritory 点是否在领地（出生点为圆心）内
func inTerritory(c *agentCtx, p utils.Vec3) bool {
	return utils.DistFlat(c.home(), p) <= c.tuning().TerritoryRadius
}

// leashBroken 受领地约束的原型且玩家在领地外
func leashBroken(c *agentCtx, p playerInfo) bool {
	return c.policy().leashed && !inTerritory(c, p.pos)
}

// facing 目标是否在朝向锥内
func facing(c *agentCtx, target utils.Vec3, coneDeg float64) bool {
	to := target.Sub(c.pos())
	if to.Flat().IsZero() {
		return true
	}
	return utils.AngleY(c.transform.Forward, to) <= coneDeg
}

// faceTowards 手动转向目标（最大转速 degPerSec）
func faceTowards(c *agentCtx, target utils.Vec3, degPerSec, dt float64) {
	to := target.Sub(c.pos()).Flat()
	if to.IsZero() {
		return
	}
	c.transform.Forward = utils.RotateTowardsY(c.transform.Forward, to, degPerSec*dt)
}

// canAttack 进入攻击范围且面向目标
func canAttack(c *agentCtx, target utils.Vec3) bool {
	t := c.tuning()
	return utils.DistFlat(c.pos(), target) <= t.AttackRange && facing(c, target, t.AttackFacingAngle)
}
