package behavior

import (
	"log"

	"github.com/decker502/wildlife/pkg/utils"
)

// trackStuckPosition 只记录位置，不累计卡死时间
func (s *BehaviorSystem) trackStuckPosition(c *agentCtx) {
	c.stuck.LastPosition = c.pos()
	c.stuck.HasLast = true
	c.stuck.StuckTime = 0
}

// watchStuck 卡死看门狗
//
// 有路径且剩余距离足够长，但速度与位移都低于阈值并持续超过 StuckTimeout，判定为卡死。
func (s *BehaviorSystem) watchStuck(c *agentCtx, dt float64) {
	st := c.stuck
	t := c.tuning()
	pos := c.pos()
	if !st.HasLast {
		s.trackStuckPosition(c)
		return
	}
	displacement := utils.DistFlat(pos, st.LastPosition)
	st.LastPosition = pos

	nav := c.nav
	if nav == nil || !nav.Enabled() || !nav.HasPath() || nav.PathPending() || nav.RemainingDistance() <= t.StuckMinRemaining {
		st.StuckTime = 0
		return
	}
	if nav.Velocity().FlatLen() >= t.StuckVelocityEpsilon || displacement >= t.StuckDisplacementEpsilon {
		st.StuckTime = 0
		return
	}

	st.StuckTime += dt
	if st.StuckTime < t.StuckTimeout {
		return
	}
	st.StuckTime = 0
	st.Recoveries++
	if !s.recoverStuck(c) {
		log.Printf("[StuckRecovery] 实体 %d 无可用的恢复点，原地等待", c.id)
	}
}

// recoverStuck 恢复阶梯：先沿边界法线向内微调，再以扇形探测
func (s *BehaviorSystem) recoverStuck(c *agentCtx) bool {
	if s.mesh == nil {
		return false
	}
	t := c.tuning()
	pos := c.pos()

	if edge, ok := s.mesh.FindClosestEdge(pos); ok && edge.Distance <= t.EdgeSafetyMargin {
		target := edge.Position.Add(edge.Normal.Scale(t.EdgeNudgeDistance))
		if p, ok := s.sample(target, t.SampleRadius); ok && s.setDestinationSmart(c, p, true) {
			log.Printf("[StuckRecovery] 实体 %d 靠近边界，向内微调到 (%.1f, %.1f)", c.id, p.X, p.Z)
			return true
		}
	}

	if p, ok := s.probeFan(c, pos, c.transform.Forward, t.ProbeDistance); ok && s.setDestinationSmart(c, p, true) {
		log.Printf("[StuckRecovery] 实体 %d 扇形探测到 (%.1f, %.1f)", c.id, p.X, p.Z)
		return true
	}
	return false
}

// probeFan 在 forward 两侧以 ±step、±2·step … 的角度探测，返回第一个落在网格上的点
func (s *BehaviorSystem) probeFan(c *agentCtx, origin, forward utils.Vec3, distance float64) (utils.Vec3, bool) {
	t := c.tuning()
	fwd := forward.FlatNormalize()
	if fwd.IsZero() {
		fwd = utils.Forward
	}
	for angle := t.ProbeStepAngle; angle <= t.ProbeMaxAngle+1e-9; angle += t.ProbeStepAngle {
		for _, sign := range [...]float64{1, -1} {
			cand := origin.Add(fwd.RotateY(sign * angle).Scale(distance))
			if p, ok := s.sample(cand, t.SampleRadius); ok {
				return p, true
			}
		}
	}
	return utils.Vec3{}, false
}
