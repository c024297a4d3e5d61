package behavior

import (
	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/spatial"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// neighborCapacity 集群/间距查询的缓冲区容量
const neighborCapacity = 16

// flockOffset 分离 + 聚合 + 对齐 三项合成的偏移量（同原型同种邻居）
// 结果长度不超过 maxLen
func (s *BehaviorSystem) flockOffset(c *agentCtx, buf []spatial.Entry, maxLen float64) utils.Vec3 {
	if s.neighbors == nil {
		return utils.Vec3{}
	}
	t := c.tuning()
	pos := c.pos()
	found := s.neighbors.Query(pos, t.FlockRadius, buf)

	var separation, centroid, heading utils.Vec3
	count := 0
	for _, e := range found {
		if e.ID == c.id || !s.sameKind(c, e.ID) {
			continue
		}
		away := pos.Sub(e.Pos).Flat()
		d := away.FlatLen()
		if d < t.SeparationDistance && d > 1e-6 {
			separation = separation.Add(away.Scale(1 / (d * d)))
		}
		centroid = centroid.Add(e.Pos.Flat())
		if tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, e.ID); ok {
			heading = heading.Add(tr.Forward.Flat())
		}
		count++
	}
	if count == 0 {
		return utils.Vec3{}
	}

	n := float64(count)
	cohesion := centroid.Scale(1 / n).Sub(pos.Flat())
	alignment := heading.Scale(1 / n).FlatNormalize()
	offset := separation.Scale(t.SeparationWeight).
		Add(cohesion.Scale(t.CohesionWeight)).
		Add(alignment.Scale(t.AlignmentWeight))
	return offset.ClampLen(maxLen)
}

// sameKind 同原型同种、存活
func (s *BehaviorSystem) sameKind(c *agentCtx, id ecs.EntityID) bool {
	other, ok := ecs.GetComponent[*components.AgentComponent](s.entityManager, id)
	if !ok || other.Despawned || !s.alive(id) {
		return false
	}
	return other.Archetype == c.agent.Archetype && other.Species == c.agent.Species
}

// restSpacing 休息时与同种邻居的排斥位移（本帧）
func (s *BehaviorSystem) restSpacing(c *agentCtx, buf []spatial.Entry, dt float64) utils.Vec3 {
	if s.neighbors == nil {
		return utils.Vec3{}
	}
	t := c.tuning()
	pos := c.pos()
	var push utils.Vec3
	for _, e := range s.neighbors.Query(pos, t.RestSpacingRadius, buf) {
		if e.ID == c.id || !s.sameSpecies(c, e.ID) {
			continue
		}
		away := pos.Sub(e.Pos).Flat()
		d := away.FlatLen()
		if d < 1e-6 {
			// 完全重叠时按 ID 取方向
			away = utils.DirFromYaw(float64(c.id%360) * 137.5)
			d = 0
		} else {
			away = away.Scale(1 / d)
		}
		push = push.Add(away.Scale(t.RestSpacingRadius - d))
	}
	return push.Scale(t.RestSpacingStrength * dt)
}

func (s *BehaviorSystem) sameSpecies(c *agentCtx, id ecs.EntityID) bool {
	other, ok := ecs.GetComponent[*components.AgentComponent](s.entityManager, id)
	return ok && !other.Despawned && other.Species == c.agent.Species && s.alive(id)
}

// nearestCompanionTarget 最近的存活非同伴 NPC
func (s *BehaviorSystem) nearestCompanionTarget(c *agentCtx, buf []spatial.Entry) (ecs.EntityID, bool) {
	if s.neighbors == nil {
		return ecs.InvalidEntity, false
	}
	pos := c.pos()
	best := ecs.InvalidEntity
	bestDist := 0.0
	for _, e := range s.neighbors.Query(pos, c.tuning().CompanionDetectionRange, buf) {
		if e.ID == c.id || !s.alive(e.ID) {
			continue
		}
		other, ok := ecs.GetComponent[*components.AgentComponent](s.entityManager, e.ID)
		if !ok || other.Archetype == types.ArchetypeCompanion {
			continue
		}
		d := utils.DistSqFlat(pos, e.Pos)
		if best == ecs.InvalidEntity || d < bestDist || (d == bestDist && e.ID < best) {
			best, bestDist = e.ID, d
		}
	}
	return best, best != ecs.InvalidEntity
}
