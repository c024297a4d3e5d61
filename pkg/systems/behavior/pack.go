package behavior

import (
	"sort"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/spatial"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// packQueryCapacity 群猎召集时邻居查询的缓冲区容量
const packQueryCapacity = 32

// rearSlotMinPack 启用“后翼”槽位的最小群体规模
const rearSlotMinPack = 4

// Pack 一次狩猎开始时捕获的群体快照
//
// 成员按 EntityID 升序排列，序号即槽位。按值传递，不跨狩猎保留。
type Pack struct {
	Members []ecs.EntityID
}

// NewPack 复制并排序成员列表
func NewPack(members []ecs.EntityID) Pack {
	sorted := append([]ecs.EntityID(nil), members...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return Pack{Members: sorted}
}

// Size 成员数
func (p Pack) Size() int {
	return len(p.Members)
}

// IndexOf 成员序号，不在群体中返回 -1
func (p Pack) IndexOf(id ecs.EntityID) int {
	for i, m := range p.Members {
		if m == id {
			return i
		}
	}
	return -1
}

// Slot 返回成员的序号与总数；不在群体中时按单独成员处理
func (p Pack) Slot(id ecs.EntityID) (index, total int) {
	if i := p.IndexOf(id); i >= 0 {
		return i, len(p.Members)
	}
	return 0, 1
}

// ComputeSlotAngle 槽位相对玩家朝向的角度（度）
//
// 群体规模 ≥ 4 时序号 0 固定为正后方 180°，其余成员在 arc 弧内均匀分布；
// 规模较小时全部成员均匀分布在弧内。只有一个成员时位于正前方 0°。
func ComputeSlotAngle(index, total int, arc float64) float64 {
	n, k := total, index
	if total >= rearSlotMinPack {
		if index == 0 {
			return 180
		}
		n, k = total-1, index-1
	}
	if n <= 1 {
		return 0
	}
	return -arc/2 + arc*float64(k)/float64(n-1)
}

// ComputeIntercept 以玩家为圆心、相对玩家朝向 angle 度、半径 radius 的截击点
func ComputeIntercept(playerPos, playerForward utils.Vec3, angle, radius float64) utils.Vec3 {
	ref := playerForward.FlatNormalize()
	if ref.IsZero() {
		ref = utils.Forward
	}
	return playerPos.Add(ref.RotateY(angle).Scale(radius))
}

// isRearSlot 是否占据后翼槽位
func isRearSlot(index, total int) bool {
	return total >= rearSlotMinPack && index == 0
}

// packEligible 可加入群猎的同种群猎者
func (s *BehaviorSystem) packEligible(c *agentCtx, id ecs.EntityID) bool {
	if id == c.id {
		return true
	}
	other, ok := s.lookup(id)
	if !ok || other.agent.Despawned || other.health.IsDead {
		return false
	}
	if other.agent.Archetype != types.ArchetypePackHunter || other.agent.Species != c.agent.Species {
		return false
	}
	if other.lod.Bucket == types.LODCull {
		return false
	}
	m := other.brain.Machine
	return !fsm.Is[*DeadState](m) && !fsm.Is[*KnockbackState](m)
}

// gatherPack 以调用者为中心收集群体（调用者总在其中），按距离截断到最大规模
func (s *BehaviorSystem) gatherPack(c *agentCtx) Pack {
	t := c.tuning()
	members := []ecs.EntityID{c.id}
	if s.neighbors != nil {
		buf := make([]spatial.Entry, 0, packQueryCapacity)
		found := s.neighbors.Query(c.pos(), t.PackCallRadius, buf)
		sort.Slice(found, func(i, j int) bool {
			di := utils.DistSqFlat(found[i].Pos, c.pos())
			dj := utils.DistSqFlat(found[j].Pos, c.pos())
			if di != dj {
				return di < dj
			}
			return found[i].ID < found[j].ID
		})
		for _, e := range found {
			if len(members) >= t.MaxPackSize {
				break
			}
			if e.ID == c.id || !s.packEligible(c, e.ID) {
				continue
			}
			members = append(members, e.ID)
		}
	}
	return NewPack(members)
}

// validMembers 过滤掉已死亡或已回收的成员
func (s *BehaviorSystem) validMembers(p Pack) Pack {
	kept := make([]ecs.EntityID, 0, len(p.Members))
	for _, id := range p.Members {
		if s.alive(id) && ecs.HasComponent[*components.BrainComponent](s.entityManager, id) {
			kept = append(kept, id)
		}
	}
	return Pack{Members: kept}
}
