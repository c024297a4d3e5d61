package systems

import (
	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/spatial"
)

// SpatialIndexCellSize 空间哈希格子边长（米）
const SpatialIndexCellSize = 4.0

// SpatialIndexSystem 每帧重建 NPC 的空间哈希
// 必须在行为系统之前运行
type SpatialIndexSystem struct {
	entityManager *ecs.EntityManager
	grid          *spatial.Grid
}

// NewSpatialIndexSystem 创建空间索引系统
func NewSpatialIndexSystem(em *ecs.EntityManager) *SpatialIndexSystem {
	return &SpatialIndexSystem{
		entityManager: em,
		grid:          spatial.NewGrid(SpatialIndexCellSize),
	}
}

// Grid 返回空间哈希
func (s *SpatialIndexSystem) Grid() *spatial.Grid {
	return s.grid
}

// Update 重建索引（包含已死亡但尚未回收的 NPC，由调用方自行过滤）
func (s *SpatialIndexSystem) Update(dt float64) {
	s.grid.Clear()
	entities := ecs.GetEntitiesWith2[*components.AgentComponent, *components.TransformComponent](s.entityManager)
	for _, id := range entities {
		agent, _ := ecs.GetComponent[*components.AgentComponent](s.entityManager, id)
		if agent.Despawned {
			continue
		}
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		s.grid.Insert(id, tr.Position)
	}
}
