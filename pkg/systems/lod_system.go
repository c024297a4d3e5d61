package systems

import (
	"log"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// PlayerSource 只读的玩家引用
type PlayerSource interface {
	Player() (ecs.EntityID, bool)
}

// LODSystem 按距离玩家的远近把 NPC 分入 Near/Mid/Far/Cull
//
// 分桶按固定节奏评估（默认每 0.5 秒），不是每帧。
// 进入 Cull 时分离导航代理，离开 Cull 时重新挂接。
type LODSystem struct {
	entityManager *ecs.EntityManager
	players       PlayerSource
	config        *config.LODConfig
	Verbose       bool
}

// NewLODSystem 创建 LOD 系统
func NewLODSystem(em *ecs.EntityManager, players PlayerSource, cfg *config.LODConfig) *LODSystem {
	if cfg == nil {
		cfg = config.DefaultLODConfig()
	}
	return &LODSystem{entityManager: em, players: players, config: cfg}
}

// Config 当前 LOD 配置（只读）
func (s *LODSystem) Config() *config.LODConfig {
	return s.config
}

// Classify 根据距离返回分桶；没有玩家时返回保守的 Mid
func (s *LODSystem) Classify(distance float64, hasPlayer bool) types.LODBucket {
	if !hasPlayer {
		return types.LODMid
	}
	switch {
	case distance <= s.config.NearRadius:
		return types.LODNear
	case distance <= s.config.MidRadius:
		return types.LODMid
	case distance <= s.config.FarRadius:
		return types.LODFar
	default:
		return types.LODCull
	}
}

// Cadence 返回分桶对应的思考/导航间隔
func (s *LODSystem) Cadence(b types.LODBucket) config.LODCadence {
	switch b {
	case types.LODNear:
		return s.config.Near
	case types.LODFar:
		return s.config.Far
	default:
		return s.config.Mid
	}
}

// Update 按节奏重新评估每个 NPC 的分桶
func (s *LODSystem) Update(dt float64) {
	var playerPos utils.Vec3
	playerID, hasPlayer := s.players.Player()
	if hasPlayer {
		if tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, playerID); ok {
			playerPos = tr.Position
		} else {
			hasPlayer = false
		}
	}

	entities := ecs.GetEntitiesWith2[*components.LODComponent, *components.TransformComponent](s.entityManager)
	for _, id := range entities {
		lod, _ := ecs.GetComponent[*components.LODComponent](s.entityManager, id)
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)

		lod.EvalTimer -= dt
		if lod.EvalTimer > 0 {
			continue
		}
		lod.EvalTimer += s.config.EvaluationInterval
		if lod.EvalTimer <= 0 {
			lod.EvalTimer = s.config.EvaluationInterval
		}

		bucket := s.Classify(utils.DistFlat(tr.Position, playerPos), hasPlayer)
		s.apply(id, lod, bucket)
	}
}

func (s *LODSystem) apply(id ecs.EntityID, lod *components.LODComponent, bucket types.LODBucket) {
	prev := lod.Bucket
	cad := s.Cadence(bucket)
	lod.Bucket = bucket
	lod.ThinkInterval = cad.ThinkInterval
	lod.NavInterval = cad.NavInterval
	if prev == bucket {
		return
	}

	nav, ok := ecs.GetComponent[*components.NavAgentComponent](s.entityManager, id)
	if ok && nav.Agent != nil {
		switch {
		case bucket == types.LODCull:
			nav.Agent.ResetPath()
			nav.Agent.SetStopped(true)
			nav.Attached = false
		case prev == types.LODCull:
			nav.Agent.SetStopped(false)
			nav.Attached = true
		}
	}
	if s.Verbose {
		log.Printf("[LODSystem] 实体 %d: %s -> %s", id, prev, bucket)
	}
}
