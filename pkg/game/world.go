package game

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/entities"
	"github.com/decker502/wildlife/pkg/navmesh"
	"github.com/decker502/wildlife/pkg/systems"
	"github.com/decker502/wildlife/pkg/systems/behavior"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// PlayerMoveSpeed 玩家默认移动速度
const PlayerMoveSpeed = 4.5

// TransitionSink 状态切换的外部记录方（遥测）
type TransitionSink interface {
	Record(simTime float64, entityID uint64, archetype, from, to string)
}

// WorldConfig 世界创建参数
type WorldConfig struct {
	Seed       int64
	Field      navmesh.FieldConfig
	Terrain    TerrainConfig
	Archetypes *config.ArchetypeConfig
	LOD        *config.LODConfig
	Population *config.PopulationConfig

	// Respawn 死亡回收后在原种群中心重新生成
	Respawn      bool
	RespawnDelay float64

	Verbose bool
}

// DefaultWorldConfig 默认世界：内置参数、内置种群、开启重生
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Seed:         1,
		Field:        navmesh.DefaultFieldConfig(),
		Terrain:      DefaultTerrainConfig(),
		Archetypes:   config.DefaultArchetypeConfig(),
		LOD:          config.DefaultLODConfig(),
		Population:   config.DefaultPopulationConfig(),
		Respawn:      true,
		RespawnDelay: 10,
	}
}

type pendingRespawn struct {
	spec    entities.AgentSpec
	herd    config.Herd
	hasHerd bool
	at      float64
}

// World 组装 ECS、导航网格与全部系统，按固定顺序推进
//
// 系统顺序：玩家追踪 → LOD → 空间索引 → 行为 → 移动 → 受击闪烁 → 清理。
type World struct {
	EntityManager *ecs.EntityManager
	Mesh          *navmesh.FieldMesh
	Tracker       *systems.PlayerTracker
	LOD           *systems.LODSystem
	Index         *systems.SpatialIndexSystem
	Behavior      *behavior.BehaviorSystem
	Locomotion    *systems.LocomotionSystem
	Flash         *systems.FlashEffectSystem
	Pool          *entities.AgentPool

	cfg    WorldConfig
	rng    *rand.Rand
	player ecs.EntityID
	sink   TransitionSink

	homes    map[ecs.EntityID]config.Herd
	respawns []pendingRespawn

	tick        int
	transitions int
}

// NewWorld 创建世界（不生成任何实体）
func NewWorld(cfg WorldConfig) (*World, error) {
	if cfg.Archetypes == nil {
		cfg.Archetypes = config.DefaultArchetypeConfig()
	}
	if cfg.LOD == nil {
		cfg.LOD = config.DefaultLODConfig()
	}
	if cfg.Population == nil {
		cfg.Population = config.DefaultPopulationConfig()
	}
	if err := cfg.LOD.Validate(); err != nil {
		return nil, fmt.Errorf("invalid LOD config: %w", err)
	}
	if err := cfg.Population.Validate(); err != nil {
		return nil, fmt.Errorf("invalid population: %w", err)
	}
	if cfg.Field.CellSize <= 0 {
		cfg.Field = navmesh.DefaultFieldConfig()
	}

	em := ecs.NewEntityManager()
	mesh := navmesh.NewFieldMesh(cfg.Field, GenerateObstacles(cfg.Field, cfg.Terrain))
	rng := rand.New(rand.NewSource(cfg.Seed))

	w := &World{
		EntityManager: em,
		Mesh:          mesh,
		Tracker:       systems.NewPlayerTracker(em),
		Index:         systems.NewSpatialIndexSystem(em),
		Locomotion:    systems.NewLocomotionSystem(em),
		Flash:         systems.NewFlashEffectSystem(em),
		Pool:          entities.NewAgentPool(em, entities.FieldNavFactory(mesh)),
		cfg:           cfg,
		rng:           rng,
		homes:         make(map[ecs.EntityID]config.Herd),
	}
	w.LOD = systems.NewLODSystem(em, w.Tracker, cfg.LOD)
	w.LOD.Verbose = cfg.Verbose
	w.Behavior = behavior.NewBehaviorSystem(em, mesh, w.Index.Grid(), w.Tracker, rand.New(rand.NewSource(cfg.Seed+7)))
	w.Behavior.Verbose = cfg.Verbose
	w.Behavior.OnTransition = w.onTransition
	w.Behavior.DespawnHandler = w.onDespawn

	log.Printf("[World] 场地 %.0f×%.0f，岩石 %d 块", cfg.Field.Width, cfg.Field.Depth, len(mesh.Obstacles()))
	return w, nil
}

// SetTransitionSink 设置状态切换记录方（可为 nil）
func (w *World) SetTransitionSink(sink TransitionSink) {
	w.sink = sink
}

func (w *World) onTransition(id ecs.EntityID, from, to string) {
	w.transitions++
	if w.sink == nil {
		return
	}
	arch := types.ArchetypeUnknown
	if a, ok := ecs.GetComponent[*components.AgentComponent](w.EntityManager, id); ok {
		arch = a.Archetype
	}
	w.sink.Record(w.Behavior.Now(), uint64(id), arch.String(), from, to)
}

// onDespawn 死亡延迟结束：回收实体，按需排队重生
func (w *World) onDespawn(id ecs.EntityID) {
	a, ok := ecs.GetComponent[*components.AgentComponent](w.EntityManager, id)
	if !ok {
		w.EntityManager.DestroyEntity(id)
		return
	}
	spec := entities.AgentSpec{Archetype: a.Archetype, Species: a.Species, Position: a.SpawnOrigin, Tuning: a.Tuning.Clone()}
	if err := w.Pool.Release(id); err != nil {
		log.Printf("[World] 回收实体 %d 失败: %v", id, err)
		w.EntityManager.DestroyEntity(id)
		return
	}
	herd, hasHerd := w.homes[id]
	delete(w.homes, id)
	if !w.cfg.Respawn {
		return
	}
	if hasHerd && spec.Archetype != types.ArchetypeJumper {
		if p, ok := w.scatter(herd); ok {
			spec.Position = p
		}
	}
	w.respawns = append(w.respawns, pendingRespawn{
		spec:    spec,
		herd:    herd,
		hasHerd: hasHerd,
		at:      w.Behavior.Now() + w.cfg.RespawnDelay,
	})
}

// SpawnPlayer 创建玩家（已存在时瞬移）
func (w *World) SpawnPlayer(pos utils.Vec3) ecs.EntityID {
	if w.player != ecs.InvalidEntity && w.EntityManager.Exists(w.player) {
		if tr, ok := ecs.GetComponent[*components.TransformComponent](w.EntityManager, w.player); ok {
			tr.Position = pos
		}
		return w.player
	}
	w.player = entities.NewPlayerEntity(w.EntityManager, pos, PlayerMoveSpeed)
	w.Tracker.SetPlayer(w.player)
	return w.player
}

// RemovePlayer 玩家离开（NPC 视为玩家缺席）
func (w *World) RemovePlayer() {
	if w.player == ecs.InvalidEntity {
		return
	}
	w.Tracker.ClearPlayer()
	w.EntityManager.DestroyEntity(w.player)
	w.player = ecs.InvalidEntity
}

// Player 当前玩家
func (w *World) Player() (ecs.EntityID, bool) {
	return w.Tracker.Player()
}

// PlayerPosition 当前玩家位置
func (w *World) PlayerPosition() (utils.Vec3, bool) {
	id, ok := w.Tracker.Player()
	if !ok {
		return utils.Vec3{}, false
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)
	if !ok {
		return utils.Vec3{}, false
	}
	return tr.Position, true
}

// MovePlayerTo 设置玩家移动目标（投影到网格上）
func (w *World) MovePlayerTo(target utils.Vec3) bool {
	id, ok := w.Tracker.Player()
	if !ok {
		return false
	}
	pc, ok := ecs.GetComponent[*components.PlayerComponent](w.EntityManager, id)
	if !ok {
		return false
	}
	p, ok := w.Mesh.SamplePosition(target.Flat(), 2)
	if !ok {
		return false
	}
	pc.MoveTarget = &p
	return true
}

// SpawnAgent 从回收池取出 NPC 并激活
func (w *World) SpawnAgent(arch types.Archetype, species string, pos utils.Vec3) (ecs.EntityID, error) {
	return w.spawn(entities.AgentSpec{
		Archetype: arch,
		Species:   species,
		Position:  pos,
		Forward:   utils.RandDirection(w.rng),
		Tuning:    w.cfg.Archetypes.For(arch),
	})
}

func (w *World) spawn(spec entities.AgentSpec) (ecs.EntityID, error) {
	id, err := w.Pool.Acquire(spec)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("spawn %s: %w", spec.Archetype, err)
	}
	if !w.Behavior.OnSpawned(id) {
		if err := w.Pool.Release(id); err != nil {
			log.Printf("[World] 回收实体 %d 失败: %v", id, err)
		}
		return ecs.InvalidEntity, fmt.Errorf("spawn %s: entity %d not activatable", spec.Archetype, id)
	}
	return id, nil
}

// Populate 按种群表生成全部 NPC；跳跃者放在离种群中心最近的岩石顶上
func (w *World) Populate() error {
	for _, herd := range w.cfg.Population.Herds {
		arch, _ := types.ParseArchetype(herd.Archetype)
		perches := w.perchesNear(herd)
		for i := 0; i < herd.Count; i++ {
			var pos utils.Vec3
			if arch == types.ArchetypeJumper && i < len(perches) {
				pos = perches[i]
				pos.Y = w.cfg.Archetypes.For(arch).JumpHeight
			} else {
				p, ok := w.scatter(herd)
				if !ok {
					log.Printf("[World] 种群 %s 在 (%.0f, %.0f) 附近找不到生成点", herd.Species, herd.X, herd.Z)
					continue
				}
				pos = p
			}
			id, err := w.SpawnAgent(arch, herd.Species, pos)
			if err != nil {
				return err
			}
			w.homes[id] = herd
		}
	}
	log.Printf("[World] 生成 NPC %d 个", len(w.Agents()))
	return nil
}

// scatter 在种群范围内取一个网格上的点
func (w *World) scatter(h config.Herd) (utils.Vec3, bool) {
	center := utils.V3(h.X, 0, h.Z)
	for attempt := 0; attempt < 8; attempt++ {
		cand := center.Add(utils.RandInsideCircle(w.rng, h.Radius))
		if p, ok := w.Mesh.SamplePosition(cand, 2); ok {
			return p, true
		}
	}
	return utils.Vec3{}, false
}

// perchesNear 种群中心附近的岩石中心，由近到远
func (w *World) perchesNear(h config.Herd) []utils.Vec3 {
	center := utils.V3(h.X, 0, h.Z)
	var out []utils.Vec3
	for _, ob := range w.Mesh.Obstacles() {
		p := utils.V3(ob.X, 0, ob.Z)
		if utils.DistFlat(p, center) <= h.Radius+ob.Radius {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return utils.DistSqFlat(out[i], center) < utils.DistSqFlat(out[j], center)
	})
	return out
}

// Update 推进一帧
func (w *World) Update(dt float64) {
	w.tick++
	w.Tracker.Update(dt)
	w.LOD.Update(dt)
	w.Index.Update(dt)
	w.Behavior.Update(dt)
	w.Locomotion.Update(dt)
	w.Flash.Update(dt)
	w.EntityManager.RemoveMarkedEntities()
	w.processRespawns()
}

func (w *World) processRespawns() {
	if len(w.respawns) == 0 {
		return
	}
	now := w.Behavior.Now()
	kept := w.respawns[:0]
	for _, r := range w.respawns {
		if now < r.at {
			kept = append(kept, r)
			continue
		}
		id, err := w.spawn(r.spec)
		if err != nil {
			log.Printf("[World] 重生失败: %v", err)
			continue
		}
		if r.hasHerd {
			w.homes[id] = r.herd
		}
	}
	w.respawns = kept
}

// Tick 已推进的帧数
func (w *World) Tick() int { return w.tick }

// Transitions 累计状态切换次数
func (w *World) Transitions() int { return w.transitions }

// Agents 所有活动中的 NPC（升序）
func (w *World) Agents() []ecs.EntityID {
	ids := ecs.GetEntitiesWith1[*components.AgentComponent](w.EntityManager)
	out := ids[:0:0]
	for _, id := range ids {
		if a, _ := ecs.GetComponent[*components.AgentComponent](w.EntityManager, id); a != nil && !a.Despawned {
			out = append(out, id)
		}
	}
	return out
}

// StateHistogram 当前各状态的 NPC 数量
func (w *World) StateHistogram() map[string]int {
	hist := make(map[string]int)
	for _, id := range w.Agents() {
		hist[w.Behavior.StateName(id)]++
	}
	return hist
}

// HitNearest 对玩家 radius 范围内最近的 NPC 造成伤害并击退（调试用）
func (w *World) HitNearest(radius, amount float64) (ecs.EntityID, bool) {
	pp, ok := w.PlayerPosition()
	if !ok {
		return ecs.InvalidEntity, false
	}
	best := ecs.InvalidEntity
	bestDist := math.Inf(1)
	for _, id := range w.Agents() {
		tr, ok := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)
		if !ok {
			continue
		}
		if d := utils.DistFlat(tr.Position, pp); d <= radius && d < bestDist {
			best, bestDist = id, d
		}
	}
	if best == ecs.InvalidEntity {
		return best, false
	}
	tr, _ := ecs.GetComponent[*components.TransformComponent](w.EntityManager, best)
	impulse := tr.Position.Sub(pp).FlatNormalize().Scale(2)
	w.Behavior.Hit(best, amount, impulse)
	return best, true
}
