package systems

import (
	"math"
	"testing"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/entities"
	"github.com/decker502/wildlife/pkg/navmesh"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

func newTestMesh() *navmesh.FieldMesh {
	return navmesh.NewFieldMesh(navmesh.DefaultFieldConfig(), nil)
}

func spawnTestAgent(t *testing.T, em *ecs.EntityManager, mesh *navmesh.FieldMesh, pos utils.Vec3) ecs.EntityID {
	t.Helper()
	id, err := entities.NewAgentEntity(em, entities.AgentSpec{
		Archetype: types.ArchetypePassiveSimple,
		Species:   "deer",
		Position:  pos,
		Tuning:    config.DefaultAgentTuning(),
	}, entities.FieldNavFactory(mesh))
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestLODClassification(t *testing.T) {
	s := NewLODSystem(ecs.NewEntityManager(), NewPlayerTracker(ecs.NewEntityManager()), config.DefaultLODConfig())
	tests := []struct {
		distance  float64
		hasPlayer bool
		want      types.LODBucket
	}{
		{5, true, types.LODNear},
		{30, true, types.LODMid},
		{70, true, types.LODFar},
		{200, true, types.LODCull},
		{0, false, types.LODMid},
	}
	for _, tt := range tests {
		if got := s.Classify(tt.distance, tt.hasPlayer); got != tt.want {
			t.Errorf("Classify(%v, %v) = %v, want %v", tt.distance, tt.hasPlayer, got, tt.want)
		}
	}
}

func TestLODEvaluatesOnCadenceAndDetachesCulled(t *testing.T) {
	em := ecs.NewEntityManager()
	mesh := newTestMesh()
	tracker := NewPlayerTracker(em)
	player := entities.NewPlayerEntity(em, utils.V3(0, 0, 0), 5)
	tracker.SetPlayer(player)

	cfg := config.DefaultLODConfig()
	cfg.NearRadius, cfg.MidRadius, cfg.FarRadius = 5, 10, 20
	lodSys := NewLODSystem(em, tracker, cfg)

	id := spawnTestAgent(t, em, mesh, utils.V3(3, 0, 0))
	lod, _ := ecs.GetComponent[*components.LODComponent](em, id)
	nav, _ := ecs.GetComponent[*components.NavAgentComponent](em, id)
	tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)

	lodSys.Update(1.0 / 60)
	if lod.Bucket != types.LODNear || lod.ThinkInterval != cfg.Near.ThinkInterval {
		t.Fatalf("expected near bucket, got %v", lod.Bucket)
	}

	// 玩家远离后，在下一次评估之前分桶保持不变
	playerTr, _ := ecs.GetComponent[*components.TransformComponent](em, player)
	playerTr.Position = utils.V3(50, 0, 0)
	lodSys.Update(0.1)
	if lod.Bucket != types.LODNear {
		t.Fatalf("bucket changed before the evaluation cadence elapsed")
	}

	for i := 0; i < 40; i++ {
		lodSys.Update(1.0 / 60)
	}
	if lod.Bucket != types.LODCull {
		t.Fatalf("expected cull bucket, got %v", lod.Bucket)
	}
	if nav.Attached || !nav.Agent.IsStopped() {
		t.Error("culled agent must detach locomotion")
	}

	playerTr.Position = tr.Position
	for i := 0; i < 40; i++ {
		lodSys.Update(1.0 / 60)
	}
	if lod.Bucket != types.LODNear || !nav.Attached || nav.Agent.IsStopped() {
		t.Errorf("leaving cull must reattach locomotion (bucket %v)", lod.Bucket)
	}
}

func TestLocomotionSkipsDetachedAgents(t *testing.T) {
	em := ecs.NewEntityManager()
	mesh := newTestMesh()
	id := spawnTestAgent(t, em, mesh, utils.V3(0, 0, 0))
	nav, _ := ecs.GetComponent[*components.NavAgentComponent](em, id)
	tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	loco := NewLocomotionSystem(em)

	nav.Agent.SetDestination(utils.V3(5, 0, 0))
	nav.Attached = false
	loco.Update(0.5)
	if tr.Position != utils.V3(0, 0, 0) {
		t.Fatalf("detached agent moved to %+v", tr.Position)
	}

	nav.Attached = true
	loco.Update(0.5)
	if tr.Position.X <= 0 {
		t.Errorf("attached agent did not move: %+v", tr.Position)
	}
}

func TestPlayerTrackerSmoothsVelocity(t *testing.T) {
	em := ecs.NewEntityManager()
	tracker := NewPlayerTracker(em)
	if _, ok := tracker.Player(); ok {
		t.Fatal("no player should be tracked yet")
	}

	id := entities.NewPlayerEntity(em, utils.Vec3{}, 3)
	tracker.SetPlayer(id)
	player, _ := ecs.GetComponent[*components.PlayerComponent](em, id)
	target := utils.V3(100, 0, 0)
	player.MoveTarget = &target

	for i := 0; i < 120; i++ {
		tracker.Update(1.0 / 60)
	}
	if math.Abs(player.SmoothedVelocity.X-3) > 0.05 {
		t.Errorf("smoothed velocity = %+v, want ~3 along X", player.SmoothedVelocity)
	}
	tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	if tr.Forward.X < 0.99 {
		t.Errorf("forward should follow movement: %+v", tr.Forward)
	}

	em.DestroyEntityNow(id)
	if _, ok := tracker.Player(); ok {
		t.Error("destroyed player must be reported as absent")
	}
}

func TestApplyDamage(t *testing.T) {
	em := ecs.NewEntityManager()
	id := em.CreateEntity()
	deaths := 0
	ecs.AddComponent(em, id, &components.HealthComponent{
		CurrentHealth: 10, MaxHealth: 10,
		OnDeath: func(ecs.EntityID) { deaths++ },
	})

	if ApplyDamage(em, id, 4) {
		t.Error("non-lethal damage reported death")
	}
	if !ApplyDamage(em, id, 6) {
		t.Error("lethal damage must report death")
	}
	if ApplyDamage(em, id, 5) {
		t.Error("damage on a dead entity must be ignored")
	}
	health, _ := ecs.GetComponent[*components.HealthComponent](em, id)
	if !health.IsDead || health.CurrentHealth != 0 || deaths != 1 {
		t.Errorf("unexpected health state: %+v deaths=%d", health, deaths)
	}
}

func TestFlashEffectLifecycle(t *testing.T) {
	em := ecs.NewEntityManager()
	id := em.CreateEntity()
	StartFlash(em, id, 0.2)
	sys := NewFlashEffectSystem(em)

	sys.Update(0.1)
	flash, ok := ecs.GetComponent[*components.FlashEffectComponent](em, id)
	if !ok || math.Abs(flash.Intensity-0.5) > 1e-9 {
		t.Fatalf("intensity should decay linearly, got %+v", flash)
	}
	sys.Update(0.15)
	if ecs.HasComponent[*components.FlashEffectComponent](em, id) {
		t.Error("flash component should be removed when finished")
	}
}
