package game

import (
	"math"
	"testing"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/navmesh"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

const testDt = 1.0 / 60.0

type recordedTransition struct {
	id       uint64
	arch     string
	from, to string
}

type sinkStub struct {
	rows []recordedTransition
}

func (s *sinkStub) Record(simTime float64, id uint64, arch, from, to string) {
	s.rows = append(s.rows, recordedTransition{id: id, arch: arch, from: from, to: to})
}

func newTestWorld(t *testing.T, mutate func(*WorldConfig)) *World {
	t.Helper()
	cfg := DefaultWorldConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld() error: %v", err)
	}
	return w
}

func TestGenerateObstaclesDeterministic(t *testing.T) {
	field := navmesh.DefaultFieldConfig()
	cfg := DefaultTerrainConfig()

	a := GenerateObstacles(field, cfg)
	b := GenerateObstacles(field, cfg)
	if len(a) == 0 {
		t.Fatal("no obstacles generated")
	}
	if len(a) != len(b) {
		t.Fatalf("obstacle count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("obstacle %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}

	for _, ob := range a {
		if math.Hypot(ob.X, ob.Z) < cfg.ClearRadius {
			t.Errorf("obstacle %+v inside the clear radius", ob)
		}
		if ob.Radius < cfg.MinRadius || ob.Radius > cfg.MaxRadius {
			t.Errorf("obstacle radius %v out of range", ob.Radius)
		}
		if ob.X < field.MinX || ob.X > field.MinX+field.Width || ob.Z < field.MinZ || ob.Z > field.MinZ+field.Depth {
			t.Errorf("obstacle %+v outside the field", ob)
		}
	}

	cfg.Seed++
	c := GenerateObstacles(field, cfg)
	same := len(c) == len(a)
	for i := 0; same && i < len(a); i++ {
		same = a[i] == c[i]
	}
	if same {
		t.Error("different seeds produced identical terrain")
	}
}

func TestGenerateObstaclesDisabled(t *testing.T) {
	cfg := DefaultTerrainConfig()
	cfg.Spacing = 0
	if got := GenerateObstacles(navmesh.DefaultFieldConfig(), cfg); got != nil {
		t.Errorf("spacing 0 produced %d obstacles", len(got))
	}
}

func TestPopulateSpawnsEveryHerd(t *testing.T) {
	w := newTestWorld(t, nil)
	if err := w.Populate(); err != nil {
		t.Fatalf("Populate() error: %v", err)
	}
	want := config.DefaultPopulationConfig().Total()
	if got := len(w.Agents()); got != want {
		t.Fatalf("agents = %d, want %d", got, want)
	}

	perched := 0
	for _, h := range w.cfg.Population.Herds {
		if h.Archetype == "jumper" {
			perched += min(h.Count, len(w.perchesNear(h)))
		}
	}

	counts := make(map[types.Archetype]int)
	onRock := 0
	for _, id := range w.Agents() {
		a, _ := ecs.GetComponent[*components.AgentComponent](w.EntityManager, id)
		counts[a.Archetype]++
		name := w.Behavior.StateName(id)
		switch a.Archetype {
		case types.ArchetypeJumper:
			if name != "PerchRest" {
				t.Errorf("jumper %d starts in %s", id, name)
			}
			tr, _ := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)
			if tr.Position.Y > 0 {
				onRock++
			}
		case types.ArchetypeCompanion:
			if name != "CompanionFollow" {
				t.Errorf("companion %d starts in %s", id, name)
			}
		default:
			if name != "Wander" {
				t.Errorf("%s %d starts in %s", a.Archetype, id, name)
			}
		}
	}
	if onRock != perched {
		t.Errorf("jumpers on rocks = %d, want %d", onRock, perched)
	}
	for _, a := range types.AllArchetypes() {
		if counts[a] == 0 {
			t.Errorf("no %s spawned", a)
		}
	}
}

func TestWorldRunsDeterministically(t *testing.T) {
	run := func() (map[string]int, int) {
		w := newTestWorld(t, nil)
		if err := w.Populate(); err != nil {
			t.Fatal(err)
		}
		w.SpawnPlayer(utils.V3(0, 0, 0))
		w.MovePlayerTo(utils.V3(-30, 0, -30))
		for i := 0; i < 600; i++ {
			w.Update(testDt)
		}
		return w.StateHistogram(), w.Transitions()
	}
	h1, n1 := run()
	h2, n2 := run()
	if n1 != n2 {
		t.Fatalf("transition counts differ: %d vs %d", n1, n2)
	}
	for k, v := range h1 {
		if h2[k] != v {
			t.Errorf("state %s: %d vs %d", k, v, h2[k])
		}
	}
}

func TestTransitionSinkReceivesArchetype(t *testing.T) {
	w := newTestWorld(t, func(c *WorldConfig) {
		c.Population = &config.PopulationConfig{}
	})
	sink := &sinkStub{}
	w.SetTransitionSink(sink)

	id, err := w.SpawnAgent(types.ArchetypeAggressive3, "boar", utils.V3(20, 0, 20))
	if err != nil {
		t.Fatal(err)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("rows = %+v", sink.rows)
	}
	row := sink.rows[0]
	if row.id != uint64(id) || row.arch != "aggressive_3" || row.to != "Wander" {
		t.Errorf("row = %+v", row)
	}
}

func TestDeadAgentsAreRecycledAndRespawned(t *testing.T) {
	w := newTestWorld(t, func(c *WorldConfig) {
		c.Population = &config.PopulationConfig{Herds: []config.Herd{
			{Archetype: "passive_simple", Species: "deer", Count: 1, X: 20, Z: 20, Radius: 1},
		}}
		c.RespawnDelay = 1
	})
	if err := w.Populate(); err != nil {
		t.Fatal(err)
	}
	old := w.Agents()[0]
	hc, _ := ecs.GetComponent[*components.HealthComponent](w.EntityManager, old)
	hc.IsDead = true

	delay := w.cfg.Archetypes.For(types.ArchetypePassiveSimple).DespawnDelay
	for i := 0; i < int((delay+0.2)/testDt); i++ {
		w.Update(testDt)
	}
	if w.EntityManager.Exists(old) {
		t.Fatal("dead agent still exists after the despawn delay")
	}
	if len(w.Agents()) != 0 || w.Pool.Free() != 1 {
		t.Fatalf("agents = %d, free = %d", len(w.Agents()), w.Pool.Free())
	}

	for i := 0; i < int(1.2/testDt); i++ {
		w.Update(testDt)
	}
	agents := w.Agents()
	if len(agents) != 1 {
		t.Fatalf("agents after respawn = %d, want 1", len(agents))
	}
	if agents[0] == old {
		t.Error("respawned agent reused the old id")
	}
	if w.Pool.Reused != 1 {
		t.Errorf("pool reused = %d, want 1", w.Pool.Reused)
	}
	if got := w.Behavior.StateName(agents[0]); got == "Dead" {
		t.Error("respawned agent is dead")
	}
	tr, _ := ecs.GetComponent[*components.TransformComponent](w.EntityManager, agents[0])
	if utils.DistFlat(tr.Position, utils.V3(20, 0, 20)) > 3 {
		t.Errorf("respawned at %v, want near the herd center", tr.Position)
	}
}

func TestHitNearestKnocksBackPassiveAgent(t *testing.T) {
	w := newTestWorld(t, func(c *WorldConfig) {
		c.Population = &config.PopulationConfig{}
	})
	w.SpawnPlayer(utils.V3(0, 0, 0))
	id, err := w.SpawnAgent(types.ArchetypePassiveSimple, "deer", utils.V3(2, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.HitNearest(1, 10); ok {
		t.Fatal("hit an agent outside the radius")
	}
	got, ok := w.HitNearest(3, 10)
	if !ok || got != id {
		t.Fatalf("HitNearest = (%d, %v), want %d", got, ok, id)
	}
	if name := w.Behavior.StateName(id); name != "Knockback" {
		t.Errorf("state after hit = %s, want Knockback", name)
	}
	hc, _ := ecs.GetComponent[*components.HealthComponent](w.EntityManager, id)
	if hc.CurrentHealth != 90 {
		t.Errorf("health = %v, want 90", hc.CurrentHealth)
	}
}

func TestRemovePlayerReleasesChasers(t *testing.T) {
	w := newTestWorld(t, func(c *WorldConfig) {
		c.Population = &config.PopulationConfig{}
	})
	w.SpawnPlayer(utils.V3(0, 0, 0))
	id, err := w.SpawnAgent(types.ArchetypeAggressive1, "hyena", utils.V3(0, 0, 6))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		w.Update(testDt)
	}
	if name := w.Behavior.StateName(id); name != "Chase" && name != "Attack" {
		t.Fatalf("state = %s, want Chase or Attack", name)
	}

	w.RemovePlayer()
	for i := 0; i < 30; i++ {
		w.Update(testDt)
	}
	if name := w.Behavior.StateName(id); name != "Wander" {
		t.Errorf("state without player = %s, want Wander", name)
	}
	if _, ok := w.Player(); ok {
		t.Error("player still tracked")
	}
}
