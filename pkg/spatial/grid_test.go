package spatial

import (
	"testing"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/utils"
)

func TestQueryRadius(t *testing.T) {
	g := NewGrid(2)
	g.Insert(1, utils.V3(0, 0, 0))
	g.Insert(2, utils.V3(1.5, 0, 0))
	g.Insert(3, utils.V3(-3, 0, 0))
	g.Insert(4, utils.V3(10, 0, 10))

	buf := make([]Entry, 0, 8)
	got := g.Query(utils.V3(0, 0, 0), 2, buf)

	ids := map[ecs.EntityID]bool{}
	for _, e := range got {
		ids[e.ID] = true
	}
	if len(got) != 2 || !ids[1] || !ids[2] {
		t.Errorf("expected ids {1,2}, got %+v", got)
	}
}

func TestQueryIsBoundedByBufferCapacity(t *testing.T) {
	g := NewGrid(4)
	for i := 1; i <= 20; i++ {
		g.Insert(ecs.EntityID(i), utils.V3(float64(i)*0.1, 0, 0))
	}

	buf := make([]Entry, 0, 5)
	got := g.Query(utils.V3(1, 0, 0), 10, buf)
	if len(got) != 5 {
		t.Errorf("expected 5 results, got %d", len(got))
	}
	if &got[0] != &buf[:1][0] {
		t.Error("results should reuse the caller buffer")
	}

	if got := g.Query(utils.V3(1, 0, 0), 10, nil); len(got) != 0 {
		t.Errorf("nil buffer must yield no results, got %d", len(got))
	}
}

func TestClearReusesCells(t *testing.T) {
	g := NewGrid(4)
	g.Insert(1, utils.V3(0, 0, 0))
	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Len after Clear = %d", g.Len())
	}
	buf := make([]Entry, 0, 4)
	if got := g.Query(utils.V3(0, 0, 0), 5, buf); len(got) != 0 {
		t.Errorf("expected no results after Clear, got %+v", got)
	}
}
