package telemetry

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) (*Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.db")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return r, path
}

func TestRecorderFlushAndQuery(t *testing.T) {
	r, _ := openTemp(t)
	defer r.Close()

	r.Record(0, 7, "aggressive_1", "<none>", "Wander")
	r.Record(1.5, 7, "aggressive_1", "Wander", "Chase")
	r.Record(2.0, 7, "aggressive_1", "Chase", "Attack")
	r.Record(0, 9, "passive_simple", "<none>", "Wander")

	if r.Written() != 0 {
		t.Fatalf("written before flush = %d", r.Written())
	}
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if r.Written() != 4 {
		t.Errorf("written = %d, want 4", r.Written())
	}

	counts, err := r.StateCounts()
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 3 || counts[0].State != "Wander" || counts[0].Count != 2 {
		t.Errorf("counts = %+v", counts)
	}

	history, err := r.EntityHistory(7)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Wander", "Chase", "Attack"}
	if len(history) != len(want) {
		t.Fatalf("history = %+v", history)
	}
	for i, tr := range history {
		if tr.ToState != want[i] {
			t.Errorf("history[%d] = %s, want %s", i, tr.ToState, want[i])
		}
		if tr.Session != r.Session() {
			t.Errorf("history[%d] session = %s", i, tr.Session)
		}
	}
}

func TestRecorderAutoFlush(t *testing.T) {
	r, _ := openTemp(t)
	defer r.Close()
	r.SetBatchSize(2)

	r.Record(0, 1, "companion", "<none>", "CompanionFollow")
	if r.Written() != 0 {
		t.Fatal("flushed before batch was full")
	}
	r.Record(0.1, 1, "companion", "CompanionFollow", "CompanionIdle")
	if r.Written() != 2 {
		t.Errorf("written = %d, want 2 after a full batch", r.Written())
	}
}

func TestRecorderSessionsAreIsolated(t *testing.T) {
	r1, path := openTemp(t)
	r1.Record(0, 1, "jumper", "<none>", "PerchRest")
	if err := r1.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	r2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()
	if r2.Session() == r1.Session() {
		t.Fatal("session id reused")
	}

	counts, err := r2.StateCounts()
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 0 {
		t.Errorf("new session sees old rows: %+v", counts)
	}
	sessions, err := r2.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Errorf("sessions = %v, want 2", sessions)
	}
}

func TestFlushEmptyIsNoop(t *testing.T) {
	r, _ := openTemp(t)
	defer r.Close()
	if err := r.Flush(); err != nil {
		t.Errorf("Flush() on empty buffer: %v", err)
	}
}
