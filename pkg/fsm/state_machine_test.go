package fsm

import (
	"fmt"
	"math/rand"
	"testing"
)

// recordingState 记录生命周期调用顺序
type recordingState struct {
	name    string
	log     *[]string
	onEnter func()
}

func (s *recordingState) Enter() {
	*s.log = append(*s.log, "enter:"+s.name)
	if s.onEnter != nil {
		s.onEnter()
	}
}
func (s *recordingState) Update(dt float64) { *s.log = append(*s.log, "update:"+s.name) }
func (s *recordingState) Exit()             { *s.log = append(*s.log, "exit:"+s.name) }
func (s *recordingState) Name() string      { return s.name }

type otherState struct{ recordingState }

func TestChangeStateOrdering(t *testing.T) {
	var log []string
	m := New()
	a := &recordingState{name: "a", log: &log}
	b := &recordingState{name: "b", log: &log}

	m.ChangeState(a)
	m.Update(0.1)
	m.ChangeState(b)

	want := []string{"enter:a", "update:a", "exit:a", "enter:b"}
	if fmt.Sprint(log) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", log, want)
	}
	if m.Current() != b {
		t.Error("current should be b")
	}
}

// TestSingleActiveStateRandomSequences 任意切换序列下：
// 每次切换后恰有一个活动状态，且前一状态的 Exit 恰好调用一次并先于新状态 Enter
func TestSingleActiveStateRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		var log []string
		states := make([]*recordingState, 5)
		for i := range states {
			states[i] = &recordingState{name: fmt.Sprintf("s%d", i), log: &log}
		}
		m := New()
		active := map[string]int{}
		var prev *recordingState
		for step := 0; step < 30; step++ {
			next := states[rng.Intn(len(states))]
			before := len(log)
			m.ChangeState(next)
			calls := log[before:]

			if prev != nil {
				if len(calls) != 2 || calls[0] != "exit:"+prev.name || calls[1] != "enter:"+next.name {
					t.Fatalf("round %d step %d: unexpected calls %v", round, step, calls)
				}
				active[prev.name]--
			} else if len(calls) != 1 || calls[0] != "enter:"+next.name {
				t.Fatalf("first transition calls: %v", calls)
			}
			active[next.name]++

			total := 0
			for _, n := range active {
				total += n
			}
			if total != 1 || m.Current() != State(next) {
				t.Fatalf("expected exactly one active state, got %v", active)
			}
			prev = next
		}
	}
}

func TestChangeStateInsideEnter(t *testing.T) {
	var log []string
	m := New()
	c := &recordingState{name: "c", log: &log}
	b := &recordingState{name: "b", log: &log, onEnter: func() { m.ChangeState(c) }}
	a := &recordingState{name: "a", log: &log}

	m.ChangeState(a)
	m.ChangeState(b)

	want := []string{"enter:a", "exit:a", "enter:b", "exit:b", "enter:c"}
	if fmt.Sprint(log) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", log, want)
	}
	if m.Current() != c {
		t.Error("current should be c")
	}
}

func TestTransitionHookAndHelpers(t *testing.T) {
	var log []string
	m := New()
	var seen []string
	m.OnTransition = func(from, to State) {
		seen = append(seen, NameOf(from)+"->"+NameOf(to))
	}

	a := &recordingState{name: "a", log: &log}
	o := &otherState{recordingState{name: "o", log: &log}}
	m.ChangeState(a)
	m.ChangeState(o)

	if fmt.Sprint(seen) != "[<none>->a a->o]" {
		t.Errorf("hook calls: %v", seen)
	}
	if !Is[*otherState](m) || Is[*recordingState](m) {
		t.Error("type helpers disagree with current state")
	}
	if m.Transitions() != 2 {
		t.Errorf("transitions = %d", m.Transitions())
	}

	m.Stop()
	if m.Current() != nil || log[len(log)-1] != "exit:o" {
		t.Errorf("Stop should exit the current state: %v", log)
	}
}
