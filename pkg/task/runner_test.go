package task

import (
	"testing"
)

func TestTimedTaskCompletes(t *testing.T) {
	r := NewRunner()
	var progress []float64
	tok := r.Start(Timed(0.3, func(p float64) { progress = append(progress, p) }))

	for i := 0; i < 5; i++ {
		r.Tick(0.1)
	}

	if tok.Valid() {
		t.Error("token should be invalid after completion")
	}
	if len(progress) == 0 || progress[len(progress)-1] != 1 {
		t.Errorf("final progress must be 1, got %v", progress)
	}
	if r.Active() != 0 {
		t.Errorf("active = %d", r.Active())
	}
}

func TestCancelStopsFurtherSteps(t *testing.T) {
	r := NewRunner()
	calls := 0
	tok := r.Start(func(dt float64) bool {
		calls++
		return false
	})

	r.Tick(0.1)
	tok.Cancel()
	r.Tick(0.1)
	r.Tick(0.1)

	if calls != 1 {
		t.Errorf("cancelled task kept running: %d calls", calls)
	}
	if tok.Valid() {
		t.Error("cancelled token must be invalid")
	}
}

func TestCancelAllFromInsideStep(t *testing.T) {
	r := NewRunner()
	secondCalls := 0
	r.Start(func(dt float64) bool {
		r.CancelAll()
		return false
	})
	r.Start(func(dt float64) bool {
		secondCalls++
		return false
	})

	r.Tick(0.1)
	r.Tick(0.1)

	if secondCalls != 0 {
		t.Errorf("task cancelled mid-tick must not run, got %d calls", secondCalls)
	}
	if r.Active() != 0 {
		t.Errorf("active = %d", r.Active())
	}
}

func TestSequenceAndZeroToken(t *testing.T) {
	r := NewRunner()
	var order []string
	r.Start(Sequence(
		Do(func() { order = append(order, "a") }),
		Wait(0.2),
		Do(func() { order = append(order, "b") }),
	))
	for i := 0; i < 6; i++ {
		r.Tick(0.1)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v", order)
	}

	var zero Token
	zero.Cancel()
	if zero.Valid() {
		t.Error("zero token must be invalid")
	}
}
