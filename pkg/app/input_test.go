package app

import (
	"testing"
)

func TestDragManagerInitialState(t *testing.T) {
	dm := NewDragManager()

	if dm.GetState() != DragStateNone {
		t.Errorf("Expected initial state to be DragStateNone, got %v", dm.GetState())
	}
	if dm.IsDragging() {
		t.Error("Expected IsDragging to be false initially")
	}
	if ok, _, _ := dm.JustClicked(); ok {
		t.Error("Expected JustClicked to be false initially")
	}
}

func TestDragManagerClickBelowThreshold(t *testing.T) {
	dm := NewDragManager()

	dm.Update(true, 100, 200)
	dm.Update(true, 102, 201)
	if dm.GetState() != DragStatePressed {
		t.Fatalf("Expected DragStatePressed, got %v", dm.GetState())
	}

	dm.Update(false, 102, 201)
	ok, x, y := dm.JustClicked()
	if !ok || x != 100 || y != 200 {
		t.Errorf("JustClicked() = (%v, %d, %d), want (true, 100, 200)", ok, x, y)
	}

	// 点击状态只持续一帧
	dm.Update(false, 102, 201)
	if dm.GetState() != DragStateNone {
		t.Errorf("Expected DragStateNone after click frame, got %v", dm.GetState())
	}
}

func TestDragManagerDragDeltas(t *testing.T) {
	dm := NewDragManager()

	dm.Update(true, 100, 100)
	dm.Update(true, 110, 100)
	if !dm.IsDragging() {
		t.Fatal("Expected dragging after exceeding threshold")
	}
	info := dm.GetInfo()
	if info.DeltaX != 10 || info.DeltaY != 0 {
		t.Errorf("delta = (%d, %d), want (10, 0)", info.DeltaX, info.DeltaY)
	}

	dm.Update(true, 115, 90)
	info = dm.GetInfo()
	if info.DeltaX != 5 || info.DeltaY != -10 {
		t.Errorf("delta = (%d, %d), want (5, -10)", info.DeltaX, info.DeltaY)
	}
	dx, dy := dm.GetDragDistance()
	if dx != 15 || dy != -10 {
		t.Errorf("GetDragDistance() = (%d, %d), want (15, -10)", dx, dy)
	}

	dm.Update(false, 115, 90)
	if dm.GetState() != DragStateEnded {
		t.Errorf("Expected DragStateEnded, got %v", dm.GetState())
	}
	if ok, _, _ := dm.JustClicked(); ok {
		t.Error("a drag must not report a click")
	}
}

func TestDragManagerReset(t *testing.T) {
	dm := NewDragManager()
	dm.Update(true, 100, 200)
	dm.Update(true, 150, 250)

	dm.Reset()

	if dm.GetState() != DragStateNone {
		t.Errorf("Expected state to be DragStateNone after reset, got %v", dm.GetState())
	}
	info := dm.GetInfo()
	if info.StartX != 0 || info.CurrentX != 0 || info.DeltaX != 0 {
		t.Errorf("Expected zeroed info after reset, got %+v", info)
	}
}
