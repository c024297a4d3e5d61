package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// DragThreshold 指针移动超过该像素数才算拖拽，否则按点击处理
const DragThreshold = 4

// IsJustTouchedOrClicked 检查是否刚刚发生点击或触摸
// 返回是否点击以及点击位置
func IsJustTouchedOrClicked() (bool, int, int) {
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}

	return false, 0, 0
}

// IsSecondaryJustClicked 检查右键是否刚刚按下（移动玩家）
func IsSecondaryJustClicked() (bool, int, int) {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}
	return false, 0, 0
}

// GetPointerPosition 获取当前指针位置（触摸或鼠标）
// 优先返回触摸位置，如果没有触摸则返回鼠标位置
func GetPointerPosition() (int, int) {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		return ebiten.TouchPosition(touchIDs[0])
	}
	return ebiten.CursorPosition()
}

// ============================================================================
// 拖拽状态管理器 - 用于调试视图的镜头平移
// ============================================================================

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStatePressed 已按下，尚未超过拖拽阈值
	DragStatePressed
	// DragStateDragging 拖拽中
	DragStateDragging
	// DragStateEnded 拖拽结束（只持续一帧）
	DragStateEnded
	// DragStateClicked 未超过阈值即释放（只持续一帧）
	DragStateClicked
)

// DragInfo 拖拽信息
type DragInfo struct {
	State DragState
	// StartX, StartY 按下位置（屏幕坐标）
	StartX, StartY int
	// CurrentX, CurrentY 当前位置（屏幕坐标）
	CurrentX, CurrentY int
	// DeltaX, DeltaY 本帧位移
	DeltaX, DeltaY int
}

// DragManager 拖拽管理器
// 由调用方每帧传入指针状态，不直接读取输入设备
type DragManager struct {
	info DragInfo
}

// NewDragManager 创建拖拽管理器
func NewDragManager() *DragManager {
	return &DragManager{}
}

// Update 推进拖拽状态（每帧调用一次）
func (dm *DragManager) Update(pressed bool, x, y int) {
	switch dm.info.State {
	case DragStateNone, DragStateEnded, DragStateClicked:
		if pressed {
			dm.info = DragInfo{State: DragStatePressed, StartX: x, StartY: y, CurrentX: x, CurrentY: y}
		} else {
			dm.Reset()
		}

	case DragStatePressed:
		if !pressed {
			dm.info.State = DragStateClicked
			dm.info.DeltaX, dm.info.DeltaY = 0, 0
			return
		}
		dx, dy := x-dm.info.StartX, y-dm.info.StartY
		if dx*dx+dy*dy > DragThreshold*DragThreshold {
			dm.info.State = DragStateDragging
			dm.move(x, y)
		}

	case DragStateDragging:
		if !pressed {
			dm.info.State = DragStateEnded
			dm.info.DeltaX, dm.info.DeltaY = 0, 0
			return
		}
		dm.move(x, y)
	}
}

func (dm *DragManager) move(x, y int) {
	dm.info.DeltaX = x - dm.info.CurrentX
	dm.info.DeltaY = y - dm.info.CurrentY
	dm.info.CurrentX, dm.info.CurrentY = x, y
}

// UpdateFromPointer 用当前鼠标/触摸状态推进
func (dm *DragManager) UpdateFromPointer() {
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || len(ebiten.AppendTouchIDs(nil)) > 0
	x, y := GetPointerPosition()
	dm.Update(pressed, x, y)
}

// Reset 重置拖拽状态
func (dm *DragManager) Reset() {
	dm.info = DragInfo{}
}

// GetState 获取当前拖拽状态
func (dm *DragManager) GetState() DragState {
	return dm.info.State
}

// GetInfo 获取完整拖拽信息
func (dm *DragManager) GetInfo() DragInfo {
	return dm.info
}

// IsDragging 是否正在拖拽
func (dm *DragManager) IsDragging() bool {
	return dm.info.State == DragStateDragging
}

// JustClicked 本帧是否以点击结束
func (dm *DragManager) JustClicked() (bool, int, int) {
	if dm.info.State != DragStateClicked {
		return false, 0, 0
	}
	return true, dm.info.StartX, dm.info.StartY
}

// GetDragDistance 获取拖拽距离（从起点到当前位置）
func (dm *DragManager) GetDragDistance() (dx, dy int) {
	return dm.info.CurrentX - dm.info.StartX, dm.info.CurrentY - dm.info.StartY
}
