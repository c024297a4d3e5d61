package navmesh

import (
	"container/heap"
	"math"

	"github.com/decker502/wildlife/pkg/utils"
)

// FieldConfig 网格导航配置
type FieldConfig struct {
	MinX, MinZ    float64
	Width, Depth  float64
	CellSize      float64
	AgentRadius   float64 // 障碍物膨胀半径
	EdgeSearch    float64 // FindClosestEdge 的搜索半径
	MaxStepHeight float64 // 视为“在网格上”的最大高度差
}

// DefaultFieldConfig 默认配置：以原点为中心的 120×120 场地
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		MinX:          -60,
		MinZ:          -60,
		Width:         120,
		Depth:         120,
		CellSize:      0.5,
		AgentRadius:   0.4,
		EdgeSearch:    6,
		MaxStepHeight: 0.3,
	}
}

// Obstacle 圆形障碍物（岩石、树丛、水塘）
type Obstacle struct {
	X, Z, Radius float64
}

// FieldMesh 水平网格导航网格，地面高度恒为 0
type FieldMesh struct {
	cfg        FieldConfig
	cols, rows int
	walkable   []bool
	obstacles  []Obstacle
}

var neighborOffsets = [...]struct {
	dc, dr   int
	cost     float64
	diagonal bool
}{
	{0, -1, 1, false},
	{1, 0, 1, false},
	{0, 1, 1, false},
	{-1, 0, 1, false},
	{1, -1, math.Sqrt2, true},
	{1, 1, math.Sqrt2, true},
	{-1, 1, math.Sqrt2, true},
	{-1, -1, math.Sqrt2, true},
}

// NewFieldMesh 根据障碍物构建网格
func NewFieldMesh(cfg FieldConfig, obstacles []Obstacle) *FieldMesh {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 0.5
	}
	cols := int(math.Ceil(cfg.Width / cfg.CellSize))
	rows := int(math.Ceil(cfg.Depth / cfg.CellSize))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	m := &FieldMesh{
		cfg:       cfg,
		cols:      cols,
		rows:      rows,
		walkable:  make([]bool, cols*rows),
		obstacles: append([]Obstacle(nil), obstacles...),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := m.cellCenter(col, row)
			blocked := false
			for _, o := range obstacles {
				r := o.Radius + cfg.AgentRadius
				if (c.X-o.X)*(c.X-o.X)+(c.Z-o.Z)*(c.Z-o.Z) <= r*r {
					blocked = true
					break
				}
			}
			m.walkable[m.index(col, row)] = !blocked
		}
	}
	return m
}

// Config 返回网格配置
func (m *FieldMesh) Config() FieldConfig { return m.cfg }

// Obstacles 返回构建网格所用的障碍物
func (m *FieldMesh) Obstacles() []Obstacle { return m.obstacles }

// SetBlocked 手动标记某点所在格子是否阻塞（测试与编辑用）
func (m *FieldMesh) SetBlocked(p utils.Vec3, blocked bool) {
	if col, row, ok := m.locate(p); ok {
		m.walkable[m.index(col, row)] = !blocked
	}
}

func (m *FieldMesh) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < m.cols && row < m.rows
}

func (m *FieldMesh) index(col, row int) int { return row*m.cols + col }

func (m *FieldMesh) cellWalkable(col, row int) bool {
	return m.inBounds(col, row) && m.walkable[m.index(col, row)]
}

func (m *FieldMesh) cellCenter(col, row int) utils.Vec3 {
	return utils.Vec3{
		X: m.cfg.MinX + (float64(col)+0.5)*m.cfg.CellSize,
		Z: m.cfg.MinZ + (float64(row)+0.5)*m.cfg.CellSize,
	}
}

func (m *FieldMesh) locate(p utils.Vec3) (int, int, bool) {
	col := int(math.Floor((p.X - m.cfg.MinX) / m.cfg.CellSize))
	row := int(math.Floor((p.Z - m.cfg.MinZ) / m.cfg.CellSize))
	return col, row, m.inBounds(col, row)
}

// IsWalkable 水平位置是否在可行走格子内
func (m *FieldMesh) IsWalkable(p utils.Vec3) bool {
	col, row, ok := m.locate(p)
	return ok && m.walkable[m.index(col, row)]
}

// OnMesh 位置是否在网格表面上（可行走且高度贴地）
func (m *FieldMesh) OnMesh(p utils.Vec3) bool {
	return m.IsWalkable(p) && math.Abs(p.Y) <= m.cfg.MaxStepHeight
}

// cellInset 夹取时离格子边界的距离，保证结果经 locate 仍落在同一格
const cellInset = 1e-6

// closestPointInCell 把 p 夹到格子矩形内部（地面高度）
//
// 上边界属于相邻格子，因此夹到开区间内。
func (m *FieldMesh) closestPointInCell(p utils.Vec3, col, row int) utils.Vec3 {
	cs := m.cfg.CellSize
	minX := m.cfg.MinX + float64(col)*cs
	minZ := m.cfg.MinZ + float64(row)*cs
	return utils.Vec3{
		X: utils.Clamp(p.X, minX+cellInset, minX+cs-cellInset),
		Z: utils.Clamp(p.Z, minZ+cellInset, minZ+cs-cellInset),
	}
}

// SamplePosition 在 maxDist（三维距离）内寻找最近的可行走点
func (m *FieldMesh) SamplePosition(p utils.Vec3, maxDist float64) (utils.Vec3, bool) {
	if maxDist < 0 || math.Abs(p.Y) > maxDist {
		return utils.Vec3{}, false
	}
	col, row, _ := m.locate(p)
	reach := int(math.Ceil(maxDist/m.cfg.CellSize)) + 1

	best := utils.Vec3{}
	bestDist := math.Inf(1)
	for dr := -reach; dr <= reach; dr++ {
		for dc := -reach; dc <= reach; dc++ {
			c, r := col+dc, row+dr
			if !m.cellWalkable(c, r) {
				continue
			}
			q := m.closestPointInCell(p, c, r)
			d := utils.DistSq(p, q)
			if d < bestDist {
				bestDist = d
				best = q
			}
		}
	}
	if math.IsInf(bestDist, 1) || math.Sqrt(bestDist) > maxDist {
		return utils.Vec3{}, false
	}
	return best, true
}

// FindClosestEdge 搜索 EdgeSearch 半径内最近的边界（可行走格与阻塞格/场地外的交界）
func (m *FieldMesh) FindClosestEdge(p utils.Vec3) (EdgeHit, bool) {
	col, row, _ := m.locate(p)
	reach := int(math.Ceil(m.cfg.EdgeSearch/m.cfg.CellSize)) + 1
	cs := m.cfg.CellSize

	var best EdgeHit
	found := false
	for dr := -reach; dr <= reach; dr++ {
		for dc := -reach; dc <= reach; dc++ {
			c, r := col+dc, row+dr
			if !m.cellWalkable(c, r) {
				continue
			}
			minX := m.cfg.MinX + float64(c)*cs
			minZ := m.cfg.MinZ + float64(r)*cs
			for i := 0; i < 4; i++ {
				off := neighborOffsets[i]
				if m.cellWalkable(c+off.dc, r+off.dr) {
					continue
				}
				// 边界线段：格子朝阻塞方向的一条边
				var a, b utils.Vec3
				switch {
				case off.dr == -1:
					a, b = utils.V3(minX, 0, minZ), utils.V3(minX+cs, 0, minZ)
				case off.dr == 1:
					a, b = utils.V3(minX, 0, minZ+cs), utils.V3(minX+cs, 0, minZ+cs)
				case off.dc == 1:
					a, b = utils.V3(minX+cs, 0, minZ), utils.V3(minX+cs, 0, minZ+cs)
				default:
					a, b = utils.V3(minX, 0, minZ), utils.V3(minX, 0, minZ+cs)
				}
				q := closestOnSegment(p.Flat(), a, b)
				d := utils.DistFlat(p, q)
				if d > m.cfg.EdgeSearch {
					continue
				}
				if !found || d < best.Distance {
					found = true
					best = EdgeHit{
						Position: q,
						Distance: d,
						Normal:   utils.V3(float64(-off.dc), 0, float64(-off.dr)),
					}
				}
			}
		}
	}
	return best, found
}

func closestOnSegment(p, a, b utils.Vec3) utils.Vec3 {
	ab := b.Sub(a)
	t := 0.0
	if l := ab.LenSq(); l > 0 {
		t = utils.Clamp01(p.Sub(a).Dot(ab) / l)
	}
	return a.Add(ab.Scale(t))
}

// ===== A* =====

type cell struct{ col, row int }

type pathNode struct {
	at     cell
	g, f   float64
	index  int
	parent *pathNode
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int           { return len(pq) }
func (pq pathQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }
func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *pathQueue) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*pq)
	*pq = append(*pq, n)
}
func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

func octile(a, b cell) float64 {
	dx := math.Abs(float64(a.col - b.col))
	dy := math.Abs(float64(a.row - b.row))
	if dx > dy {
		return dx + (math.Sqrt2-1)*dy
	}
	return dy + (math.Sqrt2-1)*dx
}

func (m *FieldMesh) canCutCorner(from cell, dc, dr int) bool {
	return m.cellWalkable(from.col+dc, from.row) && m.cellWalkable(from.col, from.row+dr)
}

// FindPath 计算从 start 到 goal 的路径
//
// 终点不可达时返回通往“离终点最近的可达格子”的部分路径，complete=false。
// 起点不在任何可行走格子附近时返回 nil。
func (m *FieldMesh) FindPath(start, goal utils.Vec3) ([]utils.Vec3, bool) {
	startPos, ok := m.SamplePosition(start.Flat(), m.cfg.CellSize*4)
	if !ok {
		return nil, false
	}
	sc, sr, _ := m.locate(startPos)
	s := cell{sc, sr}

	gc, gr, inBounds := m.locate(goal)
	g := cell{gc, gr}
	goalWalkable := inBounds && m.walkable[m.index(gc, gr)]

	open := &pathQueue{}
	heap.Push(open, &pathNode{at: s, f: octile(s, g)})
	gScore := map[int]float64{m.index(s.col, s.row): 0}
	closed := make(map[int]struct{})

	var closest *pathNode
	closestH := math.Inf(1)

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		idx := m.index(current.at.col, current.at.row)
		if _, seen := closed[idx]; seen {
			continue
		}
		closed[idx] = struct{}{}

		if h := octile(current.at, g); h < closestH {
			closestH = h
			closest = current
		}
		if goalWalkable && current.at == g {
			return m.buildPath(current, goal, true), true
		}

		for _, off := range neighborOffsets {
			nc, nr := current.at.col+off.dc, current.at.row+off.dr
			if !m.cellWalkable(nc, nr) {
				continue
			}
			if off.diagonal && !m.canCutCorner(current.at, off.dc, off.dr) {
				continue
			}
			nIdx := m.index(nc, nr)
			if _, seen := closed[nIdx]; seen {
				continue
			}
			tentative := current.g + off.cost
			if prev, ok := gScore[nIdx]; ok && tentative >= prev {
				continue
			}
			gScore[nIdx] = tentative
			next := cell{nc, nr}
			heap.Push(open, &pathNode{at: next, g: tentative, f: tentative + octile(next, g), parent: current})
		}
	}

	if closest == nil {
		return nil, false
	}
	return m.buildPath(closest, m.cellCenter(closest.at.col, closest.at.row), false), false
}

func (m *FieldMesh) buildPath(end *pathNode, target utils.Vec3, complete bool) []utils.Vec3 {
	var cells []cell
	for n := end; n != nil; n = n.parent {
		cells = append(cells, n.at)
	}
	// 反转并去掉起点格
	path := make([]utils.Vec3, 0, len(cells))
	for i := len(cells) - 2; i >= 0; i-- {
		path = append(path, m.cellCenter(cells[i].col, cells[i].row))
	}
	if complete {
		target = target.Flat()
	}
	if len(path) == 0 {
		return []utils.Vec3{target}
	}
	path[len(path)-1] = target
	return path
}
