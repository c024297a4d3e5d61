// Package spatial 提供按半径查询附近实体的空间哈希
//
// 查询结果写入调用方提供的缓冲区，缓冲区容量即最大结果数；
// 每个调用方持有自己的缓冲区，查询之间不存在共享的全局暂存区。
package spatial

import (
	"math"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/utils"
)

// Entry 查询结果条目
type Entry struct {
	ID  ecs.EntityID
	Pos utils.Vec3
}

type cellKey struct{ x, z int }

// Grid 均匀网格空间哈希（水平面）
type Grid struct {
	cellSize float64
	cells    map[cellKey][]Entry
	count    int
}

// NewGrid 创建空间哈希
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 4
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]Entry),
	}
}

func (g *Grid) key(p utils.Vec3) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / g.cellSize)),
		z: int(math.Floor(p.Z / g.cellSize)),
	}
}

// Clear 清空所有条目（保留各格子的底层数组以便复用）
func (g *Grid) Clear() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
	g.count = 0
}

// Insert 插入实体
func (g *Grid) Insert(id ecs.EntityID, pos utils.Vec3) {
	k := g.key(pos)
	g.cells[k] = append(g.cells[k], Entry{ID: id, Pos: pos})
	g.count++
}

// Len 条目总数
func (g *Grid) Len() int {
	return g.count
}

// Query 查询 center 周围 radius（水平距离）内的实体
// 结果追加到 buf[:0]，数量不超过 cap(buf)；cap 为 0 时不返回任何结果
func (g *Grid) Query(center utils.Vec3, radius float64, buf []Entry) []Entry {
	out := buf[:0]
	limit := cap(buf)
	if limit == 0 || radius < 0 {
		return out
	}
	r2 := radius * radius
	minK := g.key(utils.V3(center.X-radius, 0, center.Z-radius))
	maxK := g.key(utils.V3(center.X+radius, 0, center.Z+radius))
	for z := minK.z; z <= maxK.z; z++ {
		for x := minK.x; x <= maxK.x; x++ {
			for _, e := range g.cells[cellKey{x, z}] {
				if utils.DistSqFlat(e.Pos, center) > r2 {
					continue
				}
				out = append(out, e)
				if len(out) == limit {
					return out
				}
			}
		}
	}
	return out
}
