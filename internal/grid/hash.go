// Package grid provides the uniform-cell spatial hash used for broad-phase
// collision queries. The grid is rebuilt from scratch every substep.
package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	keyBits = 21
	keyMask = 1<<keyBits - 1
	// keyBias shifts cell coordinates into [0, 2^21) before packing.
	keyBias = 1 << (keyBits - 1)
)

// Cell is an integer cell coordinate.
type Cell struct {
	X, Y, Z int
}

// Hash maps packed cell keys to particle index buckets. Bucket slices are
// kept between rebuilds and truncated, so steady-state rebuilds do not allocate.
type Hash struct {
	cellSize    float64
	invCellSize float64
	index       map[uint64]int
	buckets     [][]int
	used        int
}

func New(cellSize float64) *Hash {
	return &Hash{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		index:       make(map[uint64]int),
	}
}

func (h *Hash) CellSize() float64 { return h.cellSize }

// Cells returns the number of occupied cells after the last rebuild.
func (h *Hash) Cells() int { return h.used }

// CellOf returns the floored cell coordinate of p.
func (h *Hash) CellOf(p r3.Vec) Cell {
	return Cell{
		X: clampAxis(math.Floor(p.X * h.invCellSize)),
		Y: clampAxis(math.Floor(p.Y * h.invCellSize)),
		Z: clampAxis(math.Floor(p.Z * h.invCellSize)),
	}
}

// Key packs the cell of p into a single uint64.
func (h *Hash) Key(p r3.Vec) uint64 {
	return PackKey(h.CellOf(p))
}

// PackKey encodes a cell as three biased 21-bit fields: x | y<<21 | z<<42.
func PackKey(c Cell) uint64 {
	return uint64(c.X+keyBias)&keyMask |
		(uint64(c.Y+keyBias)&keyMask)<<keyBits |
		(uint64(c.Z+keyBias)&keyMask)<<(2*keyBits)
}

func clampAxis(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	if f < -keyBias {
		return -keyBias
	}
	if f > keyBias-1 {
		return keyBias - 1
	}
	return int(f)
}

// Rebuild clears the grid and inserts every position by index.
func (h *Hash) Rebuild(positions []r3.Vec) {
	clear(h.index)
	for i := 0; i < h.used; i++ {
		h.buckets[i] = h.buckets[i][:0]
	}
	h.used = 0

	for i, p := range positions {
		k := h.Key(p)
		b, ok := h.index[k]
		if !ok {
			if h.used == len(h.buckets) {
				h.buckets = append(h.buckets, make([]int, 0, 8))
			}
			b = h.used
			h.used++
			h.index[k] = b
		}
		h.buckets[b] = append(h.buckets[b], i)
	}
}

// Neighbors appends to dst the indices stored in the 3x3x3 block of cells
// around p's cell and returns the extended slice. Reuse dst across calls.
func (h *Hash) Neighbors(p r3.Vec, dst []int) []int {
	c := h.CellOf(p)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				b, ok := h.index[PackKey(Cell{c.X + dx, c.Y + dy, c.Z + dz})]
				if !ok {
					continue
				}
				dst = append(dst, h.buckets[b]...)
			}
		}
	}
	return dst
}
