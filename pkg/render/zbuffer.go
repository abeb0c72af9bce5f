package render

import (
	"math"
	"sync/atomic"
)

// Sink receives shaded samples.
type Sink interface {
	AddPoint(x, y int, depth float64, c Color)
}

// DepthBuffer resolves visibility per pixel: a cell keeps the color of the
// nearest sample written since the last Invalidate.
//
// Storage is allocated once at a fixed capacity. The active region, set by
// Resize, is the part that Invalidate, AddPoint and Transfer operate on.
// Each cell packs float32 depth bits (high word) with a packed color (low
// word) so AddPoint can update it with a single compare-and-swap.
//
// AddPoint is safe for concurrent use. Resize and Invalidate must not run
// concurrently with AddPoint or Transfer.
type DepthBuffer struct {
	capWidth, capHeight int
	width, height       int
	blank               Color
	cells               []atomic.Uint64
}

const clearDepth = math.MaxFloat32

// NewDepthBuffer allocates a buffer of the given capacity whose active
// region initially spans all of it. Cleared cells hold blank.
func NewDepthBuffer(capWidth, capHeight int, blank Color) *DepthBuffer {
	capWidth, capHeight = max(capWidth, 1), max(capHeight, 1)
	b := &DepthBuffer{
		capWidth:  capWidth,
		capHeight: capHeight,
		width:     capWidth,
		height:    capHeight,
		blank:     blank,
		cells:     make([]atomic.Uint64, capWidth*capHeight),
	}
	b.Invalidate()
	return b
}

func packCell(depth float32, c Color) uint64 {
	return uint64(math.Float32bits(depth))<<32 | uint64(Pack(c))
}

func cellDepth(v uint64) float32 {
	return math.Float32frombits(uint32(v >> 32))
}

// Capacity returns the allocated size.
func (b *DepthBuffer) Capacity() (width, height int) {
	return b.capWidth, b.capHeight
}

// Size returns the active region.
func (b *DepthBuffer) Size() (width, height int) {
	return b.width, b.height
}

// Resize sets the active region. Requests that are empty or exceed the
// capacity leave the region and cell data untouched and return false.
func (b *DepthBuffer) Resize(width, height int) bool {
	if width <= 0 || height <= 0 || width > b.capWidth || height > b.capHeight {
		Logger().Warn("depth buffer resize rejected",
			"width", width, "height", height,
			"capWidth", b.capWidth, "capHeight", b.capHeight)
		return false
	}
	b.width, b.height = width, height
	return true
}

// Invalidate resets every active cell to the far depth and blank color.
func (b *DepthBuffer) Invalidate() {
	reset := packCell(clearDepth, b.blank)
	for y := range b.height {
		row := b.cells[y*b.capWidth : y*b.capWidth+b.width]
		for i := range row {
			row[i].Store(reset)
		}
	}
}

// AddPoint stores c at (x, y) if depth is strictly nearer than the stored
// depth. Points outside the active region and NaN depths are dropped.
// Equal depths keep the earlier write.
func (b *DepthBuffer) AddPoint(x, y int, depth float64, c Color) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height || math.IsNaN(depth) {
		return
	}
	d := float32(depth)
	cell := &b.cells[y*b.capWidth+x]
	next := packCell(d, c)
	for {
		old := cell.Load()
		if !(d < cellDepth(old)) {
			return
		}
		if cell.CompareAndSwap(old, next) {
			return
		}
	}
}

// At returns the stored depth and color of an active cell.
func (b *DepthBuffer) At(x, y int) (depth float64, c Color, ok bool) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0, Color{}, false
	}
	v := b.cells[y*b.capWidth+x].Load()
	return float64(cellDepth(v)), Unpack(uint32(v)), true
}

// Transfer calls fn for every active cell in row-major order.
func (b *DepthBuffer) Transfer(fn func(x, y int, c Color)) {
	for y := range b.height {
		row := b.cells[y*b.capWidth : y*b.capWidth+b.width]
		for x := range row {
			fn(x, y, Unpack(uint32(row[x].Load())))
		}
	}
}
