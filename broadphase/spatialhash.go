package broadphase

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultCellSize = 2.0
	DefaultCells    = 4096
	// proxies covering more cells than this skip the grid and are tested against everything
	maxCellsPerProxy = 512
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

type cell struct {
	slots []int
}

// SpatialHash is a uniform grid whose cells are hashed into a fixed power of two
// table. Distinct cells may share a bucket, pairs are confirmed on the AABB.
type SpatialHash struct {
	casts
	batch
	arena    arena
	cellSize float64
	cells    []cell
	cellMask int

	oversized []int
	// stamps dedupe a slot met in several cells during one traversal
	stamps []uint32
	mark   uint32
	dirty  bool
}

func NewSpatialHash(cellSize float64, numCells int) *SpatialHash {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		cellSize = DefaultCellSize
	}
	numCells = nextPowerOfTwo(numCells)

	bp := &SpatialHash{
		cellSize: cellSize,
		cells:    make([]cell, numCells),
		cellMask: numCells - 1,
	}
	bp.casts = casts{cast: bp.Cast}
	bp.batch = batch{create: bp.CreateProxy, remove: bp.RemoveProxy, update: bp.UpdateProxy, query: bp.Query}
	return bp
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

func (bp *SpatialHash) Name() string { return NameSpatialHash }

func (bp *SpatialHash) Len() int { return bp.arena.count }

func (bp *SpatialHash) CreateProxy(collider *actor.Collider) actor.Proxy {
	proxy, _ := bp.arena.insert(collider, collider.GetWorldAabb())
	bp.dirty = true
	collider.Attach(bp, proxy)
	return proxy
}

func (bp *SpatialHash) RemoveProxy(proxy actor.Proxy) {
	if _, ok := bp.arena.remove(proxy); ok {
		bp.dirty = true
	}
}

func (bp *SpatialHash) UpdateProxy(proxy actor.Proxy) {
	if index, ok := bp.arena.lookup(proxy); ok {
		bp.arena.refresh(index)
		bp.dirty = true
	}
}

func (bp *SpatialHash) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / bp.cellSize)),
		Y: int(math.Floor(pos.Y() / bp.cellSize)),
		Z: int(math.Floor(pos.Z() / bp.cellSize)),
	}
}

func (bp *SpatialHash) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & bp.cellMask
}

// fits reports whether box covers few enough cells to be stored in the grid
func (bp *SpatialHash) fits(box actor.AABB) bool {
	count := 1.0
	for i := 0; i < 3; i++ {
		span := math.Floor(box.Max[i]/bp.cellSize) - math.Floor(box.Min[i]/bp.cellSize) + 1
		if math.IsNaN(span) || math.IsInf(span, 0) {
			return false
		}
		count *= span
	}
	return count <= maxCellsPerProxy
}

// eachCell calls fn with the bucket of every cell covered by box
func (bp *SpatialHash) eachCell(box actor.AABB, fn func(c *cell)) {
	minCell := bp.worldToCell(box.Min)
	maxCell := bp.worldToCell(box.Max)
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(&bp.cells[bp.hashCell(CellKey{x, y, z})])
			}
		}
	}
}

func (bp *SpatialHash) rebuild() {
	if !bp.dirty {
		return
	}
	for i := range bp.cells {
		bp.cells[i].slots = bp.cells[i].slots[:0]
	}
	bp.oversized = bp.oversized[:0]
	if len(bp.stamps) < len(bp.arena.slots) {
		bp.stamps = make([]uint32, len(bp.arena.slots))
		bp.mark = 0
	}

	bp.arena.each(func(index int, s *slot) {
		if !bp.fits(s.box) {
			bp.oversized = append(bp.oversized, index)
			return
		}
		bp.nextMark()
		bp.eachCell(s.box, func(c *cell) {
			// a slot hashed twice into the same bucket is stored once
			if bp.stamps[index] == bp.mark {
				if n := len(c.slots); n > 0 && c.slots[n-1] == index {
					return
				}
			}
			bp.stamps[index] = bp.mark
			c.slots = append(c.slots, index)
		})
	})
	bp.dirty = false
}

func (bp *SpatialHash) nextMark() {
	bp.mark++
	if bp.mark == 0 {
		clear(bp.stamps)
		bp.mark = 1
	}
}

// seen marks index for the current traversal and reports whether it was already marked
func (bp *SpatialHash) seen(index int) bool {
	if bp.stamps[index] == bp.mark {
		return true
	}
	bp.stamps[index] = bp.mark
	return false
}

func (bp *SpatialHash) SelfQuery(pairs []Pair) []Pair {
	bp.rebuild()
	slots := bp.arena.slots

	for index := range slots {
		a := &slots[index]
		if !a.alive || !bp.fits(a.box) {
			continue
		}
		bp.nextMark()
		bp.eachCell(a.box, func(c *cell) {
			for _, other := range c.slots {
				// each pair is reported from its lower index only
				if other <= index || bp.seen(other) {
					continue
				}
				if b := &slots[other]; a.box.Overlaps(b.box) {
					pairs = append(pairs, Pair{A: a.collider, B: b.collider})
				}
			}
		})
	}

	for i, index := range bp.oversized {
		a := &slots[index]
		bp.arena.each(func(other int, b *slot) {
			if other == index {
				return
			}
			// oversized pairs are reported from the first of the two in the list
			if j := bp.oversizedAt(other); j >= 0 && j <= i {
				return
			}
			if a.box.Overlaps(b.box) {
				pairs = append(pairs, Pair{A: a.collider, B: b.collider})
			}
		})
	}
	return pairs
}

func (bp *SpatialHash) oversizedAt(index int) int {
	for i, o := range bp.oversized {
		if o == index {
			return i
		}
	}
	return -1
}

// candidates calls fn once for every proxy sharing a bucket with box, and every oversized one
func (bp *SpatialHash) candidates(box actor.AABB, fn func(s *slot)) {
	bp.rebuild()
	if !bp.fits(box) {
		bp.arena.each(func(_ int, s *slot) { fn(s) })
		return
	}
	bp.nextMark()
	bp.eachCell(box, func(c *cell) {
		for _, index := range c.slots {
			if !bp.seen(index) {
				fn(&bp.arena.slots[index])
			}
		}
	})
	for _, index := range bp.oversized {
		fn(&bp.arena.slots[index])
	}
}

func (bp *SpatialHash) Query(box actor.AABB, out []*actor.Collider) []*actor.Collider {
	if !box.IsValid() {
		return out
	}
	bp.candidates(box, func(s *slot) {
		if s.box.Overlaps(box) {
			out = append(out, s.collider)
		}
	})
	return out
}

func (bp *SpatialHash) Cast(cast CastData, sink Sink) {
	if cast.Degenerate() {
		return
	}
	test := func(s *slot) {
		if hit, t := cast.Test(s.box); hit {
			sink.Add(Candidate{Collider: s.collider, T: t})
		}
	}

	if bounds, bounded := cast.Bounds(); bounded {
		bp.candidates(bounds, test)
		return
	}
	bp.arena.each(func(_ int, s *slot) { test(s) })
}
