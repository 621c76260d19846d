package broadphase

import (
	"github.com/akmonengine/fulcrum/actor"
)

// packedBoxes stores bounds as flat arrays, one entry per live proxy.
// Removal swaps the last entry into the hole.
type packedBoxes struct {
	minX, minY, minZ []float64
	maxX, maxY, maxZ []float64
	owner            []int // arena slot of each entry
}

func (p *packedBoxes) len() int {
	return len(p.owner)
}

func (p *packedBoxes) push(box actor.AABB, owner int) int {
	p.minX = append(p.minX, box.Min.X())
	p.minY = append(p.minY, box.Min.Y())
	p.minZ = append(p.minZ, box.Min.Z())
	p.maxX = append(p.maxX, box.Max.X())
	p.maxY = append(p.maxY, box.Max.Y())
	p.maxZ = append(p.maxZ, box.Max.Z())
	p.owner = append(p.owner, owner)
	return len(p.owner) - 1
}

func (p *packedBoxes) set(i int, box actor.AABB) {
	p.minX[i], p.minY[i], p.minZ[i] = box.Min.X(), box.Min.Y(), box.Min.Z()
	p.maxX[i], p.maxY[i], p.maxZ[i] = box.Max.X(), box.Max.Y(), box.Max.Z()
}

// swapRemove removes entry i and returns the owner that moved into it, -1 if none
func (p *packedBoxes) swapRemove(i int) int {
	last := len(p.owner) - 1
	moved := -1
	if i != last {
		p.minX[i], p.minY[i], p.minZ[i] = p.minX[last], p.minY[last], p.minZ[last]
		p.maxX[i], p.maxY[i], p.maxZ[i] = p.maxX[last], p.maxY[last], p.maxZ[last]
		p.owner[i] = p.owner[last]
		moved = p.owner[i]
	}
	p.minX, p.minY, p.minZ = p.minX[:last], p.minY[:last], p.minZ[:last]
	p.maxX, p.maxY, p.maxZ = p.maxX[:last], p.maxY[:last], p.maxZ[:last]
	p.owner = p.owner[:last]
	return moved
}

func (p *packedBoxes) overlaps(i, j int) bool {
	return p.maxX[i] >= p.minX[j] && p.minX[i] <= p.maxX[j] &&
		p.maxY[i] >= p.minY[j] && p.minY[i] <= p.maxY[j] &&
		p.maxZ[i] >= p.minZ[j] && p.minZ[i] <= p.maxZ[j]
}

func (p *packedBoxes) overlapsBox(i int, box actor.AABB) bool {
	return p.maxX[i] >= box.Min.X() && p.minX[i] <= box.Max.X() &&
		p.maxY[i] >= box.Min.Y() && p.minY[i] <= box.Max.Y() &&
		p.maxZ[i] >= box.Min.Z() && p.minZ[i] <= box.Max.Z()
}

// BoundingBox scans packed AABB arrays. Same complexity as NSquared,
// but the scan only touches contiguous floats.
type BoundingBox struct {
	casts
	batch
	arena  arena
	packed packedBoxes
}

func NewBoundingBox() *BoundingBox {
	bp := &BoundingBox{}
	bp.casts = casts{cast: bp.Cast}
	bp.batch = batch{create: bp.CreateProxy, remove: bp.RemoveProxy, update: bp.UpdateProxy, query: bp.Query}
	return bp
}

func (bp *BoundingBox) Name() string { return NameBoundingBox }

func (bp *BoundingBox) Len() int { return bp.arena.count }

func (bp *BoundingBox) CreateProxy(collider *actor.Collider) actor.Proxy {
	box := collider.GetWorldAabb()
	proxy, index := bp.arena.insert(collider, box)
	bp.arena.slots[index].packed = bp.packed.push(box, index)
	collider.Attach(bp, proxy)
	return proxy
}

func (bp *BoundingBox) RemoveProxy(proxy actor.Proxy) {
	index, ok := bp.arena.lookup(proxy)
	if !ok {
		return
	}
	if moved := bp.packed.swapRemove(bp.arena.slots[index].packed); moved >= 0 {
		bp.arena.slots[moved].packed = bp.arena.slots[index].packed
	}
	bp.arena.remove(proxy)
}

func (bp *BoundingBox) UpdateProxy(proxy actor.Proxy) {
	if index, ok := bp.arena.lookup(proxy); ok {
		bp.packed.set(bp.arena.slots[index].packed, bp.arena.refresh(index))
	}
}

func (bp *BoundingBox) SelfQuery(pairs []Pair) []Pair {
	n := bp.packed.len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if bp.packed.overlaps(i, j) {
				pairs = append(pairs, Pair{
					A: bp.arena.slots[bp.packed.owner[i]].collider,
					B: bp.arena.slots[bp.packed.owner[j]].collider,
				})
			}
		}
	}
	return pairs
}

func (bp *BoundingBox) Query(box actor.AABB, out []*actor.Collider) []*actor.Collider {
	if !box.IsValid() {
		return out
	}
	for i := 0; i < bp.packed.len(); i++ {
		if bp.packed.overlapsBox(i, box) {
			out = append(out, bp.arena.slots[bp.packed.owner[i]].collider)
		}
	}
	return out
}

func (bp *BoundingBox) Cast(cast CastData, sink Sink) {
	if cast.Degenerate() {
		return
	}
	bounds, bounded := cast.Bounds()
	for i := 0; i < bp.packed.len(); i++ {
		if bounded && !bp.packed.overlapsBox(i, bounds) {
			continue
		}
		s := &bp.arena.slots[bp.packed.owner[i]]
		if hit, t := cast.Test(s.box); hit {
			sink.Add(Candidate{Collider: s.collider, T: t})
		}
	}
}
