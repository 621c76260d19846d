package broadphase

import (
	"github.com/akmonengine/fulcrum/actor"
)

type endpoint struct {
	value float64
	slot  int
	isMin bool
}

// before orders endpoints along the axis. On equal values a min comes first,
// touching boxes overlap.
func (e endpoint) before(other endpoint) bool {
	if e.value != other.value {
		return e.value < other.value
	}
	return e.isMin && !other.isMin
}

// SweepAndPrune keeps the x endpoints of every proxy sorted between steps.
// Bodies move little from one step to the next, so the insertion sort that
// restores the order is close to linear.
type SweepAndPrune struct {
	casts
	batch
	arena     arena
	endpoints []endpoint
	active    []int
	dirty     bool
}

func NewSweepAndPrune() *SweepAndPrune {
	bp := &SweepAndPrune{}
	bp.casts = casts{cast: bp.Cast}
	bp.batch = batch{create: bp.CreateProxy, remove: bp.RemoveProxy, update: bp.UpdateProxy, query: bp.Query}
	return bp
}

func (bp *SweepAndPrune) Name() string { return NameSweepAndPrune }

func (bp *SweepAndPrune) Len() int { return bp.arena.count }

func (bp *SweepAndPrune) CreateProxy(collider *actor.Collider) actor.Proxy {
	box := collider.GetWorldAabb()
	proxy, index := bp.arena.insert(collider, box)
	bp.endpoints = append(bp.endpoints,
		endpoint{value: box.Min.X(), slot: index, isMin: true},
		endpoint{value: box.Max.X(), slot: index},
	)
	bp.dirty = true
	collider.Attach(bp, proxy)
	return proxy
}

func (bp *SweepAndPrune) RemoveProxy(proxy actor.Proxy) {
	index, ok := bp.arena.remove(proxy)
	if !ok {
		return
	}
	kept := bp.endpoints[:0]
	for _, e := range bp.endpoints {
		if e.slot != index {
			kept = append(kept, e)
		}
	}
	bp.endpoints = kept
}

func (bp *SweepAndPrune) UpdateProxy(proxy actor.Proxy) {
	if index, ok := bp.arena.lookup(proxy); ok {
		bp.arena.refresh(index)
		bp.dirty = true
	}
}

// sort reloads the endpoint values and restores the order
func (bp *SweepAndPrune) sort() {
	if !bp.dirty {
		return
	}
	for i := range bp.endpoints {
		e := &bp.endpoints[i]
		box := bp.arena.slots[e.slot].box
		if e.isMin {
			e.value = box.Min.X()
		} else {
			e.value = box.Max.X()
		}
	}

	for i := 1; i < len(bp.endpoints); i++ {
		e := bp.endpoints[i]
		j := i - 1
		for j >= 0 && e.before(bp.endpoints[j]) {
			bp.endpoints[j+1] = bp.endpoints[j]
			j--
		}
		bp.endpoints[j+1] = e
	}
	bp.dirty = false
}

func (bp *SweepAndPrune) SelfQuery(pairs []Pair) []Pair {
	bp.sort()
	bp.active = bp.active[:0]

	for _, e := range bp.endpoints {
		if !e.isMin {
			for i, slot := range bp.active {
				if slot == e.slot {
					last := len(bp.active) - 1
					bp.active[i] = bp.active[last]
					bp.active = bp.active[:last]
					break
				}
			}
			continue
		}

		s := &bp.arena.slots[e.slot]
		for _, other := range bp.active {
			o := &bp.arena.slots[other]
			if s.box.Overlaps(o.box) {
				pairs = append(pairs, Pair{A: o.collider, B: s.collider})
			}
		}
		bp.active = append(bp.active, e.slot)
	}
	return pairs
}

// sweep calls fn for every proxy whose x interval overlaps [minX, maxX]
func (bp *SweepAndPrune) sweep(minX, maxX float64, fn func(s *slot)) {
	bp.sort()
	for _, e := range bp.endpoints {
		if e.value > maxX {
			break
		}
		if !e.isMin {
			continue
		}
		s := &bp.arena.slots[e.slot]
		if s.box.Max.X() >= minX {
			fn(s)
		}
	}
}

func (bp *SweepAndPrune) Query(box actor.AABB, out []*actor.Collider) []*actor.Collider {
	if !box.IsValid() {
		return out
	}
	bp.sweep(box.Min.X(), box.Max.X(), func(s *slot) {
		if s.box.Overlaps(box) {
			out = append(out, s.collider)
		}
	})
	return out
}

func (bp *SweepAndPrune) Cast(cast CastData, sink Sink) {
	if cast.Degenerate() {
		return
	}
	test := func(s *slot) {
		if hit, t := cast.Test(s.box); hit {
			sink.Add(Candidate{Collider: s.collider, T: t})
		}
	}

	if bounds, bounded := cast.Bounds(); bounded {
		bp.sweep(bounds.Min.X(), bounds.Max.X(), test)
		return
	}
	bp.arena.each(func(_ int, s *slot) { test(s) })
}
