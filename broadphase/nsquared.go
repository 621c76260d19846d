package broadphase

import (
	"github.com/akmonengine/fulcrum/actor"
)

// NSquared tests every proxy against every other one. It is the reference
// the other strategies are checked against, and fine for a few dozen proxies.
type NSquared struct {
	casts
	batch
	arena arena
}

func NewNSquared() *NSquared {
	bp := &NSquared{}
	bp.casts = casts{cast: bp.Cast}
	bp.batch = batch{create: bp.CreateProxy, remove: bp.RemoveProxy, update: bp.UpdateProxy, query: bp.Query}
	return bp
}

func (bp *NSquared) Name() string { return NameNSquared }

func (bp *NSquared) Len() int { return bp.arena.count }

func (bp *NSquared) CreateProxy(collider *actor.Collider) actor.Proxy {
	proxy, _ := bp.arena.insert(collider, collider.GetWorldAabb())
	collider.Attach(bp, proxy)
	return proxy
}

func (bp *NSquared) RemoveProxy(proxy actor.Proxy) {
	bp.arena.remove(proxy)
}

func (bp *NSquared) UpdateProxy(proxy actor.Proxy) {
	if index, ok := bp.arena.lookup(proxy); ok {
		bp.arena.refresh(index)
	}
}

func (bp *NSquared) SelfQuery(pairs []Pair) []Pair {
	slots := bp.arena.slots
	for i := range slots {
		if !slots[i].alive {
			continue
		}
		for j := i + 1; j < len(slots); j++ {
			if slots[j].alive && slots[i].box.Overlaps(slots[j].box) {
				pairs = append(pairs, Pair{A: slots[i].collider, B: slots[j].collider})
			}
		}
	}
	return pairs
}

func (bp *NSquared) Query(box actor.AABB, out []*actor.Collider) []*actor.Collider {
	if !box.IsValid() {
		return out
	}
	bp.arena.each(func(_ int, s *slot) {
		if s.box.Overlaps(box) {
			out = append(out, s.collider)
		}
	})
	return out
}

func (bp *NSquared) Cast(cast CastData, sink Sink) {
	if cast.Degenerate() {
		return
	}
	bp.arena.each(func(_ int, s *slot) {
		if hit, t := cast.Test(s.box); hit {
			sink.Add(Candidate{Collider: s.collider, T: t})
		}
	})
}
