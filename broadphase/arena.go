package broadphase

import (
	"github.com/akmonengine/fulcrum/actor"
)

// slot is one proxy of the arena. generation changes every time the slot is freed,
// so handles to a removed proxy go stale instead of reaching its successor.
type slot struct {
	collider   *actor.Collider
	box        actor.AABB
	generation uint32
	alive      bool
	// index of the proxy in a strategy's own packed storage
	packed int
}

// arena hands out generation checked proxies and recycles freed slots
type arena struct {
	slots []slot
	free  []uint32
	count int
}

// proxy handles keep the generation in the high half and index+1 in the low half,
// so the zero handle is never valid
func makeProxy(index, generation uint32) actor.Proxy {
	return actor.Proxy(uint64(generation)<<32 | uint64(index+1))
}

func splitProxy(proxy actor.Proxy) (index, generation uint32, ok bool) {
	low := uint32(uint64(proxy) & 0xffffffff)
	if low == 0 {
		return 0, 0, false
	}
	return low - 1, uint32(uint64(proxy) >> 32), true
}

func (a *arena) insert(collider *actor.Collider, box actor.AABB) (actor.Proxy, int) {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}

	s := &a.slots[index]
	s.collider = collider
	s.box = box
	s.alive = true
	s.packed = -1
	a.count++
	return makeProxy(index, s.generation), int(index)
}

// lookup returns the slot index of a live proxy
func (a *arena) lookup(proxy actor.Proxy) (int, bool) {
	index, generation, ok := splitProxy(proxy)
	if !ok || int(index) >= len(a.slots) {
		return 0, false
	}
	s := &a.slots[index]
	if !s.alive || s.generation != generation {
		return 0, false
	}
	return int(index), true
}

func (a *arena) remove(proxy actor.Proxy) (int, bool) {
	index, ok := a.lookup(proxy)
	if !ok {
		return 0, false
	}
	s := &a.slots[index]
	s.collider = nil
	s.alive = false
	s.generation++
	a.free = append(a.free, uint32(index))
	a.count--
	return index, true
}

// refresh copies the collider's current world AABB into the slot
func (a *arena) refresh(index int) actor.AABB {
	s := &a.slots[index]
	s.box = s.collider.GetWorldAabb()
	return s.box
}

func (a *arena) proxyOf(index int) actor.Proxy {
	return makeProxy(uint32(index), a.slots[index].generation)
}

// each calls fn for every live slot in index order
func (a *arena) each(fn func(index int, s *slot)) {
	for i := range a.slots {
		if a.slots[i].alive {
			fn(i, &a.slots[i])
		}
	}
}
