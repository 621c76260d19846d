package broadphase

import (
	"cmp"
	"slices"

	"github.com/akmonengine/fulcrum/actor"
)

const treeLeafSize = 4

type treeNode struct {
	box         actor.AABB
	left, right int
	// leaves own order[start : start+count]
	start, count int
}

func (n *treeNode) isLeaf() bool {
	return n.count > 0
}

// StaticAabbTree rebuilds a bounding volume hierarchy on every mutation.
// It is meant for geometry that rarely moves: queries are logarithmic, updates are not.
type StaticAabbTree struct {
	casts
	batch
	arena arena
	nodes []treeNode
	order []int
}

func NewStaticAabbTree() *StaticAabbTree {
	bp := &StaticAabbTree{}
	bp.casts = casts{cast: bp.Cast}
	bp.batch = batch{create: bp.CreateProxy, remove: bp.RemoveProxy, update: bp.UpdateProxy, query: bp.Query}
	return bp
}

func (bp *StaticAabbTree) Name() string { return NameStaticAabbTree }

func (bp *StaticAabbTree) Len() int { return bp.arena.count }

func (bp *StaticAabbTree) insert(collider *actor.Collider) actor.Proxy {
	proxy, _ := bp.arena.insert(collider, collider.GetWorldAabb())
	collider.Attach(bp, proxy)
	return proxy
}

func (bp *StaticAabbTree) CreateProxy(collider *actor.Collider) actor.Proxy {
	proxy := bp.insert(collider)
	bp.Construct()
	return proxy
}

// CreateProxies inserts every collider and builds the tree once
func (bp *StaticAabbTree) CreateProxies(colliders []*actor.Collider) []actor.Proxy {
	proxies := make([]actor.Proxy, len(colliders))
	for i, collider := range colliders {
		proxies[i] = bp.insert(collider)
	}
	bp.Construct()
	return proxies
}

func (bp *StaticAabbTree) RemoveProxy(proxy actor.Proxy) {
	if _, ok := bp.arena.remove(proxy); ok {
		bp.Construct()
	}
}

func (bp *StaticAabbTree) RemoveProxies(proxies []actor.Proxy) {
	removed := false
	for _, proxy := range proxies {
		_, ok := bp.arena.remove(proxy)
		removed = removed || ok
	}
	if removed {
		bp.Construct()
	}
}

func (bp *StaticAabbTree) UpdateProxy(proxy actor.Proxy) {
	if index, ok := bp.arena.lookup(proxy); ok {
		bp.arena.refresh(index)
		bp.Construct()
	}
}

func (bp *StaticAabbTree) UpdateProxies(proxies []actor.Proxy) {
	updated := false
	for _, proxy := range proxies {
		if index, ok := bp.arena.lookup(proxy); ok {
			bp.arena.refresh(index)
			updated = true
		}
	}
	if updated {
		bp.Construct()
	}
}

// Construct rebuilds the whole hierarchy from the live proxies,
// splitting at the median of the longest axis
func (bp *StaticAabbTree) Construct() {
	bp.nodes = bp.nodes[:0]
	bp.order = bp.order[:0]
	bp.arena.each(func(index int, _ *slot) {
		bp.order = append(bp.order, index)
	})
	if len(bp.order) == 0 {
		return
	}
	bp.build(0, len(bp.order))
}

func (bp *StaticAabbTree) build(start, end int) int {
	box := bp.arena.slots[bp.order[start]].box
	for _, index := range bp.order[start+1 : end] {
		box = box.Merge(bp.arena.slots[index].box)
	}

	node := len(bp.nodes)
	bp.nodes = append(bp.nodes, treeNode{box: box, left: -1, right: -1})
	if end-start <= treeLeafSize {
		bp.nodes[node].start = start
		bp.nodes[node].count = end - start
		return node
	}

	extents := box.Max.Sub(box.Min)
	axis := 0
	if extents[1] > extents[axis] {
		axis = 1
	}
	if extents[2] > extents[axis] {
		axis = 2
	}
	slices.SortFunc(bp.order[start:end], func(a, b int) int {
		return cmp.Compare(bp.arena.slots[a].box.Center()[axis], bp.arena.slots[b].box.Center()[axis])
	})

	mid := start + (end-start)/2
	left := bp.build(start, mid)
	right := bp.build(mid, end)
	bp.nodes[node].left = left
	bp.nodes[node].right = right
	return node
}

func (bp *StaticAabbTree) leaf(n *treeNode) []int {
	return bp.order[n.start : n.start+n.count]
}

func (bp *StaticAabbTree) SelfQuery(pairs []Pair) []Pair {
	if len(bp.nodes) == 0 {
		return pairs
	}
	return bp.selfPairs(0, pairs)
}

func (bp *StaticAabbTree) selfPairs(node int, pairs []Pair) []Pair {
	n := &bp.nodes[node]
	if n.isLeaf() {
		items := bp.leaf(n)
		for i, a := range items {
			for _, b := range items[i+1:] {
				pairs = bp.appendOverlap(pairs, a, b)
			}
		}
		return pairs
	}
	pairs = bp.selfPairs(n.left, pairs)
	pairs = bp.selfPairs(n.right, pairs)
	return bp.crossPairs(n.left, n.right, pairs)
}

func (bp *StaticAabbTree) crossPairs(a, b int, pairs []Pair) []Pair {
	na, nb := &bp.nodes[a], &bp.nodes[b]
	if !na.box.Overlaps(nb.box) {
		return pairs
	}

	switch {
	case na.isLeaf() && nb.isLeaf():
		for _, i := range bp.leaf(na) {
			for _, j := range bp.leaf(nb) {
				pairs = bp.appendOverlap(pairs, i, j)
			}
		}
	case na.isLeaf():
		pairs = bp.crossPairs(a, nb.left, pairs)
		pairs = bp.crossPairs(a, nb.right, pairs)
	default:
		pairs = bp.crossPairs(na.left, b, pairs)
		pairs = bp.crossPairs(na.right, b, pairs)
	}
	return pairs
}

func (bp *StaticAabbTree) appendOverlap(pairs []Pair, i, j int) []Pair {
	a, b := &bp.arena.slots[i], &bp.arena.slots[j]
	if a.box.Overlaps(b.box) {
		pairs = append(pairs, Pair{A: a.collider, B: b.collider})
	}
	return pairs
}

// visit walks the nodes accepted by enter and calls fn on each leaf item
func (bp *StaticAabbTree) visit(enter func(box actor.AABB) bool, fn func(s *slot)) {
	if len(bp.nodes) == 0 {
		return
	}
	stack := []int{0}
	for len(stack) > 0 {
		n := &bp.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if !enter(n.box) {
			continue
		}
		if n.isLeaf() {
			for _, index := range bp.leaf(n) {
				fn(&bp.arena.slots[index])
			}
			continue
		}
		stack = append(stack, n.right, n.left)
	}
}

func (bp *StaticAabbTree) Query(box actor.AABB, out []*actor.Collider) []*actor.Collider {
	if !box.IsValid() {
		return out
	}
	bp.visit(box.Overlaps, func(s *slot) {
		if s.box.Overlaps(box) {
			out = append(out, s.collider)
		}
	})
	return out
}

func (bp *StaticAabbTree) Cast(cast CastData, sink Sink) {
	if cast.Degenerate() {
		return
	}
	// a node the cast misses holds nothing the cast can hit
	enter := func(box actor.AABB) bool {
		hit, _ := cast.Test(box)
		return hit
	}
	bp.visit(enter, func(s *slot) {
		if hit, t := cast.Test(s.box); hit {
			sink.Add(Candidate{Collider: s.collider, T: t})
		}
	})
}
