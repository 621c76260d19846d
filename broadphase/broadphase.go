// Package broadphase finds candidate overlaps between colliders without exact geometry.
// Every strategy wraps one spatial structure behind the same BroadPhase interface,
// so a space can pick a dynamic and a static strategy independently.
package broadphase

import (
	"github.com/akmonengine/fulcrum/actor"
)

// Pair is a candidate overlap reported by SelfQuery
type Pair struct {
	A *actor.Collider
	B *actor.Collider
}

// BroadPhase is the contract shared by every strategy.
// Instances are not safe for concurrent use.
type BroadPhase interface {
	// Name is the registry name of the strategy
	Name() string
	// Len is the number of live proxies
	Len() int

	// CreateProxy inserts the collider with its current world AABB and attaches the proxy to it
	CreateProxy(collider *actor.Collider) actor.Proxy
	CreateProxies(colliders []*actor.Collider) []actor.Proxy
	// RemoveProxy ignores stale or foreign handles
	RemoveProxy(proxy actor.Proxy)
	RemoveProxies(proxies []actor.Proxy)
	// UpdateProxy refreshes the stored bounds from the collider's world AABB
	UpdateProxy(proxy actor.Proxy)
	UpdateProxies(proxies []actor.Proxy)

	// SelfQuery appends every overlapping pair of proxies, each pair once
	SelfQuery(pairs []Pair) []Pair
	// Query appends the colliders whose bounds overlap box
	Query(box actor.AABB, out []*actor.Collider) []*actor.Collider
	BatchQuery(boxes []actor.AABB) [][]*actor.Collider

	// Cast hands every broad hit of the descriptor to the sink
	Cast(cast CastData, sink Sink)
	CastRay(ray actor.Ray, maxT float64, sink Sink)
	CastSegment(segment actor.Segment, sink Sink)
	CastAabb(box actor.AABB, sink Sink)
	CastSphere(sphere actor.BoundingSphere, sink Sink)
	CastFrustum(frustum actor.Frustum, sink Sink)
}

// casts implements the typed cast helpers on top of a strategy's Cast
type casts struct {
	cast func(CastData, Sink)
}

func (c casts) CastRay(ray actor.Ray, maxT float64, sink Sink) {
	c.cast(RayCast(ray, maxT), sink)
}

func (c casts) CastSegment(segment actor.Segment, sink Sink) {
	c.cast(SegmentCast(segment), sink)
}

func (c casts) CastAabb(box actor.AABB, sink Sink) {
	c.cast(AabbCast(box), sink)
}

func (c casts) CastSphere(sphere actor.BoundingSphere, sink Sink) {
	c.cast(SphereCast(sphere), sink)
}

func (c casts) CastFrustum(frustum actor.Frustum, sink Sink) {
	c.cast(FrustumCast(frustum), sink)
}

// batch implements the batch helpers on top of the single proxy operations
type batch struct {
	create func(*actor.Collider) actor.Proxy
	remove func(actor.Proxy)
	update func(actor.Proxy)
	query  func(actor.AABB, []*actor.Collider) []*actor.Collider
}

func (b batch) CreateProxies(colliders []*actor.Collider) []actor.Proxy {
	proxies := make([]actor.Proxy, len(colliders))
	for i, collider := range colliders {
		proxies[i] = b.create(collider)
	}
	return proxies
}

func (b batch) RemoveProxies(proxies []actor.Proxy) {
	for _, proxy := range proxies {
		b.remove(proxy)
	}
}

func (b batch) UpdateProxies(proxies []actor.Proxy) {
	for _, proxy := range proxies {
		b.update(proxy)
	}
}

func (b batch) BatchQuery(boxes []actor.AABB) [][]*actor.Collider {
	results := make([][]*actor.Collider, len(boxes))
	for i, box := range boxes {
		results[i] = b.query(box, nil)
	}
	return results
}
