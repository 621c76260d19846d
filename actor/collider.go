package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Proxy is the opaque handle a broadphase hands out for an inserted collider.
// The zero value means "not inserted".
type Proxy uint64

const NoProxy Proxy = 0

// ProxyOwner is the broadphase that created a collider's proxy
type ProxyOwner interface {
	RemoveProxy(proxy Proxy)
}

// FieldWriter receives a collider's persistent fields by name
type FieldWriter interface {
	WriteField(name string, value any)
}

// Collider binds a Shape to a RigidBody and caches its world-space bounds.
// The body reference is weak: Detach drops it, after which constraints
// treat the collider as missing.
type Collider struct {
	Shape Shape

	body                *RigidBody
	worldAabb           AABB
	worldSphere         BoundingSphere
	localInverseInertia mgl64.Mat3

	owner ProxyOwner
	proxy Proxy
}

func NewCollider(shape Shape, body *RigidBody) *Collider {
	return &Collider{Shape: shape, body: body}
}

// Body returns nil once the collider has been detached
func (c *Collider) Body() *RigidBody {
	if c == nil {
		return nil
	}
	return c.body
}

func (c *Collider) Transform() Transform {
	if c.body == nil {
		return NewTransform()
	}
	return c.body.Transform
}

func (c *Collider) GetWorldAabb() AABB {
	return c.worldAabb
}

func (c *Collider) GetWorldBoundingSphere() BoundingSphere {
	return c.worldSphere
}

// Center is the body origin in world space
func (c *Collider) Center() mgl64.Vec3 {
	return c.Transform().Position
}

// Support returns the furthest world point along a world direction
func (c *Collider) Support(direction mgl64.Vec3) mgl64.Vec3 {
	t := c.Transform()
	localDirection := t.InverseRotation.Rotate(direction)
	return t.ToWorld(c.Shape.Support(localDirection))
}

// ComputeLocalInverseInertia inverts the shape inertia for the given mass.
// Infinite, zero or singular cases produce the zero matrix (immovable rotation).
func (c *Collider) ComputeLocalInverseInertia(mass float64) mgl64.Mat3 {
	if mass <= 0 || math.IsInf(mass, 0) || math.IsNaN(mass) {
		c.localInverseInertia = mgl64.Mat3{}
		return c.localInverseInertia
	}

	inertia := c.Shape.ComputeInertia(mass)
	if math.Abs(inertia.Det()) < 1e-18 {
		c.localInverseInertia = mgl64.Mat3{}
		return c.localInverseInertia
	}

	c.localInverseInertia = inertia.Inv()
	return c.localInverseInertia
}

// LocalInverseInertia is the value cached by the last ComputeLocalInverseInertia call
func (c *Collider) LocalInverseInertia() mgl64.Mat3 {
	return c.localInverseInertia
}

// CacheWorldValues recomputes the world AABB and bounding sphere from the body transform
func (c *Collider) CacheWorldValues() {
	t := c.Transform()
	c.worldAabb = c.Shape.ComputeAABB(t)

	if s, ok := c.Shape.(*Sphere); ok {
		c.worldSphere = BoundingSphere{Center: t.Position, Radius: s.radius()}
		return
	}
	c.worldSphere = c.worldAabb.BoundingSphere()
}

// Attach records the broadphase proxy representing this collider
func (c *Collider) Attach(owner ProxyOwner, proxy Proxy) {
	c.owner = owner
	c.proxy = proxy
}

func (c *Collider) Proxy() Proxy {
	return c.proxy
}

func (c *Collider) Owner() ProxyOwner {
	return c.owner
}

// Detach removes the collider from its broadphase and drops the body reference
func (c *Collider) Detach() {
	if c.owner != nil && c.proxy != NoProxy {
		c.owner.RemoveProxy(c.proxy)
	}
	c.owner = nil
	c.proxy = NoProxy

	if c.body != nil && c.body.Collider == c {
		c.body.Collider = nil
	}
	c.body = nil
}

// Serialize writes the collider's persistent fields
func (c *Collider) Serialize(w FieldWriter) {
	w.WriteField("ShapeType", c.Shape.Type().String())

	switch s := c.Shape.(type) {
	case *Box:
		w.WriteField("HalfExtents", s.HalfExtents)
	case *Sphere:
		w.WriteField("Radius", s.Radius)
	case *Ellipsoid:
		w.WriteField("Radii", s.Radii)
	case *ConvexMesh:
		w.WriteField("Points", s.Points)
	}
	w.WriteField("Volume", c.Shape.Volume())
}
