package constraint

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// contactMatchDistance is how far a point may drift in A's frame and still
	// inherit the impulse of a previous point
	contactMatchDistance = 0.05

	rowsPerPoint = 3
)

// ContactPoint is one point of a contact manifold.
// LocalA lies on A's surface and LocalB on B's surface, each in its body frame.
type ContactPoint struct {
	// ID identifies the features that produced the point, zero when unknown
	ID uint32

	LocalA mgl64.Vec3
	LocalB mgl64.Vec3

	// Position is the world midpoint of both surface points
	Position mgl64.Vec3
	// Penetration is positive when the surfaces overlap
	Penetration float64

	NormalImpulse  float64
	TangentImpulse [2]float64
}

// NewContactPoint builds a point from the deepest world points of each surface
func NewContactPoint(a, b *actor.RigidBody, pointA, pointB mgl64.Vec3, id uint32) ContactPoint {
	return ContactPoint{
		ID:       id,
		LocalA:   a.Transform.ToLocal(pointA),
		LocalB:   b.Transform.ToLocal(pointB),
		Position: pointA.Add(pointB).Mul(0.5),
	}
}

// Contact is a non-penetration constraint with Coulomb friction between two colliders.
// Normal points from A to B. Each point contributes a normal row and two friction rows.
type Contact struct {
	ColliderA *actor.Collider
	ColliderB *actor.Collider

	Normal mgl64.Vec3
	Points []ContactPoint

	Friction    float64
	Restitution float64

	bodyA    *actor.RigidBody
	bodyB    *actor.RigidBody
	tangents [2]mgl64.Vec3
	slop     float64
}

// NewContact creates a contact and mixes the materials of both bodies
func NewContact(a, b *actor.Collider, normal mgl64.Vec3, points []ContactPoint) *Contact {
	c := &Contact{
		ColliderA: a,
		ColliderB: b,
		Normal:    normal.Normalize(),
		Points:    points,
	}
	if bodyA, bodyB := a.Body(), b.Body(); bodyA != nil && bodyB != nil {
		c.Friction = ComputeFriction(bodyA.Material, bodyB.Material)
		c.Restitution = ComputeRestitution(bodyA.Material, bodyB.Material)
	}
	return c
}

// Update replaces the manifold. New points inherit the impulses of the previous point
// with the same feature ID, or failing that the closest one.
func (c *Contact) Update(normal mgl64.Vec3, points []ContactPoint) {
	previous := c.Points
	c.Normal = normal.Normalize()

	for i := range points {
		p := &points[i]
		best := -1
		bestDistance := contactMatchDistance * contactMatchDistance

		for k := range previous {
			old := &previous[k]
			if p.ID != 0 && p.ID == old.ID {
				best = k
				break
			}
			if d := old.LocalA.Sub(p.LocalA).LenSqr(); d < bestDistance {
				best = k
				bestDistance = d
			}
		}

		if best >= 0 {
			p.NormalImpulse = previous[best].NormalImpulse
			p.TangentImpulse = previous[best].TangentImpulse
		}
	}
	c.Points = points
}

func (c *Contact) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return c.bodyA, c.bodyB
}

// MaxPenetration is the deepest point measured by the last UpdateAtoms
func (c *Contact) MaxPenetration() float64 {
	deepest := math.Inf(-1)
	for _, p := range c.Points {
		deepest = math.Max(deepest, p.Penetration)
	}
	return deepest
}

func (c *Contact) UpdateAtoms() bool {
	a, b, ok := resolveBodies(c.ColliderA, c.ColliderB)
	if !ok || len(c.Points) == 0 {
		c.bodyA, c.bodyB = nil, nil
		return false
	}
	c.bodyA, c.bodyB = a, b
	c.tangents[0], c.tangents[1] = TangentBasis(c.Normal)

	for i := range c.Points {
		p := &c.Points[i]
		worldA := a.Transform.ToWorld(p.LocalA)
		worldB := b.Transform.ToWorld(p.LocalB)

		p.Position = worldA.Add(worldB).Mul(0.5)
		p.Penetration = -worldB.Sub(worldA).Dot(c.Normal)
	}
	return true
}

func (c *Contact) MoleculeCount() int {
	return rowsPerPoint * len(c.Points)
}

// PositionError is the deepest penetration beyond the slop of the last step
func (c *Contact) PositionError() float64 {
	if len(c.Points) == 0 {
		return 0
	}
	return math.Max(c.MaxPenetration()-c.slop, 0)
}

func (c *Contact) ComputeMolecules(w *MoleculeWalker, step Step) {
	rows := w.Take(c.MoleculeCount())
	a, b := c.bodyA, c.bodyB
	c.slop = step.Slop

	for i := range c.Points {
		p := &c.Points[i]
		armA := p.Position.Sub(a.Transform.Position)
		armB := p.Position.Sub(b.Transform.Position)

		// ========== NORMAL ==========
		normal := &rows[i*rowsPerPoint]
		normal.Setup(a, b, PointJacobian(c.Normal, armA, armB), 0)
		normal.Bounds(0, math.Inf(1))
		normal.Positional = true
		normal.Error = math.Min(step.Slop-p.Penetration, 0)

		if p.Penetration < 0 {
			// speculative: the gap may close this step, not more
			normal.Bias = -p.Penetration * step.InvDt
		} else {
			normal.Bias = velocityBias(step, normal.Error)
			approach := normal.Velocity(a, b)
			if approach < -step.RestitutionThreshold && c.Restitution > 0 {
				normal.Bias = math.Min(normal.Bias, c.Restitution*approach)
			}
		}

		normal.Impulse = 0
		if step.WarmStart {
			normal.Impulse = p.NormalImpulse
		}

		// ========== FRICTION ==========
		limit := c.Friction * normal.Impulse
		for k := 0; k < 2; k++ {
			tangent := &rows[i*rowsPerPoint+1+k]
			tangent.Setup(a, b, PointJacobian(c.tangents[k], armA, armB), 0)
			tangent.Bounds(-limit, limit)
			tangent.Bias = 0
			tangent.Error = 0
			tangent.Positional = false

			tangent.Impulse = 0
			if step.WarmStart {
				tangent.Impulse = clamp(p.TangentImpulse[k], -limit, limit)
			}
		}
	}
}

func (c *Contact) WarmStart(w *MoleculeWalker) {
	rows := w.Take(c.MoleculeCount())
	for i := range rows {
		rows[i].WarmStart(c.bodyA, c.bodyB)
	}
}

// Solve runs friction before the normal row of each point, friction is bounded
// by the normal impulse accumulated so far
func (c *Contact) Solve(w *MoleculeWalker) {
	rows := w.Take(c.MoleculeCount())

	for i := 0; i < len(rows); i += rowsPerPoint {
		normal := &rows[i]
		limit := c.Friction * normal.Impulse

		for k := 1; k < rowsPerPoint; k++ {
			rows[i+k].Bounds(-limit, limit)
			rows[i+k].Solve(c.bodyA, c.bodyB)
		}
		normal.Solve(c.bodyA, c.bodyB)
	}
}

func (c *Contact) Commit(w *MoleculeWalker, events []Event) []Event {
	rows := w.Take(c.MoleculeCount())

	for i := range c.Points {
		base := i * rowsPerPoint
		if base+2 >= len(rows) {
			break
		}
		c.Points[i].NormalImpulse = rows[base].Impulse
		c.Points[i].TangentImpulse = [2]float64{rows[base+1].Impulse, rows[base+2].Impulse}
	}
	return events
}

// NormalImpulse sums the normal impulses of all points
func (c *Contact) NormalImpulse() float64 {
	total := 0.0
	for _, p := range c.Points {
		total += p.NormalImpulse
	}
	return total
}
