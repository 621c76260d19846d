package constraint

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// AnchorAtom couples a point fixed on A with a point fixed on B
type AnchorAtom struct {
	LocalA mgl64.Vec3
	LocalB mgl64.Vec3

	WorldA mgl64.Vec3
	WorldB mgl64.Vec3
	// ArmA and ArmB go from each body center to its world anchor
	ArmA mgl64.Vec3
	ArmB mgl64.Vec3
}

// NewAnchorAtom anchors both bodies on the same world pivot
func NewAnchorAtom(a, b *actor.RigidBody, pivot mgl64.Vec3) AnchorAtom {
	return AnchorAtom{
		LocalA: a.Transform.ToLocal(pivot),
		LocalB: b.Transform.ToLocal(pivot),
	}
}

func (atom *AnchorAtom) Update(a, b *actor.RigidBody) {
	atom.WorldA = a.Transform.ToWorld(atom.LocalA)
	atom.WorldB = b.Transform.ToWorld(atom.LocalB)
	atom.ArmA = atom.WorldA.Sub(a.Transform.Position)
	atom.ArmB = atom.WorldB.Sub(b.Transform.Position)
}

// Separation is WorldB - WorldA
func (atom *AnchorAtom) Separation() mgl64.Vec3 {
	return atom.WorldB.Sub(atom.WorldA)
}

// AngleAtom locks the relative orientation of B in A's frame
type AngleAtom struct {
	// Rest is conj(qA) * qB, captured once
	Rest mgl64.Quat
	// Error is the world rotation vector taking the rest orientation to the current one
	Error mgl64.Vec3
}

func (atom *AngleAtom) Capture(a, b *actor.RigidBody) {
	atom.Rest = a.Transform.Rotation.Conjugate().Mul(b.Transform.Rotation).Normalize()
}

func (atom *AngleAtom) Update(a, b *actor.RigidBody) {
	target := a.Transform.Rotation.Mul(atom.Rest)
	q := b.Transform.Rotation.Mul(target.Conjugate())
	if q.W < 0 {
		q = q.Scale(-1)
	}
	// small angle: rotation vector ≈ 2 * imaginary part
	atom.Error = q.V.Mul(2)
}

// Twist returns the relative angle of B around an axis expressed in A's local frame,
// measured from the rest orientation, in (-π, π]
func (atom *AngleAtom) Twist(a, b *actor.RigidBody, localAxis mgl64.Vec3) float64 {
	relative := a.Transform.Rotation.Conjugate().Mul(b.Transform.Rotation)
	delta := relative.Mul(atom.Rest.Conjugate())
	if delta.W < 0 {
		delta = delta.Scale(-1)
	}
	return 2 * math.Atan2(delta.V.Dot(localAxis.Normalize()), delta.W)
}

// AxisAtom keeps an axis fixed on A aligned with an axis fixed on B
type AxisAtom struct {
	LocalA mgl64.Vec3
	LocalB mgl64.Vec3

	WorldA mgl64.Vec3
	WorldB mgl64.Vec3
	// Perpendiculars span the plane orthogonal to WorldA
	Perpendiculars [2]mgl64.Vec3
}

// NewAxisAtom uses the same world axis for both bodies
func NewAxisAtom(a, b *actor.RigidBody, axis mgl64.Vec3) AxisAtom {
	axis = axis.Normalize()
	return AxisAtom{
		LocalA: a.Transform.InverseRotation.Rotate(axis),
		LocalB: b.Transform.InverseRotation.Rotate(axis),
	}
}

func (atom *AxisAtom) Update(a, b *actor.RigidBody) {
	atom.WorldA = a.Transform.Rotation.Rotate(atom.LocalA).Normalize()
	atom.WorldB = b.Transform.Rotation.Rotate(atom.LocalB).Normalize()
	atom.Perpendiculars[0], atom.Perpendiculars[1] = TangentBasis(atom.WorldA)
}

// Misalignment is WorldA × WorldB, its component along each perpendicular is a row error
func (atom *AxisAtom) Misalignment() mgl64.Vec3 {
	return atom.WorldA.Cross(atom.WorldB)
}

// TangentBasis returns two unit vectors orthogonal to n and to each other
func TangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	// pick the world axis least aligned with n
	var t1 mgl64.Vec3
	if math.Abs(n.X()) >= 0.57735 {
		t1 = mgl64.Vec3{n.Y(), -n.X(), 0}
	} else {
		t1 = mgl64.Vec3{0, n.Z(), -n.Y()}
	}
	t1 = t1.Normalize()
	return t1, n.Cross(t1)
}
