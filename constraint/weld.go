package constraint

import (
	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// WeldJoint removes all six relative degrees of freedom
type WeldJoint struct {
	Joint
	Anchor AnchorAtom
	Angle  AngleAtom
}

// NewWeldJoint welds both colliders at a world pivot in their current relative orientation
func NewWeldJoint(a, b *actor.Collider, pivot mgl64.Vec3) *WeldJoint {
	j := &WeldJoint{}
	j.Joint = newJoint(j, a, b, 6)
	if a.Body() != nil && b.Body() != nil {
		j.Anchor = NewAnchorAtom(a.Body(), b.Body(), pivot)
	}
	return j
}

func (j *WeldJoint) UpdateAtoms() bool {
	capture, ok := j.activate()
	if !ok {
		return false
	}
	if capture {
		j.Angle.Capture(j.bodyA, j.bodyB)
	}
	j.Anchor.Update(j.bodyA, j.bodyB)
	j.Angle.Update(j.bodyA, j.bodyB)

	separation := j.Anchor.Separation()
	for _, axis := range worldAxes {
		j.measure(separation.Dot(axis))
		j.measure(j.Angle.Error.Dot(axis))
	}
	return true
}

func (j *WeldJoint) ComputeMolecules(w *MoleculeWalker, step Step) {
	rows := j.begin(w)
	separation := j.Anchor.Separation()

	for i, axis := range worldAxes {
		j.baseRow(&rows[i], i, PointJacobian(axis, j.Anchor.ArmA, j.Anchor.ArmB), separation.Dot(axis), step)
		j.baseRow(&rows[3+i], 3+i, AngularJacobian(axis), j.Angle.Error.Dot(axis), step)
	}
	j.attachmentRows(rows[j.baseRows:], step)
}
