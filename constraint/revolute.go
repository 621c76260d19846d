package constraint

import (
	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// RevoluteJoint is a hinge: anchors coincide and B only rotates around the hinge axis.
// Limit and Motor act on the hinge angle, in radians.
type RevoluteJoint struct {
	Joint
	Anchor AnchorAtom
	Axis   AxisAtom
	Angle  AngleAtom

	angle float64
}

// NewRevoluteJoint hinges both colliders around a world axis through a world pivot
func NewRevoluteJoint(a, b *actor.Collider, pivot, axis mgl64.Vec3) *RevoluteJoint {
	j := &RevoluteJoint{}
	j.Joint = newJoint(j, a, b, 5)
	if a.Body() != nil && b.Body() != nil {
		j.Anchor = NewAnchorAtom(a.Body(), b.Body(), pivot)
		j.Axis = NewAxisAtom(a.Body(), b.Body(), axis)
	}
	return j
}

// HingeAngle is the angle measured by the last UpdateAtoms
func (j *RevoluteJoint) HingeAngle() float64 {
	return j.angle
}

func (j *RevoluteJoint) UpdateAtoms() bool {
	capture, ok := j.activate()
	if !ok {
		return false
	}
	if capture {
		j.Angle.Capture(j.bodyA, j.bodyB)
	}
	j.Anchor.Update(j.bodyA, j.bodyB)
	j.Axis.Update(j.bodyA, j.bodyB)

	separation := j.Anchor.Separation()
	for _, axis := range worldAxes {
		j.measure(separation.Dot(axis))
	}
	misalignment := j.Axis.Misalignment()
	for _, perpendicular := range j.Axis.Perpendiculars {
		j.measure(misalignment.Dot(perpendicular))
	}

	j.angle = j.Angle.Twist(j.bodyA, j.bodyB, j.Axis.LocalA)
	j.updateAttachments(j.angle, AngularJacobian(j.Axis.WorldA))
	return true
}

func (j *RevoluteJoint) ComputeMolecules(w *MoleculeWalker, step Step) {
	rows := j.begin(w)
	separation := j.Anchor.Separation()

	for i, axis := range worldAxes {
		j.baseRow(&rows[i], i, PointJacobian(axis, j.Anchor.ArmA, j.Anchor.ArmB), separation.Dot(axis), step)
	}

	misalignment := j.Axis.Misalignment()
	for i, perpendicular := range j.Axis.Perpendiculars {
		j.baseRow(&rows[3+i], 3+i, AngularJacobian(perpendicular), misalignment.Dot(perpendicular), step)
	}
	j.attachmentRows(rows[j.baseRows:], step)
}
