package constraint

import (
	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// PrismaticJoint is a slider: B translates along an axis fixed on A without rotating.
// Limit and Motor act on the slide distance.
type PrismaticJoint struct {
	Joint
	Anchor AnchorAtom
	Axis   AxisAtom
	Angle  AngleAtom

	translation float64
}

// NewPrismaticJoint slides along a world axis, the current anchors define distance zero
func NewPrismaticJoint(a, b *actor.Collider, pivot, axis mgl64.Vec3) *PrismaticJoint {
	j := &PrismaticJoint{}
	j.Joint = newJoint(j, a, b, 5)
	if a.Body() != nil && b.Body() != nil {
		j.Anchor = NewAnchorAtom(a.Body(), b.Body(), pivot)
		j.Axis = NewAxisAtom(a.Body(), b.Body(), axis)
	}
	return j
}

// Translation is the slide distance measured by the last UpdateAtoms
func (j *PrismaticJoint) Translation() float64 {
	return j.translation
}

// slideJacobian constrains the anchor separation d along direction, the arm on A reaches B's anchor
func (j *PrismaticJoint) slideJacobian(direction mgl64.Vec3) Jacobian {
	armA := j.Anchor.ArmA.Add(j.Anchor.Separation())
	return PointJacobian(direction, armA, j.Anchor.ArmB)
}

func (j *PrismaticJoint) UpdateAtoms() bool {
	capture, ok := j.activate()
	if !ok {
		return false
	}
	if capture {
		j.Angle.Capture(j.bodyA, j.bodyB)
	}
	j.Anchor.Update(j.bodyA, j.bodyB)
	j.Axis.Update(j.bodyA, j.bodyB)
	j.Angle.Update(j.bodyA, j.bodyB)

	separation := j.Anchor.Separation()
	for _, perpendicular := range j.Axis.Perpendiculars {
		j.measure(separation.Dot(perpendicular))
	}
	for _, axis := range worldAxes {
		j.measure(j.Angle.Error.Dot(axis))
	}

	j.translation = separation.Dot(j.Axis.WorldA)
	j.updateAttachments(j.translation, j.slideJacobian(j.Axis.WorldA))
	return true
}

func (j *PrismaticJoint) ComputeMolecules(w *MoleculeWalker, step Step) {
	rows := j.begin(w)
	separation := j.Anchor.Separation()

	for i, perpendicular := range j.Axis.Perpendiculars {
		j.baseRow(&rows[i], i, j.slideJacobian(perpendicular), separation.Dot(perpendicular), step)
	}
	for i, axis := range worldAxes {
		j.baseRow(&rows[2+i], 2+i, AngularJacobian(axis), j.Angle.Error.Dot(axis), step)
	}
	j.attachmentRows(rows[j.baseRows:], step)
}
