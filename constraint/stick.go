package constraint

import (
	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// StickJoint keeps two anchors at a fixed distance.
// A negative Length is replaced by the distance measured on the first active step.
// A Limit and Motor act on the distance itself, which is mostly useful with a Spring.
type StickJoint struct {
	Joint
	Anchor AnchorAtom
	Length float64

	direction mgl64.Vec3
	distance  float64
}

// NewStickJoint links two world points, the rest length is captured on the first step
func NewStickJoint(a, b *actor.Collider, pointA, pointB mgl64.Vec3) *StickJoint {
	j := &StickJoint{Length: -1}
	j.Joint = newJoint(j, a, b, 1)
	if a.Body() != nil && b.Body() != nil {
		j.Anchor = AnchorAtom{
			LocalA: a.Body().Transform.ToLocal(pointA),
			LocalB: b.Body().Transform.ToLocal(pointB),
		}
	}
	return j
}

func (j *StickJoint) UpdateAtoms() bool {
	capture, ok := j.activate()
	if !ok {
		return false
	}
	j.Anchor.Update(j.bodyA, j.bodyB)

	separation := j.Anchor.Separation()
	j.distance = separation.Len()
	if j.distance > 1e-9 {
		j.direction = separation.Mul(1.0 / j.distance)
	} else if j.direction.LenSqr() == 0 {
		j.direction = mgl64.Vec3{1, 0, 0}
	}

	if capture && j.Length < 0 {
		j.Length = j.distance
	}

	j.measure(j.distance - j.Length)
	j.updateAttachments(j.distance, PointJacobian(j.direction, j.Anchor.ArmA, j.Anchor.ArmB))
	return true
}

func (j *StickJoint) ComputeMolecules(w *MoleculeWalker, step Step) {
	rows := j.begin(w)

	jacobian := PointJacobian(j.direction, j.Anchor.ArmA, j.Anchor.ArmB)
	j.baseRow(&rows[0], 0, jacobian, j.distance-j.Length, step)
	j.attachmentRows(rows[j.baseRows:], step)
}
