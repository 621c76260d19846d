package constraint

import (
	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

var worldAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// PositionJoint is a ball socket: the two anchors coincide, rotation is free
type PositionJoint struct {
	Joint
	Anchor AnchorAtom
}

// NewPositionJoint joins both colliders at a world pivot
func NewPositionJoint(a, b *actor.Collider, pivot mgl64.Vec3) *PositionJoint {
	j := &PositionJoint{}
	j.Joint = newJoint(j, a, b, 3)
	if a.Body() != nil && b.Body() != nil {
		j.Anchor = NewAnchorAtom(a.Body(), b.Body(), pivot)
	}
	return j
}

// NewPositionJointLocal joins an anchor fixed on A with an anchor fixed on B
func NewPositionJointLocal(a, b *actor.Collider, localA, localB mgl64.Vec3) *PositionJoint {
	j := &PositionJoint{Anchor: AnchorAtom{LocalA: localA, LocalB: localB}}
	j.Joint = newJoint(j, a, b, 3)
	return j
}

func (j *PositionJoint) UpdateAtoms() bool {
	if _, ok := j.activate(); !ok {
		return false
	}
	j.Anchor.Update(j.bodyA, j.bodyB)

	separation := j.Anchor.Separation()
	for _, axis := range worldAxes {
		j.measure(separation.Dot(axis))
	}
	return true
}

func (j *PositionJoint) ComputeMolecules(w *MoleculeWalker, step Step) {
	rows := j.begin(w)
	separation := j.Anchor.Separation()

	for i, axis := range worldAxes {
		jacobian := PointJacobian(axis, j.Anchor.ArmA, j.Anchor.ArmB)
		j.baseRow(&rows[i], i, jacobian, separation.Dot(axis), step)
	}
	j.attachmentRows(rows[j.baseRows:], step)
}
