package constraint

import (
	"github.com/akmonengine/fulcrum/actor"
)

// Step carries the per-step values every constraint needs to build its rows
type Step struct {
	Dt    float64
	InvDt float64

	WarmStart bool
	// VelocityBias feeds positional errors back into the velocity rows (Baumgarte).
	// It is disabled when a separate position pass runs.
	VelocityBias bool
	Baumgarte    float64

	// Slop is the penetration tolerated by contacts before correction kicks in
	Slop float64
	// RestitutionThreshold is the approach speed below which contacts do not bounce
	RestitutionThreshold float64
}

func NewStep(dt float64) Step {
	step := Step{Dt: dt}
	if dt > 0 {
		step.InvDt = 1.0 / dt
	}
	return step
}

// Constraint is the contract shared by joints and contacts.
// The solver calls UpdateAtoms, MoleculeCount, ComputeMolecules, WarmStart, Solve
// and Commit in that order once per step; the walker hands out the same rows each time.
type Constraint interface {
	// UpdateAtoms recomputes the world data; false means inactive this step
	UpdateAtoms() bool
	MoleculeCount() int
	ComputeMolecules(w *MoleculeWalker, step Step)
	WarmStart(w *MoleculeWalker)
	Solve(w *MoleculeWalker)
	// Commit stores the impulses for the next warm start and appends the notifications raised this step
	Commit(w *MoleculeWalker, events []Event) []Event
	// PositionError is the largest positional violation measured by the last UpdateAtoms
	PositionError() float64
	Bodies() (*actor.RigidBody, *actor.RigidBody)
}

// resolveBodies returns the bodies behind two colliders, or false when
// one of them is missing or neither can move
func resolveBodies(colliderA, colliderB *actor.Collider) (*actor.RigidBody, *actor.RigidBody, bool) {
	a := colliderA.Body()
	b := colliderB.Body()
	if a == nil || b == nil || a == b {
		return nil, nil, false
	}
	if !a.IsDynamic() && !b.IsDynamic() {
		return nil, nil, false
	}
	if (a.IsSleeping || !a.IsDynamic()) && (b.IsSleeping || !b.IsDynamic()) {
		return nil, nil, false
	}
	return a, b, true
}

// velocityBias turns a positional error into a Baumgarte bias
func velocityBias(step Step, c float64) float64 {
	if !step.VelocityBias {
		return 0
	}
	return step.Baumgarte * step.InvDt * c
}
