package constraint

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
)

// State of a joint's lifecycle
type State int

const (
	// StateUninitialized joints have not captured their rest values yet
	StateUninitialized State = iota
	StateActive
	// StateBroken joints exceeded their MaxImpulse while Breakable and never solve again
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateBroken:
		return "broken"
	}
	return "unknown"
}

// Joint holds what every joint variant shares: the two colliders, the optional
// Limit, Motor and Spring attachments, and the impulses kept for warm starting.
// Variants embed it and provide UpdateAtoms and ComputeMolecules.
type Joint struct {
	ColliderA *actor.Collider
	ColliderB *actor.Collider

	Limit  *Limit
	Motor  *Motor
	Spring *Spring

	// MaxImpulse bounds every base row, zero means unbounded
	MaxImpulse float64
	// Breakable joints break instead of holding at MaxImpulse
	Breakable bool

	self  Constraint
	state State

	bodyA *actor.RigidBody
	bodyB *actor.RigidBody

	baseRows      int
	limitActive   bool
	motorActive   bool
	coordinate    Jacobian
	positionError float64
	pending       []Event

	// base rows, then the limit slot, then the motor slot
	impulses []float64
}

func newJoint(self Constraint, colliderA, colliderB *actor.Collider, baseRows int) Joint {
	return Joint{
		ColliderA: colliderA,
		ColliderB: colliderB,
		self:      self,
		baseRows:  baseRows,
		impulses:  make([]float64, baseRows+2),
	}
}

func (j *Joint) State() State {
	return j.state
}

func (j *Joint) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return j.bodyA, j.bodyB
}

// activate resolves the bodies for this step. capture is true on the first active step.
func (j *Joint) activate() (capture bool, ok bool) {
	if j.state == StateBroken {
		j.pending = j.pending[:0]
		return false, false
	}

	a, b, ok := resolveBodies(j.ColliderA, j.ColliderB)
	if !ok {
		// an inactive joint is never committed, crossings it queued are dropped
		j.bodyA, j.bodyB = nil, nil
		j.pending = j.pending[:0]
		return false, false
	}
	j.bodyA, j.bodyB = a, b
	j.positionError = 0

	if len(j.impulses) != j.baseRows+2 {
		j.impulses = make([]float64, j.baseRows+2)
	}

	if j.state == StateUninitialized {
		j.state = StateActive
		return true, true
	}
	return false, true
}

// updateAttachments evaluates the limit and motor on the joint coordinate.
// jacobian maps body velocities to the coordinate's rate.
// The position pass runs UpdateAtoms too: a crossing it finds is queued and
// reported by the next Commit, with the value measured during that pass.
func (j *Joint) updateAttachments(value float64, jacobian Jacobian) {
	j.coordinate = jacobian

	wasActive := j.limitActive
	j.limitActive = false
	if j.Limit != nil {
		switch j.Limit.update(value) {
		case sideLower:
			j.pending = append(j.pending, Event{Type: EventLimitLower, Constraint: j.self, Value: value})
		case sideUpper:
			j.pending = append(j.pending, Event{Type: EventLimitUpper, Constraint: j.self, Value: value})
		}
		j.limitActive = j.Limit.active()
		j.positionError = math.Max(j.positionError, j.Limit.violation())
	}
	if wasActive && !j.limitActive {
		j.impulses[j.baseRows] = 0
	}

	j.motorActive = j.Motor != nil
	if !j.motorActive {
		j.impulses[j.baseRows+1] = 0
	}
}

func (j *Joint) MoleculeCount() int {
	n := j.baseRows
	if j.limitActive {
		n++
	}
	if j.motorActive {
		n++
	}
	return n
}

func (j *Joint) PositionError() float64 {
	return j.positionError
}

// measure records a base row error for PositionError; soft joints never need correction
func (j *Joint) measure(c float64) {
	if j.Spring.enabled() {
		return
	}
	j.positionError = math.Max(j.positionError, math.Abs(c))
}

// baseRow fills a structural row of the joint
func (j *Joint) baseRow(m *Molecule, slot int, jacobian Jacobian, c float64, step Step) {
	a, b := j.bodyA, j.bodyB

	if j.Spring.enabled() {
		gamma, beta := j.Spring.coefficients(jacobian.InverseMass(a, b), step.Dt)
		m.Setup(a, b, jacobian, gamma)
		m.Bias = beta * step.InvDt * c
		m.Error = 0
		m.Positional = false
	} else {
		m.Setup(a, b, jacobian, 0)
		m.Bias = velocityBias(step, c)
		m.Error = c
		m.Positional = true
	}

	if j.MaxImpulse > 0 {
		m.Bounds(-j.MaxImpulse, j.MaxImpulse)
	} else {
		m.Bounds(math.Inf(-1), math.Inf(1))
	}
	j.load(m, slot, step)
}

// attachmentRows fills the limit and motor rows that follow the base rows
func (j *Joint) attachmentRows(rows []Molecule, step Step) {
	i := 0
	if j.limitActive {
		j.Limit.row(&rows[i], j.bodyA, j.bodyB, j.coordinate, step)
		j.load(&rows[i], j.baseRows, step)
		i++
	}
	if j.motorActive {
		m := &rows[i]
		m.Setup(j.bodyA, j.bodyB, j.coordinate, 0)
		m.Bias = -j.Motor.Speed
		m.Error = 0
		m.Positional = false
		m.Bounds(j.Motor.bounds())
		j.load(m, j.baseRows+1, step)
	}
}

func (j *Joint) load(m *Molecule, slot int, step Step) {
	m.Impulse = 0
	if step.WarmStart {
		m.Impulse = clamp(j.impulses[slot], m.Min, m.Max)
	}
}

// begin takes the joint's rows from the walker
func (j *Joint) begin(w *MoleculeWalker) []Molecule {
	return w.Take(j.MoleculeCount())
}

func (j *Joint) WarmStart(w *MoleculeWalker) {
	rows := j.begin(w)
	for i := range rows {
		rows[i].WarmStart(j.bodyA, j.bodyB)
	}
}

func (j *Joint) Solve(w *MoleculeWalker) {
	rows := j.begin(w)

	// motor first, then the limit, then the structure
	for i := len(rows) - 1; i >= 0; i-- {
		rows[i].Solve(j.bodyA, j.bodyB)
	}
}

// Commit keeps the impulses for the next warm start and reports limit crossings
// and impulse overloads
func (j *Joint) Commit(w *MoleculeWalker, events []Event) []Event {
	rows := j.begin(w)

	peak := 0.0
	for i := 0; i < j.baseRows && i < len(rows); i++ {
		j.impulses[i] = rows[i].Impulse
		peak = math.Max(peak, math.Abs(rows[i].Impulse))
	}
	i := j.baseRows
	if j.limitActive && i < len(rows) {
		j.impulses[j.baseRows] = rows[i].Impulse
		i++
	}
	if j.motorActive && i < len(rows) {
		j.impulses[j.baseRows+1] = rows[i].Impulse
	}

	events = append(events, j.pending...)
	j.pending = j.pending[:0]

	if j.MaxImpulse > 0 && peak >= j.MaxImpulse*(1-1e-9) {
		events = append(events, Event{Type: EventImpulseLimit, Constraint: j.self, Value: peak})
		if j.Breakable {
			j.state = StateBroken
			clear(j.impulses)
		}
	}
	return events
}

// Impulses returns the stored impulses of the base rows
func (j *Joint) Impulses() []float64 {
	return j.impulses[:j.baseRows]
}
