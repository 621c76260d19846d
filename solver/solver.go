package solver

import (
	"slices"

	"github.com/akmonengine/fulcrum/constraint"
	"github.com/akmonengine/fulcrum/internal/assert"
)

// Report describes one Solve call
type Report struct {
	// Constraints is the number of active constraints
	Constraints int
	// Rows is the size of the molecule arena
	Rows int
	// Events raised by the constraints during Commit, in solve order
	Events []constraint.Event
}

// Solver owns the constraints of one space and the molecule arena they are solved in.
// Joints persist across steps, contacts are usually replaced every step.
// A Solver is not safe for concurrent use.
type Solver struct {
	Config Config

	joints   []constraint.Constraint
	contacts []constraint.Constraint
	rowHint  int

	// active constraints of the current step, joints first
	active []constraint.Constraint
	rows   []constraint.Molecule
	walker constraint.MoleculeWalker
	// config and step of the current step, Config sanitized
	config Config
	step   constraint.Step

	// position pass working set and scratch rows
	pending []constraint.Constraint
	scratch []constraint.Molecule
}

func NewSolver(config Config) *Solver {
	return &Solver{Config: config}
}

func (s *Solver) AddJoint(joint constraint.Constraint) {
	s.joints = append(s.joints, joint)
	s.rowHint += joint.MoleculeCount()
}

func (s *Solver) AddJoints(joints ...constraint.Constraint) {
	for _, joint := range joints {
		s.AddJoint(joint)
	}
}

// RemoveJoint keeps the order of the remaining joints
func (s *Solver) RemoveJoint(joint constraint.Constraint) bool {
	i := slices.Index(s.joints, joint)
	if i < 0 {
		return false
	}
	s.joints = slices.Delete(s.joints, i, i+1)
	s.rowHint = max(s.rowHint-joint.MoleculeCount(), 0)
	return true
}

func (s *Solver) AddContact(contact constraint.Constraint) {
	s.contacts = append(s.contacts, contact)
	s.rowHint += contact.MoleculeCount()
}

func (s *Solver) AddContacts(contacts ...constraint.Constraint) {
	for _, contact := range contacts {
		s.AddContact(contact)
	}
}

// ClearContacts drops the contacts and keeps the joints
func (s *Solver) ClearContacts() {
	for _, contact := range s.contacts {
		s.rowHint -= contact.MoleculeCount()
	}
	s.rowHint = max(s.rowHint, 0)
	clear(s.contacts)
	s.contacts = s.contacts[:0]
}

func (s *Solver) Clear() {
	s.ClearContacts()
	clear(s.joints)
	s.joints = s.joints[:0]
	clear(s.active)
	s.active = s.active[:0]
	s.rowHint = 0
}

func (s *Solver) Joints() []constraint.Constraint {
	return s.joints
}

func (s *Solver) Contacts() []constraint.Constraint {
	return s.contacts
}

// RowHint is the number of rows the constraints announced when they were added
func (s *Solver) RowHint() int {
	return s.rowHint
}

// Rows is the molecule arena of the last step
func (s *Solver) Rows() []constraint.Molecule {
	return s.rows
}

// Solve runs one step: UpdateData, WarmStart, SolveVelocities and Commit
func (s *Solver) Solve(dt float64) Report {
	s.config = s.Config.sanitized()
	s.step = s.config.step(dt)

	s.updateData()
	if s.config.WarmStart {
		s.warmStart()
	}
	s.solveVelocities()
	events := s.commit()

	return Report{
		Constraints: len(s.active),
		Rows:        len(s.rows),
		Events:      events,
	}
}

// updateData sizes the arena to the exact row count of the active constraints and fills it
func (s *Solver) updateData() {
	clear(s.active)
	s.active = s.active[:0]

	total := 0
	for _, list := range [][]constraint.Constraint{s.joints, s.contacts} {
		for _, c := range list {
			if !c.UpdateAtoms() {
				continue
			}
			s.active = append(s.active, c)
			total += c.MoleculeCount()
		}
	}

	if cap(s.rows) < total {
		s.rows = make([]constraint.Molecule, total, max(total, s.rowHint))
	} else {
		s.rows = s.rows[:total]
		clear(s.rows)
	}

	s.walker.Reset(s.rows)
	for _, c := range s.active {
		c.ComputeMolecules(&s.walker, s.step)
	}
	assert.That(s.walker.Remaining() == 0, "%d molecules left unfilled", s.walker.Remaining())
}

func (s *Solver) warmStart() {
	s.walker.Reset(s.rows)
	for _, c := range s.active {
		c.WarmStart(&s.walker)
	}
}

func (s *Solver) solveVelocities() {
	for range s.config.VelocityIterations {
		s.walker.Reset(s.rows)
		for _, c := range s.active {
			c.Solve(&s.walker)
		}
	}
}

func (s *Solver) commit() []constraint.Event {
	var events []constraint.Event

	s.walker.Reset(s.rows)
	for _, c := range s.active {
		events = c.Commit(&s.walker, events)
	}
	return events
}
