// Package fulcrum steps rigid bodies through a sequential impulse solver.
//
// A Space wires the pieces together: bodies and their colliders live in two
// broadphases (dynamic and static, chosen by name), candidate pairs go through
// the narrow phase, the resulting contacts are solved together with the joints,
// and events are flushed once per Step.
package fulcrum

import (
	"errors"
	"fmt"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/broadphase"
	"github.com/akmonengine/fulcrum/config"
	"github.com/akmonengine/fulcrum/constraint"
	"github.com/akmonengine/fulcrum/solver"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

var ErrUnknownBroadPhase = errors.New("fulcrum: unknown broadphase")

// StepReport describes the last substep of a Step
type StepReport struct {
	// Pairs is the number of broadphase candidates
	Pairs    int
	Contacts int
	Solve    solver.Report
	Position solver.PositionReport
}

type cachedContact struct {
	contact *constraint.Contact
	frame   uint64
}

type narrowJob struct {
	key      pairKey
	manifold Manifold
	ok       bool
}

type Space struct {
	// List of all rigid bodies in the space
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Substeps int
	Workers  int

	SleepTime     float64
	SleepVelocity float64
	ContactMargin float64

	// Dynamic holds the colliders of dynamic and kinematic bodies, Static the others
	Dynamic     broadphase.BroadPhase
	Static      broadphase.BroadPhase
	NarrowPhase NarrowPhaseFunc
	Solver      *solver.Solver

	Events Events

	contacts   map[pairKey]cachedContact
	frame      uint64
	pairs      []broadphase.Pair
	jobs       []narrowJob
	moved      []actor.Proxy
	candidates []*actor.Collider
	report     StepReport
}

// NewSpace builds a space from a validated configuration, nil means DefaultConfig
func NewSpace(cfg *config.Config) (*Space, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dynamic := broadphase.New(cfg.BroadPhase.Dynamic, cfg.BroadPhase.Options)
	if dynamic == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBroadPhase, cfg.BroadPhase.Dynamic)
	}
	static := broadphase.New(cfg.BroadPhase.Static, cfg.BroadPhase.Options)
	if static == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBroadPhase, cfg.BroadPhase.Static)
	}

	return &Space{
		Gravity:       cfg.Space.Gravity,
		Substeps:      cfg.Space.Substeps,
		Workers:       cfg.Space.Workers,
		SleepTime:     cfg.Space.SleepTime,
		SleepVelocity: cfg.Space.SleepVelocity,
		ContactMargin: cfg.Space.ContactMargin,
		Dynamic:       dynamic,
		Static:        static,
		NarrowPhase:   Collide,
		Solver:        solver.NewSolver(cfg.Solver),
		Events:        NewEvents(),
		contacts:      make(map[pairKey]cachedContact),
	}, nil
}

// AddBody adds a rigid body and inserts its collider in the matching broadphase
func (s *Space) AddBody(body *actor.RigidBody) {
	s.Bodies = append(s.Bodies, body)
	if body.Collider == nil {
		return
	}
	body.Collider.CacheWorldValues()
	s.broadphaseOf(body).CreateProxy(body.Collider)
}

// RemoveBody removes a rigid body, its proxy and its contacts.
// The collider is detached: body.Collider is nil afterwards and the joints
// referencing it no longer solve.
func (s *Space) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range s.Bodies {
		if b == body {
			k = i
			break
		}
	}
	if k == -1 {
		return
	}
	s.Bodies = append(s.Bodies[:k], s.Bodies[k+1:]...)

	c := body.Collider
	for key := range s.contacts {
		if key.a.Body() == body || key.b.Body() == body || (c != nil && (key.a == c || key.b == c)) {
			delete(s.contacts, key)
		}
	}
	// joints on a detached collider stop resolving their bodies and go inactive
	if c != nil {
		c.Detach()
	}
	s.Events.forget(body)
}

func (s *Space) AddJoint(joint constraint.Constraint) {
	s.Solver.AddJoint(joint)
}

func (s *Space) RemoveJoint(joint constraint.Constraint) bool {
	return s.Solver.RemoveJoint(joint)
}

// Contacts returns the contacts solved during the last substep
func (s *Space) Contacts() []constraint.Constraint {
	return s.Solver.Contacts()
}

func (s *Space) Report() StepReport {
	return s.report
}

func (s *Space) broadphaseOf(body *actor.RigidBody) broadphase.BroadPhase {
	if body.BodyType == actor.BodyTypeStatic {
		return s.Static
	}
	return s.Dynamic
}

// Step advances the space by dt, split in Substeps solver steps
func (s *Space) Step(dt float64) {
	s.Workers = max(DEFAULT_WORKERS, s.Workers)
	substeps := max(1, s.Substeps)
	h := dt / float64(substeps)

	for range substeps {
		s.frame++
		s.integrateVelocities(h)
		s.updateProxies()

		s.findPairs()
		s.narrowPhase()
		s.wakeJoints()

		s.report.Solve = s.Solver.Solve(h)
		s.Events.recordConstraintEvents(s.report.Solve.Events)

		s.integratePositions(h)
		s.report.Position = s.Solver.SolvePositions()

		s.trySleep(h)
	}

	s.Events.processSleepEvents(s.Bodies)
	s.Events.flush()
}

func (s *Space) integrateVelocities(h float64) {
	task(s.Workers, s.Bodies, func(body *actor.RigidBody) {
		body.IntegrateVelocity(h, s.Gravity)
	})
}

// updateProxies caches the world bounds of every awake moving collider and
// refreshes its proxy in one batch
func (s *Space) updateProxies() {
	task(s.Workers, s.Bodies, func(body *actor.RigidBody) {
		if moving(body) {
			body.Collider.CacheWorldValues()
		}
	})

	s.moved = s.moved[:0]
	for _, body := range s.Bodies {
		if moving(body) && body.Collider.Owner() != nil {
			s.moved = append(s.moved, body.Collider.Proxy())
		}
	}
	s.Dynamic.UpdateProxies(s.moved)
}

func moving(body *actor.RigidBody) bool {
	return body.Collider != nil && body.BodyType != actor.BodyTypeStatic && !body.IsSleeping
}

// findPairs collects the dynamic pairs, then every dynamic collider against the static broadphase
func (s *Space) findPairs() {
	s.pairs = s.Dynamic.SelfQuery(s.pairs[:0])

	if s.Static.Len() > 0 {
		for _, body := range s.Bodies {
			if body.Collider == nil || body.BodyType != actor.BodyTypeDynamic {
				continue
			}
			s.candidates = s.Static.Query(body.Collider.GetWorldAabb(), s.candidates[:0])
			for _, other := range s.candidates {
				s.pairs = append(s.pairs, broadphase.Pair{A: body.Collider, B: other})
			}
		}
	}
	s.report.Pairs = len(s.pairs)
}

// narrowPhase runs the narrow phase of every pair on the workers, then updates
// the contact cache and hands the contacts to the solver in pair order
func (s *Space) narrowPhase() {
	s.jobs = s.jobs[:0]
	for _, pair := range s.pairs {
		bodyA, bodyB := pair.A.Body(), pair.B.Body()
		if bodyA == nil || bodyB == nil || bodyA == bodyB {
			continue
		}
		if !bodyA.IsDynamic() && !bodyB.IsDynamic() {
			continue
		}
		s.jobs = append(s.jobs, narrowJob{key: makePairKey(pair.A, pair.B)})
	}

	narrow := s.NarrowPhase
	if narrow == nil {
		narrow = Collide
	}
	taskRange(s.Workers, len(s.jobs), func(i int) {
		job := &s.jobs[i]
		job.manifold, job.ok = narrow(job.key.a, job.key.b, s.ContactMargin)
	})

	s.Solver.ClearContacts()
	for i := range s.jobs {
		job := &s.jobs[i]
		if !job.ok || len(job.manifold.Points) == 0 {
			continue
		}
		bodyA, bodyB := job.key.a.Body(), job.key.b.Body()
		s.Events.recordPair(job.key, bodyA, bodyB)
		if bodyA.IsTrigger || bodyB.IsTrigger {
			continue
		}
		s.wake(bodyA, bodyB)

		cached, ok := s.contacts[job.key]
		if ok {
			cached.contact.Update(job.manifold.Normal, job.manifold.Points)
		} else {
			cached.contact = constraint.NewContact(job.key.a, job.key.b, job.manifold.Normal, job.manifold.Points)
		}
		cached.frame = s.frame
		s.contacts[job.key] = cached
		s.Solver.AddContact(cached.contact)
	}

	for key, cached := range s.contacts {
		if cached.frame != s.frame {
			delete(s.contacts, key)
		}
	}
	s.report.Contacts = len(s.Solver.Contacts())
}

// wake wakes a sleeping body touched by one moving faster than SleepVelocity
func (s *Space) wake(bodyA, bodyB *actor.RigidBody) {
	if bodyA.IsSleeping && s.pushing(bodyB) {
		bodyA.Awake()
	}
	if bodyB.IsSleeping && s.pushing(bodyA) {
		bodyB.Awake()
	}
}

// wakeJoints uses the bodies resolved by the previous solve, a joint that was
// inactive then is left alone
func (s *Space) wakeJoints() {
	for _, joint := range s.Solver.Joints() {
		if bodyA, bodyB := joint.Bodies(); bodyA != nil && bodyB != nil {
			s.wake(bodyA, bodyB)
		}
	}
}

func (s *Space) pushing(body *actor.RigidBody) bool {
	if body.BodyType == actor.BodyTypeStatic || body.IsSleeping {
		return false
	}
	return body.Velocity.Len() > s.SleepVelocity || body.AngularVelocity.Len() > s.SleepVelocity
}

func (s *Space) integratePositions(h float64) {
	task(s.Workers, s.Bodies, func(body *actor.RigidBody) {
		body.IntegratePosition(h)
	})
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (s *Space) trySleep(h float64) {
	if s.SleepTime <= 0 {
		return
	}
	for _, body := range s.Bodies {
		body.TrySleep(h, s.SleepTime, s.SleepVelocity)
	}
}
