package fulcrum

import (
	"testing"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// createTestBody creates a minimal RigidBody for event testing
func createTestBody(id any, isTrigger, isSleeping bool) *actor.RigidBody {
	rb := actor.NewRigidBody(actor.NewTransform(), &actor.Sphere{Radius: 1.0}, actor.BodyTypeDynamic, 1.0)
	rb.Id = id
	rb.IsTrigger = isTrigger
	rb.IsSleeping = isSleeping
	return rb
}

func record(events *Events, bodies ...*actor.RigidBody) {
	for i := 0; i+1 < len(bodies); i += 2 {
		a, b := bodies[i], bodies[i+1]
		events.recordPair(makePairKey(a.Collider, b.Collider), a, b)
	}
}

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	for _, e := range ec.events {
		if e.Type() == eventType {
			return true
		}
	}
	return false
}

// =============================================================================
// Subscribe and Listeners Tests
// =============================================================================

func TestEvents_MultipleListeners(t *testing.T) {
	events := NewEvents()
	captures := []*eventCapture{{}, {}, {}}
	for _, c := range captures {
		events.Subscribe(COLLISION_ENTER, c.capture)
	}

	if len(events.listeners[COLLISION_ENTER]) != 3 {
		t.Fatalf("Expected 3 listeners for COLLISION_ENTER, got %d", len(events.listeners[COLLISION_ENTER]))
	}

	record(&events, createTestBody("A", false, false), createTestBody("B", false, false))
	events.flush()

	for i, c := range captures {
		if c.count() != 1 {
			t.Errorf("Capture%d expected 1 event, got %d", i+1, c.count())
		}
	}
}

func TestEvents_NoListeners(t *testing.T) {
	events := NewEvents()
	record(&events, createTestBody("A", false, false), createTestBody("B", false, false))
	events.flush()

	if len(events.buffer) != 0 {
		t.Errorf("buffer should be cleared, got %d events", len(events.buffer))
	}
}

func TestMakePairKey(t *testing.T) {
	a := createTestBody("A", false, false)
	b := createTestBody("B", false, false)
	c := createTestBody("C", false, false)

	if makePairKey(a.Collider, b.Collider) != makePairKey(b.Collider, a.Collider) {
		t.Error("pair key should not depend on the order")
	}
	if makePairKey(a.Collider, b.Collider) == makePairKey(a.Collider, c.Collider) {
		t.Error("different pairs should have different keys")
	}
}

// =============================================================================
// Enter / Stay / Exit
// =============================================================================

func TestEvents_EnterStayExit(t *testing.T) {
	tests := []struct {
		name                  string
		isTrigger             bool
		enter, stay, exit     EventType
		wrongEnter, wrongStay EventType
	}{
		{"collision", false, COLLISION_ENTER, COLLISION_STAY, COLLISION_EXIT, TRIGGER_ENTER, TRIGGER_STAY},
		{"trigger", true, TRIGGER_ENTER, TRIGGER_STAY, TRIGGER_EXIT, COLLISION_ENTER, COLLISION_STAY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := NewEvents()
			capture := &eventCapture{}
			for _, eventType := range []EventType{TRIGGER_ENTER, COLLISION_ENTER, TRIGGER_STAY, COLLISION_STAY, TRIGGER_EXIT, COLLISION_EXIT} {
				events.Subscribe(eventType, capture.capture)
			}

			bodyA := createTestBody("A", tt.isTrigger, false)
			bodyB := createTestBody("B", false, false)

			// Frame 1: Enter
			record(&events, bodyA, bodyB)
			events.flush()
			if capture.count() != 1 || !capture.hasEventType(tt.enter) || capture.hasEventType(tt.wrongEnter) {
				t.Fatalf("Frame 1: got %v, want a single enter", capture.events)
			}

			// Frame 2: Stay, the order of the bodies does not matter
			capture.reset()
			record(&events, bodyB, bodyA)
			events.flush()
			if capture.count() != 1 || !capture.hasEventType(tt.stay) || capture.hasEventType(tt.wrongStay) {
				t.Fatalf("Frame 2: got %v, want a single stay", capture.events)
			}

			// Frame 3: Exit
			capture.reset()
			events.flush()
			if capture.count() != 1 || !capture.hasEventType(tt.exit) {
				t.Fatalf("Frame 3: got %v, want a single exit", capture.events)
			}

			// Frame 4: nothing left
			capture.reset()
			events.flush()
			if capture.count() != 0 {
				t.Errorf("Frame 4: got %v, want nothing", capture.events)
			}
		})
	}
}

func TestEvents_Stay_SleepingBodies(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(COLLISION_STAY, capture.capture)

	bodyA := createTestBody("A", false, false)
	bodyB := createTestBody("B", false, false)
	record(&events, bodyA, bodyB)
	events.flush()

	bodyA.IsSleeping = true
	bodyB.IsSleeping = true
	record(&events, bodyA, bodyB)
	events.flush()

	if capture.count() != 0 {
		t.Errorf("Expected no STAY events for two sleeping bodies, got %d", capture.count())
	}
}

func TestEvents_MultipleFrames_EnterExitEnter(t *testing.T) {
	events := NewEvents()
	enter := &eventCapture{}
	exit := &eventCapture{}
	events.Subscribe(COLLISION_ENTER, enter.capture)
	events.Subscribe(COLLISION_EXIT, exit.capture)

	bodyA := createTestBody("A", false, false)
	bodyB := createTestBody("B", false, false)

	record(&events, bodyA, bodyB)
	events.flush()
	events.flush()
	record(&events, bodyA, bodyB)
	events.flush()

	if enter.count() != 2 || exit.count() != 1 {
		t.Errorf("got %d enter and %d exit, want 2 and 1", enter.count(), exit.count())
	}
}

func TestEvents_Forget(t *testing.T) {
	events := NewEvents()
	exit := &eventCapture{}
	events.Subscribe(COLLISION_EXIT, exit.capture)

	bodyA := createTestBody("A", false, false)
	bodyB := createTestBody("B", false, false)
	record(&events, bodyA, bodyB)
	events.flush()

	events.forget(bodyA)
	events.flush()
	if exit.count() != 0 {
		t.Errorf("a removed body should not raise an exit, got %d", exit.count())
	}
}

// =============================================================================
// Sleep / Wake
// =============================================================================

func TestEvents_SleepWake(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(ON_SLEEP, capture.capture)
	events.Subscribe(ON_WAKE, capture.capture)

	body := createTestBody("A", false, false)
	bodies := []*actor.RigidBody{body}

	// first sight only records the state
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 0 {
		t.Fatalf("Expected no event on first sight, got %d", capture.count())
	}

	body.IsSleeping = true
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 1 || !capture.hasEventType(ON_SLEEP) {
		t.Fatalf("Expected ON_SLEEP, got %v", capture.events)
	}
	if e := capture.events[0].(SleepEvent); e.Body != body {
		t.Error("ON_SLEEP should carry the body")
	}

	// no repeat while still asleep
	capture.reset()
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 0 {
		t.Errorf("Expected no event for an already sleeping body, got %d", capture.count())
	}

	body.IsSleeping = false
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 1 || !capture.hasEventType(ON_WAKE) {
		t.Errorf("Expected ON_WAKE, got %v", capture.events)
	}
}

// =============================================================================
// Joint events
// =============================================================================

func TestEvents_ConstraintEvents(t *testing.T) {
	events := NewEvents()
	limits := &eventCapture{}
	impulses := &eventCapture{}
	events.Subscribe(JOINT_LIMIT, limits.capture)
	events.Subscribe(JOINT_IMPULSE_LIMIT, impulses.capture)

	a := createTestBody("A", false, false)
	b := createTestBody("B", false, false)
	joint := constraint.NewPositionJoint(a.Collider, b.Collider, mgl64.Vec3{})

	events.recordConstraintEvents([]constraint.Event{
		{Type: constraint.EventLimitLower, Constraint: joint, Value: -0.5},
		{Type: constraint.EventLimitUpper, Constraint: joint, Value: 0.5},
		{Type: constraint.EventImpulseLimit, Constraint: joint, Value: 12},
	})
	events.flush()

	if limits.count() != 2 {
		t.Fatalf("Expected 2 limit events, got %d", limits.count())
	}
	if lower := limits.events[0].(JointLimitEvent); lower.Upper || lower.Value != -0.5 || lower.Joint != joint {
		t.Errorf("lower limit event = %+v", lower)
	}
	if upper := limits.events[1].(JointLimitEvent); !upper.Upper {
		t.Errorf("upper limit event = %+v", upper)
	}

	if impulses.count() != 1 {
		t.Fatalf("Expected 1 impulse event, got %d", impulses.count())
	}
	if e := impulses.events[0].(JointImpulseEvent); e.Impulse != 12 || e.Broken {
		t.Errorf("impulse event = %+v", e)
	}
}
