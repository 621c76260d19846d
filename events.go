package fulcrum

import (
	"unsafe"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/constraint"
)

const (
	TRIGGER_ENTER EventType = iota
	COLLISION_ENTER
	TRIGGER_STAY
	COLLISION_STAY
	TRIGGER_EXIT
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
	JOINT_LIMIT
	JOINT_IMPULSE_LIMIT
)

// pairKey identifies a collider pair whatever the order the broadphase reported it in
type pairKey struct {
	a *actor.Collider
	b *actor.Collider
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(a, b *actor.Collider) pairKey {
	if uintptr(unsafe.Pointer(b)) < uintptr(unsafe.Pointer(a)) {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// touching is what the events remember of a pair. The bodies are kept so an
// exit can still be reported after a collider was detached.
type touching struct {
	bodyA     *actor.RigidBody
	bodyB     *actor.RigidBody
	isTrigger bool
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Trigger events
type TriggerEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerEnterEvent) Type() EventType { return TRIGGER_ENTER }

type TriggerStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerStayEvent) Type() EventType { return TRIGGER_STAY }

type TriggerExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerExitEvent) Type() EventType { return TRIGGER_EXIT }

// Collision events
type CollisionEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// JointLimitEvent fires on the step a joint's limited coordinate reaches a bound
type JointLimitEvent struct {
	Joint constraint.Constraint
	Upper bool
	Value float64
}

func (e JointLimitEvent) Type() EventType { return JOINT_LIMIT }

// JointImpulseEvent fires when a joint needed more than its MaxImpulse.
// Broken is set when the joint was breakable and stopped solving.
type JointImpulseEvent struct {
	Joint   constraint.Constraint
	Impulse float64
	Broken  bool
}

func (e JointImpulseEvent) Type() EventType { return JOINT_IMPULSE_LIMIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Collision tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]touching
	currentActivePairs  map[pairKey]touching

	sleepStates map[*actor.RigidBody]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]touching),
		currentActivePairs:  make(map[pairKey]touching),
		sleepStates:         make(map[*actor.RigidBody]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordPair is called during substeps for every pair the narrow phase found touching
func (e *Events) recordPair(key pairKey, bodyA, bodyB *actor.RigidBody) {
	e.currentActivePairs[key] = touching{
		bodyA:     bodyA,
		bodyB:     bodyB,
		isTrigger: bodyA.IsTrigger || bodyB.IsTrigger,
	}
}

// recordConstraintEvents turns the solver notifications into joint events
func (e *Events) recordConstraintEvents(events []constraint.Event) {
	for _, event := range events {
		switch event.Type {
		case constraint.EventLimitLower, constraint.EventLimitUpper:
			e.buffer = append(e.buffer, JointLimitEvent{
				Joint: event.Constraint,
				Upper: event.Type == constraint.EventLimitUpper,
				Value: event.Value,
			})
		case constraint.EventImpulseLimit:
			broken := false
			if joint, ok := event.Constraint.(interface{ State() constraint.State }); ok {
				broken = joint.State() == constraint.StateBroken
			}
			e.buffer = append(e.buffer, JointImpulseEvent{
				Joint:   event.Constraint,
				Impulse: event.Value,
				Broken:  broken,
			})
		}
	}
}

// forget drops everything tracked about a removed body, no exit event is sent
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.sleepStates, body)
	for key, pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, key)
		}
	}
	for key, pair := range e.currentActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.currentActivePairs, key)
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
// Should be called after all substeps
func (e *Events) processCollisionEvents() {
	for key, pair := range e.currentActivePairs {
		// Skip if both bodies are sleeping, to avoid spamming events
		if pair.bodyA.IsSleeping && pair.bodyB.IsSleeping {
			continue
		}

		if _, ok := e.previousActivePairs[key]; ok {
			if pair.isTrigger {
				e.buffer = append(e.buffer, TriggerStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			} else {
				e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			}
			continue
		}

		if pair.isTrigger {
			e.buffer = append(e.buffer, TriggerEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	for key, pair := range e.previousActivePairs {
		if _, ok := e.currentActivePairs[key]; ok {
			continue
		}
		if pair.isTrigger {
			e.buffer = append(e.buffer, TriggerExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		trackedState, exists := e.sleepStates[body]
		if !exists {
			e.sleepStates[body] = body.IsSleeping
			continue
		}

		if !trackedState && body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: body})
			e.sleepStates[body] = true
		} else if trackedState && !body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: body})
			e.sleepStates[body] = false
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
