package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and constraints
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies move with their own velocity but have infinite mass,
	// constraints never push them
	BodyTypeKinematic
)

type Material struct {
	Density     float64
	Restitution float64 // 0= no rebound, 1= perfect restitution
	Friction    float64

	LinearDamping  float64 // 0.0 - 1.0, typically 0.01
	AngularDamping float64 // 0.0 - 1.0, typically 0.05
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	Id        any
	IsTrigger bool

	Transform Transform

	// Linear motion
	Velocity mgl64.Vec3 // m/s
	// Angular motion
	AngularVelocity mgl64.Vec3 // rad/s

	InverseMass         float64
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3
	inverseInertiaWorld mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64

	Material Material
	BodyType BodyType

	Collider *Collider
}

// NewRigidBody creates a new rigid body with its collider.
// density is used to calculate mass for dynamic bodies (ignored otherwise)
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, density float64) *RigidBody {
	transform.SetRotation(transform.Rotation)

	rb := &RigidBody{
		Transform: transform,
		BodyType:  bodyType,
		Material:  Material{Density: density},
	}
	rb.Collider = NewCollider(shape, rb)

	if bodyType == BodyTypeDynamic {
		mass := shape.Volume() * density
		if mass > 0 && !math.IsInf(mass, 0) {
			rb.InverseMass = 1.0 / mass
			rb.InertiaLocal = shape.ComputeInertia(mass)
		}
		rb.InverseInertiaLocal = rb.Collider.ComputeLocalInverseInertia(mass)
	}

	rb.UpdateInertia()
	rb.Collider.CacheWorldValues()

	return rb
}

// Mass returns +Inf for static, kinematic, or massless bodies
func (rb *RigidBody) Mass() float64 {
	if rb.InverseMass == 0 {
		return math.Inf(1)
	}
	return 1.0 / rb.InverseMass
}

// IsDynamic reports whether constraints are allowed to move the body
func (rb *RigidBody) IsDynamic() bool {
	return rb.BodyType == BodyTypeDynamic
}

// UpdateInertia refreshes the cached world inverse inertia from the current rotation
func (rb *RigidBody) UpdateInertia() {
	if rb.BodyType != BodyTypeDynamic {
		rb.inverseInertiaWorld = mgl64.Mat3{}
		return
	}

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	rb.inverseInertiaWorld = R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// InverseInertiaWorld returns the cached world-space inverse inertia tensor
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	return rb.inverseInertiaWorld
}

// EffectiveInverseMass is zero for anything that is not dynamic
func (rb *RigidBody) EffectiveInverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic {
		return 0
	}
	return rb.InverseMass
}

func (rb *RigidBody) TrySleep(dt float64, timeThreshold float64, velocityThreshold float64) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// IntegrateVelocity applies gravity, accumulated forces and damping to the velocities
func (rb *RigidBody) IntegrateVelocity(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic || rb.IsSleeping {
		return
	}

	// ========== LINEAR ==========
	acceleration := gravity.Add(rb.accumulatedForce.Mul(rb.InverseMass))
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))

	// ========== ANGULAR ==========
	angularAccel := rb.inverseInertiaWorld.Mul3x1(rb.accumulatedTorque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	rb.ClearForces()
}

// IntegratePosition advances the transform with the solved velocities
func (rb *RigidBody) IntegratePosition(dt float64) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.SetRotation(rb.Transform.Rotation.Add(qDot.Scale(dt)))

	rb.UpdateInertia()
}

// ApplyImpulse adds a linear and an angular impulse to the velocities
func (rb *RigidBody) ApplyImpulse(linear, angular mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	rb.Velocity = rb.Velocity.Add(linear.Mul(rb.InverseMass))
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.inverseInertiaWorld.Mul3x1(angular))
}

// ApplyImpulseAt applies an impulse at a world point
func (rb *RigidBody) ApplyImpulseAt(impulse, worldPoint mgl64.Vec3) {
	arm := worldPoint.Sub(rb.Transform.Position)
	rb.ApplyImpulse(impulse, arm.Cross(impulse))
}

// PointVelocity is the velocity of a world point attached to the body
func (rb *RigidBody) PointVelocity(worldPoint mgl64.Vec3) mgl64.Vec3 {
	arm := worldPoint.Sub(rb.Transform.Position)
	return rb.Velocity.Add(rb.AngularVelocity.Cross(arm))
}

// CorrectPosition moves the body by a positional pseudo-impulse, bypassing velocities.
// The angular part is a small rotation vector.
func (rb *RigidBody) CorrectPosition(linear, angular mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	rb.Transform.Position = rb.Transform.Position.Add(linear.Mul(rb.InverseMass))

	// For a small angle δθ, the rotation quaternion is q_delta ≈ [1, δθ/2]
	deltaRot := rb.inverseInertiaWorld.Mul3x1(angular)
	if deltaRot.Len() > 1e-12 {
		qDelta := mgl64.Quat{W: 1.0, V: deltaRot.Mul(0.5)}.Normalize()
		rb.Transform.SetRotation(qDelta.Mul(rb.Transform.Rotation))
		rb.UpdateInertia()
	}
}

func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}
