package constraint

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/internal/assert"
	"github.com/go-gl/mathgl/mgl64"
)

// effectiveMassEpsilon is the smallest J M⁻¹ Jᵀ considered solvable
const effectiveMassEpsilon = 1e-12

// Jacobian of one scalar row, for the linear and angular velocities of both bodies
type Jacobian struct {
	LinearA  mgl64.Vec3
	AngularA mgl64.Vec3
	LinearB  mgl64.Vec3
	AngularB mgl64.Vec3
}

// PointJacobian constrains the relative velocity of two anchor points along direction.
// armA and armB go from each body's center to its anchor.
func PointJacobian(direction, armA, armB mgl64.Vec3) Jacobian {
	return Jacobian{
		LinearA:  direction.Mul(-1),
		AngularA: armA.Cross(direction).Mul(-1),
		LinearB:  direction,
		AngularB: armB.Cross(direction),
	}
}

// AngularJacobian constrains the relative angular velocity around axis
func AngularJacobian(axis mgl64.Vec3) Jacobian {
	return Jacobian{
		AngularA: axis.Mul(-1),
		AngularB: axis,
	}
}

// Velocity is J·v, the constraint velocity of the row
func (j Jacobian) Velocity(a, b *actor.RigidBody) float64 {
	return j.LinearA.Dot(a.Velocity) + j.AngularA.Dot(a.AngularVelocity) +
		j.LinearB.Dot(b.Velocity) + j.AngularB.Dot(b.AngularVelocity)
}

// InverseMass is J M⁻¹ Jᵀ
func (j Jacobian) InverseMass(a, b *actor.RigidBody) float64 {
	invMassA := a.EffectiveInverseMass()
	invMassB := b.EffectiveInverseMass()
	IA := a.InverseInertiaWorld()
	IB := b.InverseInertiaWorld()

	return invMassA*j.LinearA.Dot(j.LinearA) + j.AngularA.Dot(IA.Mul3x1(j.AngularA)) +
		invMassB*j.LinearB.Dot(j.LinearB) + j.AngularB.Dot(IB.Mul3x1(j.AngularB))
}

// Molecule is one scalar constraint row
type Molecule struct {
	Jacobian

	// EffectiveMass is 1 / (J M⁻¹ Jᵀ + Gamma), zero when the row cannot be solved
	EffectiveMass float64
	// Impulse accumulated over the iterations of the current step
	Impulse float64
	Min     float64
	Max     float64
	// Bias is added to J·v, the row drives J·v towards -Bias
	Bias  float64
	Gamma float64
	// Error is the positional error C of the row, zero for rows that do not correct positions
	Error      float64
	Positional bool
}

// Setup stores the Jacobian and computes the effective mass
func (m *Molecule) Setup(a, b *actor.RigidBody, jacobian Jacobian, gamma float64) {
	m.Jacobian = jacobian
	m.Gamma = gamma

	k := jacobian.InverseMass(a, b) + gamma
	if k < effectiveMassEpsilon || math.IsNaN(k) || math.IsInf(k, 0) {
		assert.That(!a.IsDynamic() && !b.IsDynamic(), "constraint row has a degenerate effective mass %v", k)
		m.EffectiveMass = 0
		return
	}
	m.EffectiveMass = 1.0 / k
}

// Bounds sets the impulse interval
func (m *Molecule) Bounds(min, max float64) {
	m.Min = min
	m.Max = max
}

// Apply adds a row impulse to both bodies
func (m *Molecule) Apply(a, b *actor.RigidBody, impulse float64) {
	a.ApplyImpulse(m.LinearA.Mul(impulse), m.AngularA.Mul(impulse))
	b.ApplyImpulse(m.LinearB.Mul(impulse), m.AngularB.Mul(impulse))
}

// WarmStart re-applies the impulse loaded from the previous step
func (m *Molecule) WarmStart(a, b *actor.RigidBody) {
	if m.Impulse != 0 && m.EffectiveMass != 0 {
		m.Apply(a, b, m.Impulse)
	}
}

// Solve runs one sequential impulse on the row and returns the applied delta
func (m *Molecule) Solve(a, b *actor.RigidBody) float64 {
	if m.EffectiveMass == 0 {
		return 0
	}

	delta := -(m.Velocity(a, b) + m.Bias + m.Gamma*m.Impulse) * m.EffectiveMass

	previous := m.Impulse
	m.Impulse = clamp(previous+delta, m.Min, m.Max)
	delta = m.Impulse - previous

	if delta != 0 {
		m.Apply(a, b, delta)
	}
	return delta
}

// PositionImpulse is the non-accumulated pseudo impulse removing factor*Error.
// Unilateral rows (Min >= 0) only push.
func (m *Molecule) PositionImpulse(factor, maxCorrection float64) float64 {
	if !m.Positional || m.EffectiveMass == 0 {
		return 0
	}
	c := clamp(m.Error, -maxCorrection, maxCorrection)
	impulse := -factor * c * m.EffectiveMass
	if m.Min >= 0 && impulse < 0 {
		return 0
	}
	return impulse
}

// CorrectPosition moves both bodies by a pseudo impulse along the row
func (m *Molecule) CorrectPosition(a, b *actor.RigidBody, impulse float64) {
	if impulse == 0 {
		return
	}
	a.CorrectPosition(m.LinearA.Mul(impulse), m.AngularA.Mul(impulse))
	b.CorrectPosition(m.LinearB.Mul(impulse), m.AngularB.Mul(impulse))
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(v, max))
}

// MoleculeWalker hands out consecutive rows of the solver arena
type MoleculeWalker struct {
	rows   []Molecule
	cursor int
}

func NewMoleculeWalker(rows []Molecule) *MoleculeWalker {
	return &MoleculeWalker{rows: rows}
}

// Take returns the next n rows. Asking for more rows than remain is a programming
// error, the walker returns what is left.
func (w *MoleculeWalker) Take(n int) []Molecule {
	assert.That(w.cursor+n <= len(w.rows), "molecule walker overrun: %d + %d > %d", w.cursor, n, len(w.rows))

	end := min(w.cursor+n, len(w.rows))
	rows := w.rows[w.cursor:end]
	w.cursor = end
	return rows
}

// Reset rewinds the walker, optionally onto a new arena
func (w *MoleculeWalker) Reset(rows []Molecule) {
	w.rows = rows
	w.cursor = 0
}

func (w *MoleculeWalker) Remaining() int {
	return len(w.rows) - w.cursor
}
