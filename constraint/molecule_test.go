package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestPointJacobian(t *testing.T) {
	direction := mgl64.Vec3{1, 0, 0}
	armA := mgl64.Vec3{0, 1, 0}
	armB := mgl64.Vec3{0, 0, 1}

	j := PointJacobian(direction, armA, armB)

	if !j.LinearA.ApproxEqual(mgl64.Vec3{-1, 0, 0}) || !j.LinearB.ApproxEqual(direction) {
		t.Errorf("linear parts = %v / %v", j.LinearA, j.LinearB)
	}
	// armA × d = (0,1,0) × (1,0,0) = (0,0,-1), negated
	if !j.AngularA.ApproxEqual(mgl64.Vec3{0, 0, 1}) {
		t.Errorf("AngularA = %v, want (0,0,1)", j.AngularA)
	}
	// armB × d = (0,0,1) × (1,0,0) = (0,1,0)
	if !j.AngularB.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
		t.Errorf("AngularB = %v, want (0,1,0)", j.AngularB)
	}
}

func TestMolecule_Setup(t *testing.T) {
	a := sphereBody(mgl64.Vec3{}, actor.BodyTypeDynamic)
	b := sphereBody(mgl64.Vec3{2, 0, 0}, actor.BodyTypeDynamic)
	static := boxBody(mgl64.Vec3{0, -2, 0}, actor.BodyTypeStatic)
	kinematic := boxBody(mgl64.Vec3{0, 2, 0}, actor.BodyTypeKinematic)

	jacobian := PointJacobian(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{})

	tests := []struct {
		name     string
		a, b     *actor.RigidBody
		gamma    float64
		expected float64
	}{
		{"two dynamic bodies", a, b, 0, 1.0 / (a.InverseMass + b.InverseMass)},
		{"static partner", a, static, 0, a.Mass()},
		{"softened", a, b, 1, 1.0 / (a.InverseMass + b.InverseMass + 1)},
		{"nothing can move", static, kinematic, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Molecule
			m.Setup(tt.a, tt.b, jacobian, tt.gamma)
			if math.Abs(m.EffectiveMass-tt.expected) > 1e-9 {
				t.Errorf("EffectiveMass = %v, want %v", m.EffectiveMass, tt.expected)
			}
		})
	}
}

func TestMolecule_Solve(t *testing.T) {
	tests := []struct {
		name             string
		velocityB        mgl64.Vec3
		min, max         float64
		expectedVelocity float64
		expectImpulse    bool
	}{
		{"approaching is stopped", mgl64.Vec3{-1, 0, 0}, 0, math.Inf(1), 0, true},
		{"separating is left alone", mgl64.Vec3{1, 0, 0}, 0, math.Inf(1), 1, false},
		{"bilateral stops both ways", mgl64.Vec3{1, 0, 0}, math.Inf(-1), math.Inf(1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := boxBody(mgl64.Vec3{}, actor.BodyTypeStatic)
			b := sphereBody(mgl64.Vec3{1, 0, 0}, actor.BodyTypeDynamic)
			b.Velocity = tt.velocityB

			var m Molecule
			m.Setup(a, b, PointJacobian(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{}), 0)
			m.Bounds(tt.min, tt.max)
			m.Solve(a, b)

			if v := m.Velocity(a, b); math.Abs(v-tt.expectedVelocity) > 1e-9 {
				t.Errorf("J·v = %v, want %v", v, tt.expectedVelocity)
			}
			if (m.Impulse != 0) != tt.expectImpulse {
				t.Errorf("Impulse = %v, expect impulse %v", m.Impulse, tt.expectImpulse)
			}
			if m.Impulse < tt.min || m.Impulse > tt.max {
				t.Errorf("Impulse %v outside [%v, %v]", m.Impulse, tt.min, tt.max)
			}
		})
	}
}

func TestMolecule_SolveClampsAccumulatedImpulse(t *testing.T) {
	a := boxBody(mgl64.Vec3{}, actor.BodyTypeStatic)
	b := sphereBody(mgl64.Vec3{1, 0, 0}, actor.BodyTypeDynamic)
	b.Velocity = mgl64.Vec3{-10, 0, 0}

	var m Molecule
	m.Setup(a, b, PointJacobian(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{}), 0)
	m.Bounds(-0.1, 0.1)

	for i := 0; i < 5; i++ {
		m.Solve(a, b)
	}
	if m.Impulse != 0.1 {
		t.Errorf("Impulse = %v, want clamped to 0.1", m.Impulse)
	}
	expected := -10 + 0.1*b.InverseMass
	if math.Abs(b.Velocity.X()-expected) > 1e-9 {
		t.Errorf("velocity = %v, want %v", b.Velocity.X(), expected)
	}
}

func TestMolecule_SolveZeroEffectiveMass(t *testing.T) {
	a := boxBody(mgl64.Vec3{}, actor.BodyTypeStatic)
	b := sphereBody(mgl64.Vec3{1, 0, 0}, actor.BodyTypeDynamic)
	b.Velocity = mgl64.Vec3{-1, 0, 0}

	m := Molecule{Jacobian: PointJacobian(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{})}
	m.Bounds(math.Inf(-1), math.Inf(1))

	if delta := m.Solve(a, b); delta != 0 {
		t.Errorf("Solve() = %v, want 0 for a zero effective mass", delta)
	}
	if b.Velocity.X() != -1 {
		t.Errorf("velocity changed to %v", b.Velocity)
	}
}

func TestMolecule_PositionImpulse(t *testing.T) {
	tests := []struct {
		name          string
		err           float64
		min           float64
		positional    bool
		maxCorrection float64
		expected      float64
	}{
		{"penetration is pushed out", -0.1, 0, true, 1, 0.1},
		{"unilateral never pulls", 0.1, 0, true, 1, 0},
		{"bilateral pulls", 0.1, math.Inf(-1), true, 1, -0.1},
		{"correction is clamped", -0.5, 0, true, 0.2, 0.2},
		{"velocity rows are skipped", -0.1, 0, false, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Molecule{EffectiveMass: 1, Min: tt.min, Max: math.Inf(1), Error: tt.err, Positional: tt.positional}
			if got := m.PositionImpulse(1, tt.maxCorrection); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("PositionImpulse() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMoleculeWalker(t *testing.T) {
	rows := make([]Molecule, 6)
	w := NewMoleculeWalker(rows)

	first := w.Take(2)
	second := w.Take(3)
	if len(first) != 2 || len(second) != 3 {
		t.Fatalf("Take() lengths = %d, %d", len(first), len(second))
	}
	if &second[0] != &rows[2] {
		t.Error("rows should be handed out consecutively")
	}
	if w.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", w.Remaining())
	}

	w.Reset(rows)
	if w.Remaining() != 6 || &w.Take(1)[0] != &rows[0] {
		t.Error("Reset should rewind to the first row")
	}

	shorter := make([]Molecule, 2)
	w.Reset(shorter)
	if got := w.Take(2); &got[0] != &shorter[0] {
		t.Error("Reset should switch to the new arena")
	}
}
