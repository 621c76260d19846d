package constraint

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
)

const (
	// limitMargin starts the limit row slightly before the bound is reached
	limitMargin = 0.02
	// limitTolerance is how close to a bound counts as reaching it
	limitTolerance = 1e-3
)

type limitSide int

const (
	sideNone limitSide = iota
	sideLower
	sideUpper
)

// Limit bounds a joint coordinate (hinge angle or slide distance).
// Lower >= Upper locks the coordinate on Lower.
type Limit struct {
	Lower float64
	Upper float64

	side    limitSide
	reached limitSide
	value   float64
}

func (l *Limit) locked() bool {
	return l.Lower >= l.Upper
}

// update selects the active side and reports a newly reached bound
func (l *Limit) update(value float64) (crossed limitSide) {
	l.value = value

	// a reached bound stays reached until the coordinate leaves the margin
	reached := sideNone
	switch {
	case l.locked():
	case value <= l.Lower+limitTolerance || (l.reached == sideLower && value < l.Lower+limitMargin):
		reached = sideLower
	case value >= l.Upper-limitTolerance || (l.reached == sideUpper && value > l.Upper-limitMargin):
		reached = sideUpper
	}
	if reached != sideNone && reached != l.reached {
		crossed = reached
	}
	l.reached = reached

	switch {
	case l.locked():
		l.side = sideLower
	case value-l.Lower < limitMargin && l.Upper-value < limitMargin:
		// both bounds in reach, keep the closest
		if value-l.Lower < l.Upper-value {
			l.side = sideLower
		} else {
			l.side = sideUpper
		}
	case value-l.Lower < limitMargin:
		l.side = sideLower
	case l.Upper-value < limitMargin:
		l.side = sideUpper
	default:
		l.side = sideNone
	}
	return crossed
}

func (l *Limit) active() bool {
	return l.side != sideNone
}

// row fills the limit row from the coordinate Jacobian
func (l *Limit) row(m *Molecule, a, b *actor.RigidBody, jacobian Jacobian, step Step) {
	c := l.value - l.Lower
	if l.side == sideUpper {
		c = l.Upper - l.value
		jacobian = Jacobian{
			LinearA:  jacobian.LinearA.Mul(-1),
			AngularA: jacobian.AngularA.Mul(-1),
			LinearB:  jacobian.LinearB.Mul(-1),
			AngularB: jacobian.AngularB.Mul(-1),
		}
	}

	m.Setup(a, b, jacobian, 0)
	m.Positional = true
	m.Error = c
	if l.locked() {
		m.Bounds(math.Inf(-1), math.Inf(1))
		m.Bias = velocityBias(step, c)
		return
	}

	m.Bounds(0, math.Inf(1))
	if c > 0 {
		// speculative: allow closing the remaining gap this step, no more
		m.Bias = c * step.InvDt
		m.Error = 0
	} else {
		m.Bias = velocityBias(step, c)
	}
}

// violation is the distance past the active bound, zero when within range
func (l *Limit) violation() float64 {
	switch {
	case l.locked():
		return math.Abs(l.value - l.Lower)
	case l.value < l.Lower:
		return l.Lower - l.value
	case l.value > l.Upper:
		return l.value - l.Upper
	}
	return 0
}

// Motor drives a joint coordinate at Speed using at most MaxImpulse per step.
// MaxImpulse <= 0 means unbounded.
type Motor struct {
	Speed      float64
	MaxImpulse float64
}

func (m *Motor) bounds() (float64, float64) {
	if m.MaxImpulse <= 0 {
		return math.Inf(-1), math.Inf(1)
	}
	return -m.MaxImpulse, m.MaxImpulse
}

// Spring makes the joint rows soft, oscillating at Frequency (Hz) with the given damping ratio.
// A zero frequency leaves the joint rigid.
type Spring struct {
	Frequency    float64
	DampingRatio float64
}

func (s *Spring) enabled() bool {
	return s != nil && s.Frequency > 0
}

// coefficients returns the softness gamma and the error reduction factor beta
// for a row of the given inverse effective mass
func (s *Spring) coefficients(inverseMass, dt float64) (gamma, beta float64) {
	if inverseMass <= 0 || dt <= 0 {
		return 0, 0
	}
	mass := 1.0 / inverseMass
	omega := 2 * math.Pi * s.Frequency

	stiffness := mass * omega * omega
	damping := 2 * mass * math.Max(s.DampingRatio, 0) * omega

	denominator := damping + dt*stiffness
	if denominator <= 0 {
		return 0, 0
	}
	gamma = 1.0 / (dt * denominator)
	beta = dt * stiffness / denominator
	return gamma, beta
}
