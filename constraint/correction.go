package constraint

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
)

// pivotEpsilon is the smallest pivot accepted by the dense elimination
const pivotEpsilon = 1e-10

// Coupling is J_i M⁻¹ J_jᵀ, the off-diagonal term between two rows of the same body pair
func (j Jacobian) Coupling(other Jacobian, a, b *actor.RigidBody) float64 {
	IA := a.InverseInertiaWorld()
	IB := b.InverseInertiaWorld()

	return a.EffectiveInverseMass()*j.LinearA.Dot(other.LinearA) + j.AngularA.Dot(IA.Mul3x1(other.AngularA)) +
		b.EffectiveInverseMass()*j.LinearB.Dot(other.LinearB) + j.AngularB.Dot(IB.Mul3x1(other.AngularB))
}

// CorrectNaive moves the bodies row by row, each row removing factor*Error on its own
func CorrectNaive(rows []Molecule, a, b *actor.RigidBody, factor, maxCorrection float64) {
	for i := range rows {
		rows[i].CorrectPosition(a, b, rows[i].PositionImpulse(factor, maxCorrection))
	}
}

// CorrectBlock solves the positional rows of one constraint together, K·λ = -factor·C.
// Unilateral rows that would pull are dropped and the system solved again.
// A singular system falls back to CorrectNaive.
func CorrectBlock(rows []Molecule, a, b *actor.RigidBody, factor, maxCorrection float64) {
	active := make([]int, 0, len(rows))
	for i := range rows {
		if rows[i].Positional && rows[i].EffectiveMass != 0 {
			active = append(active, i)
		}
	}

	for len(active) > 0 {
		n := len(active)
		k := make([]float64, n*n)
		rhs := make([]float64, n)

		for r, ri := range active {
			rhs[r] = -factor * clamp(rows[ri].Error, -maxCorrection, maxCorrection)
			for c, ci := range active {
				k[r*n+c] = rows[ri].Coupling(rows[ci].Jacobian, a, b)
			}
		}

		if !solveDense(k, rhs, n) {
			CorrectNaive(rows, a, b, factor, maxCorrection)
			return
		}

		kept := active[:0]
		for r, ri := range active {
			if rows[ri].Min >= 0 && rhs[r] < 0 {
				continue
			}
			kept = append(kept, ri)
		}
		if len(kept) == n {
			for r, ri := range active {
				rows[ri].CorrectPosition(a, b, rhs[r])
			}
			return
		}
		active = kept
	}
}

// solveDense solves the n×n row-major system in place with partial pivoting,
// the solution replaces rhs. It reports false on a singular matrix.
func solveDense(k, rhs []float64, n int) bool {
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(k[r*n+col]) > math.Abs(k[pivot*n+col]) {
				pivot = r
			}
		}
		if math.Abs(k[pivot*n+col]) < pivotEpsilon {
			return false
		}
		if pivot != col {
			for c := 0; c < n; c++ {
				k[col*n+c], k[pivot*n+c] = k[pivot*n+c], k[col*n+c]
			}
			rhs[col], rhs[pivot] = rhs[pivot], rhs[col]
		}

		for r := col + 1; r < n; r++ {
			f := k[r*n+col] / k[col*n+col]
			if f == 0 {
				continue
			}
			for c := col; c < n; c++ {
				k[r*n+c] -= f * k[col*n+c]
			}
			rhs[r] -= f * rhs[col]
		}
	}

	// back substitution
	for r := n - 1; r >= 0; r-- {
		sum := rhs[r]
		for c := r + 1; c < n; c++ {
			sum -= k[r*n+c] * rhs[c]
		}
		rhs[r] = sum / k[r*n+r]
	}
	return true
}
