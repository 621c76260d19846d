package constraint

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
)

// ComputeRestitution averages both materials: if one bounces, the pair bounces a bit
func ComputeRestitution(matA, matB actor.Material) float64 {
	return (matA.Restitution + matB.Restitution) / 2.0
}

// ComputeFriction is the geometric mean of both coefficients, a frictionless surface wins
func ComputeFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(math.Max(matA.Friction, 0) * math.Max(matB.Friction, 0))
}
