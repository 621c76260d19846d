package epa

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

func vec3ApproxEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func boxCollider(position mgl64.Vec3, rotation mgl64.Quat, halfExtents mgl64.Vec3) *actor.Collider {
	body := actor.NewRigidBody(actor.NewTransformAt(position, rotation), &actor.Box{HalfExtents: halfExtents}, actor.BodyTypeDynamic, 1.0)
	return body.Collider
}

func TestSnapNormalToAxis(t *testing.T) {
	tests := []struct {
		name     string
		input    mgl64.Vec3
		expected mgl64.Vec3
	}{
		{"small x component", mgl64.Vec3{1e-9, 1.0, 0.0}, mgl64.Vec3{0.0, 1.0, 0.0}},
		{"small y component", mgl64.Vec3{1.0, 1e-9, 0.0}, mgl64.Vec3{1.0, 0.0, 0.0}},
		{"small z component", mgl64.Vec3{0.0, 1.0, 1e-9}, mgl64.Vec3{0.0, 1.0, 0.0}},
		{"already axis aligned", mgl64.Vec3{1.0, 0.0, 0.0}, mgl64.Vec3{1.0, 0.0, 0.0}},
		{"diagonal", mgl64.Vec3{1.0, 1.0, 1.0}.Normalize(), mgl64.Vec3{1.0, 1.0, 1.0}.Normalize()},
		{"near zero vector", mgl64.Vec3{1e-9, 1e-9, 1e-9}, mgl64.Vec3{0.0, 1.0, 0.0}},
		{"unnormalized input", mgl64.Vec3{0, 3, 4}, mgl64.Vec3{0, 0.6, 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := snapNormalToAxis(tt.input)
			if !vec3ApproxEqual(result, tt.expected, 1e-6) {
				t.Errorf("snapNormalToAxis(%v) = %v, want %v", tt.input, result, tt.expected)
			}
			if math.Abs(result.Len()-1) > 1e-6 {
				t.Errorf("result is not normalized: length = %v", result.Len())
			}
		})
	}
}

func TestEPA_Boxes(t *testing.T) {
	tests := []struct {
		name      string
		rotationA mgl64.Quat
		rotationB mgl64.Quat
		positionB mgl64.Vec3
		normal    mgl64.Vec3
		depth     float64
	}{
		{"stacked", mgl64.QuatIdent(), mgl64.QuatIdent(), mgl64.Vec3{0, 1.5, 0}, mgl64.Vec3{0, 1, 0}, 0.5},
		{"side by side", mgl64.QuatIdent(), mgl64.QuatIdent(), mgl64.Vec3{-1.8, 0.2, 0}, mgl64.Vec3{-1, 0, 0}, 0.2},
		{"yawed", mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0}), mgl64.QuatRotate(math.Pi/6, mgl64.Vec3{0, 1, 0}), mgl64.Vec3{0, 1.5, 0}, mgl64.Vec3{0, 1, 0}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := boxCollider(mgl64.Vec3{}, tt.rotationA, mgl64.Vec3{1, 1, 1})
			b := boxCollider(tt.positionB, tt.rotationB, mgl64.Vec3{1, 1, 1})

			simplex := &gjk.Simplex{}
			if !gjk.GJK(a, b, simplex) {
				t.Fatal("GJK reported no overlap")
			}
			result, err := EPA(a, b, simplex)
			if err != nil {
				t.Fatalf("EPA failed: %v", err)
			}

			if !vec3ApproxEqual(result.Normal, tt.normal, 1e-2) {
				t.Errorf("Normal = %v, want %v", result.Normal, tt.normal)
			}
			if math.Abs(result.Depth-tt.depth) > 1e-2 {
				t.Errorf("Depth = %v, want %v", result.Depth, tt.depth)
			}

			pointA, pointB := result.WitnessPoints(a, b)
			if got := pointA.Sub(pointB).Dot(result.Normal); math.Abs(got-tt.depth) > 1e-2 {
				t.Errorf("witness points overlap by %v along the normal, want %v", got, tt.depth)
			}
		})
	}
}

func TestEPA_DegenerateSimplex(t *testing.T) {
	a := boxCollider(mgl64.Vec3{}, mgl64.QuatIdent(), mgl64.Vec3{1, 1, 1})
	b := boxCollider(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), mgl64.Vec3{1, 1, 1})

	t.Run("two points", func(t *testing.T) {
		simplex := &gjk.Simplex{Count: 2}
		simplex.Points[0] = mgl64.Vec3{0, 0.5, 0}
		simplex.Points[1] = mgl64.Vec3{0, 0.6, 0}

		result, err := EPA(a, b, simplex)
		if err != nil {
			t.Fatalf("EPA failed: %v", err)
		}
		if !vec3ApproxEqual(result.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) || math.Abs(result.Depth-0.5) > 1e-9 {
			t.Errorf("result = %+v, want the closest simplex point", result)
		}
	})

	t.Run("single point", func(t *testing.T) {
		simplex := &gjk.Simplex{Count: 1}
		result, err := EPA(a, b, simplex)
		if err != nil {
			t.Fatalf("EPA failed: %v", err)
		}
		if !vec3ApproxEqual(result.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) {
			t.Errorf("Normal = %v, want the direction between centers", result.Normal)
		}
		if result.Depth != DegeneratePenetrationEstimate {
			t.Errorf("Depth = %v, want the estimate", result.Depth)
		}
	})

	t.Run("concentric", func(t *testing.T) {
		c := boxCollider(mgl64.Vec3{}, mgl64.QuatIdent(), mgl64.Vec3{1, 1, 1})
		result, _ := EPA(a, c, &gjk.Simplex{Count: 1})
		if result.Normal.Len() == 0 {
			t.Error("normal should not be zero vector")
		}
	})
}

func TestEPA_InvalidSimplex(t *testing.T) {
	builder := &PolytopeBuilder{}
	if err := builder.BuildInitialFaces(&gjk.Simplex{Count: 3}); err == nil {
		t.Error("BuildInitialFaces accepted a triangle")
	}
	if errors.Is(nil, ErrNotConverged) {
		t.Error("nil should not match ErrNotConverged")
	}
}

func TestPolytope_Expansion(t *testing.T) {
	simplex := &gjk.Simplex{Count: 4}
	simplex.Points = [4]mgl64.Vec3{{1, 0, 0}, {-1, 1, 0}, {-1, -1, 1}, {-1, -1, -1}}

	builder := &PolytopeBuilder{}
	if err := builder.BuildInitialFaces(simplex); err != nil {
		t.Fatal(err)
	}
	if len(builder.faces) != 4 {
		t.Fatalf("got %d faces, want 4", len(builder.faces))
	}
	for _, f := range builder.faces {
		if f.Distance < MinFaceDistance {
			t.Errorf("face distance %v below the minimum", f.Distance)
		}
	}

	// a point just beyond the closest face only sees that face
	closest := builder.FindClosestFaceIndex()
	face := builder.faces[closest]
	center := face.Points[0].Add(face.Points[1]).Add(face.Points[2]).Mul(1.0 / 3)
	builder.AddPointAndRebuildFaces(center.Add(face.Normal.Mul(0.01)), closest)

	// one face replaced by a fan of three
	if len(builder.faces) != 6 {
		t.Errorf("got %d faces after expansion, want 6", len(builder.faces))
	}
	for _, f := range builder.faces {
		if f.Normal.Dot(f.Points[0]) < 0 {
			t.Errorf("face normal %v points inward", f.Normal)
		}
	}
}

func TestCompareVec3(t *testing.T) {
	tests := []struct {
		a, b mgl64.Vec3
		want int
	}{
		{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 0}, 0},
		{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, -1},
		{mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 5, 5}, 1},
		{mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 2}, -1},
	}
	for _, tt := range tests {
		if got := compareVec3(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVec3(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func BenchmarkEPA_Boxes(b *testing.B) {
	a := boxCollider(mgl64.Vec3{}, mgl64.QuatIdent(), mgl64.Vec3{1, 1, 1})
	c := boxCollider(mgl64.Vec3{0.3, 1.5, 0.2}, mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0}), mgl64.Vec3{1, 1, 1})
	simplex := &gjk.Simplex{}
	gjk.GJK(a, c, simplex)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EPA(a, c, simplex)
	}
}
