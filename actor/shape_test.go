package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions
func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func mat3Equal(a, b mgl64.Mat3, tolerance float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(a.At(i, j)-b.At(i, j)) >= tolerance {
				return false
			}
		}
	}
	return true
}

// ========== INERTIA ==========
func TestBoxComputeInertia(t *testing.T) {
	tests := []struct {
		name         string
		box          *Box
		mass         float64
		expectedDiag mgl64.Vec3
	}{
		{
			name:         "unit cube",
			box:          &Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
			mass:         12.0,
			expectedDiag: mgl64.Vec3{8, 8, 8},
		},
		{
			name:         "rectangular box 2x3x4",
			box:          &Box{HalfExtents: mgl64.Vec3{2, 3, 4}},
			mass:         12.0,
			expectedDiag: mgl64.Vec3{100, 80, 52},
		},
		{
			name:         "thin box",
			box:          &Box{HalfExtents: mgl64.Vec3{0.1, 5, 0.1}},
			mass:         60.0,
			expectedDiag: mgl64.Vec3{500.2, 0.4, 500.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.box.ComputeInertia(tt.mass)
			if !vec3Equal(result.Diag(), tt.expectedDiag, 1e-6) {
				t.Errorf("ComputeInertia() diagonal = %v, want %v", result.Diag(), tt.expectedDiag)
			}
		})
	}
}

func TestEllipsoidMatchesSphere(t *testing.T) {
	sphere := &Sphere{Radius: 2}
	ellipsoid := &Ellipsoid{Radii: mgl64.Vec3{2, 2, 2}}

	if !floatEqual(sphere.Volume(), ellipsoid.Volume(), 1e-9) {
		t.Errorf("volume mismatch: sphere %v, ellipsoid %v", sphere.Volume(), ellipsoid.Volume())
	}
	if !mat3Equal(sphere.ComputeInertia(3), ellipsoid.ComputeInertia(3), 1e-9) {
		t.Errorf("inertia mismatch: sphere %v, ellipsoid %v", sphere.ComputeInertia(3), ellipsoid.ComputeInertia(3))
	}

	dir := mgl64.Vec3{1, 2, -3}
	if !vec3Equal(sphere.Support(dir), ellipsoid.Support(dir), 1e-9) {
		t.Errorf("support mismatch: sphere %v, ellipsoid %v", sphere.Support(dir), ellipsoid.Support(dir))
	}
}

func TestEllipsoidSupport(t *testing.T) {
	e := &Ellipsoid{Radii: mgl64.Vec3{3, 1, 2}}

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"+X", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{3, 0, 0}},
		{"-Y", mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, -1, 0}},
		{"+Z", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Support(tt.direction); !vec3Equal(got, tt.expected, 1e-9) {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, got, tt.expected)
			}
		})
	}
}

func TestConvexMeshSupport(t *testing.T) {
	mesh := &ConvexMesh{Points: []mgl64.Vec3{
		{1, 0, 0}, {-1, 0, 0}, {0, 2, 0}, {0, -2, 0}, {0, 0, 0.5}, {0, 0, -0.5},
	}}

	if got := mesh.Support(mgl64.Vec3{0, 1, 0}); got != (mgl64.Vec3{0, 2, 0}) {
		t.Errorf("Support(+Y) = %v", got)
	}
	if got := mesh.Support(mgl64.Vec3{-1, 0.1, 0}); got != (mgl64.Vec3{-1, 0, 0}) {
		t.Errorf("Support(-X) = %v", got)
	}

	box := mesh.ComputeAABB(NewTransformAt(mgl64.Vec3{10, 0, 0}, mgl64.QuatIdent()))
	want := AABB{Min: mgl64.Vec3{9, -2, -0.5}, Max: mgl64.Vec3{11, 2, 0.5}}
	if !vec3Equal(box.Min, want.Min, 1e-9) || !vec3Equal(box.Max, want.Max, 1e-9) {
		t.Errorf("ComputeAABB() = %v, want %v", box, want)
	}

	if !floatEqual(mesh.Volume(), 8, 1e-9) {
		t.Errorf("Volume() = %v, want 8", mesh.Volume())
	}
}

func TestDegenerateShapesAreClamped(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
	}{
		{"zero box", &Box{}},
		{"negative sphere", &Sphere{Radius: -1}},
		{"flat ellipsoid", &Ellipsoid{Radii: mgl64.Vec3{1, 0, 1}}},
		{"empty mesh", &ConvexMesh{}},
		{"single point mesh", &ConvexMesh{Points: []mgl64.Vec3{{0, 0, 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := tt.shape.Volume(); v <= 0 || math.IsNaN(v) {
				t.Errorf("Volume() = %v, want > 0", v)
			}
			inertia := tt.shape.ComputeInertia(1)
			if math.Abs(inertia.Det()) == 0 {
				t.Errorf("ComputeInertia() is singular: %v", inertia)
			}
			box := tt.shape.ComputeAABB(NewTransform())
			if !box.IsValid() {
				t.Errorf("ComputeAABB() = %v is not valid", box)
			}
		})
	}
}

func TestBoxComputeAABB_Rotated(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}
	rotation := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})

	aabb := box.ComputeAABB(NewTransformAt(mgl64.Vec3{0, 0, 0}, rotation))
	expected := math.Sqrt(2)

	if !floatEqual(aabb.Max.X(), expected, 1e-9) || !floatEqual(aabb.Max.Y(), expected, 1e-9) {
		t.Errorf("rotated box AABB max = %v, want %v on X and Y", aabb.Max, expected)
	}
	if !floatEqual(aabb.Max.Z(), 1, 1e-9) {
		t.Errorf("rotated box AABB max Z = %v, want 1", aabb.Max.Z())
	}
}

func TestEllipsoidComputeAABB_Rotated(t *testing.T) {
	e := &Ellipsoid{Radii: mgl64.Vec3{3, 1, 1}}
	rotation := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})

	aabb := e.ComputeAABB(NewTransformAt(mgl64.Vec3{1, 0, 0}, rotation))
	want := AABB{Min: mgl64.Vec3{0, -3, -1}, Max: mgl64.Vec3{2, 3, 1}}
	if !vec3Equal(aabb.Min, want.Min, 1e-9) || !vec3Equal(aabb.Max, want.Max, 1e-9) {
		t.Errorf("ComputeAABB() = %v, want %v", aabb, want)
	}
}
