package epa

import (
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestComputeCenter(t *testing.T) {
	tests := []struct {
		name     string
		points   []mgl64.Vec3
		expected mgl64.Vec3
	}{
		{"empty slice", []mgl64.Vec3{}, mgl64.Vec3{0, 0, 0}},
		{"single point", []mgl64.Vec3{{1, 2, 3}}, mgl64.Vec3{1, 2, 3}},
		{"two points", []mgl64.Vec3{{0, 0, 0}, {2, 4, 6}}, mgl64.Vec3{1, 2, 3}},
		{"square corners", []mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}, mgl64.Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := computeCenter(tt.points); !vec3ApproxEqual(result, tt.expected, 1e-9) {
				t.Errorf("computeCenter() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestLineIntersectPlane(t *testing.T) {
	tests := []struct {
		name        string
		p1, p2      mgl64.Vec3
		planePoint  mgl64.Vec3
		planeNormal mgl64.Vec3
		expected    mgl64.Vec3
	}{
		{"perpendicular", mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 0}},
		{"diagonal", mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, 1, 0}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 0}},
		{"off center", mgl64.Vec3{2, -1, 0}, mgl64.Vec3{2, 3, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{2, 1, 0}},
		{"parallel returns p1", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := lineIntersectPlane(tt.p1, tt.p2, tt.planePoint, tt.planeNormal)
			if !vec3ApproxEqual(result, tt.expected, 1e-9) {
				t.Errorf("lineIntersectPlane() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestClipPolygonAgainstPlane(t *testing.T) {
	tests := []struct {
		name     string
		polygon  []mgl64.Vec3
		expected int
	}{
		{"empty polygon", []mgl64.Vec3{}, 0},
		{"fully inside", []mgl64.Vec3{{-1, 1, -1}, {1, 1, -1}, {1, 1, 1}, {-1, 1, 1}}, 4},
		{"fully outside", []mgl64.Vec3{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}, 0},
		{"half clipped", []mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}, 4},
		{"corner clipped", []mgl64.Vec3{{-1, 0.5, 0}, {1, 0.5, 0}, {1, -0.5, 0}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := clipPolygonAgainstPlane(tt.polygon, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
			if len(result) != tt.expected {
				t.Fatalf("got %d points, want %d", len(result), tt.expected)
			}
			for _, p := range result {
				if p.Y() < -1e-6 {
					t.Errorf("point %v lies behind the plane", p)
				}
			}
		})
	}
}

func TestClip(t *testing.T) {
	// reference: top face of a unit box at the origin, normal up
	reference := []mgl64.Vec3{{-1, 1, -1}, {1, 1, -1}, {1, 1, 1}, {-1, 1, 1}}
	normal := mgl64.Vec3{0, 1, 0}

	t.Run("smaller face sinking in", func(t *testing.T) {
		incident := []mgl64.Vec3{{-0.5, 0.9, -0.5}, {0.5, 0.9, -0.5}, {0.5, 0.9, 0.5}, {-0.5, 0.9, 0.5}}
		if got := Clip(incident, reference, normal); len(got) != 4 {
			t.Errorf("got %d points, want the 4 incident corners", len(got))
		}
	})

	t.Run("larger face is trimmed to the reference", func(t *testing.T) {
		incident := []mgl64.Vec3{{-3, 0.9, -3}, {3, 0.9, -3}, {3, 0.9, 3}, {-3, 0.9, 3}}
		got := Clip(incident, reference, normal)
		if len(got) != 4 {
			t.Fatalf("got %d points, want 4", len(got))
		}
		for _, p := range got {
			if p.X() < -1-1e-6 || p.X() > 1+1e-6 || p.Z() < -1-1e-6 || p.Z() > 1+1e-6 {
				t.Errorf("point %v outside the reference face", p)
			}
		}
	})

	t.Run("face above the reference is dropped", func(t *testing.T) {
		incident := []mgl64.Vec3{{-0.5, 1.2, -0.5}, {0.5, 1.2, -0.5}, {0.5, 1.2, 0.5}, {-0.5, 1.2, 0.5}}
		if got := Clip(incident, reference, normal); len(got) != 0 {
			t.Errorf("got %d points, want none", len(got))
		}
	})

	t.Run("edge crossing the face", func(t *testing.T) {
		incident := []mgl64.Vec3{{-2, 0.95, 0}, {2, 0.95, 0}}
		got := Clip(incident, reference, normal)
		if len(got) < 2 {
			t.Fatalf("got %d points, want the clipped edge", len(got))
		}
		for _, p := range got {
			if p.X() < -1-1e-6 || p.X() > 1+1e-6 {
				t.Errorf("point %v not clipped to the face", p)
			}
		}
	})
}

func TestReduce(t *testing.T) {
	normal := mgl64.Vec3{0, 1, 0}

	t.Run("few points are kept", func(t *testing.T) {
		points := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}}
		if got := Reduce(points, normal); !slices.Equal(got, []int{0, 1, 2}) {
			t.Errorf("Reduce() = %v", got)
		}
	})

	t.Run("square with center", func(t *testing.T) {
		points := []mgl64.Vec3{{-1, 0, -1}, {1, 0, -1}, {0, 0, 0}, {1, 0, 1}, {-1, 0, 1}, {0.5, 0, 0}}
		got := Reduce(points, normal)
		if len(got) > MaxManifoldPoints {
			t.Fatalf("Reduce() kept %d points", len(got))
		}
		if slices.Contains(got, 2) || slices.Contains(got, 5) {
			t.Errorf("Reduce() = %v kept an interior point", got)
		}
		if !slices.IsSorted(got) {
			t.Errorf("Reduce() = %v is not ascending", got)
		}
	})
}
