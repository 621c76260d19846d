package broadphase

import (
	"testing"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {16, 16}, {17, 32}, {1000, 1024},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSpatialHash_WorldToCell(t *testing.T) {
	grid := NewSpatialHash(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fractional", mgl64.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"large", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grid.worldToCell(tt.position); got != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, got, tt.expected)
			}
		})
	}

	coarse := NewSpatialHash(4.0, 16)
	if got := coarse.worldToCell(mgl64.Vec3{7.9, -0.1, 8}); got != (CellKey{1, -1, 2}) {
		t.Errorf("cell size 4: worldToCell = %v", got)
	}
}

func TestSpatialHash_HashCell(t *testing.T) {
	grid := NewSpatialHash(1.0, 16)

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origin", CellKey{0, 0, 0}, 0},
		{"simple", CellKey{1, 2, 3}, 0},
		{"negative", CellKey{-1, -2, -3}, 13},
		{"large", CellKey{100, 200, 300}, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grid.hashCell(tt.key)
			if got < 0 || got >= len(grid.cells) {
				t.Fatalf("hashCell(%v) = %d, out of range [0, %d)", tt.key, got, len(grid.cells))
			}
			if got != tt.expected {
				t.Errorf("hashCell(%v) = %d, want %d", tt.key, got, tt.expected)
			}
		})
	}
}

func TestSpatialHash_HashDistribution(t *testing.T) {
	grid := NewSpatialHash(1.0, 1024)

	counts := make(map[int]int)
	for x := -50; x <= 50; x++ {
		for y := -50; y <= 50; y++ {
			for z := -50; z <= 50; z++ {
				counts[grid.hashCell(CellKey{x, y, z})]++
			}
		}
	}

	if len(counts) < len(grid.cells)/2 {
		t.Errorf("only %d of %d buckets used", len(counts), len(grid.cells))
	}
}

func TestSpatialHash_Rebuild(t *testing.T) {
	grid := NewSpatialHash(1.0, 16)
	small := boxCollider(0, mgl64.Vec3{1.5, 2.5, 3.5}, mgl64.Vec3{0.4, 0.4, 0.4})
	wide := boxCollider(1, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{100, 0.4, 100})
	proxy := grid.CreateProxy(small)
	grid.CreateProxy(wide)

	grid.rebuild()
	if len(grid.oversized) != 1 || grid.arena.slots[grid.oversized[0]].collider != wide {
		t.Fatalf("oversized = %v, want the wide box only", grid.oversized)
	}

	// the small box sits in a single cell and is stored once
	stored := 0
	for _, c := range grid.cells {
		for _, index := range c.slots {
			if grid.arena.slots[index].collider == small {
				stored++
			}
		}
	}
	if stored != 1 {
		t.Errorf("small box stored %d times, want 1", stored)
	}

	moveTo(grid, proxy, small, mgl64.Vec3{0, 0.5, 0})
	if !grid.dirty {
		t.Error("UpdateProxy should mark the grid dirty")
	}
	if got := len(grid.SelfQuery(nil)); got != 1 {
		t.Errorf("got %d pairs, want 1", got)
	}
	if grid.dirty {
		t.Error("SelfQuery should rebuild the grid")
	}

	everything := actor.AABB{Min: mgl64.Vec3{-1e6, -1e6, -1e6}, Max: mgl64.Vec3{1e6, 1e6, 1e6}}
	if got := len(grid.Query(everything, nil)); got != 2 {
		t.Errorf("query over every cell returned %d colliders, want 2", got)
	}
}
