package epa

import (
	"fmt"
	"sync"

	"github.com/akmonengine/fulcrum/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope with its outward normal and distance to the origin
type Face struct {
	Points   [3]mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// EdgeEntry counts how many visible faces share an edge.
// An edge seen once lies on the horizon.
type EdgeEntry struct {
	A, B  mgl64.Vec3
	Count int
}

// PolytopeBuilder owns the buffers of one expansion, reused through a pool
type PolytopeBuilder struct {
	faces          []Face
	points         []mgl64.Vec3
	edges          []EdgeEntry
	visibleIndices []int
}

var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{
			faces:          make([]Face, 0, polytopeInitialCapacity),
			points:         make([]mgl64.Vec3, 0, polytopeInitialCapacity),
			edges:          make([]EdgeEntry, 0, polytopeInitialCapacity),
			visibleIndices: make([]int, 0, polytopeInitialCapacity),
		}
	},
}

func (b *PolytopeBuilder) Reset() {
	b.faces = b.faces[:0]
	b.points = b.points[:0]
	b.edges = b.edges[:0]
	b.visibleIndices = b.visibleIndices[:0]
}

// BuildInitialFaces creates the four faces of GJK's tetrahedron
func (b *PolytopeBuilder) BuildInitialFaces(simplex *gjk.Simplex) error {
	if simplex.Count != 4 {
		return fmt.Errorf("epa: invalid simplex count %d, expected 4", simplex.Count)
	}

	p0, p1, p2, p3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]
	b.points = append(b.points, p0, p1, p2, p3)
	b.faces = append(b.faces,
		createFaceOutward(p0, p1, p2, p3),
		createFaceOutward(p0, p2, p3, p1),
		createFaceOutward(p0, p3, p1, p2),
		createFaceOutward(p1, p3, p2, p0),
	)
	return nil
}

// createFaceOutward builds a face whose normal points away from oppositePoint
func createFaceOutward(p0, p1, p2, oppositePoint mgl64.Vec3) Face {
	face := Face{Points: [3]mgl64.Vec3{p0, p1, p2}}

	normal := p1.Sub(p0).Cross(p2.Sub(p0))
	length := normal.Len()
	if length < 1e-8 {
		face.Normal = mgl64.Vec3{0, 1, 0}
		face.Distance = MinFaceDistance
		return face
	}
	normal = normal.Mul(1.0 / length)

	if normal.Dot(oppositePoint.Sub(p0)) > 0 {
		normal = normal.Mul(-1)
	}

	distance := p0.Dot(normal)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}

	face.Normal = snapNormalToAxis(normal)
	face.Distance = max(distance, MinFaceDistance)
	return face
}

// FindClosestFaceIndex returns -1 when the polytope has no face
func (b *PolytopeBuilder) FindClosestFaceIndex() int {
	closest := -1
	for i := range b.faces {
		if closest < 0 || b.faces[i].Distance < b.faces[closest].Distance {
			closest = i
		}
	}
	return closest
}

func (b *PolytopeBuilder) centroid() mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, p := range b.points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(b.points)))
}

func (b *PolytopeBuilder) findVisibleFaces(support mgl64.Vec3) {
	b.visibleIndices = b.visibleIndices[:0]
	for i := range b.faces {
		if support.Sub(b.faces[i].Points[0]).Dot(b.faces[i].Normal) > 0 {
			b.visibleIndices = append(b.visibleIndices, i)
		}
	}
}

// findBoundaryEdges collects the edges of the visible faces. Shared edges are counted twice.
func (b *PolytopeBuilder) findBoundaryEdges() {
	b.edges = b.edges[:0]
	for _, index := range b.visibleIndices {
		face := &b.faces[index]
		for k := 0; k < 3; k++ {
			edgeA, edgeB := face.Points[k], face.Points[(k+1)%3]
			if compareVec3(edgeA, edgeB) > 0 {
				edgeA, edgeB = edgeB, edgeA
			}
			if i := b.findEdgeIndex(edgeA, edgeB); i >= 0 {
				b.edges[i].Count++
				continue
			}
			b.edges = append(b.edges, EdgeEntry{A: edgeA, B: edgeB, Count: 1})
		}
	}
}

func (b *PolytopeBuilder) findEdgeIndex(edgeA, edgeB mgl64.Vec3) int {
	for i := range b.edges {
		if b.edges[i].A == edgeA && b.edges[i].B == edgeB {
			return i
		}
	}
	return -1
}

// removeVisibleFaces swap-removes from the highest index down, visibleIndices is ascending
func (b *PolytopeBuilder) removeVisibleFaces() {
	for i := len(b.visibleIndices) - 1; i >= 0; i-- {
		index := b.visibleIndices[i]
		last := len(b.faces) - 1
		b.faces[index] = b.faces[last]
		b.faces = b.faces[:last]
	}
}

// AddPointAndRebuildFaces replaces the faces visible from support by a fan
// connecting the horizon to support
func (b *PolytopeBuilder) AddPointAndRebuildFaces(support mgl64.Vec3, closestIndex int) {
	b.findVisibleFaces(support)
	if len(b.visibleIndices) == 0 || len(b.visibleIndices) >= len(b.faces) {
		b.visibleIndices = append(b.visibleIndices[:0], closestIndex)
	}

	b.findBoundaryEdges()
	b.removeVisibleFaces()

	b.points = append(b.points, support)
	centroid := b.centroid()
	for _, edge := range b.edges {
		if edge.Count == 1 {
			b.faces = append(b.faces, createFaceOutward(edge.A, edge.B, support, centroid))
		}
	}

	if len(b.faces) == 0 {
		b.faces = append(b.faces, Face{
			Points:   [3]mgl64.Vec3{support, support, support},
			Normal:   mgl64.Vec3{0, 1, 0},
			Distance: MinFaceDistance,
		})
	}
}

// compareVec3 orders points lexicographically
func compareVec3(a, b mgl64.Vec3) int {
	for i := 0; i < 3; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
