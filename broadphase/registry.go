package broadphase

import (
	"strings"
)

const (
	NameNSquared       = "nsquared"
	NameBoundingBox    = "boundingbox"
	NameBoundingSphere = "boundingsphere"
	NameSweepAndPrune  = "sap"
	NameStaticAabbTree = "statictree"
	NameSpatialHash    = "spatialhash"
)

// Options carries the tunables of the strategies that have any.
// Zero values select the defaults.
type Options struct {
	CellSize float64 `yaml:"cell_size"`
	Cells    int     `yaml:"cells"`
}

var constructors = map[string]func(Options) BroadPhase{
	NameNSquared:       func(Options) BroadPhase { return NewNSquared() },
	NameBoundingBox:    func(Options) BroadPhase { return NewBoundingBox() },
	NameBoundingSphere: func(Options) BroadPhase { return NewBoundingSphere() },
	NameSweepAndPrune:  func(Options) BroadPhase { return NewSweepAndPrune() },
	NameStaticAabbTree: func(Options) BroadPhase { return NewStaticAabbTree() },
	NameSpatialHash: func(o Options) BroadPhase {
		cells := o.Cells
		if cells <= 0 {
			cells = DefaultCells
		}
		return NewSpatialHash(o.CellSize, cells)
	},
}

// New builds the strategy registered under name, case insensitive.
// It returns nil for an unknown name.
func New(name string, options Options) BroadPhase {
	constructor, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil
	}
	return constructor(options)
}

// Names lists the registered strategies in a stable order
func Names() []string {
	return []string{
		NameNSquared,
		NameBoundingBox,
		NameBoundingSphere,
		NameSweepAndPrune,
		NameStaticAabbTree,
		NameSpatialHash,
	}
}

// Known reports whether name is registered
func Known(name string) bool {
	_, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
