package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"text/tabwriter"
	"time"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/broadphase"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
)

type benchResult struct {
	strategy string
	pairs    int
	create   time.Duration
	query    time.Duration
	update   time.Duration
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strategies := args
	if len(strategies) == 0 {
		strategies = broadphase.Names()
	}
	for _, name := range strategies {
		if !broadphase.Known(name) {
			return fmt.Errorf("unknown strategy %q, want one of %v", name, broadphase.Names())
		}
	}

	colliders := randomBoxes(numBodies, extent, seed)
	results := make([]benchResult, 0, len(strategies))
	for _, name := range strategies {
		result := benchStrategy(broadphase.New(name, cfg.BroadPhase.Options), colliders, iterations)
		if verbose {
			log.Printf("bench: %s done", name)
		}
		results = append(results, result)
	}

	printBench(results)
	return nil
}

// randomBoxes spreads n boxes of random size in a cube of half size extent
func randomBoxes(n int, extent float64, seed uint64) []*actor.Collider {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	colliders := make([]*actor.Collider, n)
	for i := range colliders {
		position := mgl64.Vec3{
			(rng.Float64()*2 - 1) * extent,
			(rng.Float64()*2 - 1) * extent,
			(rng.Float64()*2 - 1) * extent,
		}
		half := 0.25 + rng.Float64()
		body := actor.NewRigidBody(
			actor.NewTransformAt(position, mgl64.QuatIdent()),
			&actor.Box{HalfExtents: mgl64.Vec3{half, half, half}},
			actor.BodyTypeDynamic,
			1.0,
		)
		colliders[i] = body.Collider
	}
	return colliders
}

func benchStrategy(bp broadphase.BroadPhase, colliders []*actor.Collider, iterations int) benchResult {
	result := benchResult{strategy: bp.Name()}

	start := time.Now()
	proxies := bp.CreateProxies(colliders)
	result.create = time.Since(start)

	var pairs []broadphase.Pair
	start = time.Now()
	for i := 0; i < iterations; i++ {
		pairs = bp.SelfQuery(pairs[:0])
	}
	result.query = time.Since(start) / time.Duration(max(iterations, 1))
	result.pairs = len(pairs)

	start = time.Now()
	for i := 0; i < iterations; i++ {
		bp.UpdateProxies(proxies)
	}
	result.update = time.Since(start) / time.Duration(max(iterations, 1))

	bp.RemoveProxies(proxies)
	return result
}

func printBench(results []benchResult) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("broadphase: %d boxes, %d iterations", numBodies, iterations)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tPAIRS\tCREATE\tSELFQUERY\tUPDATE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%v\t%v\t%v\n", r.strategy, r.pairs, r.create, r.query, r.update)
	}
	w.Flush()
}
