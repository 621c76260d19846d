package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/akmonengine/fulcrum"
	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/broadphase"
	"github.com/akmonengine/fulcrum/config"
	"github.com/akmonengine/fulcrum/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

// convergence is how close the anchors of scenario b must end up
const convergence = 1e-3

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch strings.ToLower(args[0]) {
	case "a":
		results, err := scenarioA(cfg)
		if err != nil {
			return err
		}
		printScenarioA(results)
	case "b":
		separations, err := scenarioB(cfg, steps)
		if err != nil {
			return err
		}
		printScenarioB(separations)
	default:
		return fmt.Errorf("unknown scenario %q, want a or b", args[0])
	}
	return nil
}

type overlapResult struct {
	strategy string
	apart    int
	touching int
}

func (r overlapResult) ok() bool {
	return r.apart == 0 && r.touching == 1
}

// scenarioA counts the pairs every strategy reports for two unit boxes two
// units apart, then 0.9 apart
func scenarioA(cfg *config.Config) ([]overlapResult, error) {
	results := make([]overlapResult, 0, len(broadphase.Names()))
	for _, name := range broadphase.Names() {
		c := *cfg
		c.BroadPhase.Dynamic = name
		c.Space.Gravity = mgl64.Vec3{}

		space, err := fulcrum.NewSpace(&c)
		if err != nil {
			return nil, err
		}
		a := newBox(mgl64.Vec3{}, 0.5)
		b := newBox(mgl64.Vec3{2, 0, 0}, 0.5)
		space.AddBody(a)
		space.AddBody(b)

		result := overlapResult{strategy: name}
		space.Step(c.Space.Dt)
		result.apart = space.Report().Pairs

		b.Transform.Position = mgl64.Vec3{0.9, 0, 0}
		space.Step(c.Space.Dt)
		result.touching = space.Report().Pairs

		if verbose {
			log.Printf("scenario a: %s apart=%d touching=%d", name, result.apart, result.touching)
		}
		results = append(results, result)
	}
	return results, nil
}

func printScenarioA(results []overlapResult) {
	fmt.Println(titleStyle.Render("scenario a: two boxes, apart then overlapping"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tAPART\tOVERLAPPING\tRESULT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.strategy, r.apart, r.touching, verdict(r.ok()))
	}
	w.Flush()
}

// scenarioB pulls two free bodies 2 units apart together with a position joint
// of rest length 0 and records the anchor separation after every step
func scenarioB(cfg *config.Config, steps int) ([]float64, error) {
	c := *cfg
	c.Space.Gravity = mgl64.Vec3{}
	c.Space.SleepTime = 0

	space, err := fulcrum.NewSpace(&c)
	if err != nil {
		return nil, err
	}

	a := newSphere(mgl64.Vec3{}, 0.5)
	b := newSphere(mgl64.Vec3{2, 0, 0}, 0.5)
	space.AddBody(a)
	space.AddBody(b)
	space.AddJoint(constraint.NewPositionJointLocal(a.Collider, b.Collider, mgl64.Vec3{}, mgl64.Vec3{}))

	separations := make([]float64, 0, steps+1)
	separations = append(separations, b.Transform.Position.Sub(a.Transform.Position).Len())
	for i := 0; i < steps; i++ {
		space.Step(c.Space.Dt)
		separations = append(separations, b.Transform.Position.Sub(a.Transform.Position).Len())
	}
	if verbose {
		log.Printf("scenario b: %d steps, correction=%s", steps, c.Solver.PositionCorrection)
	}
	return separations, nil
}

func printScenarioB(separations []float64) {
	fmt.Println(titleStyle.Render("scenario b: position joint convergence"))
	fmt.Println(asciigraph.Plot(separations,
		asciigraph.Height(12),
		asciigraph.Width(64),
		asciigraph.Precision(4),
		asciigraph.Caption("anchor separation per step"),
	))

	last := separations[len(separations)-1]
	fmt.Printf("\n%s %.6f  %s\n", labelStyle.Render("final separation"), last, verdict(last < convergence))
}

func newBox(position mgl64.Vec3, half float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: mgl64.Vec3{half, half, half}},
		actor.BodyTypeDynamic,
		1.0,
	)
}

func newSphere(position mgl64.Vec3, radius float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Sphere{Radius: radius},
		actor.BodyTypeDynamic,
		1.0,
	)
}
