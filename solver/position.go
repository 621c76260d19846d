package solver

import (
	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/constraint"
)

// PositionReport describes one SolvePositions call
type PositionReport struct {
	// Candidates had a positional error above the threshold when the pass started
	Candidates int
	Resolved   int
	// Unresolved are still above the threshold, the next step retries them
	Unresolved []constraint.Constraint
}

type correction func(rows []constraint.Molecule, a, b *actor.RigidBody, factor, maxCorrection float64)

// SolvePositions removes positional drift after the positions were integrated.
// Only constraints above PositionThreshold take part; each iteration drops the
// constraints that got below it.
func (s *Solver) SolvePositions() PositionReport {
	var correct correction
	switch s.config.PositionCorrection {
	case CorrectionNaive:
		correct = constraint.CorrectNaive
	case CorrectionBlock:
		correct = constraint.CorrectBlock
	default:
		return PositionReport{}
	}

	step := s.step
	step.WarmStart = false
	step.VelocityBias = false
	threshold := s.config.PositionThreshold

	clear(s.pending)
	s.pending = s.pending[:0]
	for _, c := range s.active {
		if c.UpdateAtoms() && c.PositionError() > threshold {
			s.pending = append(s.pending, c)
		}
	}

	report := PositionReport{Candidates: len(s.pending)}
	for range s.config.PositionIterations {
		if len(s.pending) == 0 {
			break
		}

		for i := 0; i < len(s.pending); {
			// earlier corrections may have moved the bodies of c
			c := s.pending[i]
			if !c.UpdateAtoms() || c.PositionError() <= threshold {
				s.resolve(i)
				report.Resolved++
				continue
			}

			rows := s.scratchRows(c.MoleculeCount())
			s.walker.Reset(rows)
			c.ComputeMolecules(&s.walker, step)

			a, b := c.Bodies()
			correct(rows, a, b, s.config.PositionFactor, s.config.MaxCorrection)
			i++
		}
	}

	for i := 0; i < len(s.pending); {
		if !s.pending[i].UpdateAtoms() || s.pending[i].PositionError() <= threshold {
			s.resolve(i)
			report.Resolved++
			continue
		}
		i++
	}

	report.Unresolved = append([]constraint.Constraint(nil), s.pending...)
	return report
}

// resolve swap-removes a constraint from the working set
func (s *Solver) resolve(i int) {
	last := len(s.pending) - 1
	s.pending[i] = s.pending[last]
	s.pending[last] = nil
	s.pending = s.pending[:last]
}

func (s *Solver) scratchRows(n int) []constraint.Molecule {
	if cap(s.scratch) < n {
		s.scratch = make([]constraint.Molecule, n)
	}
	s.scratch = s.scratch[:n]
	clear(s.scratch)
	return s.scratch
}
