// Package podem implements the PODEM (Path-Oriented Decision Making)
// backtracking search that drives primary inputs to activate a single
// stuck-at fault and propagate its effect to a primary output.
package podem

import (
	"github.com/pkg/errors"

	"github.com/halvorsen/podem-atpg/pkg/circuit"
	"github.com/halvorsen/podem-atpg/pkg/telemetry"
)

// Result is the outcome of one fault episode.
type Result struct {
	Found  bool
	Vector map[string]circuit.LogicValue // PI name -> assigned value, only set when Found
	Err    error                         // set on an internal invariant violation (§7); distinct from a plain search failure
}

// Solver runs one PODEM search against a finalized circuit for a single
// installed fault. A Solver is single-use: construct one per fault episode.
type Solver struct {
	c      *circuit.Circuit
	logger *telemetry.Logger

	faultGate     *circuit.Gate
	faultType     circuit.FaultType
	activationVal circuit.LogicValue
}

// New resets c, installs the named fault, and returns a Solver ready to Run.
// The caller must have already called circuit.BuildSimulationList on c.
func New(c *circuit.Circuit, faultName string, fault circuit.FaultType, logger *telemetry.Logger) (*Solver, error) {
	c.Reset()

	g, err := c.InstallFault(faultName, fault)
	if err != nil {
		return nil, errors.Wrapf(err, "podem: cannot target fault %s/%v", faultName, fault)
	}

	activation := circuit.One
	if fault == circuit.SA1 {
		activation = circuit.Zero
	}

	return &Solver{
		c:             c,
		logger:        logger,
		faultGate:     g,
		faultType:     fault,
		activationVal: activation,
	}, nil
}

// Run executes the PODEM recursion to completion and returns its result. A
// back-trace dead end (§7: an internal invariant violation, not an ordinary
// search failure) aborts the whole search immediately and is reported via
// Result.Err, matching the original's backtrace-throws-to-main behavior.
func (s *Solver) Run() Result {
	s.logger.Podem("starting search for %s %v", s.faultGate.Name, s.faultType)
	found, err := s.recurse()
	if err != nil {
		return Result{Found: false, Err: err}
	}
	if found {
		return Result{Found: true, Vector: s.extractVector()}
	}
	return Result{Found: false}
}

// recurse is one PODEM decision level: simulate, test for success, select an
// objective, back-trace it to a primary input, and try both polarities
// before reporting failure upward. Recursion depth is bounded by the number
// of primary inputs, since each level consumes one previously-X PI. A
// non-nil error short-circuits every enclosing level: it is a dead back-trace,
// not a branch that should be retried under the opposite polarity.
func (s *Solver) recurse() (bool, error) {
	s.c.RunFullSimulation()

	if s.testFound() {
		return true, nil
	}

	objGate, objValue, ok := s.selectObjective()
	if !ok {
		return false, nil
	}

	pi, piValue, err := s.backtrace(objGate, objValue)
	if err != nil {
		s.logger.Backtrace("dead end: %v", err)
		return false, err
	}

	s.logger.Indent()
	defer s.logger.Outdent()

	s.logger.Objective("try %s = %v", pi.Name, piValue)
	pi.Value = piValue
	if found, err := s.recurse(); err != nil || found {
		return found, err
	}

	pi.Value = circuit.X
	s.c.RunFullSimulation()

	flipped := circuit.LogicNot(piValue)
	s.logger.Objective("flip %s = %v", pi.Name, flipped)
	pi.Value = flipped
	if found, err := s.recurse(); err != nil || found {
		return found, err
	}

	pi.Value = circuit.X
	s.c.RunFullSimulation()
	return false, nil
}

// testFound reports whether any primary output currently holds D or D',
// meaning the faulty and fault-free machines now disagree at an observable
// point.
func (s *Solver) testFound() bool {
	for _, po := range s.c.Outputs {
		if po.Value.IsFaulty() {
			return true
		}
	}
	return false
}

// selectObjective implements §4.5.1. When the fault is already activated it
// picks the first D-frontier gate and targets the non-controlling value on
// its first unassigned input; otherwise it targets activating the fault
// itself, failing outright if the fault gate holds the value opposite its
// activation value.
func (s *Solver) selectObjective() (*circuit.Gate, circuit.LogicValue, bool) {
	v := s.faultGate.Value

	if v.IsFaulty() {
		frontier := s.dFrontier()
		if len(frontier) == 0 {
			s.logger.Objective("D-frontier empty, fault effect cannot propagate further")
			return nil, circuit.X, false
		}

		g := frontier[0]
		for _, in := range g.FanIn {
			if in.Value == circuit.X {
				return in, g.Kind.NonControllingValue(), true
			}
		}
		// Every D-frontier member is required to have an X input by
		// construction; reaching here means the frontier was stale.
		return nil, circuit.X, false
	}

	if v == circuit.X || v == s.activationVal {
		return s.faultGate, s.activationVal, true
	}

	// v is the opposite of activationVal: the fault cannot activate under
	// the current assignment.
	return nil, circuit.X, false
}

// dFrontier returns every gate whose output is X and which has at least one
// fan-in holding D or D', in circuit declaration order. A simple first-match
// choice among them suffices for correctness (§4.5.1); picking by
// controllability is a documented possible extension, not required here.
func (s *Solver) dFrontier() []*circuit.Gate {
	var frontier []*circuit.Gate
	for _, g := range s.c.AllGates() {
		if g.Value != circuit.X {
			continue
		}
		for _, in := range g.FanIn {
			if in.Value.IsFaulty() {
				frontier = append(frontier, g)
				break
			}
		}
	}
	return frontier
}

// backtrace walks from (targetGate, targetValue) toward a primary input,
// complementing the target value through each inverting gate crossed
// (§4.5.2). It never assigns any non-PI gate; it only chooses which PI to
// drive and to what value.
func (s *Solver) backtrace(targetGate *circuit.Gate, targetValue circuit.LogicValue) (*circuit.Gate, circuit.LogicValue, error) {
	g, value := targetGate, targetValue

	for g.Kind != circuit.PI {
		if g.Kind == circuit.FANOUT {
			g = g.FanIn[0]
			continue
		}

		next := firstWithValue(g.FanIn, circuit.X)
		if next == nil && len(g.FanIn) > 0 {
			next = g.FanIn[0]
		}
		if next == nil {
			return nil, circuit.X, errors.Errorf("no fan-in reachable from %s", g.Name)
		}

		if g.Kind.IsInverting() {
			value = circuit.LogicNot(value)
		}
		g = next
	}

	return g, value, nil
}

func firstWithValue(gates []*circuit.Gate, v circuit.LogicValue) *circuit.Gate {
	for _, g := range gates {
		if g.Value == v {
			return g
		}
	}
	return nil
}

// extractVector reads every PI's current value into the external reporting
// form (§4.6): ZERO/ONE pass through, D/D' collapse to the good-machine
// value they represent, and X (or a never-assigned Unset) means don't-care.
func (s *Solver) extractVector() map[string]circuit.LogicValue {
	vec := make(map[string]circuit.LogicValue, len(s.c.Inputs))
	for _, pi := range s.c.Inputs {
		vec[pi.Name] = reportValue(pi.Value)
	}
	return vec
}

// reportValue maps a simulated value to its externally reported counterpart.
func reportValue(v circuit.LogicValue) circuit.LogicValue {
	switch v {
	case circuit.D:
		return circuit.One
	case circuit.Dbar:
		return circuit.Zero
	case circuit.Zero, circuit.One:
		return v
	default:
		return circuit.X
	}
}
