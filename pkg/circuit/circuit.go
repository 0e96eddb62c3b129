package circuit

import (
	"fmt"

	"github.com/pkg/errors"
)

// Circuit owns every gate for its lifetime. Gates are created exactly once,
// during parsing and graph finalization, and never freed individually; a
// Circuit going out of scope takes its whole gate set with it.
type Circuit struct {
	Name string

	gates   map[string]*Gate
	order   []string // insertion order, for deterministic iteration
	Inputs  []*Gate  // declared PIs, in declaration order
	Outputs []*Gate  // declared PO observer gates, in declaration order

	poNames []string // names declared via AddOutput, resolved in BuildSimulationList

	simList []*Gate // cached topological evaluation order, set once
	built   bool
}

// NewCircuit creates an empty, unfinalized circuit.
func NewCircuit(name string) *Circuit {
	return &Circuit{
		Name:  name,
		gates: make(map[string]*Gate),
	}
}

// AddGate creates and registers a gate of the given kind under name, or
// returns the existing gate if name is already known. Gates are created
// exactly once; re-declaring a name with a different kind is a no-op that
// keeps the first definition, matching the tolerant "declare once, reference
// many times" shape of a netlist.
func (c *Circuit) AddGate(name string, kind GateKind) *Gate {
	if g, ok := c.gates[name]; ok {
		return g
	}

	g := NewGate(name, kind)
	c.gates[name] = g
	c.order = append(c.order, name)

	if kind == PI {
		c.Inputs = append(c.Inputs, g)
	}
	return g
}

// GetGate looks up a gate by name, or nil if it does not exist.
func (c *Circuit) GetGate(name string) *Gate {
	return c.gates[name]
}

// AddOutput declares name as a primary output. Resolution into an actual PO
// observer gate happens once, in BuildSimulationList's Phase B, so outputs
// may be declared before the gate producing them exists.
func (c *Circuit) AddOutput(name string) {
	c.poNames = append(c.poNames, name)
}

// Connect wires src as one fan-in of dst, creating either endpoint as a BUFF
// placeholder if it has not been declared yet. This tolerates a netlist
// referencing a signal before its own declaration appears.
func (c *Circuit) Connect(srcName, dstName string) {
	src := c.gates[srcName]
	if src == nil {
		src = c.AddGate(srcName, BUFF)
	}
	dst := c.gates[dstName]
	if dst == nil {
		dst = c.AddGate(dstName, BUFF)
	}

	dst.addFanIn(src)
	src.addFanOut(dst)
}

// BuildSimulationList finalizes the circuit graph: it expands fan-out stems
// into explicit FANOUT branch gates (Phase A), wires declared primary
// outputs to their PO observer gates (Phase B), and computes a topological
// evaluation order (Phase C). It must run exactly once, after all gates and
// connections have been declared, and before any simulation or fault
// episode. Calling it a second time is a programmer error.
func (c *Circuit) BuildSimulationList() error {
	if c.built {
		return errors.New("circuit: BuildSimulationList called more than once")
	}

	c.expandFanOut()
	c.wirePrimaryOutputs()

	order, err := c.topologicalOrder()
	if err != nil {
		return errors.Wrap(err, "circuit: build simulation list")
	}
	c.simList = order
	c.built = true
	return nil
}

// expandFanOut is Phase A. It iterates the gate set present at entry (not
// any FANOUT gate introduced during the phase) and, for every gate whose
// fan-out degree exceeds one, replaces its direct successors with one
// synthesized FANOUT gate per original successor.
func (c *Circuit) expandFanOut() {
	stems := make([]string, len(c.order))
	copy(stems, c.order)

	for _, name := range stems {
		stem := c.gates[name]
		if len(stem.FanOut) <= 1 {
			continue
		}

		successors := stem.FanOut
		stem.FanOut = nil

		for i, succ := range successors {
			branchName := fmt.Sprintf("%s_%d", stem.Name, i)
			branch := c.AddGate(branchName, FANOUT)

			stem.addFanOut(branch)
			branch.addFanIn(stem)
			branch.addFanOut(succ)
			succ.replaceFanIn(stem, branch)
		}
	}
}

// wirePrimaryOutputs is Phase B. For every declared PO name with a matching
// gate, it synthesizes a "<name>_PO" observer gate (if not already present)
// and connects name into it. The PO gates are the official detection points
// used by the solver's termination test.
func (c *Circuit) wirePrimaryOutputs() {
	for _, name := range c.poNames {
		if _, ok := c.gates[name]; !ok {
			continue
		}

		poName := name + "_PO"
		if c.gates[poName] == nil {
			po := c.AddGate(poName, PO)
			c.Outputs = append(c.Outputs, po)
			c.Connect(name, poName)
		}
	}
}

// topologicalOrder runs Kahn's algorithm over the current gate set. The
// queue is seeded with zero-in-degree gates in declaration order, which must
// include every PI, and gates are dequeued in FIFO order; given a
// deterministic declaration order this produces a deterministic evaluation
// list. A non-empty residual in-degree set after the queue drains indicates
// a cycle.
func (c *Circuit) topologicalOrder() ([]*Gate, error) {
	inDegree := make(map[string]int, len(c.order))
	for _, name := range c.order {
		inDegree[name] = len(c.gates[name].FanIn)
	}

	queue := make([]*Gate, 0, len(c.order))
	for _, name := range c.order {
		if inDegree[name] == 0 {
			queue = append(queue, c.gates[name])
		}
	}

	result := make([]*Gate, 0, len(c.order))
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		result = append(result, g)

		for _, succ := range g.FanOut {
			inDegree[succ.Name]--
			if inDegree[succ.Name] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(result) != len(c.order) {
		return nil, errors.Errorf("circuit: cyclic netlist, %d of %d gates unreachable in topological order", len(c.order)-len(result), len(c.order))
	}
	return result, nil
}

// Reset clears every gate's value (PIs to X, all others to Unset) and
// removes any assigned fault, ready for the next fault episode.
func (c *Circuit) Reset() {
	for _, name := range c.order {
		g := c.gates[name]
		g.Fault = NoFault
		if g.Kind == PI {
			g.Value = X
		} else {
			g.Value = Unset
		}
	}
}

// InstallFault installs fault on the named gate. It returns an error if the
// gate does not exist in the finalized circuit; the caller should treat that
// as a per-episode fault-target error (§7), not a fatal one.
func (c *Circuit) InstallFault(name string, fault FaultType) (*Gate, error) {
	g, ok := c.gates[name]
	if !ok {
		return nil, errors.Errorf("circuit: fault target %q not found", name)
	}
	g.Fault = fault
	return g, nil
}

// RunFullSimulation evaluates every gate once, in topological order, storing
// each gate's newly computed value. It is linear in gate and edge count and
// is re-run after every PODEM trial assignment rather than incrementally
// updated, since backtracking resets PIs to X which is non-monotone for an
// event-driven scheme.
func (c *Circuit) RunFullSimulation() {
	for _, g := range c.simList {
		g.Value = g.Evaluate()
	}
}

// SimulationOrder returns the cached topological evaluation list computed by
// BuildSimulationList.
func (c *Circuit) SimulationOrder() []*Gate {
	return c.simList
}

// AllGates returns every gate in declaration order, including synthesized
// FANOUT and PO gates added during finalization.
func (c *Circuit) AllGates() []*Gate {
	out := make([]*Gate, len(c.order))
	for i, name := range c.order {
		out[i] = c.gates[name]
	}
	return out
}
