// Package bench implements the external I/O collaborators named in the
// specification: a BENCH-format netlist parser, a fault-list reader, and a
// test-vector writer. None of this package's logic is part of the
// fault-sensitization engine itself; it only translates between text files
// and the circuit package's construction API.
package bench

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/halvorsen/podem-atpg/pkg/circuit"
)

var (
	inputRegex  = regexp.MustCompile(`^INPUT\((\w+)\)$`)
	outputRegex = regexp.MustCompile(`^OUTPUT\((\w+)\)$`)
	gateRegex   = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)\((.+)\)$`)
)

// ParseNetlist reads a circuit description in BENCH format and returns an
// unfinalized Circuit: gates and connections are declared but
// BuildSimulationList has not yet run.
func ParseNetlist(path string) (*circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bench: open netlist %s", path)
	}
	defer f.Close()

	name := strings.TrimSuffix(lastPathElement(path), ".bench")
	c := circuit.NewCircuit(name)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case inputRegex.MatchString(line):
			m := inputRegex.FindStringSubmatch(line)
			c.AddGate(m[1], circuit.PI)

		case outputRegex.MatchString(line):
			m := outputRegex.FindStringSubmatch(line)
			c.AddOutput(m[1])

		case gateRegex.MatchString(line):
			m := gateRegex.FindStringSubmatch(line)
			outputName, kindName, inputsRaw := m[1], strings.ToUpper(m[2]), m[3]

			kind, err := parseGateKind(kindName)
			if err != nil {
				return nil, errors.Wrapf(err, "bench: %s", path)
			}
			c.AddGate(outputName, kind)

			for _, in := range strings.Split(inputsRaw, ",") {
				c.Connect(strings.TrimSpace(in), outputName)
			}

		default:
			return nil, errors.Errorf("bench: %s: unrecognized line %q", path, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "bench: read netlist %s", path)
	}

	return c, nil
}

func parseGateKind(name string) (circuit.GateKind, error) {
	switch name {
	case "AND":
		return circuit.AND, nil
	case "OR":
		return circuit.OR, nil
	case "NOT", "INV":
		return circuit.NOT, nil
	case "NAND":
		return circuit.NAND, nil
	case "NOR":
		return circuit.NOR, nil
	case "XOR":
		return circuit.XOR, nil
	case "XNOR":
		return circuit.XNOR, nil
	case "BUFF", "BUF":
		return circuit.BUFF, nil
	default:
		return circuit.BUFF, errors.Errorf("unknown gate kind %q", name)
	}
}

func lastPathElement(path string) string {
	parts := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	return parts[len(parts)-1]
}

// Fault is one target fault episode: a signal name and a stuck-at polarity.
type Fault struct {
	Signal string
	Type   circuit.FaultType
}

// ParseFaultList reads whitespace-separated "signal_name stuck_value" pairs,
// one fault episode per line.
func ParseFaultList(path string) ([]Fault, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bench: open fault list %s", path)
	}
	defer f.Close()

	var faults []Fault
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Errorf("bench: %s:%d: expected \"signal value\", got %q", path, lineNo, line)
		}

		var ft circuit.FaultType
		switch fields[1] {
		case "0":
			ft = circuit.SA0
		case "1":
			ft = circuit.SA1
		default:
			return nil, errors.Errorf("bench: %s:%d: stuck value must be 0 or 1, got %q", path, lineNo, fields[1])
		}

		faults = append(faults, Fault{Signal: fields[0], Type: ft})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "bench: read fault list %s", path)
	}

	return faults, nil
}

// WriteResults writes one line per fault episode to path, in episode order.
// Each line is already formatted by FormatVector or is one of the literal
// tokens "none found" / "error".
func WriteResults(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "bench: create output %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Wrapf(err, "bench: write output %s", path)
		}
	}
	return nil
}

// FormatVector renders one successful test vector as a fixed-width string,
// one character per PI in declaration order: '0', '1', or 'X' for don't-care
// (§4.6). inputs must be the circuit's PI list in declaration order.
func FormatVector(inputs []*circuit.Gate, vector map[string]circuit.LogicValue) string {
	var b strings.Builder
	for _, pi := range inputs {
		switch vector[pi.Name] {
		case circuit.Zero:
			b.WriteByte('0')
		case circuit.One:
			b.WriteByte('1')
		default:
			b.WriteByte('X')
		}
	}
	return b.String()
}

// FaultKey renders a fault as the "signal/value" form used in log messages.
func FaultKey(f Fault) string {
	suffix := "1"
	if f.Type == circuit.SA0 {
		suffix = "0"
	}
	return f.Signal + "/" + suffix
}
