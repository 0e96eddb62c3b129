// Command podem-atpg generates stuck-at test vectors for a gate-level
// netlist: given a BENCH-format circuit, an output path, and a fault list,
// it runs the PODEM solver once per fault and writes one result line per
// episode.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/halvorsen/podem-atpg/pkg/bench"
	"github.com/halvorsen/podem-atpg/pkg/circuit"
	"github.com/halvorsen/podem-atpg/pkg/podem"
	"github.com/halvorsen/podem-atpg/pkg/telemetry"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable debug-level tracing")
	logPath := flag.String("log", "", "log file (default: stdout)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <netlist.bench> <output> <fault-list>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(1)
	}
	netlistPath, outputPath, faultPath := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	level := telemetry.InfoLevel
	if *verbose {
		level = telemetry.DebugLevel
	}

	logger := telemetry.New(level)
	if *logPath != "" {
		fileLogger, err := telemetry.NewFile(level, *logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating log file: %v\n", err)
			os.Exit(1)
		}
		logger = fileLogger
	}

	os.Exit(run(netlistPath, outputPath, faultPath, logger))
}

func run(netlistPath, outputPath, faultPath string, logger *telemetry.Logger) int {
	logger.Info("parsing circuit from %s", netlistPath)
	c, err := bench.ParseNetlist(netlistPath)
	if err != nil {
		logger.Error("failed to parse netlist: %v", err)
		return 1
	}

	if err := c.BuildSimulationList(); err != nil {
		logger.Error("failed to finalize circuit: %v", err)
		return 1
	}
	logger.Info("circuit parsed and ready: %s (%d PIs, %d POs, %d gates)",
		c.Name, len(c.Inputs), len(c.Outputs), len(c.AllGates()))

	faults, err := bench.ParseFaultList(faultPath)
	if err != nil {
		logger.Error("failed to read fault list: %v", err)
		return 1
	}

	lines := make([]string, 0, len(faults))
	testsFound := 0
	for _, f := range faults {
		lines = append(lines, processFault(c, f, logger))
		if lines[len(lines)-1] != "none found" && lines[len(lines)-1] != "error" {
			testsFound++
		}
	}

	if err := bench.WriteResults(outputPath, lines); err != nil {
		logger.Error("failed to write results: %v", err)
		return 1
	}

	logger.Info("ATPG complete. Results in %s", outputPath)
	logger.Info("faults processed: %d, tests found: %d", len(faults), testsFound)
	return 0
}

// processFault runs one fault episode, translating solver and fault-target
// errors into the per-episode output tokens defined in §6/§7 rather than
// aborting the batch.
func processFault(c *circuit.Circuit, f bench.Fault, logger *telemetry.Logger) string {
	solver, err := podem.New(c, f.Signal, f.Type, logger)
	if err != nil {
		logger.Error("fault %s: %v", bench.FaultKey(f), err)
		return "error"
	}

	result := solver.Run()
	if result.Err != nil {
		logger.Error("fault %s: %v", bench.FaultKey(f), result.Err)
		return "error"
	}
	if !result.Found {
		logger.Info("fault %s -> none found", bench.FaultKey(f))
		return "none found"
	}

	logger.Info("fault %s -> test found", bench.FaultKey(f))
	return bench.FormatVector(c.Inputs, result.Vector)
}
