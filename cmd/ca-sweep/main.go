// Command ca-sweep steps every registered automaton headlessly over a range
// of grid sizes and reports throughput.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"

	"automata/internal/camera"
	"automata/internal/core"
)

var headlessView = camera.New(1)

func main() {
	steps := flag.Int("steps", 200, "generations to step per scenario")
	workers := flag.Int("workers", 1, "scenarios run concurrently")
	deviceWorkers := flag.Int("device-workers", runtime.NumCPU(), "worker goroutines per device")
	sizes := flag.String("sizes", "64,256,1024", "comma separated grid sides")
	kernels := flag.String("kernels", "", "comma separated kernels (default all)")
	seed := flag.Int64("seed", 42, "seed for the random grids")
	flag.Parse()

	log.SetHandler(cli.New(os.Stderr))

	sides, err := parseSizes(*sizes)
	if err != nil {
		log.WithError(err).Fatal("sizes")
	}
	ids, err := parseKernels(*kernels)
	if err != nil {
		log.WithError(err).Fatal("kernels")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sets := scenarios(ids, sides)
	log.Infof("sweeping %d scenarios (%d workers, %d steps)", len(sets), *workers, *steps)
	results := sweep(ctx, sets, sweepOptions{
		steps:         *steps,
		workers:       *workers,
		deviceWorkers: *deviceWorkers,
		seed:          *seed,
	}, log.Log)

	for i, res := range results {
		if res.err != nil {
			continue
		}
		fmt.Printf("#%d %-22s %10.1f gen/s  mean %.4f\n", i+1, res.scenario, res.rate(), res.mean)
	}
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q", core.ErrInvalidDimensions, f)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseKernels(s string) ([]core.KernelID, error) {
	if strings.TrimSpace(s) == "" {
		return core.Kernels(), nil
	}
	var out []core.KernelID
	for _, f := range strings.Split(s, ",") {
		id, err := core.ParseKernelID(f)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
