package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"

	"automata/internal/core"
	"automata/internal/device"
	"automata/internal/sim"
)

type scenario struct {
	kernel core.KernelID
	size   int
}

func (s scenario) String() string {
	return fmt.Sprintf("%s %dx%d", s.kernel, s.size, s.size)
}

type scenarioResult struct {
	scenario
	generations uint64
	elapsed     time.Duration
	mean        float64
	err         error
}

// rate is the stepping throughput in generations per second.
func (r scenarioResult) rate() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.generations) / r.elapsed.Seconds()
}

type sweepOptions struct {
	steps         int
	workers       int
	deviceWorkers int
	seed          int64
}

func scenarios(kernels []core.KernelID, sizes []int) []scenario {
	var out []scenario
	for _, k := range kernels {
		for _, n := range sizes {
			out = append(out, scenario{kernel: k, size: n})
		}
	}
	return out
}

// sweep runs every scenario on its own device, workers at a time, and
// returns the results fastest first.
func sweep(ctx context.Context, sets []scenario, opts sweepOptions, logger log.Interface) []scenarioResult {
	jobs := make(chan scenario)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < max(opts.workers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				results <- runScenario(ctx, sc, opts, logger)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, sc := range sets {
			select {
			case jobs <- sc:
			case <-ctx.Done():
				return
			}
		}
	}()

	var all []scenarioResult
	for res := range results {
		entry := logger.WithFields(log.Fields{
			"kernel": res.kernel.String(),
			"size":   res.size,
		})
		if res.err != nil {
			entry.WithError(res.err).Error("scenario failed")
		} else {
			entry.WithFields(log.Fields{
				"generations": res.generations,
				"gen_per_sec": fmt.Sprintf("%.1f", res.rate()),
				"mean":        fmt.Sprintf("%.4f", res.mean),
			}).Info("scenario done")
		}
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].rate() > all[j].rate() })
	return all
}

func runScenario(ctx context.Context, sc scenario, opts sweepOptions, logger log.Interface) scenarioResult {
	res := scenarioResult{scenario: sc}
	devOpts := device.DefaultOptions()
	if opts.deviceWorkers > 0 {
		devOpts.Workers = opts.deviceWorkers
	}
	dev, err := device.New(devOpts)
	if err != nil {
		res.err = err
		return res
	}
	defer dev.Destroy()

	cfg := sim.DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = uint32(sc.size), uint32(sc.size)
	cfg.ActiveKernel = sc.kernel
	cfg.Seed = opts.seed
	cfg.RateLimited = false
	s, err := sim.New(dev, cfg, sim.WithLogger(logger.WithField("scenario", sc.String())))
	if err != nil {
		res.err = err
		return res
	}

	start := time.Now()
	for i := 0; i < opts.steps; i++ {
		if _, err := s.Frame(ctx, &cfg, sim.Input{}, 0, nil, headlessView); err != nil {
			res.err = err
			return res
		}
	}
	if err := s.WaitIdle(ctx); err != nil {
		res.err = err
		return res
	}
	res.elapsed = time.Since(start)
	res.generations = s.Generation()

	cells, err := s.Snapshot(ctx)
	if err != nil {
		res.err = err
		return res
	}
	var sum float64
	for _, v := range cells {
		sum += float64(v)
	}
	res.mean = sum / float64(len(cells))
	res.err = s.Close(ctx)
	return res
}
