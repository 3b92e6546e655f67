package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/config"
	"github.com/standardbeagle/tmplctl/internal/eval"
	"github.com/standardbeagle/tmplctl/internal/registry"
	"github.com/standardbeagle/tmplctl/internal/render"
)

var benchmarkCommand = &cli.Command{
	Name:  "benchmark",
	Usage: "Time repeated render/resolve operations against the configured project",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "templates", Value: 1, Usage: "Unused placeholder kept for the documented flag surface"},
		&cli.StringFlag{Name: "operations", Value: "load,validate,search,generate", Usage: "Comma-separated operations to time"},
		&cli.IntFlag{Name: "iterations", Value: 100, Usage: "Iterations per operation"},
		&cli.IntFlag{Name: "concurrency", Value: 1, Usage: "Concurrent workers per operation"},
		&cli.StringFlag{Name: "output", Value: "table", Usage: "table|json|csv"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadProjectConfig(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		reg, err := registry.ScanDirectory(cfg.Registry.Root, cfg.Registry.MaxDepth)
		if err != nil {
			return cli.Exit(err, 1)
		}

		ops := strings.Split(c.String("operations"), ",")
		iterations := c.Int("iterations")
		concurrency := c.Int("concurrency")
		if concurrency < 1 {
			concurrency = 1
		}

		results := make([]benchmarkResult, 0, len(ops))
		for _, op := range ops {
			op = strings.TrimSpace(op)
			if op == "" {
				continue
			}
			fn, ok := benchmarkOps[op]
			if !ok {
				return cli.Exit(fmt.Sprintf("unknown benchmark operation %q", op), 1)
			}
			results = append(results, runBenchmark(op, iterations, concurrency, func() error { return fn(cfg, reg) }))
		}

		switch c.String("output") {
		case "json":
			return emitJSON(results)
		case "csv":
			fmt.Println("operation,iterations,failures,total_ms,mean_us")
			for _, r := range results {
				fmt.Printf("%s,%d,%d,%.3f,%.3f\n", r.Operation, r.Iterations, r.Failures, r.TotalMS, r.MeanUS)
			}
		default:
			for _, r := range results {
				fmt.Printf("%-10s iterations=%-6d failures=%-4d total=%.2fms mean=%.2fus\n",
					r.Operation, r.Iterations, r.Failures, r.TotalMS, r.MeanUS)
			}
		}
		for _, r := range results {
			if r.Failures > 0 {
				return cli.Exit("", 1)
			}
		}
		return nil
	},
}

type benchmarkResult struct {
	Operation  string  `json:"operation"`
	Iterations int     `json:"iterations"`
	Failures   int     `json:"failures"`
	TotalMS    float64 `json:"total_ms"`
	MeanUS     float64 `json:"mean_us"`
}

var benchmarkOps = map[string]func(cfg *config.Config, reg *registry.Registry) error{
	"load":     benchmarkLoad,
	"validate": benchmarkValidate,
	"search":   benchmarkSearch,
	"generate": benchmarkGenerate,
}

func benchmarkLoad(cfg *config.Config, reg *registry.Registry) error {
	_, err := registry.ScanDirectory(cfg.Registry.Root, cfg.Registry.MaxDepth)
	return err
}

func benchmarkValidate(cfg *config.Config, reg *registry.Registry) error {
	for _, name := range reg.Names() {
		if _, err := reg.Versions(name); err != nil {
			return err
		}
	}
	return nil
}

func benchmarkSearch(cfg *config.Config, reg *registry.Registry) error {
	names := reg.Names()
	if len(names) == 0 {
		return nil
	}
	reg.Locations(names[0])
	return nil
}

func benchmarkGenerate(cfg *config.Config, reg *registry.Registry) error {
	engine := render.NewEngine(eval.NewEvaluator())
	ctx := render.NewContext(map[string]eval.Value{"name": eval.Text("bench")})
	ctx.MaxNesting = uint32(cfg.Render.MaxNesting)
	result := engine.Render("hello {{name}}{{#if name}} ({{name}}){{/if}}", ctx)
	if !result.OK {
		return fmt.Errorf("benchmark render failed: %v", result.Errors)
	}
	return nil
}

func runBenchmark(name string, iterations, concurrency int, fn func() error) benchmarkResult {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	work := make(chan int, iterations)
	for i := 0; i < iterations; i++ {
		work <- i
	}
	close(work)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range work {
				if err := fn(); err != nil {
					mu.Lock()
					failures++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	mean := float64(0)
	if iterations > 0 {
		mean = float64(elapsed.Microseconds()) / float64(iterations)
	}
	return benchmarkResult{
		Operation:  name,
		Iterations: iterations,
		Failures:   failures,
		TotalMS:    float64(elapsed.Microseconds()) / 1000,
		MeanUS:     mean,
	}
}

