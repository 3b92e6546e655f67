package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/cache"
	"github.com/standardbeagle/tmplctl/internal/metrics"
)

var cacheCommand = &cli.Command{
	Name:  "cache",
	Usage: "Inspect and manage the multi-tier template cache",
	Subcommands: []*cli.Command{
		cacheStatsCommand,
		cacheGetCommand,
		cachePutCommand,
		cacheClearCommand,
		cachePrewarmCommand,
	},
}

func newCacheEngine(c *cli.Context) (*cache.Engine, *metrics.Registry, error) {
	cfg, err := loadProjectConfig(c)
	if err != nil {
		return nil, nil, err
	}
	engine, err := cache.NewEngine(cache.Config{
		Policy:     cfg.Cache.Policy,
		MaxEntries: cfg.Cache.MaxEntries,
		MaxBytes:   cfg.Cache.MaxMemoryMB * 1024 * 1024,
		DiskDir:    cfg.Cache.DiskDir,
	})
	if err != nil {
		return nil, nil, err
	}
	return engine, metrics.New(), nil
}

var cacheStatsCommand = &cli.Command{
	Name:  "stats",
	Usage: "Print hit/miss/eviction counters for each cache tier",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Emit stats as JSON"},
	},
	Action: func(c *cli.Context) error {
		engine, m, err := newCacheEngine(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		stats := engine.Stats()
		m.ObserveCacheStats(stats)

		if c.Bool("json") {
			return emitJSON(stats)
		}
		printTier("memory", stats.Memory)
		printTier("disk", stats.Disk)
		printTier("cdn", stats.CDN)
		fmt.Printf("%s hits=%d misses=%d hit_rate=%.2f\n", color.CyanString("overall"),
			stats.Overall.TotalHits, stats.Overall.TotalMisses, stats.Overall.OverallHitRate)
		return nil
	},
}

func printTier(name string, t cache.TierStats) {
	fmt.Printf("%s entries=%d size=%d hits=%d misses=%d hit_rate=%.2f evictions=%d\n",
		color.CyanString(name), t.Entries, t.Size, t.Hits, t.Misses, t.HitRate, t.Evictions)
}

var cacheGetCommand = &cli.Command{
	Name:      "get",
	Usage:     "Fetch a cache entry by key",
	ArgsUsage: "<key>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("cache get requires exactly one <key> argument", 1)
		}
		engine, _, err := newCacheEngine(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		data, ok, err := engine.Get(context.Background(), c.Args().First())
		if err != nil {
			return cli.Exit(err, 1)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, color.YellowString("miss"))
			return cli.Exit("", 1)
		}
		os.Stdout.Write(data)
		return nil
	},
}

var cachePutCommand = &cli.Command{
	Name:      "put",
	Usage:     "Store a value under a cache key, reading the value from a file",
	ArgsUsage: "<key> <file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.Exit("cache put requires <key> <file>", 1)
		}
		engine, _, err := newCacheEngine(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		data, err := os.ReadFile(c.Args().Get(1))
		if err != nil {
			return cli.Exit(err, 1)
		}
		if err := engine.Put(c.Args().First(), data, cache.PutOptions{}); err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Println(color.GreenString("stored"), c.Args().First())
		return nil
	},
}

var cacheClearCommand = &cli.Command{
	Name:  "clear",
	Usage: "Evict every entry from every tier",
	Action: func(c *cli.Context) error {
		engine, _, err := newCacheEngine(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if err := engine.Clear(); err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Println(color.GreenString("cleared"))
		return nil
	},
}

var cachePrewarmCommand = &cli.Command{
	Name:      "prewarm",
	Usage:     "Populate the cache for a set of keys ahead of use",
	ArgsUsage: "<key> [<key>...]",
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.Exit("cache prewarm requires at least one <key> argument", 1)
		}
		engine, _, err := newCacheEngine(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if err := engine.Prewarm(context.Background(), c.Args().Slice()); err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Println(color.GreenString("prewarmed"), c.NArg(), "keys")
		return nil
	},
}
