package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/metrics"
	"github.com/standardbeagle/tmplctl/internal/registry"
	"github.com/standardbeagle/tmplctl/internal/resolver"
)

var updateCommand = &cli.Command{
	Name:  "update",
	Usage: "Check for, and optionally install, available template updates",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "dry-run", Usage: "Report available updates without installing them"},
		&cli.BoolFlag{Name: "prerelease", Usage: "Include prerelease versions as candidates"},
		&cli.StringSliceFlag{Name: "template", Usage: "Limit the check to specific template names (repeatable)"},
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

		lockPath := filepath.Join(cfg.Registry.Root, ".tmplctl", "installed.json")
		installed, err := loadInstalled(lockPath)
		if err != nil {
			return cli.Exit(err, 1)
		}

		names := c.StringSlice("template")
		if len(names) == 0 {
			names = reg.Names()
		}

		updates, err := resolver.CheckForUpdates(reg, installed, names, resolver.UpdateQuery{
			Templates:         c.StringSlice("template"),
			IncludePrerelease: c.Bool("prerelease"),
		})
		if err != nil {
			return cli.Exit(err, 1)
		}

		m := metrics.New()
		for _, u := range updates {
			m.ObserveUpdate(string(u.UpdateType))
			fmt.Printf("%s %s: %s -> %s (%s)\n", color.CyanString("update"), u.Name, u.Current, u.Available, u.UpdateType)
		}
		if len(updates) == 0 {
			fmt.Println("all templates up to date")
			return nil
		}

		if c.Bool("dry-run") {
			return nil
		}
		return performUpdate(lockPath, updates)
	},
}

// performUpdate writes each update's Available version into the
// installed-versions lockfile, the update manager's persisted state.
func performUpdate(lockPath string, updates []resolver.UpdateInfo) error {
	raw, err := readInstalledRaw(lockPath)
	if err != nil {
		return err
	}
	for _, u := range updates {
		raw[u.Name] = u.Available.String()
	}
	return saveInstalled(lockPath, raw)
}

func readInstalledRaw(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	doc := map[string]string{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func loadInstalled(path string) (*registry.InstalledVersions, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return registry.NewInstalledVersions(nil)
	}
	if err != nil {
		return nil, err
	}
	var doc map[string]string
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return registry.NewInstalledVersions(doc)
}

func saveInstalled(path string, raw map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
