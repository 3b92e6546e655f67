package main

import (
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/config"
)

// loadProjectConfig resolves --root to an absolute path, loads the
// project's config file relative to it, then re-pins Registry.Root to
// the resolved absolute path so later path joins are never relative.
func loadProjectConfig(c *cli.Context) (*config.Config, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFile(root, c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.Registry.Root = root
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
