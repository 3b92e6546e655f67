package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/metrics"
	"github.com/standardbeagle/tmplctl/internal/registry"
	"github.com/standardbeagle/tmplctl/internal/resolver"
)

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "Resolve a dependency graph rooted at one or more templates",
	ArgsUsage: "<root> [<root>...]",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Emit the Resolution as JSON"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.Exit("resolve requires at least one <root> argument", 1)
		}
		cfg, err := loadProjectConfig(c)
		if err != nil {
			return cli.Exit(err, 1)
		}

		reg, err := registry.ScanDirectory(cfg.Registry.Root, cfg.Registry.MaxDepth)
		if err != nil {
			return cli.Exit(err, 1)
		}

		r := resolver.NewResolver(reg)
		if vulns, err := registry.LoadVulnerabilityDB(filepath.Join(cfg.Registry.Root, ".tmplctl", "vulnerabilities.json")); err == nil {
			r.Vulns = vulns
		}
		if licenses, err := registry.LoadLicenseTable(filepath.Join(cfg.Registry.Root, ".tmplctl", "licenses.json")); err == nil {
			r.Licenses = licenses
		}

		roots := make([]resolver.Dependency, 0, c.NArg())
		for _, arg := range c.Args().Slice() {
			name, constraint, _ := strings.Cut(arg, "@")
			if constraint == "" {
				constraint = "*"
			}
			roots = append(roots, resolver.Dependency{Name: name, Constraint: constraint, Kind: resolver.KindRuntime})
		}

		res, err := r.Resolve(roots)
		if err != nil {
			return cli.Exit(err, 1)
		}

		m := metrics.New()
		m.ObserveResolution(len(res.Conflicts))

		if c.Bool("json") {
			if err := emitJSON(resolutionJSON(res)); err != nil {
				return cli.Exit(err, 1)
			}
		} else {
			printResolution(res)
		}

		if len(res.Conflicts) > 0 {
			return cli.Exit("", 2)
		}
		return nil
	},
}

func printResolution(res resolver.Resolution) {
	names := make([]string, 0, len(res.Resolved))
	for name := range res.Resolved {
		names = append(names, name)
	}
	for _, name := range names {
		fmt.Printf("%s resolved %s@%s\n", color.GreenString("✓"), name, res.Resolved[name])
	}
	for _, conflict := range res.Conflicts {
		fmt.Fprintf(os.Stderr, "%s unsatisfiable constraints for %s (%d contributing sources)\n", color.RedString("✗"), conflict.Name, len(conflict.Sources))
	}
	for _, v := range res.Vulnerabilities {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.YellowString("vulnerability:"), v)
	}
	for _, l := range res.LicenseIssues {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.YellowString("license issue:"), l)
	}
}

type resolutionDoc struct {
	Resolved        map[string]string `json:"resolved"`
	Conflicts       []conflictDoc     `json:"conflicts,omitempty"`
	Vulnerabilities []string          `json:"vulnerabilities,omitempty"`
	LicenseIssues   []string          `json:"licenseIssues,omitempty"`
}

type conflictDoc struct {
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
}

func resolutionJSON(res resolver.Resolution) resolutionDoc {
	doc := resolutionDoc{Resolved: make(map[string]string, len(res.Resolved))}
	for name, v := range res.Resolved {
		doc.Resolved[name] = v.String()
	}
	for _, conflict := range res.Conflicts {
		cd := conflictDoc{Name: conflict.Name}
		for _, dep := range conflict.Sources {
			cd.Sources = append(cd.Sources, fmt.Sprintf("%s (%s)", dep.Name, dep.Constraint))
		}
		doc.Conflicts = append(doc.Conflicts, cd)
	}
	doc.Vulnerabilities = res.Vulnerabilities
	doc.LicenseIssues = res.LicenseIssues
	return doc
}
