package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/resolver"
)

var snapshotCommand = &cli.Command{
	Name:  "snapshot",
	Usage: "Capture and restore point-in-time sets of resolved template versions",
	Subcommands: []*cli.Command{
		snapshotCreateCommand,
		snapshotListCommand,
		snapshotRollbackCommand,
	},
}

func openSnapshotStore(c *cli.Context) (*resolver.SnapshotStore, *lifecycleStateDoc, string, error) {
	cfg, err := loadProjectConfig(c)
	if err != nil {
		return nil, nil, "", err
	}
	store, err := resolver.NewSnapshotStore(cfg.Resolver.SnapshotDir, cfg.Resolver.MaxSnapshots, nil)
	if err != nil {
		return nil, nil, "", err
	}
	statePath := lifecycleStatePath(cfg.Registry.Root)
	doc, err := loadLifecycleState(statePath)
	if err != nil {
		return nil, nil, "", err
	}
	return store, doc, statePath, nil
}

var snapshotCreateCommand = &cli.Command{
	Name:      "create",
	Usage:     "Snapshot every tracked template's current resolved version",
	ArgsUsage: "<description>",
	Action: func(c *cli.Context) error {
		store, doc, _, err := openSnapshotStore(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		versions := make(map[string]resolver.Version, len(doc.Templates))
		for name, tv := range doc.Templates {
			versions[name] = tv.Version
		}
		description := strings.Join(c.Args().Slice(), " ")
		snap, err := store.Create(description, versions)
		if err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Printf("%s %s (%d templates, %d bytes)\n", color.GreenString("created"), snap.ID, len(snap.TemplateVersions), snap.Size)
		return nil
	},
}

var snapshotListCommand = &cli.Command{
	Name:  "list",
	Usage: "List stored snapshots, newest first",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Emit the snapshot list as JSON"},
	},
	Action: func(c *cli.Context) error {
		store, _, _, err := openSnapshotStore(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		snaps := store.List()
		if c.Bool("json") {
			return emitJSON(snaps)
		}
		for _, s := range snaps {
			fmt.Printf("%s %s %q templates=%d size=%d created=%s\n", color.CyanString("snapshot"),
				s.ID, s.Description, len(s.TemplateVersions), s.Size, s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		return nil
	},
}

var snapshotRollbackCommand = &cli.Command{
	Name:      "rollback",
	Usage:     "Roll every snapshotted template back to its recorded version",
	ArgsUsage: "<snapshot-id>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "target-state", Value: string(resolver.StateReleased), Usage: "Lifecycle state rolled-back versions are placed into"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("snapshot rollback requires exactly one <snapshot-id> argument", 1)
		}
		store, doc, statePath, err := openSnapshotStore(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		lc := buildLifecycle(doc)

		templates := make(map[string]*resolver.TemplateVersion, len(doc.Templates))
		for name, tv := range doc.Templates {
			templates[name] = tv
		}

		snap, errs := resolver.Rollback(lc, store, c.Args().First(), templates, resolver.LifecycleState(c.String("target-state")))
		for _, e := range errs {
			fmt.Println(color.YellowString("warning:"), e)
		}
		doc.Templates = templates
		doc.Requests = lc.Approvals.All()
		if err := saveLifecycleState(statePath, doc); err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Printf("%s %s to snapshot %s (%d templates, %d errors)\n", color.GreenString("rolled back"),
			c.String("target-state"), snap.ID, len(snap.TemplateVersions), len(errs))
		if len(errs) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	},
}
