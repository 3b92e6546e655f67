package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/resolver"
)

var lifecycleCommand = &cli.Command{
	Name:  "lifecycle",
	Usage: "Drive template versions through the release lifecycle state machine",
	Subcommands: []*cli.Command{
		lifecycleRequestCommand,
		lifecycleApproveCommand,
		lifecycleRejectCommand,
		lifecycleListCommand,
	},
}

// lifecycleStateDoc is the on-disk shape of .tmplctl/lifecycle.json,
// the CLI's persisted view of in-flight template versions and their
// approval requests across invocations (the in-memory resolver types
// carry no persistence of their own).
type lifecycleStateDoc struct {
	Templates map[string]*resolver.TemplateVersion `json:"templates"`
	Requests  []*resolver.ApprovalRequest           `json:"requests"`
}

func lifecycleStatePath(root string) string {
	return filepath.Join(root, ".tmplctl", "lifecycle.json")
}

func loadLifecycleState(path string) (*lifecycleStateDoc, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &lifecycleStateDoc{Templates: map[string]*resolver.TemplateVersion{}}, nil
	}
	if err != nil {
		return nil, err
	}
	doc := &lifecycleStateDoc{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, err
	}
	if doc.Templates == nil {
		doc.Templates = map[string]*resolver.TemplateVersion{}
	}
	return doc, nil
}

func saveLifecycleState(path string, doc *lifecycleStateDoc) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func buildLifecycle(doc *lifecycleStateDoc) *resolver.Lifecycle {
	store := resolver.NewApprovalStore()
	for _, req := range doc.Requests {
		store.Put(req)
	}
	return resolver.NewLifecycle(store, nil)
}

var lifecycleRequestCommand = &cli.Command{
	Name:      "request",
	Usage:     "Request a template version's transition to a new lifecycle state",
	ArgsUsage: "<name> <version> <to-state>",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{Name: "approver", Usage: "Required approver name (repeatable); defaults apply when omitted"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 3 {
			return cli.Exit("lifecycle request requires <name> <version> <to-state>", 1)
		}
		cfg, err := loadProjectConfig(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		name, versionStr, toStr := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)
		version, err := resolver.ParseVersion(versionStr)
		if err != nil {
			return cli.Exit(err, 1)
		}

		path := lifecycleStatePath(cfg.Registry.Root)
		doc, err := loadLifecycleState(path)
		if err != nil {
			return cli.Exit(err, 1)
		}
		lc := buildLifecycle(doc)

		tv, ok := doc.Templates[name]
		if !ok {
			tv = &resolver.TemplateVersion{Name: name, Version: version, State: resolver.StateDevelopment}
			doc.Templates[name] = tv
		}
		tv.Version = version

		req, err := lc.RequestStateChange(tv, resolver.LifecycleState(toStr), c.StringSlice("approver"), cfg.Resolver.ApprovalDeadline)
		if err != nil {
			return cli.Exit(err, 1)
		}
		doc.Requests = lc.Approvals.All()
		if err := saveLifecycleState(path, doc); err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Printf("%s %s (%s) status=%s\n", color.CyanString("requested"), req.ID, req.TargetState, req.Status)
		return nil
	},
}

var lifecycleApproveCommand = &cli.Command{
	Name:      "approve",
	Usage:     "Record an approval against a pending request",
	ArgsUsage: "<request-id> <approver>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "comment", Usage: "Optional approval comment"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.Exit("lifecycle approve requires <request-id> <approver>", 1)
		}
		cfg, err := loadProjectConfig(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		path := lifecycleStatePath(cfg.Registry.Root)
		doc, err := loadLifecycleState(path)
		if err != nil {
			return cli.Exit(err, 1)
		}
		lc := buildLifecycle(doc)

		req, ok := lc.Approvals.Get(c.Args().First())
		if !ok {
			return cli.Exit("unknown request id", 1)
		}
		tv := doc.Templates[req.VersionID]
		if tv == nil {
			return cli.Exit("no template tracked for this request", 1)
		}
		if err := lc.Approve(tv, req.ID, c.Args().Get(1), c.String("comment")); err != nil {
			return cli.Exit(err, 1)
		}
		doc.Requests = lc.Approvals.All()
		if err := saveLifecycleState(path, doc); err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Println(color.GreenString("approved"), req.ID)
		return nil
	},
}

var lifecycleRejectCommand = &cli.Command{
	Name:      "reject",
	Usage:     "Reject a pending request",
	ArgsUsage: "<request-id> <approver> <reason>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 3 {
			return cli.Exit("lifecycle reject requires <request-id> <approver> <reason>", 1)
		}
		cfg, err := loadProjectConfig(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		path := lifecycleStatePath(cfg.Registry.Root)
		doc, err := loadLifecycleState(path)
		if err != nil {
			return cli.Exit(err, 1)
		}
		lc := buildLifecycle(doc)

		if err := lc.Reject(c.Args().First(), c.Args().Get(1), c.Args().Get(2)); err != nil {
			return cli.Exit(err, 1)
		}
		doc.Requests = lc.Approvals.All()
		if err := saveLifecycleState(path, doc); err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Println(color.YellowString("rejected"), c.Args().First())
		return nil
	},
}

var lifecycleListCommand = &cli.Command{
	Name:  "list",
	Usage: "List tracked template versions and their pending requests",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Emit the lifecycle state as JSON"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadProjectConfig(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		doc, err := loadLifecycleState(lifecycleStatePath(cfg.Registry.Root))
		if err != nil {
			return cli.Exit(err, 1)
		}
		if c.Bool("json") {
			return emitJSON(doc)
		}
		for name, tv := range doc.Templates {
			fmt.Printf("%s %s@%s state=%s\n", color.CyanString("template"), name, tv.Version, tv.State)
		}
		for _, req := range doc.Requests {
			fmt.Printf("%s %s %s->%s status=%s approved=%d/%d\n", color.CyanString("request"),
				req.ID, req.CurrentState, req.TargetState, req.Status, len(req.ApprovedBy), len(req.Approvers))
		}
		return nil
	},
}

