package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/eval"
	"github.com/standardbeagle/tmplctl/internal/render"
)

var renderCommand = &cli.Command{
	Name:      "render",
	Usage:     "Render a single template file against a variable map",
	ArgsUsage: "<template-file>",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "var",
			Usage: "Variable override name=value (repeatable)",
		},
		&cli.StringFlag{
			Name:  "vars-file",
			Usage: "Path to a JSON file of variables",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Emit the RenderResult as JSON instead of the rendered text",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("render requires exactly one <template-file> argument", 1)
		}
		cfg, err := loadProjectConfig(c)
		if err != nil {
			return cli.Exit(err, 1)
		}

		templateBytes, err := os.ReadFile(c.Args().First())
		if err != nil {
			return cli.Exit(err, 1)
		}

		variables := map[string]eval.Value{}
		if path := c.String("vars-file"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				return cli.Exit(err, 1)
			}
			variables, err = valuesFromJSONFile(raw)
			if err != nil {
				return cli.Exit(err, 1)
			}
		}
		for _, flag := range c.StringSlice("var") {
			name, v, err := parseVarFlag(flag)
			if err != nil {
				return cli.Exit(err, 1)
			}
			variables[name] = v
		}

		engine := render.NewEngine(eval.NewEvaluator())
		ctx := render.NewContext(variables)
		ctx.MaxNesting = uint32(cfg.Render.MaxNesting)
		ctx.CacheEnabled = cfg.Render.CacheEnabled

		result := engine.Render(string(templateBytes), ctx)

		if c.Bool("json") {
			return emitJSON(renderResultJSON(result))
		}
		fmt.Print(result.Text)
		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if !result.OK {
			for _, e := range result.Errors {
				fmt.Fprintf(os.Stderr, "error: %v\n", e)
			}
			return cli.Exit("", 1)
		}
		return nil
	},
}

type renderResultDoc struct {
	OK       bool     `json:"ok"`
	Text     string   `json:"text"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func renderResultJSON(r render.Result) renderResultDoc {
	doc := renderResultDoc{OK: r.OK, Text: r.Text, Warnings: r.Warnings}
	for _, e := range r.Errors {
		doc.Errors = append(doc.Errors, e.Error())
	}
	return doc
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
