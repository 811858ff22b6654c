package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/spanyaml/spanyaml/debug"
	"github.com/spanyaml/spanyaml/decode"
	"github.com/spanyaml/spanyaml/diag"
	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/merge"
	"github.com/spanyaml/spanyaml/parse"
)

const usageText = `yamlspan - span-preserving YAML inspection

Usage:
  yamlspan check [--dups=<policy>] <file>...  Parse files and report diagnostics
  yamlspan spans <file>                       Dump the value tree with source spans
  yamlspan merge <file>                       Expand merge keys and print the result
  yamlspan keys <file> <field>...             Report keys not matched by the given fields

Examples:
  yamlspan check config.yaml
  yamlspan check --dups=last a.yaml b.yaml
  yamlspan spans config.yaml
  yamlspan keys config.yaml host port`

// MainCommand returns the root command.
func MainCommand() *cli.Command {
	return cli.NewCommand("yamlspan").
		WithSynopsis("yamlspan - span-preserving YAML inspection").
		WithDescription(usageText).
		WithSubs(
			CheckCommand(),
			SpansCommand(),
			MergeCommand(),
			KeysCommand(),
		)
}

func policyFor(name string) (parse.DuplicateKeyPolicy, error) {
	switch name {
	case "", "error":
		return nil, nil
	case "first":
		return func(*ir.Path, *ir.Value, *ir.Value) parse.DuplicateKey {
			return parse.DuplicateKeyFirst
		}, nil
	case "last":
		return func(*ir.Path, *ir.Value, *ir.Value) parse.DuplicateKey {
			return parse.DuplicateKeyLast
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown duplicate key policy %q", cli.ErrUsage, name)
	}
}

func parseFile(path, dups string) ([]byte, *ir.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	policy, err := policyFor(dups)
	if err != nil {
		return nil, nil, err
	}
	var opts []parse.Option
	if policy != nil {
		opts = append(opts, parse.WithDuplicateKeyPolicy(policy))
	}
	v, err := parse.Parse(src, opts...)
	return src, v, err
}

type checkConfig struct {
	*cli.Command
	Dups string `cli:"name=dups desc='duplicate key policy: error, first, last'"`
}

// CheckCommand returns the check subcommand.
func CheckCommand() *cli.Command {
	cfg := &checkConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "check").
		WithSynopsis("check [--dups=<policy>] <file>... - Parse files and report diagnostics").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *checkConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: check requires at least one file", cli.ErrUsage)
	}
	failed := false
	for _, path := range args {
		src, _, err := parseFile(path, cfg.Dups)
		if err != nil {
			failed = true
			fmt.Fprintf(cc.Out, "%s:\n", path)
			diag.Fprint(cc.Out, src, err)
			continue
		}
		fmt.Fprintf(cc.Out, "%s: ok\n", path)
	}
	if failed {
		return cli.ExitCodeErr(1)
	}
	return nil
}

type spansConfig struct {
	*cli.Command
}

// SpansCommand returns the spans subcommand.
func SpansCommand() *cli.Command {
	cfg := &spansConfig{}
	return cli.NewCommandAt(&cfg.Command, "spans").
		WithSynopsis("spans <file> - Dump the value tree with source spans").
		WithRun(cfg.run)
}

func (cfg *spansConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: spans requires one file", cli.ErrUsage)
	}
	src, v, err := parseFile(args[0], "")
	if err != nil {
		diag.Fprint(cc.Out, src, err)
		return cli.ExitCodeErr(1)
	}
	root := ir.RootPath()
	dumpSpans(cc, v, &root)
	return nil
}

func dumpSpans(cc *cli.Context, v *ir.Value, path *ir.Path) {
	fmt.Fprintf(cc.Out, "%s\t%s\t%s\tat %s\n", path, v.Kind, v.Span, v.Span.Start)
	switch v.Kind {
	case ir.SequenceKind:
		for i, e := range v.Seq {
			child := path.Seq(i)
			dumpSpans(cc, e, &child)
		}
	case ir.MappingKind:
		for i := range v.Map.Len() {
			k, val := v.Map.Index(i)
			child := path.Unknown()
			if k.Kind == ir.StringKind {
				child = path.Map(k.Str)
			}
			dumpSpans(cc, val, &child)
		}
	case ir.TaggedKind:
		dumpSpans(cc, v.Tag.Value, path)
	}
}

type mergeConfig struct {
	*cli.Command
}

// MergeCommand returns the merge subcommand.
func MergeCommand() *cli.Command {
	cfg := &mergeConfig{}
	return cli.NewCommandAt(&cfg.Command, "merge").
		WithSynopsis("merge <file> - Expand merge keys and print the result").
		WithRun(cfg.run)
}

func (cfg *mergeConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: merge requires one file", cli.ErrUsage)
	}
	src, v, err := parseFile(args[0], "")
	if err != nil {
		diag.Fprint(cc.Out, src, err)
		return cli.ExitCodeErr(1)
	}
	if err := merge.Apply(v); err != nil {
		diag.Fprint(cc.Out, src, err)
		return cli.ExitCodeErr(1)
	}
	fmt.Fprintln(cc.Out, debug.Render(v))
	return nil
}

type keysConfig struct {
	*cli.Command
}

// KeysCommand returns the keys subcommand.
func KeysCommand() *cli.Command {
	cfg := &keysConfig{}
	return cli.NewCommandAt(&cfg.Command, "keys").
		WithSynopsis("keys <file> <field>... - Report keys not matched by the given fields").
		WithRun(cfg.run)
}

func (cfg *keysConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("%w: keys requires a file", cli.ErrUsage)
	}
	src, v, err := parseFile(args[0], "")
	if err != nil {
		diag.Fprint(cc.Out, src, err)
		return cli.ExitCodeErr(1)
	}
	known := map[string]bool{}
	for _, name := range args[1:] {
		known[name] = true
	}
	var sink struct{}
	err = decode.IntoRef(v, &sink, decode.WithUnusedKeyFunc(func(path *ir.Path, key, value *ir.Value) {
		if key.Kind == ir.StringKind && known[key.Str] {
			return
		}
		fmt.Fprintf(cc.Out, "%s\t%s\tat %s\n", path, debug.Render(key), key.Span.Start)
	}))
	if err != nil {
		diag.Fprint(cc.Out, src, err)
		return cli.ExitCodeErr(1)
	}
	return nil
}
