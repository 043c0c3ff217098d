package cli

import (
	"maps"
	"slices"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	cerrors "github.com/matzehuels/cycler/pkg/errors"
	"github.com/matzehuels/cycler/pkg/pipeline"
)

type inspectOpts struct {
	in      string
	json    bool
	strict  bool
	refresh bool
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Report reference tokens and class tags in a document",
		Long: `Inspect lists every $ref token and $class tag of a decycled document and
tries to restore it. The command fails when the document cannot be
restored, for example because a reference does not resolve.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, inputArg(args), &opts)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "", "input format: json, yaml (default from file extension, else json)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat unregistered class tags as errors")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, input string, o *inspectOpts) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	data, err := c.readInput(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := pipeline.Options{
		Input:       data,
		InputFormat: formatFor(o.in, input),
		Strict:      cfg.Strict,
		Refresh:     o.refresh,
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict = o.strict
	}
	rep, err := runner.Inspect(ctx, opts)
	if err != nil {
		return err
	}

	if o.json {
		out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		if err := c.writeOutput("", append(out, '\n')); err != nil {
			return err
		}
	} else {
		printReport(printer{c.Stdout}, displayPath(input), rep)
	}

	if !rep.OK() {
		return cerrors.New(rep.ErrorCode, "%s cannot be restored: %s", displayPath(input), rep.Error)
	}
	return nil
}

func printReport(p printer, name string, rep *pipeline.Report) {
	p.title(name)
	p.keyValue("format", rep.Format)
	p.keyValue("objects", number(rep.Objects))
	p.keyValue("arrays", number(rep.Arrays))
	p.keyValue("depth", number(rep.Depth))

	if len(rep.Refs) > 0 {
		p.line("")
		p.title("References")
		for _, ref := range rep.Refs {
			if ref.Valid {
				p.info("%s %s %s", ref.At, iconArrow, ref.Target)
			} else {
				p.warning("%s %s %q (not a path, kept as data)", ref.At, iconArrow, ref.Target)
			}
		}
	}

	if len(rep.Classes) > 0 {
		p.line("")
		p.title("Classes")
		for _, name := range slices.Sorted(maps.Keys(rep.Classes)) {
			if slices.Contains(rep.Unregistered, name) {
				p.warning("%s ×%d (not registered)", name, rep.Classes[name])
			} else {
				p.info("%s ×%d", name, rep.Classes[name])
			}
		}
	}

	p.line("")
	if rep.OK() {
		p.success("Restorable")
		p.stats(rep.Restore.Resolved, rep.Restore.Resurrected, rep.CacheHit)
	} else {
		p.error("Not restorable: %s", rep.Error)
	}
}
