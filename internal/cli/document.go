package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cycler/pkg/codec"
	"github.com/matzehuels/cycler/pkg/config"
	"github.com/matzehuels/cycler/pkg/pipeline"
)

// docOpts holds the flags shared by the document commands.
type docOpts struct {
	output  string // output file, stdout when empty
	in      string // input format, guessed from the file name when empty
	out     string // output format, defaults to the input format
	indent  int
	strict  bool
	refresh bool
}

func (o *docOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&o.in, "in", "", "input format: json, yaml (default from file extension, else json)")
	cmd.Flags().StringVar(&o.out, "out", "", "output format: json, yaml (default from output extension, else input format)")
	cmd.Flags().IntVar(&o.indent, "indent", 0, "indentation width, 0 for compact JSON")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "fail on class tags that name no registered class")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached results")
}

// options builds pipeline options, taking unset flags from cfg.
func (o *docOpts) options(cmd *cobra.Command, cfg *config.Config, input string, data []byte) pipeline.Options {
	opts := pipeline.Options{
		Input:        data,
		InputFormat:  formatFor(o.in, input),
		OutputFormat: formatFor(o.out, o.output),
		Indent:       cfg.Indent,
		Strict:       cfg.Strict,
		Refresh:      o.refresh,
	}
	if opts.InputFormat == "" {
		opts.InputFormat = codec.Format(cfg.InputFormat)
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = codec.Format(cfg.OutputFormat)
	}
	if cmd.Flags().Changed("indent") {
		opts.Indent = o.indent
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict = o.strict
	}
	return opts
}

// documentOp is a Runner method expression such as (*pipeline.Runner).Normalize.
type documentOp func(*pipeline.Runner, context.Context, pipeline.Options) (*pipeline.Result, error)

// normalizeCommand creates the normalize command.
func (c *CLI) normalizeCommand() *cobra.Command {
	var opts docOpts
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Restore a document and write its canonical decycled form",
		Long: `Normalize restores the object graph a document describes and encodes it
again. References are rewritten to point at the first occurrence of each
node in document order, and class tags naming no registered class are
stripped (or rejected with --strict).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDocument(cmd, args, &opts, (*pipeline.Runner).Normalize)
		},
	}
	opts.register(cmd)
	return cmd
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var opts docOpts
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Re-encode a document between JSON and YAML",
		Long: `Convert changes the wire format without restoring the graph: reference
tokens and class tags are carried over unchanged. YAML anchors and aliases
in the input are written out as $ref tokens.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDocument(cmd, args, &opts, (*pipeline.Runner).Convert)
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) runDocument(cmd *cobra.Command, args []string, o *docOpts, op documentOp) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	input := inputArg(args)
	data, err := c.readInput(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := op(runner, ctx, o.options(cmd, cfg, input, data))
	if err != nil {
		return err
	}
	if err := c.writeOutput(o.output, res.Output); err != nil {
		return err
	}

	if o.output != "" && o.output != stdio {
		p := printer{c.Stderr}
		p.success("Wrote %s document", res.Format)
		p.file(o.output)
		p.stats(res.Stats.Refs, res.Stats.Tagged, res.CacheHit)
	}
	prog.done("processed " + displayPath(input))
	return nil
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
