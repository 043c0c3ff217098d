package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cycler/pkg/dot"
	"github.com/matzehuels/cycler/pkg/pipeline"
)

type graphOpts struct {
	output   string
	in       string
	format   string
	detailed bool
	strict   bool
	refresh  bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts
	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Draw the restored object graph",
		Long: `Graph restores the document and draws one node per object or array with
an edge per member. Edges that close a cycle are dashed. SVG and PNG are
rendered with Graphviz; DOT is written as source.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, inputArg(args), &opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.in, "in", "", "input format: json, yaml (default from file extension, else json)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "graph format: "+strings.Join(dot.Formats, ", ")+" (default from output extension, else svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list scalar members inside each node")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on class tags that name no registered class")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, input string, o *graphOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

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
		GraphFormat: graphFormat(o.format, o.output),
		Detailed:    o.detailed,
		Strict:      cfg.Strict,
		Refresh:     o.refresh,
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict = o.strict
	}

	sp := newSpinner(ctx, c.Stderr, "Rendering graph...").start()
	res, err := runner.Graph(ctx, opts)
	sp.stop()
	if err != nil {
		return err
	}
	if err := c.writeOutput(o.output, res.Output); err != nil {
		return err
	}

	if o.output != "" && o.output != stdio {
		p := printer{c.Stderr}
		p.success("Rendered %s graph", res.Format)
		p.file(o.output)
		p.stats(res.Stats.Resolved, res.Stats.Resurrected, res.CacheHit)
	}
	prog.done("rendered " + displayPath(input))
	return nil
}

// graphFormat returns the explicit format, or the output file extension
// when it names a graph format.
func graphFormat(explicit, output string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(output), "."))
	for _, f := range dot.Formats {
		if ext == f {
			return f
		}
	}
	return ""
}
