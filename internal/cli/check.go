package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/markstate/internal/fixture"
)

type checkOptions struct {
	*rootOptions
	verbose bool
}

func newCmdCheck(root *rootOptions) *cobra.Command {
	opts := &checkOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "check [PATH...]",
		Short: "Run fixture files",
		Long: `Load fixture files (.yaml, .yml, .toml) from the given files and
directories and run every case. Without arguments the fixture_dirs from the
config file are used. Exits non-zero when any case fails.`,
		Example: `  markstate check
  markstate check testdata/cursor.yaml
  markstate check -v --strict testdata`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "list passing cases too")

	return cmd
}

// paths returns the fixture paths to run, from args or the config.
// Paths naming the same file or directory are kept once.
func (o *checkOptions) paths(args []string) []string {
	if len(args) == 0 {
		args = o.cfg.FixtureDirs
	}
	seen := make(map[string]bool, len(args))
	paths := make([]string, 0, len(args))
	for _, path := range args {
		key := filepath.Clean(path)
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		paths = append(paths, path)
	}
	return paths
}

func (o *checkOptions) runner(scriptOutput io.Writer) *fixture.Runner {
	return fixture.NewRunner(
		fixture.WithParser(o.parser),
		fixture.WithParallel(o.cfg.Parallel),
		fixture.WithScriptTimeout(time.Duration(o.cfg.ScriptTimeout)),
		fixture.WithScriptOutput(scriptOutput),
		fixture.WithLogger(o.logger),
	)
}

func runCheck(ctx context.Context, out io.Writer, opts *checkOptions, args []string) error {
	summary, err := checkOnce(ctx, out, opts, opts.paths(args))
	if err != nil {
		return err
	}
	if !summary.OK() {
		return fmt.Errorf("%d of %d cases failed", summary.Failed, summary.Total)
	}
	return nil
}

// checkOnce loads and runs the fixtures under paths and prints a report.
func checkOnce(ctx context.Context, out io.Writer, opts *checkOptions, paths []string) (fixture.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cases, err := fixture.LoadPaths(paths)
	if err != nil {
		return fixture.Summary{}, err
	}

	results, err := opts.runner(out).Run(ctx, cases)
	if err != nil {
		return fixture.Summary{}, err
	}

	p := newPrinter(out)
	for _, res := range results {
		if res.Passed() {
			if opts.verbose {
				p.pass(res.Case.ID())
			}
			continue
		}
		p.fail(res.Case.ID())
		for _, line := range strings.Split(res.Err.Error(), "\n") {
			p.line("    %s", line)
		}
	}

	summary := fixture.Summarize(results)
	p.summary(summary.OK(), summary.String())
	return summary, nil
}
