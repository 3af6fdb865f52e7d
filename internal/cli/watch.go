package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/markstate/internal/fixture"
	"github.com/dshills/markstate/internal/watcher"
)

func newCmdWatch(root *rootOptions) *cobra.Command {
	opts := &checkOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "watch [PATH...]",
		Short: "Re-run fixture files when they change",
		Long: `Run fixtures like check, then watch the given paths and run them again
whenever fixture files change. Changes that land close together are
reported and rerun once. Stops on interrupt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runWatch(ctx, cmd, opts, opts.paths(args))
		},
	}

	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "list passing cases too")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts *checkOptions, paths []string) error {
	out := cmd.OutOrStdout()
	log := opts.logger.WithComponent("watch")

	w, err := watcher.New(
		watcher.WithDebounceDelay(time.Duration(opts.cfg.Watch.Debounce)),
		watcher.WithFilter(fixture.IsFixtureFile),
	)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, path := range paths {
		if err := w.Watch(path); err != nil {
			if errors.Is(err, watcher.ErrAlreadyWatching) {
				log.Debug("already watching %s", path)
				continue
			}
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}

	run := func() {
		if _, err := checkOnce(ctx, out, opts, paths); err != nil && ctx.Err() == nil {
			newPrinter(out).fail(err.Error())
		}
	}

	run()
	log.Info("watching %d paths", len(paths))

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Batches():
			if !ok {
				return nil
			}
			fmt.Fprintln(out)
			for _, ev := range batch.Events {
				log.Debug("%s %s", ev.Op, ev.Path)
				fmt.Fprintf(out, "%s changed\n", ev.Path)
			}
			run()
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			log.Warn("watcher: %v", err)
		}
	}
}
