package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/cfe-lab/ferrier/pkg/ferrier"
	"github.com/spf13/cobra"
)

const defaultWatchInterval = 5 * time.Second

// NewWatchCommand creates the watch command. It mounts a loader on the
// given path and re-fetches on an interval, printing every state
// transition as it happens.
func NewWatchCommand() *cobra.Command {
	var (
		queryPairs []string
		interval   time.Duration
		count      int
		allowEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "watch PATH",
		Short: "Poll a resource and report state transitions",
		Long: `Poll a resource on an interval through a loader.

Each cycle re-issues the tracked GET request and prints the resulting
state: the loading placeholder, the rendered payload on success, or the
failure message on error. Interrupt with Ctrl-C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, err := createTransport()
			if err != nil {
				return err
			}

			query, err := parseQueryFlags(queryPairs)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd.OutOrStdout(), transport, watchOptions{
				path:       args[0],
				query:      query,
				interval:   interval,
				count:      count,
				allowEmpty: allowEmpty,
			})
		},
	}

	cmd.Flags().StringArrayVarP(&queryPairs, "query", "q", nil, "query parameter (key=value, repeatable)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", defaultWatchInterval, "time between fetches")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many fetches (0 = until interrupted)")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "treat an empty list payload as success")

	return cmd
}

type watchOptions struct {
	path       string
	query      map[string]interface{}
	interval   time.Duration
	count      int
	allowEmpty bool
}

func runWatch(ctx context.Context, out io.Writer, transport ferrier.Transport, opts watchOptions) error {
	settled := make(chan struct{}, 1)
	format := effectiveOutputFormat()

	loader, err := ferrier.NewLoader(ferrier.LoaderConfig[any]{
		Transport:  transport,
		URL:        opts.path,
		AllowEmpty: opts.allowEmpty,
		Out:        out,
		OnSettled: func() {
			select {
			case settled <- struct{}{}:
			default:
			}
		},
		Render: func(w io.Writer, snapshot ferrier.Snapshot[any]) {
			_, _ = fmt.Fprintf(w, "[%s] success\n", time.Now().Format(time.RFC3339))
			_ = renderValue(w, snapshot.Data, format)
		},
		RenderLoading: func(w io.Writer) {
			_, _ = fmt.Fprintf(w, "[%s] fetching %s\n", time.Now().Format(time.RFC3339), opts.path)
		},
		RenderError: func(w io.Writer, message string) {
			_, _ = fmt.Fprintf(w, "[%s] error: %s\n", time.Now().Format(time.RFC3339), message)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}
	defer loader.Close()

	inputs := ferrier.Inputs{}
	if opts.query != nil {
		inputs["query"] = opts.query
	}

	loader.Mount(ctx, inputs)

	fetches := 1

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-settled:
			if opts.count > 0 && fetches >= opts.count {
				return nil
			}
		case <-ticker.C:
			fetches++

			loader.Reload(ferrier.ReloadOptions{})
		}
	}
}
