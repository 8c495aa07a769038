package commands

import (
	"context"

	"github.com/cfe-lab/ferrier/pkg/ferrier"
	"github.com/spf13/cobra"
)

// bodyVerb describes one request command that carries a payload.
type bodyVerb struct {
	use          string
	short        string
	dispatch     func(transport ferrier.Transport, ctx context.Context, url string, body interface{}) *ferrier.Future[*ferrier.Response]
	optionalBody bool
}

// NewRequestCommands creates one command per transport verb.
func NewRequestCommands() []*cobra.Command {
	verbs := []bodyVerb{
		{
			use:   "post PATH",
			short: "Issue a POST request",
			dispatch: func(t ferrier.Transport, ctx context.Context, url string, body interface{}) *ferrier.Future[*ferrier.Response] {
				return t.Post(ctx, url, body)
			},
		},
		{
			use:   "patch PATH",
			short: "Issue a PATCH request",
			dispatch: func(t ferrier.Transport, ctx context.Context, url string, body interface{}) *ferrier.Future[*ferrier.Response] {
				return t.Patch(ctx, url, body)
			},
		},
		{
			use:   "put PATH",
			short: "Issue a PUT request",
			dispatch: func(t ferrier.Transport, ctx context.Context, url string, body interface{}) *ferrier.Future[*ferrier.Response] {
				return t.Put(ctx, url, body)
			},
		},
		{
			use:   "delete PATH",
			short: "Issue a DELETE request",
			dispatch: func(t ferrier.Transport, ctx context.Context, url string, body interface{}) *ferrier.Future[*ferrier.Response] {
				return t.Delete(ctx, url, body)
			},
			optionalBody: true,
		},
		{
			use:   "link PATH",
			short: "Issue a LINK request",
			dispatch: func(t ferrier.Transport, ctx context.Context, url string, body interface{}) *ferrier.Future[*ferrier.Response] {
				return t.Link(ctx, url, body)
			},
			optionalBody: true,
		},
		{
			use:   "unlink PATH",
			short: "Issue an UNLINK request",
			dispatch: func(t ferrier.Transport, ctx context.Context, url string, body interface{}) *ferrier.Future[*ferrier.Response] {
				return t.Unlink(ctx, url, body)
			},
			optionalBody: true,
		},
	}

	commands := make([]*cobra.Command, 0, len(verbs)+1)
	commands = append(commands, newGetCommand())

	for _, verb := range verbs {
		commands = append(commands, newBodyCommand(verb))
	}

	return commands
}

func newGetCommand() *cobra.Command {
	var queryPairs []string

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Issue a GET request",
		Long:  "Issue a GET request against the configured endpoint and print the normalized response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, err := createTransport()
			if err != nil {
				return err
			}

			query, err := parseQueryFlags(queryPairs)
			if err != nil {
				return err
			}

			response, err := awaitFuture(transport.Get(context.Background(), args[0], query))
			if err != nil {
				return err
			}

			return renderValue(cmd.OutOrStdout(), response.Value, effectiveOutputFormat())
		},
	}

	cmd.Flags().StringArrayVarP(&queryPairs, "query", "q", nil, "query parameter (key=value, repeatable)")

	return cmd
}

func newBodyCommand(verb bodyVerb) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   verb.use,
		Short: verb.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, err := createTransport()
			if err != nil {
				return err
			}

			var body interface{}
			if data != "" || !verb.optionalBody {
				body, err = readBody(data)
				if err != nil {
					return err
				}
			}

			response, err := awaitFuture(verb.dispatch(transport, context.Background(), args[0], body))
			if err != nil {
				return err
			}

			return renderValue(cmd.OutOrStdout(), response.Value, effectiveOutputFormat())
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "request body (JSON string, @file, or - for stdin)")

	return cmd
}
