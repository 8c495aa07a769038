package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/cfe-lab/ferrier/pkg/ferrier"
	"github.com/cfe-lab/ferrier/pkg/restclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"
)

// Common static errors used throughout the commands package.
var (
	ErrEndpointRequired    = errors.New("API endpoint is required (use --endpoint or set FERRIER_ENDPOINT)")
	ErrInvalidQueryFormat  = errors.New("invalid query parameter format, expected key=value")
	ErrRequestBodyRequired = errors.New("request body is required (use --data)")
)

// createTransport builds a transport from the effective CLI configuration.
func createTransport() (ferrier.Transport, error) {
	endpoint := viper.GetString("endpoint")
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	config := &ferrier.Config{
		Endpoint: endpoint,
		Debug:    viper.GetBool("debug"),
		Timeout:  viper.GetDuration("timeout"),
	}
	if config.Debug {
		config.Logger = ferrier.NewConsoleLogger(os.Stderr)
	}

	transport, err := restclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return transport, nil
}

// parseQueryFlags converts repeated key=value flags into a query map.
func parseQueryFlags(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	query := make(map[string]interface{}, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQueryFormat, pair)
		}

		query[key] = value
	}

	return query, nil
}

// readBody loads the request body from the --data flag. A value of "-"
// reads stdin, an @-prefixed value reads the named file, anything else is
// taken literally. The payload is decoded as JSON when it parses, and sent
// as a raw string otherwise.
func readBody(data string) (interface{}, error) {
	if data == "" {
		return nil, ErrRequestBodyRequired
	}

	var raw []byte

	switch {
	case data == "-":
		var err error

		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body from stdin: %w", err)
		}
	case strings.HasPrefix(data, "@"):
		var err error

		raw, err = os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body file: %w", err)
		}
	default:
		raw = []byte(data)
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw), nil
	}

	return decoded, nil
}

// awaitFuture blocks until the future settles. A SIGINT while waiting
// cancels the in-flight request instead of killing the process outright.
func awaitFuture(future *ferrier.Future[*ferrier.Response]) (*ferrier.Response, error) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	go func() {
		select {
		case <-interrupt:
			future.Cancel()
		case <-future.Done():
		}
	}()

	response, err := future.Wait(context.Background())
	if err != nil {
		if ferrier.IsCancelled(err) {
			return nil, fmt.Errorf("request cancelled: %w", err)
		}

		return nil, fmt.Errorf("request failed: %w", err)
	}

	return response, nil
}

// effectiveOutputFormat resolves the output format, degrading the table
// default to JSON when stdout is not a terminal.
func effectiveOutputFormat() string {
	format := viper.GetString("output")
	if format == OutputFormatTable && !term.IsTerminal(int(os.Stdout.Fd())) {
		return OutputFormatJSON
	}

	return format
}

// renderValue writes a normalized response payload to out in the
// requested format.
func renderValue(out io.Writer, value interface{}, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encoding response to JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(out)

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encoding response to YAML: %w", err)
		}

		return nil
	default:
		return renderTable(out, value)
	}
}

// renderTable renders objects as key/value rows and arrays of objects as a
// column-per-key grid. Scalar payloads are printed verbatim.
func renderTable(out io.Writer, value interface{}) error {
	switch typed := value.(type) {
	case map[string]interface{}:
		table := tablewriter.NewWriter(out)
		table.Header("Field", "Value")

		for _, key := range sortedKeys(typed) {
			_ = table.Append(key, stringifyCell(typed[key]))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	case []interface{}:
		return renderListTable(out, typed)
	default:
		_, _ = fmt.Fprintln(out, stringifyCell(value))

		return nil
	}
}

func renderListTable(out io.Writer, items []interface{}) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, "No results")

		return nil
	}

	columns := collectColumns(items)
	if len(columns) == 0 {
		// Not a list of objects, print one scalar per line.
		for _, item := range items {
			_, _ = fmt.Fprintln(out, stringifyCell(item))
		}

		return nil
	}

	header := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		header = append(header, column)
	}

	table := tablewriter.NewWriter(out)
	table.Header(header...)

	for _, item := range items {
		row, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		cells := make([]interface{}, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, stringifyCell(row[column]))
		}

		_ = table.Append(cells...)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// collectColumns gathers the union of keys across every object row,
// sorted for a stable layout.
func collectColumns(items []interface{}) []string {
	seen := map[string]struct{}{}

	for _, item := range items {
		row, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		for key := range row {
			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	return columns
}

func sortedKeys(object map[string]interface{}) []string {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func stringifyCell(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}

		return string(raw)
	default:
		return fmt.Sprint(typed)
	}
}
