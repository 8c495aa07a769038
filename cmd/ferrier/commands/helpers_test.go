package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryFlags(t *testing.T) {
	t.Parallel()

	query, err := parseQueryFlags([]string{"name=zika", "page=2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "zika", "page": "2"}, query)

	query, err = parseQueryFlags(nil)
	require.NoError(t, err)
	assert.Nil(t, query)

	_, err = parseQueryFlags([]string{"missing-separator"})
	require.ErrorIs(t, err, ErrInvalidQueryFormat)

	_, err = parseQueryFlags([]string{"=value"})
	require.ErrorIs(t, err, ErrInvalidQueryFormat)
}

func TestReadBody(t *testing.T) {
	t.Parallel()

	body, err := readBody(`{"name": "run-7"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "run-7"}, body)

	// Non-JSON payloads pass through as raw strings.
	body, err = readBody("plain text payload")
	require.NoError(t, err)
	assert.Equal(t, "plain text payload", body)

	_, err = readBody("")
	require.ErrorIs(t, err, ErrRequestBodyRequired)
}

func TestRenderValueJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := renderValue(&buf, map[string]interface{}{"id": float64(7)}, OutputFormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 7}`, buf.String())
}

func TestRenderValueYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := renderValue(&buf, map[string]interface{}{"name": "zika"}, OutputFormatYAML)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "name: zika")
}

func TestRenderValueTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := renderValue(&buf, map[string]interface{}{"name": "zika", "id": float64(7)}, OutputFormatTable)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "zika")
	assert.Contains(t, buf.String(), "7")
}

func TestRenderValueTableList(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	items := []interface{}{
		map[string]interface{}{"id": float64(1), "name": "first"},
		map[string]interface{}{"id": float64(2), "state": "done"},
	}

	err := renderValue(&buf, items, OutputFormatTable)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "first")
	assert.Contains(t, buf.String(), "done")
}

func TestRenderValueTableEmptyList(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := renderValue(&buf, []interface{}{}, OutputFormatTable)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No results")
}

func TestCollectColumns(t *testing.T) {
	t.Parallel()

	columns := collectColumns([]interface{}{
		map[string]interface{}{"b": 1, "a": 2},
		map[string]interface{}{"c": 3},
		"not an object",
	})
	assert.Equal(t, []string{"a", "b", "c"}, columns)
}

func TestStringifyCell(t *testing.T) {
	t.Parallel()

	assert.Empty(t, stringifyCell(nil))
	assert.Equal(t, "zika", stringifyCell("zika"))
	assert.Equal(t, "7", stringifyCell(7))
	assert.Equal(t, `{"id":1}`, stringifyCell(map[string]interface{}{"id": 1}))
	assert.Equal(t, `[1,2]`, stringifyCell([]interface{}{1, 2}))
}
