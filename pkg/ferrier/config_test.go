package ferrier_test

import (
	"bytes"
	"testing"

	"github.com/cfe-lab/ferrier/pkg/ferrier"
	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := ferrier.NewConsoleLogger(&buf)

	logger.Debug("dispatching", map[string]interface{}{"method": "GET", "attempt": 1})
	logger.Error("failed", nil)

	lines := buf.String()
	// Fields render in sorted key order.
	assert.Contains(t, lines, "DEBUG dispatching attempt=1 method=GET")
	assert.Contains(t, lines, "ERROR failed")
}

func TestSetDefaultLogger(t *testing.T) {
	var buf bytes.Buffer

	original := ferrier.DefaultLogger()
	defer ferrier.SetDefaultLogger(original)

	ferrier.SetDefaultLogger(ferrier.NewConsoleLogger(&buf))

	ferrier.DefaultLogger().Info("swapped", nil)
	assert.Equal(t, "INFO swapped\n", buf.String())
}
