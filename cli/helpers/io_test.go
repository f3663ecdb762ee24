package helpers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOutputWriter(t *testing.T) {
	data := map[string]any{"name": "a.js", "lines": 3}

	t.Run("Should write indented JSON without color codes", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutputWriter(&buf, OutputFormatJSON, false).WriteData(data))
		out := buf.String()
		assert.True(t, gjson.Valid(out))
		assert.Equal(t, int64(3), gjson.Get(out, "lines").Int())
		assert.Contains(t, out, "\n  \"name\": \"a.js\"")
		assert.NotContains(t, out, "\x1b[")
	})

	t.Run("Should colorize JSON when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutputWriter(&buf, OutputFormatJSON, true).WriteData(data))
		assert.Contains(t, buf.String(), "\x1b[")
	})

	t.Run("Should write YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutputWriter(&buf, OutputFormatYAML, false).WriteData(data))
		assert.Equal(t, "lines: 3\nname: a.js\n", buf.String())
	})

	t.Run("Should reject structured data in table format", func(t *testing.T) {
		err := NewOutputWriter(&bytes.Buffer{}, OutputFormatTable, false).WriteData(data)
		assert.ErrorContains(t, err, "unsupported output format")
	})

	t.Run("Should write a sorted aligned table", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewOutputWriter(&buf, OutputFormatTable, false)
		require.NoError(t, w.WriteTable([]string{"KEY", "VALUE"}, [][]string{
			{"verbose", "false"},
			{"backup", "true"},
		}))
		assert.Equal(t, "KEY      VALUE\n---      -----\nbackup   true\nverbose  false\n", buf.String())
	})
}
