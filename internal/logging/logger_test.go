package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		logged  []string
		dropped []string
	}{
		{level: "trace", logged: []string{"trace message", "debug message", "info message"}},
		{level: "debug", logged: []string{"debug message", "info message"}, dropped: []string{"trace message"}},
		{level: "info", logged: []string{"info message"}, dropped: []string{"trace message", "debug message"}},
		{level: "bogus", logged: []string{"info message"}, dropped: []string{"debug message"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: tt.level, Output: &buf})

			logger.Trace().Msg("trace message")
			logger.Debug().Msg("debug message")
			logger.Info().Msg("info message")

			output := buf.String()
			for _, msg := range tt.logged {
				assert.Contains(t, output, msg)
			}
			for _, msg := range tt.dropped {
				assert.NotContains(t, output, msg)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(Config{Level: "info", Output: &buf}), "generator")

	logger.Info().Msg("header written")

	assert.Contains(t, buf.String(), `"component":"generator"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("disabled"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}
