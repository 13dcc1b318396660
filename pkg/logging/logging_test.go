package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kepmap/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	buf := &bytes.Buffer{}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	output := buf.String()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warning message")
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithCatalog(ctx, "cumulative")
	ctx = logging.WithIdentifier(ctx, "K00001.01")
	ctx = logging.WithRequestID(ctx, "req-1")

	logging.FromContext(ctx).Info().Msg("lookup")

	tl.AssertContains(t, `"catalog":"cumulative"`)
	tl.AssertContains(t, `"id":"K00001.01"`)
	tl.AssertContains(t, `"request_id":"req-1"`)
	assert.Equal(t, "req-1", logging.RequestID(ctx))
	assert.Len(t, tl.Lines(), 1)
}

func TestFromContextDefaults(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.Ctx(nil))
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	tests := []struct {
		name  string
		level string
		want  []string
		skip  []string
	}{
		{name: "debug level", level: "debug", want: []string{`"level":"debug"`, `"level":"info"`}},
		{name: "warning alias", level: "warning", want: []string{`"level":"error"`}, skip: []string{`"level":"info"`}},
		{name: "invalid falls back to info", level: "loud", want: []string{`"level":"info"`}, skip: []string{`"level":"debug"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "log.json")
			logger := logging.NewLoggerFromConfig(&logging.Config{
				Level:  tt.level,
				Format: "json",
				Output: path,
				Fields: map[string]any{"service": "kepmap"},
			})

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			output := string(content)
			assert.Contains(t, output, `"service":"kepmap"`)
			for _, w := range tt.want {
				assert.True(t, strings.Contains(output, w), "missing %s in %s", w, output)
			}
			for _, s := range tt.skip {
				assert.False(t, strings.Contains(output, s), "unexpected %s in %s", s, output)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}
