package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/rasff/internal/config"
	"github.com/law-makers/rasff/internal/engine/datefilter"
	"github.com/law-makers/rasff/pkg/models"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	return cfg
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}

func TestNew_WiresPipeline(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.LogLevel = "debug"

	var logs bytes.Buffer
	a, err := New(context.Background(), cfg, WithLogWriter(&logs))
	require.NoError(t, err)
	defer a.Close(context.Background())

	require.NotNil(t, a.Pipeline)
	require.NotNil(t, a.Store)
	assert.Equal(t, "rasff-match", a.Pipeline.Name())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, logs.String(), "Application initialized")
}

func TestNew_RejectsUnknownSchemaPolicy(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.SchemaPolicy = "replace"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestPipelineOptions(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.PageSize = 0
	cfg.Strategy = "range"
	cfg.Policy = "dated"
	cfg.Range.Submit = "button.go"
	cfg.WaitTimeout = 7 * time.Second

	opts := PipelineOptions(cfg, datefilter.RulePadded)

	assert.Equal(t, -1, opts.PageSize, "0 in config disables the page size step")
	assert.Equal(t, models.StrategyRange, opts.Strategy)
	assert.Equal(t, models.PolicyDated, opts.Policy)
	assert.Equal(t, datefilter.RulePadded, opts.DateRule)
	assert.Equal(t, "button.go", opts.Range.Submit)
	assert.Equal(t, 7*time.Second, opts.Browser.WaitTimeout)
	assert.Equal(t, config.DefaultEndpoint, opts.Endpoint)
	assert.Equal(t, config.DefaultUserAgent, opts.Browser.UserAgent)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logLevel("info"))
	assert.Equal(t, zerolog.WarnLevel, logLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, logLevel("error"))
}
