// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/rasff/internal/archive"
	"github.com/law-makers/rasff/internal/config"
	"github.com/law-makers/rasff/internal/engine/browser"
	"github.com/law-makers/rasff/internal/engine/datefilter"
	"github.com/law-makers/rasff/internal/pipeline"
	urlutil "github.com/law-makers/rasff/internal/utils/url"
	"github.com/law-makers/rasff/pkg/models"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. Browser sessions are opened per
// extraction and never outlive a pipeline run.
type Application struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Store    *archive.Store
	Pipeline *pipeline.Pipeline
	Opener   browser.Opener

	startTime time.Time
}

// Option customizes New
type Option func(*Application)

// WithOpener replaces the Chrome launcher, e.g. with a fake in tests
func WithOpener(o browser.Opener) Option {
	return func(a *Application) { a.Opener = o }
}

// WithLogWriter sends logs to w instead of stderr
func WithLogWriter(w io.Writer) Option {
	return func(a *Application) {
		l := a.Logger.Output(w)
		a.Logger = &l
		log.Logger = l
	}
}

// New creates and initializes a new Application with all dependencies.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	zerolog.SetGlobalLevel(logLevel(cfg.LogLevel))

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	schema, err := archive.ParseSchemaPolicy(cfg.SchemaPolicy)
	if err != nil {
		return nil, err
	}
	rule, err := datefilter.ParseRule(cfg.DateRule)
	if err != nil {
		return nil, err
	}

	a := &Application{
		Config:    cfg,
		Logger:    &logger,
		Store:     archive.NewStore(schema),
		Opener:    browser.NewChromeOpener(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Pipeline = pipeline.New(PipelineOptions(cfg, rule), a.Opener, a.Store)

	a.Logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("endpoint", cfg.Endpoint).
		Str("proxy", urlutil.Redact(cfg.Proxy)).
		Str("strategy", cfg.Strategy).
		Str("policy", cfg.Policy).
		Msg("Application initialized")
	return a, nil
}

// PipelineOptions maps configuration onto the extraction pipeline
func PipelineOptions(cfg *config.Config, rule datefilter.Rule) pipeline.Options {
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = -1
	}
	return pipeline.Options{
		Browser: browser.Config{
			Endpoint:        cfg.Endpoint,
			UserAgent:       cfg.UserAgent,
			ChromePath:      cfg.ChromePath,
			Proxy:           cfg.Proxy,
			Headless:        cfg.Headless,
			Language:        cfg.Language,
			WaitTimeout:     cfg.WaitTimeout,
			NavigateTimeout: cfg.NavigateTimeout,
		},
		Endpoint:     cfg.Endpoint,
		PageSize:     pageSize,
		LoadSettle:   cfg.LoadSettle,
		ChangeSettle: cfg.ChangeSettle,
		PollInterval: cfg.PollInterval,
		Strategy:     models.Strategy(cfg.Strategy),
		DateRule:     rule,
		DateColumn:   cfg.DateColumn,
		Range: datefilter.RangeSelectors{
			Toggle:       cfg.Range.Toggle,
			PeriodButton: cfg.Range.PeriodButton,
			Cell:         cfg.Range.Cell,
			YearLabel:    cfg.Range.YearLabel,
			MonthLabel:   cfg.Range.MonthLabel,
			DayLabel:     cfg.Range.DayLabel,
			Submit:       cfg.Range.Submit,
		},
		Policy: models.Policy(cfg.Policy),
		Output: cfg.Output,
	}
}

// Non-verbose runs only surface warnings; progress is shown by the CLI itself
func logLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

// Close releases application resources. Sessions are closed by the
// pipeline, so this only reports the uptime.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
