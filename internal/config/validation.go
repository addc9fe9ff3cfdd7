package config

import (
	"fmt"

	"github.com/law-makers/rasff/internal/archive"
	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/internal/engine/datefilter"
	urlutil "github.com/law-makers/rasff/internal/utils/url"
)

func validate(c *Config) error {
	if err := check(c); err != nil {
		return engine.NewEngineError(engine.ErrCodeValidation, err.Error(), nil)
	}
	return nil
}

func check(c *Config) error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if err := urlutil.ValidateURL(c.Endpoint); err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if err := urlutil.ValidateProxy(c.Proxy); err != nil {
		return err
	}
	if c.Language == "" {
		return fmt.Errorf("language must not be empty")
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait timeout must be > 0")
	}
	if c.NavigateTimeout <= 0 {
		return fmt.Errorf("navigate timeout must be > 0")
	}
	if c.LoadSettle <= 0 || c.ChangeSettle <= 0 {
		return fmt.Errorf("settle bounds must be > 0")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page size must be >= 0 (0 disables the page size step)")
	}
	switch c.Strategy {
	case "match", "range":
	default:
		return fmt.Errorf("strategy must be match or range, got %q", c.Strategy)
	}
	switch c.Policy {
	case "merge", "dated":
	default:
		return fmt.Errorf("policy must be merge or dated, got %q", c.Policy)
	}
	if _, err := datefilter.ParseRule(c.DateRule); err != nil {
		return err
	}
	if c.DateColumn == "" {
		return fmt.Errorf("date column must not be empty")
	}
	if _, err := archive.ParseSchemaPolicy(c.SchemaPolicy); err != nil {
		return err
	}
	if c.Output == "" {
		return fmt.Errorf("output path must not be empty")
	}
	return nil
}
