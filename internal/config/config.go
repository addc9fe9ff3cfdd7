package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level"`
	JSONLog  bool   `mapstructure:"json_log"`

	// Browser
	Endpoint        string        `mapstructure:"endpoint"`
	UserAgent       string        `mapstructure:"user_agent"`
	ChromePath      string        `mapstructure:"chrome_path"`
	Proxy           string        `mapstructure:"proxy"`
	Headless        bool          `mapstructure:"headless"`
	Language        string        `mapstructure:"language"`
	WaitTimeout     time.Duration `mapstructure:"wait_timeout"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout"`

	// Table settling
	LoadSettle   time.Duration `mapstructure:"load_settle"`
	ChangeSettle time.Duration `mapstructure:"change_settle"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PageSize     int           `mapstructure:"page_size"`

	// Date filter
	Strategy   string      `mapstructure:"strategy"`
	DateRule   string      `mapstructure:"date_rule"`
	DateColumn string      `mapstructure:"date_column"`
	Range      RangeConfig `mapstructure:"range"`

	// Archive
	Output       string `mapstructure:"output"`
	Policy       string `mapstructure:"policy"`
	SchemaPolicy string `mapstructure:"schema_policy"`
}

// RangeConfig overrides the controls of the date-range picker. Empty values
// keep the built-in selectors.
type RangeConfig struct {
	Toggle       string `mapstructure:"toggle"`
	PeriodButton string `mapstructure:"period_button"`
	Cell         string `mapstructure:"cell"`
	YearLabel    string `mapstructure:"year_label"`
	MonthLabel   string `mapstructure:"month_label"`
	DayLabel     string `mapstructure:"day_label"`
	Submit       string `mapstructure:"submit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("json_log", DefaultJSONLog)
	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("chrome_path", "")
	v.SetDefault("proxy", "")
	v.SetDefault("headless", DefaultHeadless)
	v.SetDefault("language", DefaultLanguage)
	v.SetDefault("wait_timeout", DefaultWaitTimeout)
	v.SetDefault("navigate_timeout", DefaultNavigateTimeout)
	v.SetDefault("load_settle", DefaultLoadSettle)
	v.SetDefault("change_settle", DefaultChangeSettle)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("strategy", DefaultStrategy)
	v.SetDefault("date_rule", DefaultDateRule)
	v.SetDefault("date_column", DefaultDateColumn)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("policy", DefaultPolicy)
	v.SetDefault("schema_policy", DefaultSchemaPolicy)
	for _, k := range []string{"toggle", "period_button", "cell", "year_label", "month_label", "day_label", "submit"} {
		v.SetDefault("range."+k, "")
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// RASFF_WAIT_TIMEOUT, RASFF_RANGE_SUBMIT, ...
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := flagString(cmd, "config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyFlags(cmd, cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyFlags overrides cfg with the flags the user set explicitly
func applyFlags(cmd *cobra.Command, cfg *Config) {
	if cmd == nil {
		return
	}
	flags := cmd.Flags()

	if s := flagString(cmd, "user-agent"); s != "" {
		cfg.UserAgent = s
	}
	if s := flagString(cmd, "proxy"); s != "" {
		cfg.Proxy = s
	}
	if s := flagString(cmd, "chrome"); s != "" {
		cfg.ChromePath = s
	}
	if s := flagString(cmd, "timeout"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.WaitTimeout = d
		} else {
			// Rejected by validate
			cfg.WaitTimeout = -1
		}
	}
	if b, err := flags.GetBool("headful"); err == nil && b {
		cfg.Headless = false
	}
	if b, err := flags.GetBool("json"); err == nil && b {
		cfg.JSONLog = true
	}
	if b, err := flags.GetBool("verbose"); err == nil && b {
		cfg.LogLevel = "debug"
	}
	if b, err := flags.GetBool("quiet"); err == nil && b {
		cfg.LogLevel = "error"
	}

	if s := flagString(cmd, "output"); s != "" {
		cfg.Output = s
	}
	if s := flagString(cmd, "strategy"); s != "" {
		cfg.Strategy = s
	}
	if s := flagString(cmd, "policy"); s != "" {
		cfg.Policy = s
	}
	if s := flagString(cmd, "schema-policy"); s != "" {
		cfg.SchemaPolicy = s
	}
	if f := flags.Lookup("page-size"); f != nil && f.Changed {
		if n, err := flags.GetInt("page-size"); err == nil {
			cfg.PageSize = n
		}
	}
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return ""
	}
	return strings.TrimSpace(f.Value.String())
}
