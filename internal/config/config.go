// Package config holds the explicit configuration for the automation
// pipeline. Every component takes its slice of this configuration through
// its constructor; there is no package-level mutable state.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config captures user-tunable automation settings.
type Config struct {
	// Browser
	Headless    bool   `mapstructure:"headless"`
	BrowserPath string `mapstructure:"browser_path"`
	UserAgent   string `mapstructure:"user_agent"`

	// Timeouts and polling
	GlobalTimeout     time.Duration `mapstructure:"global_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	PollMaxInterval   time.Duration `mapstructure:"poll_max_interval"`
	PollMultiplier    float64       `mapstructure:"poll_multiplier"`

	// Login
	NavigationRetries     int           `mapstructure:"navigation_retries"`
	NavigationSettleDelay time.Duration `mapstructure:"navigation_settle_delay"`
	StepDelay             time.Duration `mapstructure:"step_delay"`

	// Form filling
	FieldDelay             time.Duration `mapstructure:"field_delay"`
	DropdownPopulateDelay  time.Duration `mapstructure:"dropdown_populate_delay"`
	DropdownHighlightDelay time.Duration `mapstructure:"dropdown_highlight_delay"`
	DropdownCloseDelay     time.Duration `mapstructure:"dropdown_close_delay"`

	// Submission
	SubmitEnabled        bool          `mapstructure:"submit_enabled"`
	SubmitQuickRetryWait time.Duration `mapstructure:"submit_quick_retry_wait"`
	SubmitFullRetryWait  time.Duration `mapstructure:"submit_full_retry_wait"`
	VerifyTimeout        time.Duration `mapstructure:"verify_timeout"`
	SuccessStatusMin     int           `mapstructure:"success_status_min"`
	SuccessStatusMax     int           `mapstructure:"success_status_max"`

	// Row handling
	StatusColumn  string `mapstructure:"status_column"`
	CompleteValue string `mapstructure:"complete_value"`

	// Project-specific tool field label overrides: project_code -> aria label.
	ToolLabelOverrides map[string]string `mapstructure:"tool_label_overrides"`

	// Persistence and auxiliary files
	DatabasePath     string `mapstructure:"database_path"`
	QuarterTablePath string `mapstructure:"quarter_table_path"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Headless:  true,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",

		GlobalTimeout:     60 * time.Second,
		NavigationTimeout: 30 * time.Second,
		PollInterval:      100 * time.Millisecond,
		PollMaxInterval:   2 * time.Second,
		PollMultiplier:    2.0,

		NavigationRetries:     3,
		NavigationSettleDelay: 2 * time.Second,
		StepDelay:             300 * time.Millisecond,

		FieldDelay:             200 * time.Millisecond,
		DropdownPopulateDelay:  500 * time.Millisecond,
		DropdownHighlightDelay: 200 * time.Millisecond,
		DropdownCloseDelay:     300 * time.Millisecond,

		SubmitEnabled:        true,
		SubmitQuickRetryWait: 2 * time.Second,
		SubmitFullRetryWait:  5 * time.Second,
		VerifyTimeout:        15 * time.Second,
		SuccessStatusMin:     200,
		SuccessStatusMax:     299,

		StatusColumn:  "Status",
		CompleteValue: "Submitted",

		ToolLabelOverrides: map[string]string{},

		DatabasePath: defaultDatabasePath(),

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds a Config from defaults, then an optional YAML file, then
// SHEETPILOT_* environment variables. A missing file is not an error when
// path is empty.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("sheetpilot")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sheetpilot.sqlite"
	}
	return home + "/.sheetpilot/sheetpilot.sqlite"
}
