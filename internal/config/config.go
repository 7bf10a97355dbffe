package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Site struct {
	Adapter  string `yaml:"adapter"` // justjoinit | pracuj | hexagon
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	MaxPages int    `yaml:"max_pages"`
	Enabled  bool   `yaml:"enabled"`
}

type Config struct {
	App struct {
		DataDir   string `yaml:"data_dir"`
		DBName    string `yaml:"db_name"`
		ReportDir string `yaml:"report_dir"`
	} `yaml:"app"`

	Pipeline struct {
		Workers           int `yaml:"workers"`
		IntervalMinutes   int `yaml:"interval_minutes"`
		DropRetentionDays int `yaml:"drop_retention_days"`
	} `yaml:"pipeline"`

	Browser struct {
		Headless          *bool   `yaml:"headless"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		UserAgent         string  `yaml:"user_agent"`
		Locale            string  `yaml:"locale"`
	} `yaml:"browser"`

	Matcher struct {
		BaseURL           string  `yaml:"base_url"`
		Model             string  `yaml:"model"`
		APIKeyEnv         string  `yaml:"api_key_env"`
		KeyringAccount    string  `yaml:"keyring_account"`
		MaxAttempts       int     `yaml:"max_attempts"`
		BaseDelayMS       int     `yaml:"base_delay_ms"`
		MaxDelayMS        int     `yaml:"max_delay_ms"`
		JitterPercent     int     `yaml:"jitter_percent"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"matcher"`

	Prompts struct {
		Profile          string `yaml:"profile"`
		Expectations     string `yaml:"expectations"`
		ProfileFile      string `yaml:"profile_file"`
		ExpectationsFile string `yaml:"expectations_file"`
	} `yaml:"prompts"`

	Filters struct {
		RequireAny []string `yaml:"require_any"`
		BlockAny   []string `yaml:"block_any"`
		Locations  []string `yaml:"locations"`
		RemoteOnly bool     `yaml:"remote_only"`
	} `yaml:"filters"`

	Sites []Site `yaml:"sites"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	Defaults(&cfg)
	return cfg, nil
}

// Defaults fills zero values.
func Defaults(cfg *Config) {
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "data"
	}
	if cfg.App.DBName == "" {
		cfg.App.DBName = "jobs.db"
	}
	if cfg.App.ReportDir == "" {
		cfg.App.ReportDir = filepath.Join(cfg.App.DataDir, "reports")
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 4
	}
	if cfg.Pipeline.DropRetentionDays == 0 {
		cfg.Pipeline.DropRetentionDays = 90
	}
	if cfg.Browser.Headless == nil {
		on := true
		cfg.Browser.Headless = &on
	}
	if cfg.Browser.TimeoutSeconds == 0 {
		cfg.Browser.TimeoutSeconds = 30
	}
	if cfg.Browser.RequestsPerSecond == 0 {
		cfg.Browser.RequestsPerSecond = 1
	}
	if cfg.Browser.Locale == "" {
		cfg.Browser.Locale = "pl-PL"
	}
	if cfg.Matcher.BaseURL == "" {
		cfg.Matcher.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Matcher.Model == "" {
		cfg.Matcher.Model = "deepseek-reasoner"
	}
	if cfg.Matcher.APIKeyEnv == "" {
		cfg.Matcher.APIKeyEnv = "DEEPSEEK_API_KEY"
	}
	if cfg.Matcher.KeyringAccount == "" {
		cfg.Matcher.KeyringAccount = "deepseek"
	}
	if cfg.Matcher.MaxAttempts == 0 {
		cfg.Matcher.MaxAttempts = 5
	}
	if cfg.Matcher.BaseDelayMS == 0 {
		cfg.Matcher.BaseDelayMS = 1000
	}
	if cfg.Matcher.MaxDelayMS == 0 {
		cfg.Matcher.MaxDelayMS = 60000
	}
	for i := range cfg.Sites {
		if cfg.Sites[i].Name == "" {
			cfg.Sites[i].Name = cfg.Sites[i].Adapter
		}
		if cfg.Sites[i].MaxPages == 0 {
			cfg.Sites[i].MaxPages = 5
		}
	}
}

func (c Config) DBPath() string {
	return filepath.Join(c.App.DataDir, c.App.DBName)
}
