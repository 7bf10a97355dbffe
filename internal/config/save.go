package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validate checks structural settings. Prompt content is checked by
// NormalizeAndValidate.
func Validate(cfg Config) error {
	var errs []string

	if cfg.Pipeline.Workers < 1 {
		errs = append(errs, "pipeline.workers must be >= 1")
	}
	if cfg.Pipeline.IntervalMinutes < 0 {
		errs = append(errs, "pipeline.interval_minutes must be >= 0")
	}
	if cfg.Matcher.MaxAttempts < 1 {
		errs = append(errs, "matcher.max_attempts must be >= 1")
	}
	if cfg.Matcher.BaseDelayMS < 0 || cfg.Matcher.MaxDelayMS < 0 {
		errs = append(errs, "matcher delays must be >= 0")
	}
	if cfg.Matcher.MaxDelayMS > 0 && cfg.Matcher.MaxDelayMS < cfg.Matcher.BaseDelayMS {
		errs = append(errs, "matcher.max_delay_ms must be >= matcher.base_delay_ms")
	}
	if cfg.Matcher.JitterPercent < 0 || cfg.Matcher.JitterPercent > 100 {
		errs = append(errs, "matcher.jitter_percent must be 0..100")
	}
	if cfg.Matcher.RequestsPerSecond < 0 || cfg.Browser.RequestsPerSecond < 0 {
		errs = append(errs, "requests_per_second must be >= 0")
	}

	for i, s := range cfg.Sites {
		if strings.TrimSpace(s.Adapter) == "" {
			errs = append(errs, fmt.Sprintf("sites[%d].adapter is required", i))
		}
		if s.MaxPages < 0 {
			errs = append(errs, fmt.Sprintf("sites[%d].max_pages must be >= 0", i))
		}
		if s.URL != "" {
			if u, err := url.Parse(s.URL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, fmt.Sprintf("sites[%d].url %q is not an absolute URL", i, s.URL))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
