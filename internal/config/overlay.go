package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file into the process environment. Variables already
// set win. A missing file is not an error.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// OverlayEnv applies JOBSCOUT_* variables (PROFILE and EXPECTATIONS are
// accepted as older names).
func OverlayEnv(cfg *Config) {
	if v := firstEnv("JOBSCOUT_PROFILE", "PROFILE"); v != "" {
		cfg.Prompts.Profile = v
	}
	if v := firstEnv("JOBSCOUT_EXPECTATIONS", "EXPECTATIONS"); v != "" {
		cfg.Prompts.Expectations = v
	}
	if v := firstEnv("JOBSCOUT_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
}

// OverlayPrompts replaces inline prompts with the contents of
// prompts.profile_file / prompts.expectations_file, resolved against baseDir.
func OverlayPrompts(cfg *Config, baseDir string) error {
	read := func(name string) (string, error) {
		if !filepath.IsAbs(name) {
			name = filepath.Join(baseDir, name)
		}
		b, err := os.ReadFile(name)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	if f := cfg.Prompts.ProfileFile; f != "" {
		s, err := read(f)
		if err != nil {
			return err
		}
		cfg.Prompts.Profile = s
	}
	if f := cfg.Prompts.ExpectationsFile; f != "" {
		s, err := read(f)
		if err != nil {
			return err
		}
		cfg.Prompts.Expectations = s
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v
		}
	}
	return ""
}
