package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  data_dir: /tmp/jobscout
pipeline:
  workers: 2
prompts:
  profile: "  5 years of QA  "
  expectations_file: exp.txt
filters:
  block_any: [Manager, manager, " ", lead]
  require_any: [python, lead]
sites:
  - adapter: " PRACUJ "
    url: https://it.pracuj.pl/praca?its=testing
    enabled: true
  - adapter: hexagon
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeFile(t, dir, "config.yml", sample))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Equal(t, 90, cfg.Pipeline.DropRetentionDays)
	assert.Equal(t, "jobs.db", cfg.App.DBName)
	assert.Equal(t, filepath.Join("/tmp/jobscout", "jobs.db"), cfg.DBPath())
	assert.Equal(t, 5, cfg.Matcher.MaxAttempts)
	assert.Equal(t, "deepseek-reasoner", cfg.Matcher.Model)
	require.NotNil(t, cfg.Browser.Headless)
	assert.True(t, *cfg.Browser.Headless)
	require.Len(t, cfg.Sites, 2)
	assert.Equal(t, 5, cfg.Sites[1].MaxPages)
	assert.Equal(t, "hexagon", cfg.Sites[1].Name)
	assert.False(t, cfg.Sites[1].Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOverlays(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeFile(t, dir, "config.yml", sample))
	require.NoError(t, err)

	writeFile(t, dir, "exp.txt", "\nremote, 20k PLN\n")
	require.NoError(t, OverlayPrompts(&cfg, dir))
	assert.Equal(t, "remote, 20k PLN", cfg.Prompts.Expectations)

	cfg.Prompts.ProfileFile = "missing.txt"
	assert.Error(t, OverlayPrompts(&cfg, dir))

	env := writeFile(t, dir, ".env", "JOBSCOUT_PROFILE_TEST_ONLY=1\n")
	t.Cleanup(func() { _ = os.Unsetenv("JOBSCOUT_PROFILE_TEST_ONLY") })
	require.NoError(t, LoadEnv(env))
	assert.Equal(t, "1", os.Getenv("JOBSCOUT_PROFILE_TEST_ONLY"))
	require.NoError(t, LoadEnv(filepath.Join(dir, "absent.env")))

	t.Setenv("JOBSCOUT_PROFILE", "")
	t.Setenv("PROFILE", "legacy profile")
	t.Setenv("JOBSCOUT_EXPECTATIONS", "env expectations")
	t.Setenv("JOBSCOUT_DATA_DIR", dir)
	OverlayEnv(&cfg)
	assert.Equal(t, "legacy profile", cfg.Prompts.Profile)
	assert.Equal(t, "env expectations", cfg.Prompts.Expectations)
	assert.Equal(t, dir, cfg.App.DataDir)
}

func TestNormalizeAndValidate(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeFile(t, dir, "config.yml", sample))
	require.NoError(t, err)

	out, res := NormalizeAndValidate(cfg)
	assert.False(t, res.OK(), "expectations are missing")
	assert.Contains(t, strings.Join(res.Errors, "\n"), "prompts.expectations")
	assert.Equal(t, "5 years of QA", out.Prompts.Profile)
	assert.Equal(t, []string{"Manager", "lead"}, out.Filters.BlockAny)
	assert.Equal(t, "pracuj", out.Sites[0].Adapter)
	assert.Contains(t, strings.Join(res.Warnings, "\n"), `"lead"`)

	out.Prompts.Expectations = "remote"
	_, res = NormalizeAndValidate(out)
	assert.True(t, res.OK(), res.Errors)
}

func TestValidate(t *testing.T) {
	var cfg Config
	Defaults(&cfg)
	require.NoError(t, Validate(cfg))

	cfg.Pipeline.Workers = 0
	cfg.Matcher.JitterPercent = 150
	cfg.Sites = []Site{{URL: "not a url"}}
	err := Validate(cfg)
	require.Error(t, err)
	for _, want := range []string{"pipeline.workers", "jitter_percent", "sites[0].adapter", "sites[0].url"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "default.yml", sample)
	data := filepath.Join(dir, "data")

	p, err := EnsureUserConfig(data, def)
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, sample, string(b))

	// without a default file the built-in defaults are written
	other := filepath.Join(dir, "other")
	p, err = EnsureUserConfig(other, filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, other, cfg.App.DataDir)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	var cfg Config
	Defaults(&cfg)
	require.NoError(t, SaveAtomic(path, cfg))
	cfg.Pipeline.Workers = 7
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Pipeline.Workers)
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)

	cfg.Pipeline.Workers = -1
	assert.Error(t, SaveAtomic(path, cfg))
}
