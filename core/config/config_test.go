package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "folio", cfg.AppName)
	assert.Equal(t, filepath.Join(".folio", "cache.json"), cfg.CacheFile)
	assert.Equal(t, "dist", cfg.OutputDir)
	assert.Equal(t, 10, cfg.Workers)
}

func TestLoadFrom_ParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `app_name: mysite
output_dir: public
workers: 4
exclude:
  - drafts
roles:
  resume:
    max_files: 1
    allowed_extensions: [".pdf"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folio.yaml"), []byte(yaml), 0644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "mysite", cfg.AppName)
	assert.Equal(t, "public", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"drafts"}, cfg.Exclude)

	resume, ok := cfg.Roles["resume"]
	require.True(t, ok)
	assert.Equal(t, 1, resume.MaxFiles)
	assert.Equal(t, []string{".pdf"}, resume.AllowedExtensions)

	// unset fields keep defaults
	assert.Equal(t, filepath.Join(".folio", "cache.json"), cfg.CacheFile)
	assert.Equal(t, 256, cfg.ContentCacheSize)
}

func TestLoadFrom_InvalidYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folio.yaml"), []byte("workers: [nope"), 0644))

	_, err := LoadFrom(dir)
	assert.Error(t, err)
}

func TestLoadFrom_NonPositiveWorkersFallBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folio.yaml"), []byte("workers: -1\n"), 0644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Workers)
}
