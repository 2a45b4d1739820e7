package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(LoadOptions{EnvFile: filepath.Join(dir, "missing.env"), Environ: []string{}})
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
	assert.Equal(t, int64(50*1024*1024), s.MaxFileSizeBytes())
	assert.True(t, filepath.IsAbs(s.TempPath()))
	assert.True(t, filepath.IsAbs(s.LogPath()))
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("max_file_size_mb: 10\nserver_name: from-yaml\ntemp_dir: yaml-temp\n"), 0600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SERVER_NAME=from-dotenv\nlog_level=debug\n"), 0600))

	s, err := Load(LoadOptions{
		ConfigFile: yamlPath,
		EnvFile:    envPath,
		Environ:    []string{"temp_dir=/tmp/from-env", "UNRELATED=1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, s.MaxFileSizeMB)
	assert.Equal(t, "from-dotenv", s.ServerName)
	assert.Equal(t, "DEBUG", s.LogLevel)
	assert.Equal(t, "/tmp/from-env", s.TempDir)
	assert.Equal(t, DefaultServerVersion, s.ServerVersion)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	missingEnv := filepath.Join(dir, "none.env")

	_, err := Load(LoadOptions{EnvFile: missingEnv, Environ: []string{"MAX_FILE_SIZE_MB=lots"}})
	assert.Error(t, err)

	_, err = Load(LoadOptions{EnvFile: missingEnv, Environ: []string{"MAX_FILE_SIZE_MB=0"}})
	assert.Error(t, err)

	_, err = Load(LoadOptions{ConfigFile: filepath.Join(dir, "absent.yaml"), EnvFile: missingEnv, Environ: []string{}})
	assert.Error(t, err)
}
