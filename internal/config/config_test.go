package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SCAN_EXCLUDE_DIRS",
	"SCAN_INCLUDE_COMMENTS",
	"SCAN_FILE_EXTENSIONS",
	"WORKER_COUNT",
	"TRANSLATE_FILE",
	"CONST_KEY_FILE",
	"GENERATE_CONST_KEY_FILE",
	"KEY_NAMESPACE",
	"DATABASE_URL",
	"NEO4J_URI",
	"NEO4J_USER",
	"NEO4J_PASSWORD",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{".git", "build", "node_modules", ".dart_tool"}, cfg.ExcludeDirs)
	assert.False(t, cfg.IncludeComments)
	assert.Equal(t, []string{".dart"}, cfg.FileExtensions)
	assert.Equal(t, "translate/translate.json", cfg.TranslateFile)
	assert.Equal(t, "lib/i18n/const_key.dart", cfg.ConstKeyFile)
	assert.True(t, cfg.GenerateConstKeyFile)
	assert.Equal(t, "Ikey", cfg.Namespace)
}

func TestLoad_MissingProjectFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	yml := `scan:
  exclude_dirs: [vendor, lib/i18n]
  include_comments: true
  file_extensions: [.dart, .ts]
  workers: 3
translate:
  file: i18n/table.json
  generate_const_key_file: false
  namespace: Keys
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultProjectFile), []byte(yml), 0o644))

	t.Setenv("SCAN_FILE_EXTENSIONS", ".vue, .js")
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("SCAN_INCLUDE_COMMENTS", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"vendor", "lib/i18n"}, cfg.ExcludeDirs)
	assert.False(t, cfg.IncludeComments, "environment overrides the project file")
	assert.Equal(t, []string{".vue", ".js"}, cfg.FileExtensions)
	assert.Equal(t, 3, cfg.WorkerCount, "invalid integer keeps the previous value")
	assert.Equal(t, "i18n/table.json", cfg.TranslateFile)
	assert.False(t, cfg.GenerateConstKeyFile)
	assert.Equal(t, "Keys", cfg.Namespace)
	assert.Equal(t, "lib/i18n/const_key.dart", cfg.ConstKeyFile)
}

func TestLoadProjectFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unclosed"), 0o644))

	_, err := LoadProjectFile(path)
	assert.Error(t, err)
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", " a, ,b ")
	assert.Equal(t, []string{"a", "b"}, getEnvList("TEST_LIST", nil))

	t.Setenv("TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, getEnvList("TEST_LIST", []string{"x"}))
}
