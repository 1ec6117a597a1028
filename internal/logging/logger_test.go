package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, ws, body string) {
	t.Helper()
	dir := filepath.Join(ws, ".skipmatch")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
}

func TestInitialize_ProductionModeIsSilent(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	require.NoError(t, Initialize(ws))
	assert.False(t, IsDebugMode())

	// No-op logger in production mode
	Boot("this should go nowhere")
	_, err := os.Stat(filepath.Join(ws, ".skipmatch", "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestInitialize_DebugModeWritesCategoryFiles(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)
	writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: debug\n")

	require.NoError(t, Initialize(ws))
	assert.True(t, IsDebugMode())

	Runner("batch of %d cases", 3)
	RunnerDebug("case detail")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".skipmatch", "logs"))
	require.NoError(t, err)

	var runnerLog string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".log" && categoryFromFilename(e.Name()) == "runner" {
			runnerLog = filepath.Join(ws, ".skipmatch", "logs", e.Name())
		}
	}
	require.NotEmpty(t, runnerLog, "runner log file must exist")

	data, err := os.ReadFile(runnerLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "batch of 3 cases")
	assert.Contains(t, string(data), "[DEBUG] case detail")
}

func TestCategoryFilter(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)
	writeConfig(t, ws, "logging:\n  debug_mode: true\n  categories:\n    history: false\n")

	require.NoError(t, Initialize(ws))
	assert.True(t, IsCategoryEnabled(CategoryRunner))
	assert.False(t, IsCategoryEnabled(CategoryHistory))
}

// categoryFromFilename extracts the category from a "DATE_category.log" name.
func categoryFromFilename(name string) string {
	base := name[:len(name)-len(".log")]
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '_' {
			return base[i+1:]
		}
	}
	return base
}
