package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempLogPath(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, LogDirName, LogFileName)
	origGetLogPath := getLogPath
	getLogPath = func() (string, error) {
		return logPath, nil
	}
	t.Cleanup(func() {
		getLogPath = origGetLogPath
		Close()
		resetForTest()
	})
	return logPath
}

func TestInitDisabledDiscards(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	require.NoError(t, Init(false))
	assert.False(t, Enabled())

	Log("ignored", 1, "more")
	Logf("ignored %s", "formatted")
	Logger().Warn("ignored", "key", "value")
}

func TestLoggerBeforeInit(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	assert.NotNil(t, Logger(), "Logger() must never return nil")
}

func TestInitEnabledWritesStructuredEntries(t *testing.T) {
	resetForTest()
	logPath := useTempLogPath(t)

	require.NoError(t, Init(true))
	assert.True(t, Enabled())

	Log("plain message")
	Logf("selected %s after %d cycles", "nord", 3)
	Logger().Warn("persist theme selection", "scope", "theme_provider_app", "theme", "nord")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	text := string(content)
	for _, want := range []string{
		"debug log started",
		"plain message",
		"selected nord after 3 cycles",
		"persist theme selection",
		"scope=theme_provider_app",
	} {
		assert.Contains(t, text, want)
	}
}

func TestInitTruncatesExistingLog(t *testing.T) {
	resetForTest()
	logPath := useTempLogPath(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0755))
	require.NoError(t, os.WriteFile(logPath, []byte("stale entry from last launch\n"), 0600))

	require.NoError(t, Init(true))

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale entry", "log file should have been truncated")
}

func TestCloseIsIdempotent(t *testing.T) {
	resetForTest()
	useTempLogPath(t)

	require.NoError(t, Init(true))
	Close()
	Close()
	assert.NotPanics(t, func() { Logger().Info("after close") })
}

func TestGetLogPath(t *testing.T) {
	path, err := GetLogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(LogDirName, LogFileName), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}

func resetForTest() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	enabled = false
	logger = nil
}
