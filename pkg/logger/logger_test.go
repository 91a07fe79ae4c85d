package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidscraper/pkg/config"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "json format",
			cfg:     &config.LoggingConfig{Level: "debug", Format: "json"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name:    "config with file output",
			cfg:     &config.LoggingConfig{Level: "info", File: filepath.Join(dir, "logs", "test.log")},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.level)
		if tt.wantErr {
			assert.Error(t, err, tt.level)
			continue
		}
		assert.NoError(t, err, tt.level)
		assert.Equal(t, tt.expected, got, tt.level)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidscraper.log")

	l, err := New(&config.LoggingConfig{Level: "debug", File: path, Format: "json"})
	require.NoError(t, err)

	l.WithField("platform", "facebook").InfoWithFields("strategy found video", map[string]interface{}{
		"strategy": "html",
		"elapsed":  15 * time.Millisecond,
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := string(data)
	assert.True(t, strings.Contains(line, `"platform":"facebook"`))
	assert.True(t, strings.Contains(line, `"strategy":"html"`))
	assert.True(t, strings.Contains(line, `"app":"vidscraper"`))
	assert.True(t, strings.Contains(line, "strategy found video"))
}

func TestWithFieldsDoesNotLeak(t *testing.T) {
	base := NewTestLogger()
	child := base.WithField("platform", "instagram")

	child.Info("child message")
	base.Info("base message")

	messages := base.GetMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, "instagram", messages[0].Fields["platform"])
	assert.NotContains(t, messages[1].Fields, "platform")
}

func TestTestLoggerCapture(t *testing.T) {
	l := NewTestLogger()

	l.WithError(errors.New("boom")).Warn("retrying operation")
	l.DebugWithFields("strategy attempt", map[string]interface{}{"strategy": "api"})

	assert.True(t, l.HasMessage("retrying operation"))
	assert.Len(t, l.GetMessagesByLevel("WARN"), 1)
	assert.Equal(t, "boom", l.GetMessagesByLevel("WARN")[0].Fields["error"])

	l.Clear()
	assert.Empty(t, l.GetMessages())
}

func TestLogRequestLevels(t *testing.T) {
	l := NewTestLogger()

	LogRequest(l, "GET", "https://example.com/a", 200, time.Millisecond)
	LogRequest(l, "GET", "https://example.com/b", 404, time.Millisecond)
	LogRequest(l, "GET", "https://example.com/c", 503, time.Millisecond)

	assert.Len(t, l.GetMessagesByLevel("DEBUG"), 1)
	assert.Len(t, l.GetMessagesByLevel("WARN"), 1)
	assert.Len(t, l.GetMessagesByLevel("ERROR"), 1)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.WithFields(map[string]interface{}{"a": 1}).WithError(errors.New("x")).Error("ignored")
	})
}
