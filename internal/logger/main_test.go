package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/logger"
)

func TestInit(t *testing.T) {
	testCases := []struct {
		name             string
		cfg              logger.Log
		shouldHaveOutPut bool
		outPutIsJSON     bool
	}{
		{
			name:             "no logger enabled log level not set",
			cfg:              logger.Log{ServiceName: "test", AppName: "test"},
			shouldHaveOutPut: false,
		},
		{
			name: "console enabled log level info",
			cfg: logger.Log{
				LogLevel: "info", ServiceName: "test", AppName: "test",
				Console: logger.Console{Enabled: true},
			},
			shouldHaveOutPut: true,
			outPutIsJSON:     true,
		},
		{
			name: "console writer enabled",
			cfg: logger.Log{
				LogLevel: "info", ServiceName: "test", AppName: "test",
				Console: logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			shouldHaveOutPut: true,
		},
		{
			name: "trace json with caller and stack",
			cfg: logger.Log{
				LogLevel: "trace", ServiceName: "test", AppName: "test", ReportCaller: true,
				Console: logger.Console{Enabled: true},
			},
			shouldHaveOutPut: true,
			outPutIsJSON:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureOutput(t, tc.cfg)

			if !tc.shouldHaveOutPut {
				assert.Empty(t, out)
				return
			}

			require.NotEmpty(t, out)

			if tc.outPutIsJSON {
				for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
					var entry map[string]any
					require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
					assert.Equal(t, "test", entry["app"])
				}
			}
		})
	}
}

func TestInitErrors(t *testing.T) {
	assert.Error(t, logger.Init(logger.Log{LogLevel: "loud", ServiceName: "s", AppName: "a"}))
	assert.ErrorIs(t, logger.Init(logger.Log{LogLevel: "info", AppName: "a"}), logger.ErrServiceNameIsEmpty)
	assert.ErrorIs(t, logger.Init(logger.Log{LogLevel: "info", ServiceName: "s"}), logger.ErrAppNameIsEmpty)
}

func TestInitRollingFiles(t *testing.T) {
	dir := t.TempDir()

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		File: logger.LogFile{
			Enabled:  true,
			Path:     dir,
			InfoLog:  "info.log",
			ErrorLog: "error.log",
			WarnLog:  "warn.log",
			TraceLog: "trace.log",
		},
	})
	require.NoError(t, err)

	log.Info().Msg("to the info file")
	log.Error().Msg("to the error file")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "to the info file")
	assert.NotContains(t, string(info), "to the error file")

	errLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "to the error file")
}

func captureOutput(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	require.NoError(t, logger.Init(cfg))

	log.Info().Msg("this info message should be seen...")
	log.Error().Err(errors.New("a test error")).Msg("this err message should be seen...") //nolint:goerr113

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout, os.Stderr = stdout, stderr

	return <-outC
}

func TestErrorHandlerCountsDroppedEvents(t *testing.T) {
	before := logger.WriteFailures()

	logger.ErrorHandler(errors.New("disk full"))

	assert.Equal(t, before+1, logger.WriteFailures())
}
