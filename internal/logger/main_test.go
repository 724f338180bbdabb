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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/sessiond/internal/logger"
)

var errSample = errors.New("a test error")

func TestInit(t *testing.T) {
	testCases := []struct {
		name       string
		cfg        logger.Log
		wantOutput bool
		wantJSON   bool
	}{
		{
			name:       "no writer enabled",
			cfg:        logger.Log{LogLevel: "", ServiceName: "test", AppName: "test"},
			wantOutput: false,
		},
		{
			name: "console json",
			cfg: logger.Log{
				LogLevel: "info", ServiceName: "test", AppName: "test",
				Console: logger.Console{Enabled: true},
			},
			wantOutput: true,
			wantJSON:   true,
		},
		{
			name: "console pretty",
			cfg: logger.Log{
				LogLevel: "info", ServiceName: "test", AppName: "test",
				Console: logger.Console{Enabled: true, Pretty: true},
			},
			wantOutput: true,
		},
		{
			name: "console json trace with caller and stack",
			cfg: logger.Log{
				LogLevel: "trace", ServiceName: "test", AppName: "test", ReportCaller: true,
				Console: logger.Console{Enabled: true},
			},
			wantOutput: true,
			wantJSON:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureOutput(t, tc.cfg)

			if !tc.wantOutput {
				assert.Empty(t, out)
				return
			}

			require.NotEmpty(t, out)

			if tc.wantJSON {
				for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
					var event map[string]any
					require.NoError(t, json.Unmarshal([]byte(line), &event), line)
					assert.Equal(t, "test", event["app"])
				}
			}
		})
	}
}

func TestInit_Errors(t *testing.T) {
	assert.Error(t, logger.Init(logger.Log{LogLevel: "loud", ServiceName: "s", AppName: "a"}))
	assert.ErrorIs(t, logger.Init(logger.Log{LogLevel: "info", AppName: "a"}), logger.ErrServiceNameIsEmpty)
	assert.ErrorIs(t, logger.Init(logger.Log{LogLevel: "info", ServiceName: "s"}), logger.ErrAppNameIsEmpty)
}

func TestInit_RollingFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	require.NoError(t, logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		File: logger.LogFile{
			Enabled: true,
			Path:    dir,
			Error:   logger.RollingFile{Name: "error.log", MaxSize: 1},
			Info:    logger.RollingFile{Name: "info.log", MaxSize: 1},
		},
	}))

	log.Info().Msg("to info file")
	log.Error().Err(errSample).Msg("to error file")
	log.Warn().Msg("dropped, no warn target")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "to info file")
	assert.NotContains(t, string(info), "to error file")

	errLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "to error file")

	_, err = os.Stat(filepath.Join(dir, "warn.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestLevelWriter(t *testing.T) {
	var info, warn, errs, trace bytes.Buffer

	lw := &logger.LevelWriter{InfoWriter: &info, WarnWriter: &warn, ErrorWriter: &errs, TraceWriter: &trace}

	for _, l := range []zerolog.Level{zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel,
		zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.TraceLevel, zerolog.Disabled} {
		_, err := lw.WriteLevel(l, []byte(l.String()+";"))
		require.NoError(t, err)
	}

	assert.Equal(t, "debug;info;", info.String())
	assert.Equal(t, "warn;", warn.String())
	assert.Equal(t, "error;fatal;", errs.String())
	assert.Equal(t, "trace;", trace.String())
}

func captureOutput(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	initErr := logger.Init(cfg)

	log.Info().Msg("this info message should be seen...")
	log.Error().Err(errSample).Msg("this err message should be seen...")
	log.Trace().Err(errSample).Msg("this trace message should be seen...")

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout, os.Stderr = stdout, stderr

	require.NoError(t, initErr)

	return <-outC
}

func TestNewAccessWriter(t *testing.T) {
	w, err := logger.NewAccessWriter(logger.Log{})
	require.NoError(t, err)
	assert.Nil(t, w)

	dir := t.TempDir()

	w, err = logger.NewAccessWriter(logger.Log{
		File: logger.LogFile{
			Enabled: true,
			Path:    dir,
			Access:  logger.RollingFile{Name: "access.log", MaxSize: 1},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, w)

	_, err = w.Write([]byte(`{"status":200}` + "\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "access.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":200`)

	w, err = logger.NewAccessWriter(logger.Log{
		Console: logger.Console{Enabled: true, AccessLog: true},
		File: logger.LogFile{
			Enabled: true,
			Path:    dir,
			Access:  logger.RollingFile{Name: "access.log"},
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, w)
}
