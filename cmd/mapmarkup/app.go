package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/OCAP2/mapmarkup/internal/annotator"
	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/internal/logging"
)

// app holds the loggers and everything that must be released when a command
// finishes. Closers run in reverse registration order.
type app struct {
	incident string
	start    time.Time
	logger   *slog.Logger
	zlog     zerolog.Logger
	session  *annotator.Session
	closers  []func() error
}

// newApp sets up file logging, Graylog forwarding when enabled, and the
// zerolog logger handed to the storage and influx managers.
func newApp(incident string) (*app, error) {
	a := &app{incident: incident, start: time.Now()}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs dir: %w", err)
	}
	logFile, err := os.OpenFile(logging.LogFilePath(logsDir, "mapmarkup", a.start), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	a.onClose(logFile.Close)

	var remote io.Writer
	if config.GetBool("graylog.enabled") {
		w, err := logging.NewGraylogWriter(config.GetString("graylog.address"), "mapmarkup")
		if err != nil {
			// keep going with local logs only
			slog.Warn("graylog unavailable", "error", err)
		} else {
			remote = w
			a.onClose(w.Close)
		}
	}

	level := config.GetString("logLevel")
	sm := logging.NewSlogManager()
	sm.SetContext(a.logContext)
	sm.Setup(logFile, level, remote)
	a.logger = sm.Logger()
	a.zlog = logging.NewZerolog(os.Stderr, logFile, level)

	a.logger.Info("starting", "incident", incident, "version", Version)
	return a, nil
}

func (a *app) logContext() []slog.Attr {
	attrs := []slog.Attr{slog.String("incident", a.incident)}
	if a.session != nil {
		attrs = append(attrs, slog.Int("revision", a.session.Revision()))
	}
	return attrs
}

func (a *app) onClose(f func() error) {
	a.closers = append(a.closers, f)
}

// Close runs the registered closers once, last registered first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) backupPath() string {
	return filepath.Join(config.GetString("logsDir"),
		fmt.Sprintf("influx_backup.%s.lp.gz", a.start.Format("20060102_150405")))
}
