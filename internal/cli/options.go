package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/jseval/internal/logging"
	"github.com/aretw0/jseval/pkg/settings"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	// Remote selects an HTTP server as the channel.
	Remote string
	// Redis selects a Redis queue as the channel, or the queue served by the worker.
	Redis  string
	Prefix string
	// Host selects an external interpreter command line, such as "node".
	Host string

	Timeout time.Duration
	// Journal records every transmitted script in a SQLite database.
	Journal string
	Debug   bool
}

// loadSettings reads the settings file and applies flag overrides.
func (o Options) loadSettings() (settings.Settings, error) {
	s, err := settings.Load(o.ConfigPath)
	if err != nil {
		return s, fmt.Errorf("failed to load settings: %w", err)
	}
	if o.Debug || o.Journal != "" {
		s = s.With(settings.WithDebugLogging(true))
	}
	return s, nil
}

// createLogger configures the application logger on Stderr.
func (o Options) createLogger() (*slog.Logger, error) {
	if o.Debug {
		return logging.New(slog.LevelDebug, o.LogFormat), nil
	}
	if o.LogLevel == "" {
		return logging.New(slog.LevelInfo, o.LogFormat), nil
	}
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level, o.LogFormat), nil
}
