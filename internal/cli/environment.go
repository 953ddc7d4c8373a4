package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/jseval"
	"github.com/aretw0/jseval/pkg/adapters/sqlite"
	"github.com/aretw0/jseval/pkg/domain"
	"github.com/aretw0/jseval/pkg/observability"
	"github.com/aretw0/jseval/pkg/ports"
	"github.com/aretw0/jseval/pkg/settings"
)

// environment holds what a command needs to build and dispatch expressions.
type environment struct {
	channel  ports.Channel
	settings settings.Settings
	logger   *slog.Logger
	journal  *sqlite.Journal
	closers  []func() error
}

// channelFactory builds the channel once the logger exists.
type channelFactory func(opts Options, logger *slog.Logger) (ports.Channel, func() error, error)

// setup resolves settings, logger, journal and channel from the flags.
func setup(opts Options) (*environment, error) {
	return setupWith(opts, createChannel)
}

// setupWith is setup with a custom channel factory.
func setupWith(opts Options, factory channelFactory) (*environment, error) {
	logger, err := opts.createLogger()
	if err != nil {
		return nil, err
	}
	s, err := opts.loadSettings()
	if err != nil {
		return nil, err
	}

	env := &environment{settings: s, logger: logger}
	if opts.Journal != "" {
		journal, err := sqlite.Open(opts.Journal, sqlite.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		env.journal = journal
		env.closers = append(env.closers, journal.Close)
	}

	ch, release, err := factory(opts, logger)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.closers = append(env.closers, release)
	env.channel = ch
	return env, nil
}

// newContext creates a recorder wired to the environment.
func (e *environment) newContext() *jseval.EvalContext {
	opts := []jseval.Option{
		jseval.WithSettings(e.settings),
		jseval.WithLogger(e.logger),
		jseval.WithHooks(observability.LogHooks(e.logger)),
	}
	if e.journal != nil {
		opts = append(opts, jseval.WithSink(e.journal))
	}
	return jseval.New(e.channel, opts...)
}

// hooks observes dispatches that bypass the recorder, such as served requests.
func (e *environment) hooks() domain.Hooks {
	hooks := observability.LogHooks(e.logger)
	if e.journal != nil {
		journal := e.journal
		hooks = hooks.Merge(domain.Hooks{
			OnDispatch: func(ctx context.Context, ev *domain.DispatchEvent) {
				journal.Record(ctx, ev.Identifier, ev.Script)
			},
		})
	}
	return hooks
}

// Close releases the channel and the journal.
func (e *environment) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
