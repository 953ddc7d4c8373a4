package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/jseval/pkg/domain"
	"github.com/aretw0/jseval/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// WithConcurrency sets how many requests a Worker serves at once. Defaults to 4.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithReplyTTL sets how long an unclaimed reply is kept. Defaults to one minute.
func WithReplyTTL(d time.Duration) Option {
	return func(o *options) {
		o.replyTTL = d
	}
}

// Worker pops queued calls and serves them through a channel.
type Worker struct {
	client  *backend.Client
	channel ports.Channel
	opts    options
	logger  *slog.Logger
}

// NewWorker creates a worker serving ch.
func NewWorker(client *backend.Client, ch ports.Channel, logger *slog.Logger, opts ...Option) *Worker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Worker{
		client:  client,
		channel: ch,
		opts:    newOptions(opts),
		logger:  logger,
	}
}

// Run serves requests until ctx is done. It returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.opts.concurrency; i++ {
		g.Go(func() error {
			return w.loop(ctx)
		})
	}
	w.logger.Info("worker started", "queue", requestsKey(w.opts.prefix), "concurrency", w.opts.concurrency)

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Worker) loop(ctx context.Context) error {
	key := requestsKey(w.opts.prefix)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := w.client.BLPop(ctx, pollInterval, key).Result()
		if errors.Is(err, backend.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("redis error awaiting request: %w", err)
		}

		var req request
		if err := decode([]byte(res[1]), &req); err != nil {
			w.logger.Warn("dropping malformed request", "err", err)
			continue
		}
		w.serve(ctx, req)
	}
}

func (w *Worker) serve(ctx context.Context, req request) {
	callCtx := ctx
	if deadline, ok := req.deadline(); ok {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	rep := reply{ID: req.ID}
	result, err := w.channel.InvokeAsync(callCtx, req.Identifier, req.Args...)
	if err != nil {
		rep.Error = err.Error()
		rep.NotFound = errors.Is(err, domain.ErrEntryPointNotFound)
		w.logger.Debug("request failed", "id", req.ID, "identifier", req.Identifier, "err", err)
	} else {
		rep.Result = result
	}

	payload, err := encode(rep)
	if err != nil {
		w.logger.Error("failed to encode reply", "id", req.ID, "err", err)
		return
	}

	// The reply is pushed even when the request expired; the TTL reclaims it.
	pipe := w.client.TxPipeline()
	pipe.RPush(ctx, req.ReplyTo, payload)
	pipe.Expire(ctx, req.ReplyTo, w.opts.replyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		w.logger.Error("failed to push reply", "id", req.ID, "err", err)
	}
}
