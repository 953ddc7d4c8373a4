package cli

import (
	"context"
	"fmt"

	redisAdapter "github.com/aretw0/jseval/pkg/adapters/redis"
)

// WorkerOptions configure the Redis queue worker.
type WorkerOptions struct {
	Concurrency int
}

// RunWorker serves the Redis request queue with an embedded interpreter until ctx
// is cancelled.
func RunWorker(ctx context.Context, opts Options, worker WorkerOptions) error {
	if opts.Redis == "" {
		return fmt.Errorf("--redis is required")
	}
	if opts.Remote != "" || opts.Host != "" {
		return fmt.Errorf("the worker evaluates in its embedded interpreter, --remote and --host are not supported")
	}

	env, err := setupWith(opts, embeddedChannel)
	if err != nil {
		return err
	}
	defer env.Close()

	client, err := newRedisClient(opts.Redis)
	if err != nil {
		return err
	}
	defer client.Close()

	var workerOpts []redisAdapter.Option
	if opts.Prefix != "" {
		workerOpts = append(workerOpts, redisAdapter.WithPrefix(opts.Prefix))
	}
	if worker.Concurrency > 0 {
		workerOpts = append(workerOpts, redisAdapter.WithConcurrency(worker.Concurrency))
	}

	env.logger.Info("starting redis worker", "addr", client.Options().Addr, "concurrency", worker.Concurrency)
	w := redisAdapter.NewWorker(client, env.channel, env.logger, workerOpts...)
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	env.logger.Info("redis worker stopped")
	return nil
}
