package cli

import (
	"fmt"
	"log/slog"
	nethttp "net/http"

	"github.com/aretw0/jseval/pkg/adapters/goja"
	httpAdapter "github.com/aretw0/jseval/pkg/adapters/http"
	"github.com/aretw0/jseval/pkg/adapters/process"
	redisAdapter "github.com/aretw0/jseval/pkg/adapters/redis"
	"github.com/aretw0/jseval/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// createChannel picks the channel selected by the flags: a remote HTTP server, a Redis
// queue, an external interpreter or an embedded one. The returned func releases its
// resources.
func createChannel(opts Options, logger *slog.Logger) (ports.Channel, func() error, error) {
	noop := func() error { return nil }

	selected := 0
	for _, v := range []string{opts.Remote, opts.Redis, opts.Host} {
		if v != "" {
			selected++
		}
	}

	switch {
	case selected > 1:
		return nil, noop, fmt.Errorf("--remote, --redis and --host are mutually exclusive")

	case opts.Host != "":
		host, err := process.ParseHost(opts.Host)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("using external interpreter", "command", host.Command)
		return process.NewChannel(host), noop, nil

	case opts.Remote != "":
		client := &nethttp.Client{Timeout: opts.Timeout}
		logger.Debug("using remote channel", "url", opts.Remote)
		return httpAdapter.NewClient(opts.Remote, httpAdapter.WithHTTPClient(client)), noop, nil

	case opts.Redis != "":
		client, err := newRedisClient(opts.Redis)
		if err != nil {
			return nil, noop, err
		}
		var redisOpts []redisAdapter.Option
		if opts.Prefix != "" {
			redisOpts = append(redisOpts, redisAdapter.WithPrefix(opts.Prefix))
		}
		if opts.Timeout > 0 {
			redisOpts = append(redisOpts, redisAdapter.WithTimeout(opts.Timeout))
		}
		logger.Debug("using redis channel", "addr", client.Options().Addr)
		return redisAdapter.NewFromClient(client, redisOpts...), client.Close, nil
	}

	return embeddedChannel(opts, logger)
}

// embeddedChannel evaluates in an in-process interpreter.
func embeddedChannel(_ Options, logger *slog.Logger) (ports.Channel, func() error, error) {
	noop := func() error { return nil }
	rt, err := goja.New(goja.WithLogger(logger))
	if err != nil {
		return nil, noop, fmt.Errorf("error initializing interpreter: %w", err)
	}
	logger.Debug("using embedded interpreter")
	return rt, noop, nil
}

// newRedisClient accepts either a redis:// URL or a host:port address.
func newRedisClient(addr string) (*backend.Client, error) {
	if opts, err := backend.ParseURL(addr); err == nil {
		return backend.NewClient(opts), nil
	}
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	return backend.NewClient(&backend.Options{Addr: addr}), nil
}
