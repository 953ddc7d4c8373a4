package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/jseval/pkg/domain"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix  = "jseval:"
	defaultTimeout = 30 * time.Second
	pollInterval   = time.Second
)

// Client implements ports.Channel by queueing calls for a Worker.
type Client struct {
	client  *backend.Client
	prefix  string
	timeout time.Duration
}

// Option configures a Client or a Worker.
type Option func(*options)

type options struct {
	prefix      string
	timeout     time.Duration
	concurrency int
	replyTTL    time.Duration
}

// WithPrefix sets the key prefix shared by clients and workers. Defaults to "jseval:".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithTimeout bounds calls made with a context that has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func newOptions(opts []Option) options {
	o := options{
		prefix:      defaultPrefix,
		timeout:     defaultTimeout,
		concurrency: 4,
		replyTTL:    time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewFromClient creates a Client using an existing Redis client.
func NewFromClient(client *backend.Client, opts ...Option) *Client {
	o := newOptions(opts)
	return &Client{
		client:  client,
		prefix:  o.prefix,
		timeout: o.timeout,
	}
}

// InvokeAsync queues the call and waits for its reply.
func (c *Client) InvokeAsync(ctx context.Context, identifier string, args ...any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	deadline, _ := ctx.Deadline()

	id := uuid.NewString()
	req := request{
		ID:         id,
		Identifier: identifier,
		Args:       args,
		ReplyTo:    c.prefix + "reply:" + id,
		Deadline:   deadline.UnixMilli(),
	}
	payload, err := encode(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if err := c.client.RPush(ctx, requestsKey(c.prefix), payload).Err(); err != nil {
		return nil, fmt.Errorf("redis error queueing request: %w", err)
	}

	for {
		res, err := c.client.BLPop(ctx, pollInterval, req.ReplyTo).Result()
		if errors.Is(err, backend.Nil) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("redis error awaiting reply: %w", err)
		}

		// BLPOP returns [key, value]
		var rep reply
		if err := decode([]byte(res[1]), &rep); err != nil {
			return nil, fmt.Errorf("failed to decode reply: %w", err)
		}
		return rep.result()
	}
}

func (r reply) result() (json.RawMessage, error) {
	switch {
	case r.NotFound:
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrRemote, domain.ErrEntryPointNotFound, r.Error)
	case r.Error != "":
		return nil, fmt.Errorf("%w: %s", domain.ErrRemote, r.Error)
	case len(r.Result) == 0:
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(r.Result), nil
}

func requestsKey(prefix string) string {
	return prefix + "requests"
}
