// Package redis carries invocations over Redis lists. Client queues msgpack encoded calls
// on "<prefix>requests" and waits on a per-call reply list; Worker serves them through any
// ports.Channel with a bounded pool.
package redis
