package domain

import "errors"

// ErrUnsupportedIndexKind is returned when an index key is neither a nested expression, an integer nor a string.
var ErrUnsupportedIndexKind = errors.New("unsupported index kind")

// ErrMultipleInvocationsNotSupported is returned when a second member invocation is recorded
// under the single-invocation policy.
var ErrMultipleInvocationsNotSupported = errors.New("only one function invocation is supported in a single expression")

// ErrSynchronousCallUnavailable is returned when a synchronous dispatch targets a channel without a direct call path.
var ErrSynchronousCallUnavailable = errors.New("channel does not support synchronous calls")

// ErrNoChannel is returned when a dispatch is attempted on a context built without a channel.
var ErrNoChannel = errors.New("no evaluation channel configured")

// ErrEntryPointNotFound is returned by interpreter adapters when the evaluation entry point is not installed.
var ErrEntryPointNotFound = errors.New("entry point not found")

// ErrRemote wraps failures reported by the far side of a transport (HTTP, Redis).
var ErrRemote = errors.New("remote evaluation failed")
