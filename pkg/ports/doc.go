/*
Package ports defines the driven ports (interfaces) of the evaluator.

These interfaces decouple expression recording from the transport that reaches the
JavaScript host, so the same recorder can drive an embedded interpreter, an HTTP peer
or a Redis-backed worker.

# Key Interfaces

  - Channel: Calls the evaluation entry point and returns the JSON encoded result.
  - DirectChannel: A Channel with a non-suspending call path, required by synchronous dispatch.
  - Sink: Receives transmitted scripts for diagnostics.

RunChannelContract verifies adapters that front a real interpreter.
*/
package ports
