package ports

import (
	"context"
	"encoding/json"
)

// EntryPoint is the host function every dispatch targets. Its contract is
// evaluate(script string) -> value.
const EntryPoint = "DynamicJavascriptRuntime.evaluate"

// Bootstrap defines EntryPoint in a JavaScript host. Browsers load it as a script;
// embedded interpreters run it once before the first call. Scripts run with indirect
// eval so declarations land in the global scope.
const Bootstrap = `(function (global) {
  var runtime = global.DynamicJavascriptRuntime || (global.DynamicJavascriptRuntime = {});
  runtime.evaluate = function (script) {
    return (0, eval)(script);
  };
})(typeof globalThis !== "undefined" ? globalThis : this);
`

// Channel calls a named function in a remote JavaScript host.
// The result is the JSON encoding of the returned value; undefined becomes null.
type Channel interface {
	InvokeAsync(ctx context.Context, identifier string, args ...any) (json.RawMessage, error)
}

// DirectChannel is a Channel that can also call without suspending, for hosts that
// live in the same process.
type DirectChannel interface {
	Channel
	Invoke(identifier string, args ...any) (json.RawMessage, error)
}
