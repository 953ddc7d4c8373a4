/*
Package jseval builds JavaScript expressions from Go and evaluates them in a remote interpreter.

Calling code records symbolic operations (member access, assignment, indexing, invocation and
instantiation) against an EvalContext. The recorded text is shipped through a ports.Channel to a
single well-known entry point, ports.EntryPoint, and the result is optionally decoded into a Go type.

# Recording

Operations chain on the same context. Values are rendered as JavaScript literals by package literal,
and nested contexts created with Expr can be used as arguments, keys and values.

	ec := jseval.New(channel)
	ec.Member("Chart").Member("defaults").Member("global").Member("animation").Assign("duration", 0)
	fmt.Println(ec) // Chart.defaults.global.animation.duration = 0

Identifiers that need a space, such as declarations, are written with the placeholder ("_" by default)
and substituted when the context is finalized:

	ec.Assign("var_chart", jseval.Expr().Construct("new_Chart"))
	// var chart = new Chart

# Dispatching

	n, err := jseval.Invoke[int](ctx, jseval.New(channel).Call("Math.max", 1, 2))

InvokeSync and its variants block without a context and require a ports.DirectChannel.
A context that was never dispatched is sent in the background when it is closed:

	ec := jseval.New(channel)
	defer ec.Close()
	ec.Member("document").Assign("title", "ready")

# Channels

Adapters under pkg/adapters provide channels backed by an embedded interpreter (goja), an HTTP
endpoint, a Redis queue and an in-memory recorder for tests.
*/
package jseval
