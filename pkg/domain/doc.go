/*
Package domain contains the shared vocabulary of the evaluator.

It holds the sentinel errors surfaced by recorders, dispatchers and adapters, and the
dispatch events delivered to observability hooks. The package has no dependencies
beyond the standard library so every other package can import it.
*/
package domain
