// Package goja evaluates scripts in an embedded goja interpreter, so expressions can be
// dispatched without a browser or a remote host.
package goja
