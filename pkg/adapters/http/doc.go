// Package http carries invocations over HTTP. NewHandler serves any ports.Channel with a
// chi router; Client is the matching ports.Channel for callers in another process.
package http
