// Package mcp exposes a channel to Model Context Protocol clients through the evaluate
// and call tools, plus the bootstrap script as a resource.
package mcp
