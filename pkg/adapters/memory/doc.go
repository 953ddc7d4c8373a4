// Package memory provides a recording channel for tests and examples.
package memory
