package http

import "encoding/json"

// InvokeRequest is the body of POST /invoke.
type InvokeRequest struct {
	// Identifier defaults to ports.EntryPoint when empty.
	Identifier string `json:"identifier,omitempty"`
	Args       []any  `json:"args"`
}

// InvokeResponse is the reply of POST /invoke. Exactly one of Result and Error is set.
type InvokeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Event is broadcast on GET /events after every invocation served.
type Event struct {
	Identifier string  `json:"identifier"`
	Script     string  `json:"script,omitempty"`
	DurationMs float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// MaxRequestBytes bounds the size of an invocation body.
const MaxRequestBytes = 1 << 20
