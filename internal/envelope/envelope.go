// Package envelope wraps MCP tool results in one response shape carrying
// the payload, the user-facing messages and any error.
package envelope

// Meta holds response metadata.
type Meta struct {
	Provider string   `json:"provider,omitempty"` // symbol provider that served the call
	Messages []string `json:"messages,omitempty"` // what an editor would have shown
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"` // machine-readable code
	Message string `json:"message"`        // human-readable message
}

// ErrorInfo describes a failed call.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the standard envelope for all MCP tool responses.
type Response struct {
	SchemaVersion string      `json:"schemaVersion"`
	Data          interface{} `json:"data"`
	Meta          *Meta       `json:"meta,omitempty"`
	Warnings      []Warning   `json:"warnings,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
}

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"
