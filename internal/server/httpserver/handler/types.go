package handler

import "time"

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// StatusResponse is the body of GET /admin/v1/status.
type StatusResponse struct {
	BootID        string    `json:"boot_id"`
	Started       time.Time `json:"started"`
	Home          string    `json:"home"`
	ComponentsDir string    `json:"components_dir"`
	OverrideDir   string    `json:"override_dir,omitempty"`
	Components    int       `json:"components"`
	Overrides     int       `json:"overrides"`
	Sources       []string  `json:"sources"`
	Keys          int       `json:"keys"`
	Unresolved    []string  `json:"unresolved"`
	Fingerprint   string    `json:"fingerprint"`
	Degraded      bool      `json:"degraded"`
	Order         int       `json:"order"`
}

// SourceInfo describes one declared property source.
type SourceInfo struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Rank     int    `json:"rank"`
	Optional bool   `json:"optional"`
	Loaded   bool   `json:"loaded"`
	Keys     int    `json:"keys"`
}

// ComponentInfo describes one discovered component.
type ComponentInfo struct {
	Name           string            `json:"name"`
	Path           string            `json:"path"`
	Descriptor     string            `json:"descriptor"`
	Override       string            `json:"override,omitempty"`
	PropertySource string            `json:"property_source"`
	Properties     map[string]string `json:"properties,omitempty"`
}

// PropertyResponse is the body of GET /admin/v1/config/keys/{key}.
type PropertyResponse struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Raw    string `json:"raw"`
	Source string `json:"source,omitempty"`
}

// ResolveResponse is the body of GET /admin/v1/resolve.
type ResolveResponse struct {
	Value    string `json:"value"`
	Resolved string `json:"resolved"`

	// Masked is set when Resolved was redacted because the value
	// referenced a sensitive key.
	Masked bool `json:"masked,omitempty"`
}
