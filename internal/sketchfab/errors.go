package sketchfab

import "fmt"

// UpstreamError covers transport-level failures against Sketchfab: a non-2xx
// status, a connection error, or a timeout. StatusCode is 0 when no response
// was received. The raw upstream body is carried for operator diagnosis.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("sketchfab %s failed: %s", e.Op, e.Body)
	}
	return fmt.Sprintf("sketchfab %s failed: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// RejectedError is Sketchfab's soft-failure convention: HTTP success with an
// application-level error field in the body (e.g. invalid_grant).
type RejectedError struct {
	Code        string
	Description string
}

func (e *RejectedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("sketchfab rejected request: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("sketchfab rejected request: %s", e.Code)
}

// ProtocolError means a successful upstream response did not have the
// expected JSON shape. That points at an upstream API change, not at the
// caller, so it maps to a server error rather than a bad request.
type ProtocolError struct {
	Op   string
	Body string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("sketchfab %s returned unexpected response shape: %s", e.Op, e.Body)
}
