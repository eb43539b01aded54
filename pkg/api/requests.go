package api

// InvokeRequest is the HTTP request body for POST /invoke.
type InvokeRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id,omitempty"`
}
