// Package api defines the wire types for the staging HTTP contract.
// It contains the response structures shared by the staging providers,
// the original-file fetcher, and the local staging server.
package api

// ErrorResponse is the JSON error envelope the local staging server sends
// on non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse answers the local staging server's health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
