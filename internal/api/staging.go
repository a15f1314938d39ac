package api

import (
	"time"
)

// StageResponse is the body returned by the temp-file staging endpoint.
// Field names are camelCase on the wire for compatibility with the
// threedviewer server app.
type StageResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
	ShareToken  string `json:"shareToken,omitempty"`
	FileID      string `json:"fileId"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
}

// ExpiryTime parses the ExpiresAt timestamp. The field is informational
// and servers are not required to send it, so a missing or malformed
// value yields the zero time rather than an error.
func (r *StageResponse) ExpiryTime() time.Time {
	if r.ExpiresAt == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, r.ExpiresAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// DeleteResponse is the body returned by the temp-file deletion endpoint.
// Deletion is best-effort and callers only log this response.
type DeleteResponse struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId,omitempty"`
}
