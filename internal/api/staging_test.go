// Package api defines the wire types for the staging HTTP contract.
package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageResponseDecoding(t *testing.T) {
	t.Run("full server body", func(t *testing.T) {
		body := `{
			"success": true,
			"downloadUrl": "https://files.example.com/s/AbCdEf123/download",
			"shareToken": "AbCdEf123",
			"fileId": "9137",
			"expiresAt": "2026-08-23T15:04:05Z"
		}`

		var resp StageResponse
		err := json.Unmarshal([]byte(body), &resp)
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "https://files.example.com/s/AbCdEf123/download", resp.DownloadURL)
		assert.Equal(t, "AbCdEf123", resp.ShareToken)
		assert.Equal(t, "9137", resp.FileID)
		assert.Equal(t, "2026-08-23T15:04:05Z", resp.ExpiresAt)
	})

	t.Run("minimal server body", func(t *testing.T) {
		body := `{"success": true, "downloadUrl": "http://127.0.0.1:8680/d/x", "fileId": "1"}`

		var resp StageResponse
		err := json.Unmarshal([]byte(body), &resp)
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "http://127.0.0.1:8680/d/x", resp.DownloadURL)
		assert.Equal(t, "1", resp.FileID)
		assert.Empty(t, resp.ShareToken)
		assert.Empty(t, resp.ExpiresAt)
	})

	t.Run("camelCase on the wire", func(t *testing.T) {
		resp := StageResponse{
			Success:     true,
			DownloadURL: "http://example.com/d/1",
			ShareToken:  "tok",
			FileID:      "42",
			ExpiresAt:   "2026-08-23T15:04:05Z",
		}

		data, err := json.Marshal(resp)
		require.NoError(t, err)

		assert.Contains(t, string(data), `"downloadUrl"`)
		assert.Contains(t, string(data), `"shareToken"`)
		assert.Contains(t, string(data), `"fileId"`)
		assert.Contains(t, string(data), `"expiresAt"`)
	})
}

func TestStageResponseExpiryTime(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt string
		want      time.Time
	}{
		{
			name:      "valid RFC3339",
			expiresAt: "2026-08-23T15:04:05Z",
			want:      time.Date(2026, 8, 23, 15, 4, 5, 0, time.UTC),
		},
		{
			name:      "missing",
			expiresAt: "",
			want:      time.Time{},
		},
		{
			name:      "malformed",
			expiresAt: "sometime tomorrow",
			want:      time.Time{},
		},
		{
			name:      "unix seconds are not accepted",
			expiresAt: "1787324645",
			want:      time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := StageResponse{ExpiresAt: tt.expiresAt}
			assert.True(t, tt.want.Equal(resp.ExpiryTime()))
		})
	}
}
