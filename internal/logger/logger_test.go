package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"slicerlink/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExtractor answers every ExtractRequestID call with a fixed result.
type stubExtractor struct {
	requestID string
	found     bool
}

func (s *stubExtractor) ExtractRequestID(_ context.Context) (string, bool) {
	return s.requestID, s.found
}

// resetExtractors empties the extractor chain and restores it when the test
// finishes.
func resetExtractors(t *testing.T) {
	t.Helper()
	saved := contextExtractors
	ClearContextExtractors()
	t.Cleanup(func() { contextExtractors = saved })
}

// jsonLogLine runs log against a JSON handler and decodes the single line it
// produces.
func jsonLogLine(t *testing.T, log func(*slog.Logger)) map[string]any {
	t.Helper()

	buf := &bytes.Buffer{}
	log(slog.New(slog.NewJSONHandler(buf, nil)))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name  string
		env   constants.Environment
		level slog.Level
	}{
		{"production json handler", constants.Production, slog.LevelInfo},
		{"development tint handler", constants.Development, slog.LevelDebug},
		{"cli tint handler", constants.CLI, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Initialize(tt.env, tt.level)

			require.NotNil(t, logger)
			assert.Equal(t, logger, slog.Default())
		})
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "a1b2c3d4e5f60718")
	assert.Equal(t, "a1b2c3d4e5f60718", GetRequestID(ctx))

	assert.Empty(t, GetRequestID(context.Background()))

	// A non-string value under the key reads as absent.
	wrongType := context.WithValue(context.Background(), requestIDContextKey, 42)
	assert.Empty(t, GetRequestID(wrongType))
}

func TestExtractRequestIDFromContext(t *testing.T) {
	t.Run("empty without value or extractors", func(t *testing.T) {
		resetExtractors(t)
		assert.Empty(t, ExtractRequestIDFromContext(context.Background()))
	})

	t.Run("context value wins over extractors", func(t *testing.T) {
		resetExtractors(t)
		RegisterContextExtractor(&stubExtractor{requestID: "from-extractor", found: true})

		ctx := WithRequestID(context.Background(), "from-context")
		assert.Equal(t, "from-context", ExtractRequestIDFromContext(ctx))
	})

	t.Run("first successful extractor wins", func(t *testing.T) {
		resetExtractors(t)
		RegisterContextExtractor(&stubExtractor{found: false})
		RegisterContextExtractor(&stubExtractor{requestID: "second", found: true})
		RegisterContextExtractor(&stubExtractor{requestID: "third", found: true})

		assert.Equal(t, "second", ExtractRequestIDFromContext(context.Background()))
	})

	t.Run("registration order is preserved and clear empties the chain", func(t *testing.T) {
		resetExtractors(t)
		first := &stubExtractor{requestID: "one", found: true}
		second := &stubExtractor{requestID: "two", found: true}

		RegisterContextExtractor(first)
		RegisterContextExtractor(second)
		require.Len(t, contextExtractors, 2)
		assert.Equal(t, first, contextExtractors[0])

		ClearContextExtractors()
		assert.Nil(t, contextExtractors)
	})
}

func TestDeriveRequestLogger(t *testing.T) {
	t.Run("nil base falls back to the default logger", func(t *testing.T) {
		assert.NotNil(t, DeriveRequestLogger(context.Background(), nil))
	})

	t.Run("request id from the context lands at the entry root", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-7f3a")

		entry := jsonLogLine(t, func(base *slog.Logger) {
			DeriveRequestLogger(ctx, base).Info("staging artifact",
				"share", map[string]string{"fileId": "42"})
		})

		assert.Equal(t, "req-7f3a", entry[constants.RequestIDLogField])
		assert.Equal(t, "staging artifact", entry["msg"])
		assert.NotContains(t, entry, "share.request_id")
	})

	t.Run("extractor-provided id is attached", func(t *testing.T) {
		resetExtractors(t)
		RegisterContextExtractor(&stubExtractor{requestID: "host-456", found: true})

		entry := jsonLogLine(t, func(base *slog.Logger) {
			DeriveRequestLogger(context.Background(), base).Info("probe")
		})

		assert.Equal(t, "host-456", entry[constants.RequestIDLogField])
	})

	t.Run("no id means no field", func(t *testing.T) {
		resetExtractors(t)

		entry := jsonLogLine(t, func(base *slog.Logger) {
			DeriveRequestLogger(context.Background(), base).Info("plain")
		})

		assert.Equal(t, "plain", entry["msg"])
		assert.NotContains(t, entry, constants.RequestIDLogField)
	})
}

func TestFlattenMapAttr(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		value  any
		want   string
	}{
		{
			name:   "string map sorts keys",
			prefix: "",
			value:  map[string]string{"status": "STAGING", "app": "cura"},
			want:   "app=cura status=STAGING",
		},
		{
			name:   "any map",
			prefix: "",
			value:  map[string]any{"size": 84, "name": "benchy.stl"},
			want:   "name=benchy.stl size=84",
		},
		{
			name:   "nested maps get dotted prefixes",
			prefix: "share",
			value: map[string]any{
				"fileId": "42",
				"meta":   map[string]string{"token": "tok"},
			},
			want: "share.fileId=42 share.meta.token=tok",
		},
		{"plain string", "", "loopback", "loopback"},
		{"plain number", "", 2500, "2500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flattenMapAttr(tt.prefix, tt.value))
		})
	}
}

func TestReplaceAttrForDev(t *testing.T) {
	flattened := replaceAttrForDev(nil, slog.Any("share",
		map[string]string{"fileId": "42", "token": "tok"}))
	assert.Equal(t, "share.fileId=42 share.token=tok", flattened.Value.String())

	untouched := replaceAttrForDev(nil, slog.String("app", "prusaslicer"))
	assert.Equal(t, "prusaslicer", untouched.Value.String())

	number := replaceAttrForDev(nil, slog.Int("window_ms", 2500))
	assert.Equal(t, "2500", number.Value.String())
}

func TestGetDeadlineInfo(t *testing.T) {
	t.Run("no deadline", func(t *testing.T) {
		attrs := GetDeadlineInfo(context.Background())

		require.Len(t, attrs, 4)
		assert.Equal(t, []any{"deadline", "none", "deadline_remaining", "none"}, attrs)
	})

	t.Run("with deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		attrs := GetDeadlineInfo(ctx)

		require.Len(t, attrs, 4)
		assert.Contains(t, attrs[1].(string), "T", "RFC3339 deadline")
		assert.NotEqual(t, "none", attrs[3])
	})
}

func TestSliceToMap(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want map[string]any
	}{
		{"nil", nil, map[string]any{}},
		{"empty", []any{}, map[string]any{}},
		{
			name: "pairs of mixed value types",
			args: []any{"app", "cura", "size", 84, "staged", true},
			want: map[string]any{"app": "cura", "size": 84, "staged": true},
		},
		{
			name: "trailing key without a value is dropped",
			args: []any{"app", "cura", "orphan"},
			want: map[string]any{"app": "cura"},
		},
		{
			name: "non-string keys are skipped",
			args: []any{"app", "cura", 42, "ignored", "fileId", "7"},
			want: map[string]any{"app": "cura", "fileId": "7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SliceToMap(tt.args))
		})
	}
}
