package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"slicerlink/internal/constants"

	"github.com/lmittmann/tint"
)

// Initialize sets up the global slog logger based on the environment
func Initialize(env constants.Environment, level slog.Level) *slog.Logger {
	var handler slog.Handler

	if env == constants.Production {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		// Colored handler for local/development environments
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:       level,
			TimeFormat:  time.TimeOnly,
			ReplaceAttr: replaceAttrForDev,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("logger initialized", "env", env, "level", level)

	return logger
}

// replaceAttrForDev flattens map-valued attributes into dotted key=value strings
// so development output stays on one readable line.
func replaceAttrForDev(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}

	switch a.Value.Any().(type) {
	case map[string]string, map[string]any:
		return slog.String(a.Key, flattenMapAttr(a.Key, a.Value.Any()))
	default:
		return a
	}
}

// flattenMapAttr renders nested maps as space-separated key=value pairs with
// dotted prefixes, sorted alphabetically for stable output.
func flattenMapAttr(prefix string, value any) string {
	switch m := value.(type) {
	case map[string]string:
		pairs := make([]string, 0, len(m))
		for k, v := range m {
			pairs = append(pairs, flattenMapAttr(joinAttrPrefix(prefix, k), v))
		}
		sort.Strings(pairs)
		return strings.Join(pairs, " ")
	case map[string]any:
		pairs := make([]string, 0, len(m))
		for k, v := range m {
			pairs = append(pairs, flattenMapAttr(joinAttrPrefix(prefix, k), v))
		}
		sort.Strings(pairs)
		return strings.Join(pairs, " ")
	default:
		if prefix == "" {
			return fmt.Sprintf("%v", value)
		}
		return fmt.Sprintf("%s=%v", prefix, value)
	}
}

func joinAttrPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
