package constants

// ConfigCtxKeyType keys the loaded configuration in a command context.
type ConfigCtxKeyType string

// ConfigCtxKey carries the *config.Config the root command loads before any
// subcommand runs.
const ConfigCtxKey ConfigCtxKeyType = "config"

// StartTimeCtxKeyType keys the invocation start time in a command context.
type StartTimeCtxKeyType string

// StartTimeCtxKey carries the CLI start time, read back to report elapsed
// time once a command finishes.
const StartTimeCtxKey StartTimeCtxKeyType = "startTime"

// RequestIDLogField names the request ID attribute attached to log entries
// by the logger helpers for requests tagged by the staging middleware.
const RequestIDLogField = "request_id"
