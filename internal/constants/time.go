package constants

import "time"

// DefaultObservationWindow is how long the launch detector waits for a failure
// signal before optimistically reporting the handoff as accepted.
const DefaultObservationWindow = 2500 * time.Millisecond

// DefaultCleanupDelay is how long after a terminal outcome the staged artifact
// deletion is attempted. Long enough for the target application to fetch the
// staged URL, well inside the server-side expiry.
const DefaultCleanupDelay = 60 * time.Second

// CleanupRequestTimeout bounds the deferred deletion request. The deletion is
// best-effort; the staged resource expires server-side regardless.
const CleanupRequestTimeout = 15 * time.Second

// DefaultShareTTL is the lifetime of artifacts staged by the built-in providers.
// The remote server advertises its own expiry; this applies to s3 and local.
const DefaultShareTTL = time.Hour

// ExpirySweepInterval is how often the local staging server drops expired artifacts.
const ExpirySweepInterval = time.Minute

// DefaultContextTimeout is the default timeout for context operations.
const DefaultContextTimeout = 10 * time.Second

// WatchDebounceInterval coalesces bursts of file system events into a single
// re-export. Editors typically emit several writes per save.
const WatchDebounceInterval = 250 * time.Millisecond

// DefaultUploadTimeout bounds a staging upload.
const DefaultUploadTimeout = 60 * time.Second

// TestContextTimeout is the timeout for test contexts.
const TestContextTimeout = 5 * time.Second
