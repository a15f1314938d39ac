package constants

import "time"

// ContentTypeHeader is the HTTP Content-Type header name.
const ContentTypeHeader = "Content-Type"

// RequestIDHeader is the HTTP header carrying the request ID on staging responses.
const RequestIDHeader = "X-Request-ID"

// ContentTypeOctetStream is the content type for raw artifact uploads.
const ContentTypeOctetStream = "application/octet-stream"

// SlicerTempPath is the server path for staging uploads and deletions.
// Fixed by the remote server's app routing; do not change.
const SlicerTempPath = "/apps/threedviewer/api/slicer/temp"

// FileContentPath is the server path prefix for fetching original file bytes.
// Fixed by the remote server's app routing; do not change.
const FileContentPath = "/apps/threedviewer/api/file"

// DefaultLocalListenAddr is the bind address for the local staging server.
// Loopback keeps staged URLs reachable only from this machine; set a LAN
// address to hand off to a slicer running on another host.
const DefaultLocalListenAddr = "127.0.0.1:8680"

// ServerReadTimeout is the HTTP server read timeout
const ServerReadTimeout = 15 * time.Second

// ServerWriteTimeout is the HTTP server write timeout
const ServerWriteTimeout = 15 * time.Second

// ServerIdleTimeout is the HTTP server idle timeout
const ServerIdleTimeout = 60 * time.Second

// ServerShutdownTimeout is the timeout for graceful server shutdown
const ServerShutdownTimeout = 5 * time.Second
