package constants

import "time"

// HTTP Server Timeouts
const (
	HTTPIdleTimeoutSecs = 120
	HTTPIdleTimeout     = HTTPIdleTimeoutSecs * time.Second
	ShutdownTimeoutSecs = 10
)

// Content Types
const (
	ContentTypeJSON    = "application/json"
	DefaultContentType = "application/octet-stream"
)

// HTTP Header Names
const (
	HeaderContentType = "Content-Type"
)
