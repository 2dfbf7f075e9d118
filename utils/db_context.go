package utils

import (
	"context"
	"time"
)

// Store deadlines by kind of request.
const (
	QueryTimeout  = 30 * time.Second
	ReportTimeout = 60 * time.Second
	PingTimeout   = 5 * time.Second
)

// WithDeadline bounds parent by timeout. A nil parent falls back to context.Background.
func WithDeadline(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}
