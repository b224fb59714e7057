package domain

import "context"

// RunnerPort is the scan module's public surface
type RunnerPort interface {
	Scan(ctx context.Context, cfg RunConfig) (ScanResult, error)
}

// TargetStore is the scanned target persistence collaborator
// GetByURL returns a not found error when no target exists for the URL
type TargetStore interface {
	GetByURL(ctx context.Context, repoURL string) (ScannedTarget, error)
	Create(ctx context.Context, t ScannedTarget) (ScannedTarget, error)
	Update(ctx context.Context, t ScannedTarget) error
}

// EventSink records operational events for fatal and noteworthy conditions
type EventSink interface {
	Record(ctx context.Context, taskID string, severity Severity, message string) error
}
