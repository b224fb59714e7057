package service

import (
	"context"
	"sync"
	"time"

	perr "codesweep/internal/platform/errors"
	"codesweep/internal/platform/logger"
	"codesweep/internal/services/scan/domain"

	"github.com/google/uuid"
)

// memStorage backs dry runs and storeless wiring with an in memory map
// it honors the same lookup-by-URL then create-or-merge contract as postgres
type memStorage struct {
	mu    sync.Mutex
	byURL map[string]domain.ScannedTarget
}

func newMemStorage() *memStorage {
	return &memStorage{byURL: map[string]domain.ScannedTarget{}}
}

// GetByURL implements domain.TargetStore
func (m *memStorage) GetByURL(_ context.Context, repoURL string) (domain.ScannedTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byURL[repoURL]
	if !ok {
		return domain.ScannedTarget{}, perr.ErrNotFound
	}
	return t, nil
}

// Create implements domain.TargetStore
func (m *memStorage) Create(_ context.Context, t domain.ScannedTarget) (domain.ScannedTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	m.byURL[t.RepoURL] = t
	return t, nil
}

// Update implements domain.TargetStore
func (m *memStorage) Update(_ context.Context, t domain.ScannedTarget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.UpdatedAt = time.Now().UTC()
	m.byURL[t.RepoURL] = t
	return nil
}

// Record implements domain.EventSink by logging only
func (m *memStorage) Record(ctx context.Context, taskID string, severity domain.Severity, message string) error {
	logger.C(ctx).Info().
		Str("task_id", taskID).
		Str("severity", string(severity)).
		Msg(message)
	return nil
}
