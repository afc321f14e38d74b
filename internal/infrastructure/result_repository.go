package infrastructure

import (
	"context"
	"sync"
	"time"

	"adsync/internal/domain"
	"adsync/pkg/logger"
)

// implements domain.ResultRepository. In-memory by design: resumption works
// by the caller replaying its job snapshot, so the repository only caches
// finished results for the dashboard's read path.
type ResultRepository struct {
	last     *domain.SyncResult
	storedAt time.Time
	mutex    sync.RWMutex
	logger   *logger.Logger
}

func NewResultRepository(logger *logger.Logger) *ResultRepository {
	return &ResultRepository{logger: logger}
}

func (r *ResultRepository) Store(ctx context.Context, result *domain.SyncResult) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.last = result
	r.storedAt = time.Now()

	fields := map[string]any{"status": result.Status}
	if result.Summary != nil {
		fields["rows"] = result.Summary.RowsTransformed
		fields["reports_completed"] = result.Summary.ReportsCompleted
		fields["reports_failed"] = result.Summary.ReportsFailed
	}
	r.logger.WithContext(ctx).WithFields(fields).Info("Stored sync result in memory")
	return nil
}

func (r *ResultRepository) Last(ctx context.Context) (*domain.SyncResult, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.last, nil
}

// StoredAt reports when the cached result was written, zero when empty.
func (r *ResultRepository) StoredAt() time.Time {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.storedAt
}
