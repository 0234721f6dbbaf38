package repository

import (
	"context"
	"sync"
	"time"

	"noq-clinic-queue/internal/domain/entity"
	domainRepo "noq-clinic-queue/internal/domain/repository"
)

type memoryAuditLogRepository struct {
	mu     sync.Mutex
	nextID int64
	logs   []entity.AuditLog
}

func NewMemoryAuditLogRepository() domainRepo.AuditLogRepository {
	return &memoryAuditLogRepository{}
}

func (r *memoryAuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	log.ID = r.nextID
	log.CreatedAt = time.Now()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memoryAuditLogRepository) Find(ctx context.Context, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	logs := make([]entity.AuditLog, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0; i-- {
		if filter.Action != "" && r.logs[i].Action != filter.Action {
			continue
		}
		logs = append(logs, r.logs[i])
		if filter.Limit > 0 && len(logs) == filter.Limit {
			break
		}
	}
	return logs, nil
}

func (r *memoryAuditLogRepository) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, log := range r.logs {
		if log.ID == id {
			found := log
			return &found, nil
		}
	}
	return nil, nil
}
