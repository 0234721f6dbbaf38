package repository

import (
	"context"

	"noq-clinic-queue/internal/domain/entity"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	Find(ctx context.Context, filter entity.AuditLogFilter) ([]entity.AuditLog, error)
	FindByID(ctx context.Context, id int64) (*entity.AuditLog, error)
}
