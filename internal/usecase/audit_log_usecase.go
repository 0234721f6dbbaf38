package usecase

import (
	"context"
	"errors"

	"noq-clinic-queue/internal/converter"
	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/entity"
	"noq-clinic-queue/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
)

const (
	defaultAuditLogLimit = 100
	maxAuditLogLimit     = 500
)

type AuditLogUsecase interface {
	ListAuditLogs(ctx context.Context, req *dto.AuditLogQuery) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(log *logrus.Logger, auditLogRepo repository.AuditLogRepository) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// ListAuditLogs returns the newest entries first, at most maxAuditLogLimit
func (u *auditLogUsecase) ListAuditLogs(ctx context.Context, req *dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	filter := entity.AuditLogFilter{Limit: defaultAuditLogLimit}
	if req != nil {
		filter.Action = req.Action
		if req.Limit > 0 {
			filter.Limit = min(req.Limit, maxAuditLogLimit)
		}
	}

	logs, err := u.auditLogRepo.Find(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
