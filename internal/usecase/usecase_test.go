package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"noq-clinic-queue/config"
	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/repository"
	"noq-clinic-queue/internal/infrastructure/metrics"
	repoImpl "noq-clinic-queue/internal/repository"
	"noq-clinic-queue/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	log          *logrus.Logger
	patients     repository.PatientRepository
	auditLogs    repository.AuditLogRepository
	auditService service.AuditService
	collector    *metrics.Collector
	queue        *queueUsecase
	consultation *consultationUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	patients := repoImpl.NewMemoryPatientRepository()
	auditLogs := repoImpl.NewMemoryAuditLogRepository()
	auditService := service.NewAuditService(log, auditLogs)
	collector := metrics.NewCollector()

	return &fixture{
		log:          log,
		patients:     patients,
		auditLogs:    auditLogs,
		auditService: auditService,
		collector:    collector,
		queue: NewQueueUsecase(log, patients, service.NewTokenGenerator("A"), auditService, collector, time.UTC).(*queueUsecase),
		consultation: NewConsultationUsecase(log, patients, auditService, collector).(*consultationUsecase),
	}
}

func (f *fixture) statusUsecase(limit int) StatusUsecase {
	return NewStatusUsecase(f.log, f.patients, config.QueueConfig{
		TokenPrefix:   "A",
		UpcomingLimit: limit,
		PollInterval:  3 * time.Second,
	})
}

func (f *fixture) register(t *testing.T, name string) *dto.RegisterPatientResponse {
	t.Helper()
	resp, err := f.queue.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		Name:       name,
		Phone:      "555",
		Department: "ENT",
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) claim(t *testing.T, doctorID uuid.UUID) *dto.ClaimResponse {
	t.Helper()
	resp, err := f.queue.ClaimNext(context.Background(), doctorID)
	require.NoError(t, err)
	return resp
}
