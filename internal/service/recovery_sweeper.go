package service

import (
	"context"
	"fmt"
	"time"

	"noq-clinic-queue/internal/domain/entity"
	"noq-clinic-queue/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// SweepRecorder receives the number of released patients.
type SweepRecorder interface {
	RecordSweep(released int64)
}

// RecoverySweeper returns patients stranded in consultation by a crash or
// restart to the waiting queue.
type RecoverySweeper struct {
	patientRepo  repository.PatientRepository
	auditService AuditService
	metrics      SweepRecorder
	log          *logrus.Logger
}

func NewRecoverySweeper(
	patientRepo repository.PatientRepository,
	auditService AuditService,
	metrics SweepRecorder,
	log *logrus.Logger,
) *RecoverySweeper {
	return &RecoverySweeper{
		patientRepo:  patientRepo,
		auditService: auditService,
		metrics:      metrics,
		log:          log,
	}
}

// Sweep must run BEFORE the server accepts traffic: it releases every
// in_consultation patient regardless of which doctor holds it.
func (s *RecoverySweeper) Sweep(ctx context.Context) (int64, error) {
	s.log.Info("Releasing patients left in consultation...")
	startTime := time.Now()

	released, err := s.patientRepo.ReleaseInConsultation(ctx)
	if err != nil {
		s.log.Errorf("Failed to release in-consultation patients: %+v", err)
		return 0, fmt.Errorf("recovery sweep: %w", err)
	}

	s.log.Infof("Recovery sweep completed: %d patients released in %v", released, time.Since(startTime))

	if released == 0 {
		return 0, nil
	}

	if s.metrics != nil {
		s.metrics.RecordSweep(released)
	}

	if s.auditService != nil {
		// Audit is best effort; the release itself already committed.
		_ = s.auditService.LogUpdate(ctx, nil, entity.AuditActionQueueSweep, "patient", "*",
			map[string]interface{}{"status": entity.PatientStatusInConsultation},
			map[string]interface{}{"status": entity.PatientStatusWaiting, "released": released},
		)
	}

	return released, nil
}
