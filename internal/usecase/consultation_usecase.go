package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"noq-clinic-queue/internal/converter"
	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/entity"
	"noq-clinic-queue/internal/domain/repository"
	"noq-clinic-queue/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrConsultationNotOwned = errors.New("patient is not in consultation with this doctor")
	ErrDiseaseRequired      = errors.New("disease is required for a completed consultation")
	ErrInvalidOutcome       = errors.New("outcome must be completed or skipped")
)

type ConsultationUsecase interface {
	RecordConsultation(ctx context.Context, doctorID uuid.UUID, req *dto.RecordConsultationRequest) (*dto.PatientResponse, error)
}

type consultationUsecase struct {
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	auditService service.AuditService
	metrics      QueueMetrics
	now          func() time.Time
}

func NewConsultationUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
	queueMetrics QueueMetrics,
) ConsultationUsecase {
	return &consultationUsecase{
		log:          log,
		patientRepo:  patientRepo,
		auditService: auditService,
		metrics:      metricsOrNoop(queueMetrics),
		now:          time.Now,
	}
}

// RecordConsultation finalizes a patient the doctor currently holds.
//
// Flow:
// 1. Resolve the outcome (empty means completed)
// 2. Require a diagnosis for completed visits
// 3. Guarded update: only applies while the patient is in consultation with doctorID
func (u *consultationUsecase) RecordConsultation(ctx context.Context, doctorID uuid.UUID, req *dto.RecordConsultationRequest) (*dto.PatientResponse, error) {
	outcome := entity.ConsultationOutcome(req.Outcome)
	if outcome == "" {
		outcome = entity.OutcomeCompleted
	}

	disease := strings.TrimSpace(req.Disease)
	if outcome == entity.OutcomeCompleted && disease == "" {
		return nil, ErrDiseaseRequired
	}

	result, ok := entity.NewConsultationResult(outcome, disease, strings.TrimSpace(req.Medicine), strings.TrimSpace(req.Remarks), u.now())
	if !ok {
		return nil, ErrInvalidOutcome
	}

	patient, err := u.patientRepo.FinalizeConsultation(ctx, req.PatientID, doctorID, result)
	if err != nil {
		u.log.Warnf("Failed to record consultation for patient %d: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrConsultationNotOwned
	}

	action := entity.AuditActionConsultationComplete
	if outcome == entity.OutcomeSkipped {
		action = entity.AuditActionConsultationSkip
	}
	u.metrics.RecordConsultation(string(outcome))
	_ = u.auditService.LogUpdate(ctx, &doctorID, action, "patient", patientKey(patient.ID),
		map[string]interface{}{"status": entity.PatientStatusInConsultation},
		map[string]interface{}{"status": patient.Status, "disease": result.Disease},
	)

	u.log.Infof("Consultation recorded: patient=%d status=%s doctor=%s", patient.ID, patient.Status, doctorID)

	return converter.PatientToResponse(patient), nil
}
