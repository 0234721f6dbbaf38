package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"noq-clinic-queue/internal/converter"
	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/entity"
	"noq-clinic-queue/internal/domain/repository"
	"noq-clinic-queue/internal/infrastructure/metrics"
	"noq-clinic-queue/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const noPatientsWaiting = "No patients waiting"

var (
	ErrPatientNotFound = errors.New("patient not found")
)

type QueueUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.RegisterPatientResponse, error)
	ClaimNext(ctx context.Context, doctorID uuid.UUID) (*dto.ClaimResponse, error)
	ListWaiting(ctx context.Context) (*dto.PatientListResponse, error)
	GetActivePatient(ctx context.Context, doctorID uuid.UUID) (*dto.ActivePatientResponse, error)
	DeletePatient(ctx context.Context, doctorID uuid.UUID, patientID int64) error
	GetTodayPatients(ctx context.Context, doctorID uuid.UUID) (*dto.PatientListResponse, error)
}

type queueUsecase struct {
	log            *logrus.Logger
	patientRepo    repository.PatientRepository
	tokenGenerator *service.TokenGenerator
	auditService   service.AuditService
	metrics        QueueMetrics
	location       *time.Location
	now            func() time.Time
}

func NewQueueUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	tokenGenerator *service.TokenGenerator,
	auditService service.AuditService,
	queueMetrics QueueMetrics,
	location *time.Location,
) QueueUsecase {
	if location == nil {
		location = time.Local
	}
	return &queueUsecase{
		log:            log,
		patientRepo:    patientRepo,
		tokenGenerator: tokenGenerator,
		auditService:   auditService,
		metrics:        metricsOrNoop(queueMetrics),
		location:       location,
		now:            time.Now,
	}
}

// RegisterPatient adds a walk-in to the back of the queue and returns its display token
func (u *queueUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.RegisterPatientResponse, error) {
	patient := &entity.Patient{
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		Department: strings.TrimSpace(req.Department),
		Token:      u.tokenGenerator.Generate(),
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		patient.Email = &email
	}

	if err := u.patientRepo.Create(ctx, patient); err != nil {
		u.log.Warnf("Failed to register patient: %+v", err)
		return nil, err
	}

	u.metrics.RecordRegistration()
	_ = u.auditService.LogCreate(ctx, nil, entity.AuditActionPatientRegister, "patient", patientKey(patient.ID),
		map[string]interface{}{"token": patient.Token, "department": patient.Department})

	u.log.Infof("Patient registered: id=%d token=%s", patient.ID, patient.Token)

	return &dto.RegisterPatientResponse{
		ID:    patient.ID,
		Token: patient.Token,
	}, nil
}

// ClaimNext assigns the oldest unclaimed waiting patient to the doctor.
//
// The select and the update happen inside the repository as one atomic
// step, so two doctors calling at the same time never receive the same
// patient. An empty queue is reported with Claimed=false, not an error.
func (u *queueUsecase) ClaimNext(ctx context.Context, doctorID uuid.UUID) (*dto.ClaimResponse, error) {
	patient, err := u.patientRepo.ClaimNextWaiting(ctx, doctorID, u.now())
	if err != nil {
		u.metrics.RecordClaim(metrics.ClaimError)
		u.log.Warnf("Failed to claim next patient for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	if patient == nil {
		u.metrics.RecordClaim(metrics.ClaimEmpty)
		return &dto.ClaimResponse{
			Claimed: false,
			Message: noPatientsWaiting,
		}, nil
	}

	u.metrics.RecordClaim(metrics.ClaimClaimed)
	_ = u.auditService.LogUpdate(ctx, &doctorID, entity.AuditActionQueueClaim, "patient", patientKey(patient.ID),
		map[string]interface{}{"status": entity.PatientStatusWaiting},
		map[string]interface{}{"status": patient.Status, "doctor_id": doctorID},
	)

	u.log.Infof("Patient claimed: id=%d token=%s doctor=%s", patient.ID, patient.Token, doctorID)

	return &dto.ClaimResponse{
		Claimed: true,
		Patient: converter.PatientToSummary(patient),
	}, nil
}

func (u *queueUsecase) ListWaiting(ctx context.Context) (*dto.PatientListResponse, error) {
	patients, err := u.patientRepo.FindWaiting(ctx)
	if err != nil {
		u.log.Warnf("Failed to list waiting patients: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}

// GetActivePatient lets a doctor whose client lost state find the patient they still hold
func (u *queueUsecase) GetActivePatient(ctx context.Context, doctorID uuid.UUID) (*dto.ActivePatientResponse, error) {
	patient, err := u.patientRepo.FindActiveByDoctor(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find active patient for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	if patient == nil {
		return &dto.ActivePatientResponse{Active: false}, nil
	}

	return &dto.ActivePatientResponse{
		Active:  true,
		Patient: converter.PatientToResponse(patient),
	}, nil
}

// DeletePatient removes a patient in any state. Ownership is not checked.
func (u *queueUsecase) DeletePatient(ctx context.Context, doctorID uuid.UUID, patientID int64) error {
	deleted, err := u.patientRepo.Delete(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to delete patient %d: %+v", patientID, err)
		return err
	}
	if deleted == nil {
		return ErrPatientNotFound
	}

	// old_value is the row the delete removed, not an earlier read
	_ = u.auditService.LogDelete(ctx, &doctorID, entity.AuditActionPatientDelete, "patient", patientKey(patientID), converter.PatientToResponse(deleted))

	u.log.Infof("Patient deleted: id=%d by doctor=%s", patientID, doctorID)
	return nil
}

// GetTodayPatients returns the doctor's finalized patients for the current
// calendar day in the clinic's timezone.
func (u *queueUsecase) GetTodayPatients(ctx context.Context, doctorID uuid.UUID) (*dto.PatientListResponse, error) {
	from, to := dayBounds(u.now(), u.location)

	patients, err := u.patientRepo.FindFinalizedByDoctor(ctx, doctorID, from, to)
	if err != nil {
		u.log.Warnf("Failed to find today's patients for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}

// dayBounds returns [midnight, next midnight) of t's day in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func patientKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
