package usecase

import (
	"context"
	"errors"
	"time"

	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/entity"
	"noq-clinic-queue/internal/domain/repository"
	"noq-clinic-queue/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrPatientHasNoEmail = errors.New("patient has no email address")
)

type NotificationUsecase interface {
	NotifyPatient(ctx context.Context, doctorID uuid.UUID, patientID int64) (*dto.NotificationResponse, error)
}

type notificationUsecase struct {
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	publisher    service.NotificationPublisher
	auditService service.AuditService
	now          func() time.Time
}

func NewNotificationUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	publisher service.NotificationPublisher,
	auditService service.AuditService,
) NotificationUsecase {
	return &notificationUsecase{
		log:          log,
		patientRepo:  patientRepo,
		publisher:    publisher,
		auditService: auditService,
		now:          time.Now,
	}
}

// NotifyPatient queues an email with the patient's current visit record.
// Only ever called on a doctor's explicit request.
func (u *notificationUsecase) NotifyPatient(ctx context.Context, doctorID uuid.UUID, patientID int64) (*dto.NotificationResponse, error) {
	patient, err := u.patientRepo.FindByID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	if patient.Email == nil || *patient.Email == "" {
		return nil, ErrPatientHasNoEmail
	}

	notification := entity.PatientNotification{
		PatientID:   patient.ID,
		Token:       patient.Token,
		Name:        patient.Name,
		Email:       *patient.Email,
		Department:  patient.Department,
		Status:      patient.Status,
		ConsultedAt: patient.ConsultedAt,
		DoctorID:    doctorID,
		RequestedAt: u.now(),
	}
	if patient.Disease != nil {
		notification.Disease = *patient.Disease
	}
	if patient.Medicine != nil {
		notification.Medicine = *patient.Medicine
	}
	if patient.Remarks != nil {
		notification.Remarks = *patient.Remarks
	}

	if err := u.publisher.PublishPatientNotification(ctx, notification); err != nil {
		u.log.Warnf("Failed to publish notification for patient %d: %+v", patientID, err)
		return nil, err
	}

	_ = u.auditService.LogCreate(ctx, &doctorID, entity.AuditActionPatientNotify, "patient", patientKey(patient.ID),
		map[string]interface{}{"email": notification.Email, "status": notification.Status})

	return &dto.NotificationResponse{
		PatientID: patient.ID,
		Email:     notification.Email,
		Queued:    true,
	}, nil
}
