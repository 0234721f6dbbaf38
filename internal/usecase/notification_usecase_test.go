package usecase

import (
	"context"
	"errors"
	"testing"

	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	sent []entity.PatientNotification
	err  error
}

func (p *recordingPublisher) PublishPatientNotification(_ context.Context, n entity.PatientNotification) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, n)
	return nil
}

func TestNotifyPatient_PublishesVisitRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doctor := uuid.New()
	publisher := &recordingPublisher{}
	notifications := NewNotificationUsecase(f.log, f.patients, publisher, f.auditService)

	p, err := f.queue.RegisterPatient(ctx, &dto.RegisterPatientRequest{
		Name: "Asha", Phone: "555", Email: "asha@example.com", Department: "ENT",
	})
	require.NoError(t, err)
	f.claim(t, doctor)
	_, err = f.consultation.RecordConsultation(ctx, doctor, &dto.RecordConsultationRequest{
		PatientID: p.ID, Disease: "Flu", Medicine: "Paracetamol",
	})
	require.NoError(t, err)

	result, err := notifications.NotifyPatient(ctx, doctor, p.ID)
	require.NoError(t, err)
	assert.True(t, result.Queued)
	assert.Equal(t, "asha@example.com", result.Email)

	require.Len(t, publisher.sent, 1)
	sent := publisher.sent[0]
	assert.Equal(t, p.ID, sent.PatientID)
	assert.Equal(t, p.Token, sent.Token)
	assert.Equal(t, entity.PatientStatusDone, sent.Status)
	assert.Equal(t, "Flu", sent.Disease)
	assert.Equal(t, "Paracetamol", sent.Medicine)
	assert.Equal(t, doctor, sent.DoctorID)
	assert.NotNil(t, sent.ConsultedAt)
}

func TestNotifyPatient_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	publisher := &recordingPublisher{}
	notifications := NewNotificationUsecase(f.log, f.patients, publisher, f.auditService)

	_, err := notifications.NotifyPatient(ctx, uuid.New(), 77)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	noEmail := f.register(t, "A")
	_, err = notifications.NotifyPatient(ctx, uuid.New(), noEmail.ID)
	assert.ErrorIs(t, err, ErrPatientHasNoEmail)

	assert.Empty(t, publisher.sent)
}

func TestNotifyPatient_PublisherFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	publisher := &recordingPublisher{err: errors.New("circuit breaker is open")}
	notifications := NewNotificationUsecase(f.log, f.patients, publisher, f.auditService)

	p, err := f.queue.RegisterPatient(ctx, &dto.RegisterPatientRequest{
		Name: "Asha", Phone: "555", Email: "asha@example.com", Department: "ENT",
	})
	require.NoError(t, err)

	_, err = notifications.NotifyPatient(ctx, uuid.New(), p.ID)
	assert.Error(t, err)
}
