package repository

import (
	"context"
	"time"

	"noq-clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
)

// PatientRepository is the durable patient table and the only shared
// mutable state of the queue. Every mutating method is atomic: it either
// applies completely or returns an error with no observable change.
type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	FindByID(ctx context.Context, id int64) (*entity.Patient, error)
	FindWaiting(ctx context.Context) ([]entity.Patient, error)
	FindActiveByDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.Patient, error)
	FindFinalizedByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Patient, error)

	// ClaimNextWaiting moves the oldest unclaimed waiting patient to
	// in_consultation under doctorID. Returns nil, nil when nobody is waiting.
	ClaimNextWaiting(ctx context.Context, doctorID uuid.UUID, calledAt time.Time) (*entity.Patient, error)

	// FinalizeConsultation writes the result only if the patient is in
	// consultation with doctorID. Returns nil, nil when no row matched.
	FinalizeConsultation(ctx context.Context, id int64, doctorID uuid.UUID, result *entity.ConsultationResult) (*entity.Patient, error)

	// ReleaseInConsultation returns every in_consultation patient to waiting
	// and clears its doctor. Returns the number of released patients.
	ReleaseInConsultation(ctx context.Context) (int64, error)

	Snapshot(ctx context.Context, upcomingLimit int) (*entity.QueueSnapshot, error)

	// Delete removes the patient in one statement and returns the row as it
	// was at deletion time, or nil when no patient had that id.
	Delete(ctx context.Context, id int64) (*entity.Patient, error)
}
