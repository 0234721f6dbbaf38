package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"noq-clinic-queue/internal/domain/entity"
	domainRepo "noq-clinic-queue/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errClaimLost means the locked candidate no longer matched the claim guard.
// It cannot happen while the row lock is held and is kept as a safety net.
var errClaimLost = errors.New("claimed patient changed under lock")

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) domainRepo.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	patient.Status = entity.PatientStatusWaiting
	patient.DoctorID = nil
	return r.db.WithContext(ctx).Create(patient).Error
}

func (r *patientRepository) FindByID(ctx context.Context, id int64) (*entity.Patient, error) {
	var patient entity.Patient
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindWaiting(ctx context.Context) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := r.db.WithContext(ctx).
		Where("status = ? AND doctor_id IS NULL", entity.PatientStatusWaiting).
		Order("id ASC").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) FindActiveByDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := r.db.WithContext(ctx).
		Where("status = ? AND doctor_id = ?", entity.PatientStatusInConsultation, doctorID).
		Order("called_at DESC").
		Take(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindFinalizedByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND status IN ?", doctorID, []string{
			string(entity.PatientStatusDone),
			string(entity.PatientStatusSkipped),
		}).
		Where("consulted_at >= ? AND consulted_at < ?", from, to).
		Order("consulted_at ASC").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// ClaimNextWaiting locks the oldest waiting row with FOR UPDATE SKIP LOCKED and
// flips it inside the same transaction. Concurrent claimers never block on, or
// receive, a row another transaction is claiming.
func (r *patientRepository) ClaimNextWaiting(ctx context.Context, doctorID uuid.UUID, calledAt time.Time) (*entity.Patient, error) {
	var claimed *entity.Patient

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate entity.Patient
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND doctor_id IS NULL", entity.PatientStatusWaiting).
			Order("id ASC").
			Take(&candidate).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		// Compare-and-swap on the locked row
		result := tx.Model(&entity.Patient{}).
			Where("id = ? AND status = ? AND doctor_id IS NULL", candidate.ID, entity.PatientStatusWaiting).
			Updates(map[string]interface{}{
				"status":    entity.PatientStatusInConsultation,
				"doctor_id": doctorID,
				"called_at": calledAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return errClaimLost
		}

		candidate.Status = entity.PatientStatusInConsultation
		candidate.DoctorID = &doctorID
		candidate.CalledAt = &calledAt
		claimed = &candidate
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim next patient: %w", err)
	}

	return claimed, nil
}

// FinalizeConsultation applies the result only to the row held by doctorID.
// RowsAffected of the guarded update is the ownership check.
func (r *patientRepository) FinalizeConsultation(ctx context.Context, id int64, doctorID uuid.UUID, result *entity.ConsultationResult) (*entity.Patient, error) {
	var finalized *entity.Patient

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&entity.Patient{}).
			Where("id = ? AND doctor_id = ? AND status = ?", id, doctorID, entity.PatientStatusInConsultation).
			Updates(map[string]interface{}{
				"status":       result.Status,
				"disease":      nullableString(result.Disease),
				"medicine":     nullableString(result.Medicine),
				"remarks":      nullableString(result.Remarks),
				"consulted_at": result.ConsultedAt,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return nil
		}

		var patient entity.Patient
		if err := tx.Where("id = ?", id).Take(&patient).Error; err != nil {
			return err
		}
		finalized = &patient
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finalize consultation for patient %d: %w", id, err)
	}

	return finalized, nil
}

func (r *patientRepository) ReleaseInConsultation(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Patient{}).
		Where("status = ?", entity.PatientStatusInConsultation).
		Updates(map[string]interface{}{
			"status":    entity.PatientStatusWaiting,
			"doctor_id": nil,
		})
	return result.RowsAffected, result.Error
}

// Snapshot reads current and upcoming inside one read-only repeatable-read
// transaction so both halves see the same state.
func (r *patientRepository) Snapshot(ctx context.Context, upcomingLimit int) (*entity.QueueSnapshot, error) {
	snapshot := &entity.QueueSnapshot{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.Patient
		err := tx.Where("status = ?", entity.PatientStatusInConsultation).
			Order("called_at DESC NULLS LAST, id DESC").
			Take(&current).Error
		switch {
		case err == nil:
			snapshot.Current = &current
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		var upcoming []entity.Patient
		if err := tx.Where("status = ? AND doctor_id IS NULL", entity.PatientStatusWaiting).
			Order("id ASC").
			Limit(upcomingLimit).
			Find(&upcoming).Error; err != nil {
			return err
		}
		snapshot.Upcoming = upcoming
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (r *patientRepository) Delete(ctx context.Context, id int64) (*entity.Patient, error) {
	var patient entity.Patient
	result := r.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&patient)
	if result.Error != nil {
		return nil, fmt.Errorf("delete patient %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &patient, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
