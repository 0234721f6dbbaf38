package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"noq-clinic-queue/internal/domain/entity"
	domainRepo "noq-clinic-queue/internal/domain/repository"

	"github.com/google/uuid"
)

// memoryPatientRepository keeps patients in process memory. A single RWMutex
// serializes every operation, so a claim is one indivisible select-and-update
// and FIFO order is strict. Callers always receive copies.
type memoryPatientRepository struct {
	mu       sync.RWMutex
	nextID   int64
	patients map[int64]*entity.Patient
	now      func() time.Time
}

func NewMemoryPatientRepository() domainRepo.PatientRepository {
	return &memoryPatientRepository{
		patients: make(map[int64]*entity.Patient),
		now:      time.Now,
	}
}

func (r *memoryPatientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now()
	patient.ID = r.nextID
	patient.Status = entity.PatientStatusWaiting
	patient.DoctorID = nil
	patient.CreatedAt = now
	patient.UpdatedAt = now
	r.patients[patient.ID] = clonePatient(patient)
	return nil
}

func (r *memoryPatientRepository) FindByID(ctx context.Context, id int64) (*entity.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	patient, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	return clonePatient(patient), nil
}

func (r *memoryPatientRepository) FindWaiting(ctx context.Context) ([]entity.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p *entity.Patient) bool { return p.IsWaiting() }, byID), nil
}

func (r *memoryPatientRepository) FindActiveByDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	active := r.collect(func(p *entity.Patient) bool { return p.IsHeldBy(doctorID) }, byCalledAtDesc)
	if len(active) == 0 {
		return nil, nil
	}
	return &active[0], nil
}

func (r *memoryPatientRepository) FindFinalizedByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p *entity.Patient) bool {
		if !p.IsFinalized() || p.DoctorID == nil || *p.DoctorID != doctorID || p.ConsultedAt == nil {
			return false
		}
		return !p.ConsultedAt.Before(from) && p.ConsultedAt.Before(to)
	}, byConsultedAt), nil
}

func (r *memoryPatientRepository) ClaimNextWaiting(ctx context.Context, doctorID uuid.UUID, calledAt time.Time) (*entity.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var candidate *entity.Patient
	for _, p := range r.patients {
		if !p.IsWaiting() {
			continue
		}
		if candidate == nil || p.ID < candidate.ID {
			candidate = p
		}
	}
	if candidate == nil {
		return nil, nil
	}

	holder := doctorID
	called := calledAt
	candidate.Status = entity.PatientStatusInConsultation
	candidate.DoctorID = &holder
	candidate.CalledAt = &called
	candidate.UpdatedAt = r.now()
	return clonePatient(candidate), nil
}

func (r *memoryPatientRepository) FinalizeConsultation(ctx context.Context, id int64, doctorID uuid.UUID, result *entity.ConsultationResult) (*entity.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	patient, ok := r.patients[id]
	if !ok || !patient.IsHeldBy(doctorID) {
		return nil, nil
	}

	consultedAt := result.ConsultedAt
	patient.Status = result.Status
	patient.Disease = optionalString(result.Disease)
	patient.Medicine = optionalString(result.Medicine)
	patient.Remarks = optionalString(result.Remarks)
	patient.ConsultedAt = &consultedAt
	patient.UpdatedAt = r.now()
	return clonePatient(patient), nil
}

func (r *memoryPatientRepository) ReleaseInConsultation(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var released int64
	now := r.now()
	for _, p := range r.patients {
		if p.Status != entity.PatientStatusInConsultation {
			continue
		}
		p.Status = entity.PatientStatusWaiting
		p.DoctorID = nil
		p.UpdatedAt = now
		released++
	}
	return released, nil
}

func (r *memoryPatientRepository) Snapshot(ctx context.Context, upcomingLimit int) (*entity.QueueSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := &entity.QueueSnapshot{}

	current := r.collect(func(p *entity.Patient) bool {
		return p.Status == entity.PatientStatusInConsultation
	}, byCalledAtDesc)
	if len(current) > 0 {
		snapshot.Current = &current[0]
	}

	upcoming := r.collect(func(p *entity.Patient) bool { return p.IsWaiting() }, byID)
	if upcomingLimit >= 0 && len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}
	snapshot.Upcoming = upcoming

	return snapshot, nil
}

func (r *memoryPatientRepository) Delete(ctx context.Context, id int64) (*entity.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	delete(r.patients, id)
	return clonePatient(p), nil
}

// collect must be called with r.mu held.
func (r *memoryPatientRepository) collect(match func(*entity.Patient) bool, less func(a, b *entity.Patient) bool) []entity.Patient {
	matched := make([]*entity.Patient, 0)
	for _, p := range r.patients {
		if match(p) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	out := make([]entity.Patient, len(matched))
	for i, p := range matched {
		out[i] = *clonePatient(p)
	}
	return out
}

func byID(a, b *entity.Patient) bool {
	return a.ID < b.ID
}

func byCalledAtDesc(a, b *entity.Patient) bool {
	switch {
	case a.CalledAt == nil && b.CalledAt == nil:
		return a.ID > b.ID
	case a.CalledAt == nil:
		return false
	case b.CalledAt == nil:
		return true
	case a.CalledAt.Equal(*b.CalledAt):
		return a.ID > b.ID
	default:
		return a.CalledAt.After(*b.CalledAt)
	}
}

func byConsultedAt(a, b *entity.Patient) bool {
	if a.ConsultedAt.Equal(*b.ConsultedAt) {
		return a.ID < b.ID
	}
	return a.ConsultedAt.Before(*b.ConsultedAt)
}

func clonePatient(p *entity.Patient) *entity.Patient {
	c := *p
	if p.Email != nil {
		c.Email = optionalString(*p.Email)
	}
	if p.DoctorID != nil {
		id := *p.DoctorID
		c.DoctorID = &id
	}
	if p.Disease != nil {
		c.Disease = optionalString(*p.Disease)
	}
	if p.Medicine != nil {
		c.Medicine = optionalString(*p.Medicine)
	}
	if p.Remarks != nil {
		c.Remarks = optionalString(*p.Remarks)
	}
	if p.CalledAt != nil {
		t := *p.CalledAt
		c.CalledAt = &t
	}
	if p.ConsultedAt != nil {
		t := *p.ConsultedAt
		c.ConsultedAt = &t
	}
	return &c
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
