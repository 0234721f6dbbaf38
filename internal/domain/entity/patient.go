package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientStatus represents where a patient is in the visit lifecycle
type PatientStatus string

const (
	PatientStatusWaiting        PatientStatus = "waiting"
	PatientStatusInConsultation PatientStatus = "in_consultation"
	PatientStatusDone           PatientStatus = "done"
	PatientStatusSkipped        PatientStatus = "skipped"
)

// ConsultationOutcome is the doctor's verdict when finalizing a visit
type ConsultationOutcome string

const (
	OutcomeCompleted ConsultationOutcome = "completed"
	OutcomeSkipped   ConsultationOutcome = "skipped"
)

// Placeholder values written when a patient does not show up.
const (
	SkippedDisease  = "Absent"
	SkippedMedicine = "-"
	SkippedRemarks  = "Patient skipped"
)

// Patient is a single visit in the clinic queue.
// DoctorID is non-nil exactly while the patient is held by, or was finalized by, a doctor.
type Patient struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Phone       string        `gorm:"type:varchar(20);not null" json:"phone"`
	Email       *string       `gorm:"type:varchar(255)" json:"email,omitempty"`
	Department  string        `gorm:"type:varchar(100);not null" json:"department"`
	Token       string        `gorm:"type:varchar(8);not null;index" json:"token"`
	Status      PatientStatus `gorm:"type:patient_status;not null;default:'waiting';index" json:"status"`
	DoctorID    *uuid.UUID    `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	Disease     *string       `gorm:"type:text" json:"disease,omitempty"`
	Medicine    *string       `gorm:"type:text" json:"medicine,omitempty"`
	Remarks     *string       `gorm:"type:text" json:"remarks,omitempty"`
	CalledAt    *time.Time    `json:"called_at,omitempty"`
	ConsultedAt *time.Time    `gorm:"index" json:"consulted_at,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// IsWaiting checks if the patient can still be claimed
func (p *Patient) IsWaiting() bool {
	return p.Status == PatientStatusWaiting && p.DoctorID == nil
}

// IsHeldBy checks if the patient is currently in consultation with the given doctor
func (p *Patient) IsHeldBy(doctorID uuid.UUID) bool {
	return p.Status == PatientStatusInConsultation && p.DoctorID != nil && *p.DoctorID == doctorID
}

// IsFinalized checks if the consultation has been recorded
func (p *Patient) IsFinalized() bool {
	switch p.Status {
	case PatientStatusDone, PatientStatusSkipped:
		return true
	case PatientStatusWaiting, PatientStatusInConsultation:
		return false
	default:
		return false
	}
}

// Valid reports whether s is one of the known statuses
func (s PatientStatus) Valid() bool {
	switch s {
	case PatientStatusWaiting, PatientStatusInConsultation, PatientStatusDone, PatientStatusSkipped:
		return true
	default:
		return false
	}
}

// ConsultationResult holds the fields written when a consultation is finalized.
type ConsultationResult struct {
	Status      PatientStatus
	Disease     string
	Medicine    string
	Remarks     string
	ConsultedAt time.Time
}

// NewConsultationResult builds the result for the given outcome. The skip
// path always writes the placeholder values regardless of what was supplied.
func NewConsultationResult(outcome ConsultationOutcome, disease, medicine, remarks string, at time.Time) (*ConsultationResult, bool) {
	switch outcome {
	case OutcomeCompleted:
		return &ConsultationResult{
			Status:      PatientStatusDone,
			Disease:     disease,
			Medicine:    medicine,
			Remarks:     remarks,
			ConsultedAt: at,
		}, true
	case OutcomeSkipped:
		return &ConsultationResult{
			Status:      PatientStatusSkipped,
			Disease:     SkippedDisease,
			Medicine:    SkippedMedicine,
			Remarks:     SkippedRemarks,
			ConsultedAt: at,
		}, true
	default:
		return nil, false
	}
}

// QueueSnapshot is a consistent read of the public queue state
type QueueSnapshot struct {
	Current  *Patient
	Upcoming []Patient
}
