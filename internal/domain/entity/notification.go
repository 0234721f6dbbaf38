package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientNotification is the message handed to the external mailer.
type PatientNotification struct {
	PatientID   int64         `json:"patient_id"`
	Token       string        `json:"token"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Department  string        `json:"department"`
	Status      PatientStatus `json:"status"`
	Disease     string        `json:"disease,omitempty"`
	Medicine    string        `json:"medicine,omitempty"`
	Remarks     string        `json:"remarks,omitempty"`
	ConsultedAt *time.Time    `json:"consulted_at,omitempty"`
	DoctorID    uuid.UUID     `json:"doctor_id"`
	RequestedAt time.Time     `json:"requested_at"`
}
