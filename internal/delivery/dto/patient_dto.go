package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterPatientRequest struct {
	Name       string `json:"name" validate:"required,notblank,max=255"`
	Phone      string `json:"phone" validate:"required,notblank,min=6,max=20"`
	Email      string `json:"email" validate:"omitempty,email,max=255"`
	Department string `json:"department" validate:"required,notblank,max=100"`
}

// Response DTOs

type RegisterPatientResponse struct {
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

// PatientSummary is what a doctor sees when calling a patient in.
type PatientSummary struct {
	ID         int64  `json:"id"`
	Token      string `json:"token"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department"`
}

type PatientResponse struct {
	ID          int64      `json:"id"`
	Token       string     `json:"token"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	Department  string     `json:"department"`
	Status      string     `json:"status"`
	DoctorID    *uuid.UUID `json:"doctor_id,omitempty"`
	Disease     string     `json:"disease,omitempty"`
	Medicine    string     `json:"medicine,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
	CalledAt    *time.Time `json:"called_at,omitempty"`
	ConsultedAt *time.Time `json:"consulted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}

type ActivePatientResponse struct {
	Active  bool             `json:"active"`
	Patient *PatientResponse `json:"patient,omitempty"`
}

type NotificationResponse struct {
	PatientID int64  `json:"patient_id"`
	Email     string `json:"email"`
	Queued    bool   `json:"queued"`
}
