package dto

import "github.com/google/uuid"

// ClaimResponse is returned by claim-next. Claimed is false when nobody is
// waiting, which is not an error.
type ClaimResponse struct {
	Claimed bool            `json:"claimed"`
	Message string          `json:"message,omitempty"`
	Patient *PatientSummary `json:"patient,omitempty"`
}

// QueueEntry is the public view of a patient: no name or phone.
type QueueEntry struct {
	Token      string     `json:"token"`
	Department string     `json:"department"`
	DoctorID   *uuid.UUID `json:"doctor_id,omitempty"`
}

type QueueStatusResponse struct {
	Current             *QueueEntry  `json:"current"`
	Upcoming            []QueueEntry `json:"upcoming"`
	PollIntervalSeconds int          `json:"poll_interval_seconds"`
}
