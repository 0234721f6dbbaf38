package converter

import (
	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/entity"
)

// PatientToSummary converts a claimed Patient to the doctor's call-in view
func PatientToSummary(patient *entity.Patient) *dto.PatientSummary {
	if patient == nil {
		return nil
	}

	return &dto.PatientSummary{
		ID:         patient.ID,
		Token:      patient.Token,
		Name:       patient.Name,
		Phone:      patient.Phone,
		Email:      deref(patient.Email),
		Department: patient.Department,
	}
}

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:          patient.ID,
		Token:       patient.Token,
		Name:        patient.Name,
		Phone:       patient.Phone,
		Email:       deref(patient.Email),
		Department:  patient.Department,
		Status:      string(patient.Status),
		DoctorID:    patient.DoctorID,
		Disease:     deref(patient.Disease),
		Medicine:    deref(patient.Medicine),
		Remarks:     deref(patient.Remarks),
		CalledAt:    patient.CalledAt,
		ConsultedAt: patient.ConsultedAt,
		CreatedAt:   patient.CreatedAt,
	}
}

// PatientsToResponses converts a slice of Patient entities to PatientResponse DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i])
	}
	return responses
}

// PatientToQueueEntry strips a patient down to what the public display may show
func PatientToQueueEntry(patient *entity.Patient) *dto.QueueEntry {
	if patient == nil {
		return nil
	}

	return &dto.QueueEntry{
		Token:      patient.Token,
		Department: patient.Department,
		DoctorID:   patient.DoctorID,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
