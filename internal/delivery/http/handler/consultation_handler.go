package handler

import (
	"encoding/json"
	"net/http"

	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/usecase"
	"noq-clinic-queue/pkg/response"
	"noq-clinic-queue/pkg/validator"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
	}
}

func (h *ConsultationHandler) Record(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.RecordConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.consultationUsecase.RecordConsultation(r.Context(), doctorID, &req)
	if err != nil {
		switch err {
		case usecase.ErrDiseaseRequired:
			response.ValidationError(w, map[string]string{"disease": "disease is required"})
		case usecase.ErrInvalidOutcome:
			response.ValidationError(w, map[string]string{"outcome": "outcome must be one of: completed, skipped"})
		case usecase.ErrConsultationNotOwned:
			response.Conflict(w, "Patient is not in consultation with you")
		default:
			response.InternalServerError(w, "Failed to record consultation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultation recorded successfully", patient)
}
