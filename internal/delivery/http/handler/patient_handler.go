package handler

import (
	"encoding/json"
	"net/http"

	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/usecase"
	"noq-clinic-queue/pkg/response"
	"noq-clinic-queue/pkg/validator"
)

type PatientHandler struct {
	queueUsecase        usecase.QueueUsecase
	notificationUsecase usecase.NotificationUsecase
	validator           *validator.CustomValidator
}

func NewPatientHandler(
	queueUsecase usecase.QueueUsecase,
	notificationUsecase usecase.NotificationUsecase,
	validator *validator.CustomValidator,
) *PatientHandler {
	return &PatientHandler{
		queueUsecase:        queueUsecase,
		notificationUsecase: notificationUsecase,
		validator:           validator,
	}
}

// Register handles walk-in patient registration (public)
func (h *PatientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	registered, err := h.queueUsecase.RegisterPatient(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to register patient")
		return
	}

	response.Success(w, http.StatusCreated, "Patient registered successfully", registered)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromRequest(w, r)
	if !ok {
		return
	}
	patientID, ok := patientIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.queueUsecase.DeletePatient(r.Context(), doctorID, patientID); err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to delete patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient deleted successfully", nil)
}

func (h *PatientHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromRequest(w, r)
	if !ok {
		return
	}

	patients, err := h.queueUsecase.GetTodayPatients(r.Context(), doctorID)
	if err != nil {
		response.InternalServerError(w, "Failed to get today's patients")
		return
	}

	response.Success(w, http.StatusOK, "Today's patients retrieved successfully", patients)
}

func (h *PatientHandler) Notify(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromRequest(w, r)
	if !ok {
		return
	}
	patientID, ok := patientIDFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.notificationUsecase.NotifyPatient(r.Context(), doctorID, patientID)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrPatientHasNoEmail:
			response.UnprocessableEntity(w, "Patient has no email address")
		default:
			response.BadGateway(w, "Failed to queue notification")
		}
		return
	}

	response.Success(w, http.StatusAccepted, "Notification queued", result)
}
