package handler

import (
	"net/http"

	"noq-clinic-queue/internal/usecase"
	"noq-clinic-queue/pkg/response"
)

type QueueHandler struct {
	queueUsecase  usecase.QueueUsecase
	statusUsecase usecase.StatusUsecase
}

func NewQueueHandler(queueUsecase usecase.QueueUsecase, statusUsecase usecase.StatusUsecase) *QueueHandler {
	return &QueueHandler{
		queueUsecase:  queueUsecase,
		statusUsecase: statusUsecase,
	}
}

// ClaimNext assigns the next waiting patient to the calling doctor
func (h *QueueHandler) ClaimNext(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.queueUsecase.ClaimNext(r.Context(), doctorID)
	if err != nil {
		response.InternalServerError(w, "Failed to claim next patient")
		return
	}

	if !result.Claimed {
		response.Success(w, http.StatusOK, result.Message, result)
		return
	}

	response.Success(w, http.StatusOK, "Patient claimed successfully", result)
}

func (h *QueueHandler) ListWaiting(w http.ResponseWriter, r *http.Request) {
	patients, err := h.queueUsecase.ListWaiting(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get waiting patients")
		return
	}

	response.Success(w, http.StatusOK, "Waiting patients retrieved successfully", patients)
}

func (h *QueueHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromRequest(w, r)
	if !ok {
		return
	}

	active, err := h.queueUsecase.GetActivePatient(r.Context(), doctorID)
	if err != nil {
		response.InternalServerError(w, "Failed to get active patient")
		return
	}

	response.Success(w, http.StatusOK, "Active patient retrieved successfully", active)
}

// Status is the public display endpoint
func (h *QueueHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.statusUsecase.CurrentStatus(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get queue status")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	response.Success(w, http.StatusOK, "Queue status retrieved successfully", status)
}
