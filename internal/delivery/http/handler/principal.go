package handler

import (
	"net/http"
	"strconv"

	"noq-clinic-queue/internal/delivery/http/middleware"
	"noq-clinic-queue/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// doctorIDFromRequest writes a 401 and returns false when the request carries no principal.
func doctorIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return uuid.Nil, false
	}
	return doctorID, true
}

func patientIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	patientID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || patientID <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return 0, false
	}
	return patientID, true
}
