package http

import (
	"net/http"

	"noq-clinic-queue/internal/delivery/http/handler"
	"noq-clinic-queue/internal/delivery/http/middleware"
	"noq-clinic-queue/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	patientHandler      *handler.PatientHandler
	queueHandler        *handler.QueueHandler
	consultationHandler *handler.ConsultationHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	metricsMiddleware   *middleware.MetricsMiddleware
	metricsHandler      http.Handler
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	queueHandler *handler.QueueHandler,
	consultationHandler *handler.ConsultationHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	metricsMiddleware *middleware.MetricsMiddleware,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		patientHandler:      patientHandler,
		queueHandler:        queueHandler,
		consultationHandler: consultationHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		metricsMiddleware:   metricsMiddleware,
		metricsHandler:      metricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	// CORS preflight for every path
	r.router.PathPrefix("/").Methods(http.MethodOptions).Handler(r.corsMiddleware.Handle(http.NotFoundHandler()))

	// Prometheus scrape endpoint
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", r.authHandler.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Patient kiosk and public display (public)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.HandleFunc("/register", r.patientHandler.Register).Methods(http.MethodPost)

	queue := api.PathPrefix("/queue").Subrouter()
	queue.HandleFunc("/status", r.queueHandler.Status).Methods(http.MethodGet)

	// Doctor routes (protected - doctor or admin)
	doctorQueue := api.PathPrefix("/queue").Subrouter()
	doctorQueue.Use(r.authMiddleware.Authenticate)
	doctorQueue.Use(middleware.RequireStaff)
	doctorQueue.HandleFunc("/next", r.queueHandler.ClaimNext).Methods(http.MethodPost)
	doctorQueue.HandleFunc("/waiting", r.queueHandler.ListWaiting).Methods(http.MethodGet)
	doctorQueue.HandleFunc("/active", r.queueHandler.GetActive).Methods(http.MethodGet)

	doctorPatients := api.PathPrefix("/patients").Subrouter()
	doctorPatients.Use(r.authMiddleware.Authenticate)
	doctorPatients.Use(middleware.RequireStaff)
	doctorPatients.HandleFunc("/today", r.patientHandler.GetToday).Methods(http.MethodGet)
	doctorPatients.HandleFunc("/{id:[0-9]+}", r.patientHandler.Delete).Methods(http.MethodDelete)
	doctorPatients.HandleFunc("/{id:[0-9]+}/notify", r.patientHandler.Notify).Methods(http.MethodPost)

	consultations := api.PathPrefix("/consultations").Subrouter()
	consultations.Use(r.authMiddleware.Authenticate)
	consultations.Use(middleware.RequireStaff)
	consultations.HandleFunc("", r.consultationHandler.Record).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(r.corsMiddleware.Handle)
	if r.metricsMiddleware != nil {
		r.router.Use(r.metricsMiddleware.Handle)
	}

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}
