package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"noq-clinic-queue/config"
	"noq-clinic-queue/internal/delivery/http/handler"
	"noq-clinic-queue/internal/delivery/http/middleware"
	"noq-clinic-queue/internal/domain/entity"
	"noq-clinic-queue/internal/infrastructure/metrics"
	"noq-clinic-queue/internal/repository"
	"noq-clinic-queue/internal/service"
	"noq-clinic-queue/internal/usecase"
	"noq-clinic-queue/pkg/jwt"
	"noq-clinic-queue/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	server   *httptest.Server
	jwt      *jwt.JWTService
	sessions service.SessionStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	patients := repository.NewMemoryPatientRepository()
	users := repository.NewMemoryUserRepository()
	auditLogs := repository.NewMemoryAuditLogRepository()

	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "router-test-secret", AccessExpiry: time.Hour})
	sessions := service.NewMemorySessionStore()
	collector := metrics.NewCollector()
	auditService := service.NewAuditService(log, auditLogs)
	customValidator := validator.NewValidator()
	queueCfg := config.QueueConfig{TokenPrefix: "A", UpcomingLimit: 5, PollInterval: 3 * time.Second}

	authUsecase := usecase.NewAuthUsecase(log, users, jwtService, sessions, auditService)
	queueUsecase := usecase.NewQueueUsecase(log, patients, service.NewTokenGenerator("A"), auditService, collector, time.UTC)
	consultationUsecase := usecase.NewConsultationUsecase(log, patients, auditService, collector)
	statusUsecase := usecase.NewStatusUsecase(log, patients, queueCfg)
	notificationUsecase := usecase.NewNotificationUsecase(log, patients, service.NewLogNotificationPublisher(log), auditService)

	router := NewRouter(
		handler.NewAuthHandler(authUsecase, customValidator),
		handler.NewPatientHandler(queueUsecase, notificationUsecase, customValidator),
		handler.NewQueueHandler(queueUsecase, statusUsecase),
		handler.NewConsultationHandler(consultationUsecase, customValidator),
		handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(log, auditLogs), customValidator),
		middleware.NewAuthMiddleware(jwtService, sessions, log),
		middleware.NewCORSMiddleware("https://display.clinic.test"),
		middleware.NewMetricsMiddleware(collector),
		collector.Handler(),
	)

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)

	return &testServer{server: srv, jwt: jwtService, sessions: sessions}
}

// tokenFor issues a live session for a fresh principal with the given role
func (s *testServer) tokenFor(t *testing.T, role string) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, tokenID, err := s.jwt.GenerateAccessToken(userID, userID.String()+"@clinic.test", role)
	require.NoError(t, err)
	require.NoError(t, s.sessions.Save(context.Background(), userID, tokenID, time.Hour))
	return token, userID
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func TestVisitFlow(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "Dr. Rao", "email": "rao@clinic.test", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "rao@clinic.test", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, env, &tokens)
	require.NotEmpty(t, tokens.AccessToken)

	resp, env = s.do(t, http.MethodPost, "/api/v1/patients/register", "", map[string]string{
		"name": "Asha", "phone": "5550100", "department": "ENT",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var registered struct {
		ID    int64  `json:"id"`
		Token string `json:"token"`
	}
	decodeData(t, env, &registered)
	assert.Regexp(t, `^A[1-9][0-9]{2}$`, registered.Token)

	resp, env = s.do(t, http.MethodPost, "/api/v1/queue/next", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var claim struct {
		Claimed bool `json:"claimed"`
		Patient struct {
			ID int64 `json:"id"`
		} `json:"patient"`
	}
	decodeData(t, env, &claim)
	assert.True(t, claim.Claimed)
	assert.Equal(t, registered.ID, claim.Patient.ID)

	resp, env = s.do(t, http.MethodGet, "/api/v1/queue/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	var status struct {
		Current *struct {
			Token string `json:"token"`
		} `json:"current"`
		Upcoming []json.RawMessage `json:"upcoming"`
	}
	decodeData(t, env, &status)
	require.NotNil(t, status.Current)
	assert.Equal(t, registered.Token, status.Current.Token)
	assert.Empty(t, status.Upcoming)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/consultations", tokens.AccessToken, map[string]interface{}{
		"patient_id": registered.ID, "disease": "Flu", "medicine": "Rest",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = s.do(t, http.MethodGet, "/api/v1/patients/today", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var today struct {
		Total int `json:"total"`
	}
	decodeData(t, env, &today)
	assert.Equal(t, 1, today.Total)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = s.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", env.Message)
}

func TestClaimNext_EmptyQueue(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.tokenFor(t, entity.RoleDoctor)

	resp, env := s.do(t, http.MethodPost, "/api/v1/queue/next", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "No patients waiting", env.Message)

	var claim struct {
		Claimed bool `json:"claimed"`
	}
	decodeData(t, env, &claim)
	assert.False(t, claim.Claimed)
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/queue/waiting", "/api/v1/queue/active", "/api/v1/patients/today", "/api/v1/auth/me"} {
		resp, _ := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp, _ := s.do(t, http.MethodGet, "/api/v1/queue/waiting", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	s := newTestServer(t)
	doctorToken, _ := s.tokenFor(t, entity.RoleDoctor)
	adminToken, _ := s.tokenFor(t, entity.RoleAdmin)

	resp, _ := s.do(t, http.MethodGet, "/api/v1/admin/audit-logs", doctorToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/admin/audit-logs", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/admin/audit-logs/999", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/admin/audit-logs?limit=abc", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/admin/audit-logs?limit=-1", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/admin/audit-logs?action=patient.register&limit=10", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// admins may also work the queue
	resp, _ = s.do(t, http.MethodGet, "/api/v1/queue/waiting", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecordConsultation_Errors(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.tokenFor(t, entity.RoleDoctor)
	other, _ := s.tokenFor(t, entity.RoleDoctor)

	_, env := s.do(t, http.MethodPost, "/api/v1/patients/register", "", map[string]string{
		"name": "Asha", "phone": "5550100", "department": "ENT",
	})
	var registered struct {
		ID int64 `json:"id"`
	}
	decodeData(t, env, &registered)

	resp, _ := s.do(t, http.MethodPost, "/api/v1/queue/next", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/consultations", other, map[string]interface{}{
		"patient_id": registered.ID, "disease": "Flu",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = s.do(t, http.MethodPost, "/api/v1/consultations", owner, map[string]interface{}{
		"patient_id": registered.ID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(env.Error), "disease")

	resp, env = s.do(t, http.MethodPost, "/api/v1/consultations", owner, map[string]interface{}{
		"patient_id": registered.ID, "outcome": "cancelled",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(env.Error), "outcome")

	resp, _ = s.do(t, http.MethodPost, "/api/v1/consultations", owner, map[string]interface{}{
		"patient_id": registered.ID, "outcome": "skipped",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterPatient_Validation(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/api/v1/patients/register", "", map[string]string{
		"name": "Asha", "email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &fields))
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "department")
	assert.Contains(t, fields, "email")
}

func TestRegisterPatient_BlankFieldsRejected(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/api/v1/patients/register", "", map[string]string{
		"name": "   ", "phone": "5550100", "department": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &fields))
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "department")

	// nothing was queued
	token, _ := s.tokenFor(t, entity.RoleDoctor)
	resp, env = s.do(t, http.MethodGet, "/api/v1/queue/waiting", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var waiting struct {
		Total int `json:"total"`
	}
	decodeData(t, env, &waiting)
	assert.Zero(t, waiting.Total)
}

func TestDeleteAndNotifyPatient(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.tokenFor(t, entity.RoleDoctor)

	_, env := s.do(t, http.MethodPost, "/api/v1/patients/register", "", map[string]string{
		"name": "Asha", "phone": "5550100", "department": "ENT",
	})
	var registered struct {
		ID int64 `json:"id"`
	}
	decodeData(t, env, &registered)
	path := "/api/v1/patients/" + strconv.FormatInt(registered.ID, 10)

	resp, _ := s.do(t, http.MethodPost, path+"/notify", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, path+"/notify", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, s.server.URL+"/api/v1/queue/status", nil)
	require.NoError(t, err)
	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://display.clinic.test", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := s.server.Client().Get(s.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `noq_http_requests_total{method="GET",route="/api/v1/health",status_code="200"} 1`)
}
