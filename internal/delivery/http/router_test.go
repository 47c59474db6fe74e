package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/metrics"
	"clinic-booking/pkg/validator"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

type testServer struct {
	t      *testing.T
	server *httptest.Server
	db     *gorm.DB
}

func newTestServer(t *testing.T, loginBurst int) *testServer {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.Patient{}, &entity.User{}, &entity.Doctor{},
		&entity.Subject{}, &entity.Appointment{}, &entity.AuditLog{},
	))

	log := logrus.New()
	log.SetOutput(io.Discard)

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "router-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	tokenStore := service.NewMemoryTokenStore()
	slotCache := service.NewMemorySlotCache(time.Minute)

	patientRepo := repository.NewPatientRepository()
	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	subjectRepo := repository.NewSubjectRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	auditService := service.NewAuditService(log, auditLogRepo)

	mondayMorning := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

	authUsecase := usecase.NewAuthUsecase(db, log, patientRepo, userRepo, auditService, jwtService, tokenStore)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, appointmentRepo, auditService, slotCache)
	slotUsecase := usecase.NewSlotUsecase(db, log, doctorRepo, appointmentRepo, slotCache, m, time.UTC,
		func() time.Time { return mondayMorning })
	subjectUsecase := usecase.NewSubjectUsecase(db, log, subjectRepo, appointmentRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorRepo, subjectRepo, auditService, slotCache, m)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	v := validator.NewValidator()
	router := NewRouter(
		handler.NewAuthHandler(authUsecase, v),
		handler.NewDoctorHandler(doctorUsecase, slotUsecase, v),
		handler.NewSubjectHandler(subjectUsecase, v),
		handler.NewAppointmentHandler(appointmentUsecase, v),
		handler.NewAuditLogHandler(auditLogUsecase, v),
		middleware.NewAuthMiddleware(jwtService, tokenStore, log),
		middleware.NewCORSMiddleware([]string{"*"}),
		middleware.NewRequestLogger(log, m),
		middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: rate.Limit(0), Burst: loginBurst}),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(db, &entity.User{Username: "admin", Password: string(hash), Role: entity.RoleAdmin}))
	require.NoError(t, userRepo.Create(db, &entity.User{Username: "desk", Password: string(hash), Role: entity.RoleStaff}))

	return &testServer{t: t, server: server, db: db}
}

func (s *testServer) do(method, path, token string, body interface{}) (*http.Response, []byte) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, raw
}

func (s *testServer) envelope(method, path, token string, body interface{}, wantStatus int) envelope {
	s.t.Helper()
	resp, raw := s.do(method, path, token, body)
	require.Equal(s.t, wantStatus, resp.StatusCode, string(raw))

	var env envelope
	require.NoError(s.t, json.Unmarshal(raw, &env))
	return env
}

func (s *testServer) login(path string, body interface{}) string {
	s.t.Helper()
	env := s.envelope(http.MethodPost, path, "", body, http.StatusOK)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &tokens))
	return tokens.AccessToken
}

func (s *testServer) registerAndLogin(name, phone string) string {
	s.t.Helper()
	s.envelope(http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"name": name, "phone": phone, "password": "secret1"}, http.StatusCreated)
	return s.login("/api/v1/auth/login", map[string]string{"phone": phone, "password": "secret1"})
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t, 10)

	admin := s.login("/api/v1/auth/staff/login", map[string]string{"username": "admin", "password": "admin123"})
	desk := s.login("/api/v1/auth/staff/login", map[string]string{"username": "desk", "password": "admin123"})
	alice := s.registerAndLogin("Alice", "0811111111")
	bob := s.registerAndLogin("Bob", "0822222222")

	created := s.envelope(http.MethodPost, "/api/v1/admin/doctors", admin, map[string]interface{}{
		"name":            "Anan",
		"specialty":       "Dermatology",
		"available_days":  []string{"Monday", "Wednesday"},
		"available_start": "09:00",
		"available_end":   "10:00",
	}, http.StatusCreated)
	var doctor struct {
		ID            int64  `json:"id"`
		AvailableTime string `json:"available_time"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &doctor))
	assert.Equal(t, "Monday, Wednesday | 09:00 - 10:00", doctor.AvailableTime)
	doctorPath := "/api/v1/doctors/" + itoa(doctor.ID)

	s.envelope(http.MethodGet, "/api/v1/doctors", alice, nil, http.StatusOK)

	resp, raw := s.do(http.MethodGet, doctorPath+"/slots", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var slots map[string][]struct {
		Time         string `json:"time"`
		BookedByUser bool   `json:"booked_by_user"`
	}
	require.NoError(t, json.Unmarshal(raw, &slots))
	require.Len(t, slots["2024-06-03"], 2)
	assert.Equal(t, "09:00", slots["2024-06-03"][0].Time)

	booking := map[string]interface{}{"doctor_id": doctor.ID, "appointment_date": "2024-06-03", "appointment_time": "09:00"}
	booked := s.envelope(http.MethodPost, "/api/v1/appointments", alice, booking, http.StatusCreated)
	var appointment struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(booked.Data, &appointment))
	assert.Equal(t, "Confirmed", appointment.Status)

	s.envelope(http.MethodPost, "/api/v1/appointments", alice, booking, http.StatusConflict)
	taken := s.envelope(http.MethodPost, "/api/v1/appointments", bob, booking, http.StatusConflict)
	assert.Equal(t, usecase.ErrSlotTaken.Error(), taken.Message)

	_, raw = s.do(http.MethodGet, doctorPath+"/slots", bob, nil)
	require.NoError(t, json.Unmarshal(raw, &slots))
	require.Len(t, slots["2024-06-03"], 1)
	assert.Equal(t, "09:30", slots["2024-06-03"][0].Time)

	s.envelope(http.MethodPost, "/api/v1/appointments/"+itoa(appointment.ID)+"/cancel", bob, nil, http.StatusForbidden)

	found := s.envelope(http.MethodGet, "/api/v1/staff/appointments?phone=0811111111", desk, nil, http.StatusOK)
	assert.Contains(t, string(found.Data), `"patient_name":"Alice"`)

	resp, raw = s.do(http.MethodGet, "/api/v1/staff/appointments/calendar", desk, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Dr. Anan", events[0]["title"])
	assert.Equal(t, "2024-06-03T09:00", events[0]["start"])

	s.envelope(http.MethodDelete, "/api/v1/admin/doctors/"+itoa(doctor.ID), admin, nil, http.StatusConflict)

	s.envelope(http.MethodPost, "/api/v1/staff/appointments/"+itoa(appointment.ID)+"/check-in", desk, nil, http.StatusOK)
	s.envelope(http.MethodDelete, "/api/v1/admin/doctors/"+itoa(doctor.ID), admin, nil, http.StatusOK)

	logs := s.envelope(http.MethodGet, "/api/v1/admin/audit-logs?page=1&limit=2", admin, nil, http.StatusOK)
	require.NotNil(t, logs.Meta)
	// two registrations, doctor create, book, check-in, doctor delete
	assert.EqualValues(t, 6, logs.Meta.Total)

	_, raw = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Contains(t, string(raw), `clinic_bookings_total{outcome="slot_taken"} 1`)
	assert.Contains(t, string(raw), `route="/api/v1/appointments"`)
}

func TestRouteGates(t *testing.T) {
	s := newTestServer(t, 10)

	desk := s.login("/api/v1/auth/staff/login", map[string]string{"username": "desk", "password": "admin123"})
	alice := s.registerAndLogin("Alice", "0811111111")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"doctors need a token", http.MethodGet, "/api/v1/doctors", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/doctors", "garbage", http.StatusUnauthorized},
		{"staff reads doctors", http.MethodGet, "/api/v1/doctors", desk, http.StatusOK},
		{"staff cannot list slots", http.MethodGet, "/api/v1/doctors/1/slots", desk, http.StatusForbidden},
		{"staff cannot book", http.MethodPost, "/api/v1/appointments", desk, http.StatusForbidden},
		{"patient cannot search", http.MethodGet, "/api/v1/staff/appointments?phone=1", alice, http.StatusForbidden},
		{"patient cannot see calendar", http.MethodGet, "/api/v1/staff/appointments/calendar", alice, http.StatusForbidden},
		{"staff is not admin", http.MethodPost, "/api/v1/admin/subjects", desk, http.StatusForbidden},
		{"patient is not admin", http.MethodGet, "/api/v1/admin/audit-logs", alice, http.StatusForbidden},
		{"unknown doctor", http.MethodGet, "/api/v1/doctors/999", alice, http.StatusNotFound},
		{"search needs a phone", http.MethodGet, "/api/v1/staff/appointments", desk, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, resp.StatusCode, string(raw))
		})
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	s := newTestServer(t, 10)
	alice := s.registerAndLogin("Alice", "0811111111")

	me := s.envelope(http.MethodGet, "/api/v1/auth/me", alice, nil, http.StatusOK)
	assert.Contains(t, string(me.Data), `"role":"patient"`)

	s.envelope(http.MethodPost, "/api/v1/auth/logout", alice, nil, http.StatusOK)
	s.envelope(http.MethodGet, "/api/v1/auth/me", alice, nil, http.StatusUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t, 10)

	env := s.envelope(http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"name": "Alice", "phone": "not-a-phone", "password": "123"}, http.StatusBadRequest)
	assert.Equal(t, "Validation failed", env.Message)

	s.envelope(http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"name": "Alice", "phone": "0811111111", "password": "secret1"}, http.StatusCreated)
	s.envelope(http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"name": "Alice", "phone": "0811111111", "password": "secret1"}, http.StatusConflict)
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t, 2)

	creds := map[string]string{"username": "admin", "password": "wrong"}
	var codes []int
	for i := 0; i < 3; i++ {
		resp, _ := s.do(http.MethodPost, "/api/v1/auth/staff/login", "", creds)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)

	// refresh is not behind the login limiter
	resp, _ := s.do(http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{"refresh_token": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t, 10)

	resp, _ := s.do(http.MethodOptions, "/api/v1/appointments", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(resp.Header.Get("Access-Control-Allow-Headers"), "Authorization"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
