package usecase

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/schedule"
	repoImpl "clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/metrics"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// clinicZone stands in for the configured clinic time zone
var clinicZone = time.FixedZone("ICT", 7*60*60)

// monday is 2024-06-03, a Monday
const monday = "2024-06-03"

type testEnv struct {
	db      *gorm.DB
	log     *logrus.Logger
	metrics *metrics.Metrics

	patientRepo     repository.PatientRepository
	userRepo        repository.UserRepository
	doctorRepo      repository.DoctorRepository
	subjectRepo     repository.SubjectRepository
	appointmentRepo repository.AppointmentRepository
	auditLogRepo    repository.AuditLogRepository

	audit      service.AuditService
	slotCache  service.SlotCache
	tokenStore service.TokenStore
	jwt        *jwt.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
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
		&entity.Patient{},
		&entity.User{},
		&entity.Doctor{},
		&entity.Subject{},
		&entity.Appointment{},
		&entity.AuditLog{},
	))

	log := logrus.New()
	log.SetOutput(io.Discard)

	auditLogRepo := repoImpl.NewAuditLogRepository()

	return &testEnv{
		db:              db,
		log:             log,
		metrics:         metrics.NewNop(),
		patientRepo:     repoImpl.NewPatientRepository(),
		userRepo:        repoImpl.NewUserRepository(),
		doctorRepo:      repoImpl.NewDoctorRepository(),
		subjectRepo:     repoImpl.NewSubjectRepository(),
		appointmentRepo: repoImpl.NewAppointmentRepository(),
		auditLogRepo:    auditLogRepo,
		audit:           service.NewAuditService(log, auditLogRepo),
		slotCache:       service.NewMemorySlotCache(time.Minute),
		tokenStore:      service.NewMemoryTokenStore(),
		jwt: jwt.NewJWTService(config.JWTConfig{
			Secret:        "test-secret",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
		}),
	}
}

func (e *testEnv) appointments() AppointmentUsecase {
	return NewAppointmentUsecase(e.db, e.log, e.appointmentRepo, e.doctorRepo, e.subjectRepo, e.audit, e.slotCache, e.metrics)
}

func (e *testEnv) slots(now time.Time) SlotUsecase {
	return NewSlotUsecase(e.db, e.log, e.doctorRepo, e.appointmentRepo, e.slotCache, e.metrics, clinicZone,
		func() time.Time { return now })
}

func (e *testEnv) doctors() DoctorUsecase {
	return NewDoctorUsecase(e.db, e.log, e.doctorRepo, e.appointmentRepo, e.audit, e.slotCache)
}

func (e *testEnv) subjects() SubjectUsecase {
	return NewSubjectUsecase(e.db, e.log, e.subjectRepo, e.appointmentRepo, e.audit)
}

func (e *testEnv) auth() AuthUsecase {
	return NewAuthUsecase(e.db, e.log, e.patientRepo, e.userRepo, e.audit, e.jwt, e.tokenStore)
}

func (e *testEnv) createPatient(t *testing.T, name, phone string) *entity.Patient {
	t.Helper()
	patient := &entity.Patient{Name: name, Phone: phone, Password: "x"}
	require.NoError(t, e.patientRepo.Create(e.db, patient))
	return patient
}

// createDoctor stores a doctor available per the legacy text form, e.g. "Monday | 09:00 - 10:00"
func (e *testEnv) createDoctor(t *testing.T, name, availableTime string) *entity.Doctor {
	t.Helper()
	doctor := &entity.Doctor{Name: name, Specialty: "General"}
	if availableTime != "" {
		avail, err := schedule.Parse(availableTime)
		require.NoError(t, err)
		doctor.Availability = avail
	}
	require.NoError(t, e.doctorRepo.Create(e.db, doctor))
	return doctor
}

func (e *testEnv) createSubject(t *testing.T, title string) *entity.Subject {
	t.Helper()
	subject := &entity.Subject{Title: title}
	require.NoError(t, e.subjectRepo.Create(e.db, subject))
	return subject
}

func asPatient(p *entity.Patient) context.Context {
	return middleware.WithIdentity(context.Background(), entity.Identity{ID: p.ID, Name: p.Name, Role: entity.RolePatient})
}

func asStaff(id int64) context.Context {
	return middleware.WithIdentity(context.Background(), entity.Identity{ID: id, Name: "desk", Role: entity.RoleStaff})
}

func asAdmin(id int64) context.Context {
	return middleware.WithIdentity(context.Background(), entity.Identity{ID: id, Name: "admin", Role: entity.RoleAdmin})
}

func int64Ptr(v int64) *int64 { return &v }
