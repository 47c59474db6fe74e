package usecase

import (
	"context"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SlotUsecase interface {
	GetDoctorSlots(ctx context.Context, doctorID int64) (map[string][]schedule.Slot, error)
}

type slotUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	slotCache       service.SlotCache
	metrics         *metrics.Metrics
	location        *time.Location
	now             func() time.Time
}

func NewSlotUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	slotCache service.SlotCache,
	m *metrics.Metrics,
	location *time.Location,
	now func() time.Time,
) SlotUsecase {
	if now == nil {
		now = time.Now
	}
	return &slotUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		slotCache:       slotCache,
		metrics:         m,
		location:        location,
		now:             now,
	}
}

// GetDoctorSlots lists the open slots of the next schedule.HorizonDays days,
// starting today in the clinic time zone. Slots held by the caller stay listed
// and are flagged.
func (u *slotUsecase) GetDoctorSlots(ctx context.Context, doctorID int64) (map[string][]schedule.Slot, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	if !doctor.Availability.Specified() {
		return map[string][]schedule.Slot{}, nil
	}

	booked, err := u.loadOccupancy(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	// staff ids live in another table and must not match a patient's booking
	occupancy := schedule.Occupancy{Booked: booked}
	if caller.Role == entity.RolePatient {
		occupancy.CallerID = caller.ID
	}
	return schedule.Enumerate(doctor.Availability, u.now().In(u.location), schedule.HorizonDays, occupancy), nil
}

// loadOccupancy reads the doctor's Confirmed slots cache-aside. Cache failures
// degrade to the database.
func (u *slotUsecase) loadOccupancy(ctx context.Context, doctorID int64) (map[string]int64, error) {
	cached, err := u.slotCache.Load(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to load slot cache for doctor %d: %+v", doctorID, err)
		u.metrics.SlotCacheLookups.WithLabelValues("error").Inc()
	} else if cached.Hit {
		u.metrics.SlotCacheLookups.WithLabelValues("hit").Inc()
		return cached.Slots, nil
	} else {
		u.metrics.SlotCacheLookups.WithLabelValues("miss").Inc()
	}

	booked, err := u.appointmentRepo.FindConfirmedSlotsByDoctor(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find booked slots for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	if cached != nil {
		if err := u.slotCache.Store(ctx, doctorID, cached.Generation, booked); err != nil {
			u.log.Warnf("Failed to store slot cache for doctor %d: %+v", doctorID, err)
		}
	}

	return booked, nil
}
