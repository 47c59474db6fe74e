package usecase

import (
	"context"
	"errors"
	"strings"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound          = errors.New("doctor not found")
	ErrDoctorHasActiveBookings = errors.New("doctor still has confirmed appointments")
	ErrInvalidTimeRange        = errors.New("available start must be before available end")
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, id int64) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, id int64) error
}

type doctorUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
	slotCache       service.SlotCache
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	slotCache service.SlotCache,
) DoctorUsecase {
	return &doctorUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		slotCache:       slotCache,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	availability, err := availabilityFromRequest(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor := &entity.Doctor{
		Name:         strings.TrimSpace(req.Name),
		Specialty:    strings.TrimSpace(req.Specialty),
		Availability: availability,
	}

	if err := u.doctorRepo.Create(tx, doctor); err != nil {
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &caller, entity.AuditActionDoctorCreate, "doctor", doctor.ID,
		converter.DoctorToResponse(doctor)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

// availabilityFromRequest prefers the structured fields and falls back to the
// legacy text form. Incomplete or unparsable text leaves the doctor unspecified.
func availabilityFromRequest(req *dto.CreateDoctorRequest) (schedule.WeeklyAvailability, error) {
	structured := len(req.AvailableDays) > 0 || req.AvailableStart != "" || req.AvailableEnd != ""

	var (
		availability schedule.WeeklyAvailability
		err          error
	)
	switch {
	case structured:
		availability, err = schedule.NewWeeklyAvailability(req.AvailableDays, req.AvailableStart, req.AvailableEnd)
		if err != nil {
			return schedule.WeeklyAvailability{}, ErrInvalidTimeFormat
		}
	case strings.TrimSpace(req.AvailableTime) != "":
		availability, err = schedule.Parse(req.AvailableTime)
		if err != nil {
			return schedule.WeeklyAvailability{}, nil
		}
	}

	if !availability.Days.Empty() && availability.Start >= availability.End {
		return schedule.WeeklyAvailability{}, ErrInvalidTimeRange
	}
	return availability, nil
}

func (u *doctorUsecase) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id int64) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

// DeleteDoctor removes a doctor with no Confirmed appointments. Cancelled and
// checked-in history goes with it through the foreign key cascade.
func (u *doctorUsecase) DeleteDoctor(ctx context.Context, id int64) error {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// bookings hold a share lock on the doctor, so none can commit past the count
	doctor, err := u.doctorRepo.FindByIDForUpdate(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", id, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	active, err := u.appointmentRepo.CountConfirmedByDoctor(tx, id)
	if err != nil {
		u.log.Warnf("Failed to count confirmed appointments for doctor %d: %+v", id, err)
		return err
	}
	if active > 0 {
		return ErrDoctorHasActiveBookings
	}

	deleted, err := u.doctorRepo.Delete(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete doctor %d: %+v", id, err)
		return err
	}
	if deleted == 0 {
		return ErrDoctorNotFound
	}

	if err := u.auditService.LogDelete(ctx, tx, &caller, entity.AuditActionDoctorDelete, "doctor", id,
		converter.DoctorToResponse(doctor)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	if err := u.slotCache.Invalidate(ctx, id); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %d: %+v", id, err)
	}

	return nil
}
