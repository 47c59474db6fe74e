package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentNotOwned = errors.New("appointment does not belong to you")
	ErrSlotTaken           = errors.New("this slot has just been booked by someone else")
	ErrDuplicateBooking    = errors.New("you have already booked this slot")
	ErrSlotOutsideSchedule = errors.New("slot is outside the doctor's schedule")
)

type AppointmentUsecase interface {
	Book(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, id int64) error
	CheckIn(ctx context.Context, id int64) error
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	SearchByPhone(ctx context.Context, phone string) (*dto.AppointmentListResponse, error)
	GetCalendarEvents(ctx context.Context) ([]dto.CalendarEvent, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	subjectRepo     repository.SubjectRepository
	auditService    service.AuditService
	slotCache       service.SlotCache
	metrics         *metrics.Metrics
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	subjectRepo repository.SubjectRepository,
	auditService service.AuditService,
	slotCache service.SlotCache,
	m *metrics.Metrics,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		subjectRepo:     subjectRepo,
		auditService:    auditService,
		slotCache:       slotCache,
		metrics:         m,
	}
}

// Book reserves a slot for the calling patient.
//
// Flow (one transaction):
// 1. Validate doctor, subject and that the slot lies on the doctor's grid
// 2. A Confirmed row for the slot held by another patient -> ErrSlotTaken
// 3. A Confirmed row held by the caller -> ErrDuplicateBooking
// 4. Insert; losing the race on the partial unique index -> ErrSlotTaken
func (u *appointmentUsecase) Book(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if caller.Role != entity.RolePatient {
		return nil, ErrForbidden
	}

	appointment, err := u.book(ctx, caller, req)
	u.metrics.BookingsTotal.WithLabelValues(bookingOutcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	if err := u.slotCache.Invalidate(ctx, appointment.DoctorID); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %d: %+v", appointment.DoctorID, err)
	}

	u.log.Infof("Appointment booked: id=%d, doctor=%d, slot=%s", appointment.ID, appointment.DoctorID, appointment.SlotKey())
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) book(ctx context.Context, caller entity.Identity, req *dto.CreateAppointmentRequest) (*entity.Appointment, error) {
	date, err := time.Parse(schedule.DateLayout, req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	slot, err := schedule.ParseTimeOfDay(req.AppointmentTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	clock := slot.String()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByIDForShare(tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	var subject *entity.Subject
	if req.SubjectID != nil {
		subject, err = u.subjectRepo.FindByID(tx, *req.SubjectID)
		if err != nil {
			u.log.Warnf("Failed to find subject %d: %+v", *req.SubjectID, err)
			return nil, err
		}
		if subject == nil {
			return nil, ErrSubjectNotFound
		}
	}

	if !doctor.Availability.Covers(date, slot) {
		return nil, ErrSlotOutsideSchedule
	}

	existing, err := u.appointmentRepo.FindConfirmedBySlot(tx, doctor.ID, req.AppointmentDate, clock)
	if err != nil {
		u.log.Warnf("Failed to check slot occupancy: %+v", err)
		return nil, err
	}
	if existing != nil {
		if existing.PatientID == caller.ID {
			return nil, ErrDuplicateBooking
		}
		return nil, ErrSlotTaken
	}

	appointment := &entity.Appointment{
		PatientID:       caller.ID,
		DoctorID:        doctor.ID,
		SubjectID:       req.SubjectID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: clock,
		Status:          entity.AppointmentStatusConfirmed,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isDuplicateKeyError(err, "idx_appointments_confirmed_slot") {
			return nil, ErrSlotTaken
		}
		// the doctor row is share-locked and patients are never deleted, so only
		// a subject removed since the lookup can fail the foreign key
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrSubjectNotFound
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &caller, entity.AuditActionAppointmentBook, "appointment", appointment.ID,
		map[string]interface{}{
			"doctor_id":        appointment.DoctorID,
			"subject_id":       appointment.SubjectID,
			"appointment_date": appointment.AppointmentDate,
			"appointment_time": appointment.AppointmentTime,
		}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		if isDuplicateKeyError(err, "idx_appointments_confirmed_slot") {
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment.Doctor = *doctor
	appointment.Subject = subject
	return appointment, nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeBooked
	case errors.Is(err, ErrSlotTaken):
		return metrics.OutcomeSlotTaken
	case errors.Is(err, ErrDuplicateBooking):
		return metrics.OutcomeDuplicate
	case errors.Is(err, ErrDoctorNotFound), errors.Is(err, ErrSubjectNotFound),
		errors.Is(err, ErrSlotOutsideSchedule), errors.Is(err, ErrInvalidDateFormat),
		errors.Is(err, ErrInvalidTimeFormat):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

// Cancel frees the slot. Patients may cancel only their own appointments;
// staff and admin may cancel any. The current status is not checked.
func (u *appointmentUsecase) Cancel(ctx context.Context, id int64) error {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return err
	}

	return u.changeStatus(ctx, caller, id, entity.AppointmentStatusCancelled, entity.AuditActionAppointmentCancel,
		func(appointment *entity.Appointment) error {
			switch {
			case caller.Role.IsStaff():
				return nil
			case caller.Role == entity.RolePatient && appointment.PatientID == caller.ID:
				return nil
			default:
				return ErrAppointmentNotOwned
			}
		})
}

// CheckIn marks an appointment as attended. It may be repeated and applies to
// any status.
func (u *appointmentUsecase) CheckIn(ctx context.Context, id int64) error {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return err
	}
	if !caller.Role.IsStaff() {
		return ErrForbidden
	}

	return u.changeStatus(ctx, caller, id, entity.AppointmentStatusCheckedIn, entity.AuditActionAppointmentCheckIn, nil)
}

func (u *appointmentUsecase) changeStatus(
	ctx context.Context,
	caller entity.Identity,
	id int64,
	status entity.AppointmentStatus,
	action string,
	authorize func(*entity.Appointment) error,
) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if authorize != nil {
		if err := authorize(appointment); err != nil {
			return err
		}
	}

	updated, err := u.appointmentRepo.UpdateStatus(tx, id, status)
	if err != nil {
		u.log.Warnf("Failed to update appointment %d to %s: %+v", id, status, err)
		return err
	}
	if updated == 0 {
		return ErrAppointmentNotFound
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller, action, "appointment", id,
		map[string]interface{}{"status": appointment.Status},
		map[string]interface{}{"status": status}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.metrics.AppointmentChanges.WithLabelValues(string(status)).Inc()

	if err := u.slotCache.Invalidate(ctx, appointment.DoctorID); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %d: %+v", appointment.DoctorID, err)
	}

	return nil
}

func (u *appointmentUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), caller.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %d: %+v", caller.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) SearchByPhone(ctx context.Context, phone string) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByPatientPhone(u.db.WithContext(ctx), phone)
	if err != nil {
		u.log.Warnf("Failed to search appointments by phone: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetCalendarEvents(ctx context.Context) ([]dto.CalendarEvent, error) {
	appointments, err := u.appointmentRepo.FindAllConfirmed(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find confirmed appointments: %+v", err)
		return nil, err
	}

	return converter.AppointmentsToCalendarEvents(appointments), nil
}
