package repository

import (
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id int64) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Patient").Preload("Doctor").Preload("Subject").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindConfirmedBySlot(db *gorm.DB, doctorID int64, date, time string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status = ?",
		doctorID, date, time, entity.AppointmentStatusConfirmed).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID int64) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Doctor").Preload("Subject").
		Where("patient_id = ?", patientID).
		Order("appointment_date DESC, appointment_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindByPatientPhone is the staff search: every appointment of the patient owning phone.
func (r *appointmentRepository) FindByPatientPhone(db *gorm.DB, phone string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Joins("JOIN patients ON patients.id = appointments.patient_id").
		Where("patients.phone = ?", phone).
		Preload("Patient").Preload("Doctor").Preload("Subject").
		Order("appointments.appointment_date DESC, appointments.appointment_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindAllConfirmed(db *gorm.DB) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Patient").Preload("Doctor").Preload("Subject").
		Where("status = ?", entity.AppointmentStatusConfirmed).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindConfirmedSlotsByDoctor returns the doctor's occupied slots as "date|time" -> patient id.
func (r *appointmentRepository) FindConfirmedSlotsByDoctor(db *gorm.DB, doctorID int64) (map[string]int64, error) {
	var rows []struct {
		AppointmentDate string
		AppointmentTime string
		PatientID       int64
	}
	err := db.Model(&entity.Appointment{}).
		Select("appointment_date, appointment_time, patient_id").
		Where("doctor_id = ? AND status = ?", doctorID, entity.AppointmentStatusConfirmed).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	slots := make(map[string]int64, len(rows))
	for _, row := range rows {
		slots[row.AppointmentDate+"|"+row.AppointmentTime] = row.PatientID
	}
	return slots, nil
}

func (r *appointmentRepository) CountConfirmedByDoctor(db *gorm.DB, doctorID int64) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND status = ?", doctorID, entity.AppointmentStatusConfirmed).
		Count(&count).Error
	return count, err
}

// UpdateStatus overwrites the status unconditionally and returns the affected row count.
func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id int64, status entity.AppointmentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// ClearSubject detaches a subject that is about to be deleted from its appointments.
func (r *appointmentRepository) ClearSubject(db *gorm.DB, subjectID int64) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("subject_id = ?", subjectID).
		Update("subject_id", nil)
	return result.RowsAffected, result.Error
}
