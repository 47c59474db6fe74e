package repository

import (
	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int64) (*entity.Appointment, error)
	FindConfirmedBySlot(db *gorm.DB, doctorID int64, date, time string) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID int64) ([]entity.Appointment, error)
	FindByPatientPhone(db *gorm.DB, phone string) ([]entity.Appointment, error)
	FindAllConfirmed(db *gorm.DB) ([]entity.Appointment, error)
	FindConfirmedSlotsByDoctor(db *gorm.DB, doctorID int64) (map[string]int64, error)
	CountConfirmedByDoctor(db *gorm.DB, doctorID int64) (int64, error)
	UpdateStatus(db *gorm.DB, id int64, status entity.AppointmentStatus) (int64, error)
	ClearSubject(db *gorm.DB, subjectID int64) (int64, error)
}
