package repository

import (
	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(db *gorm.DB, patient *entity.Patient) error
	FindByID(db *gorm.DB, id int64) (*entity.Patient, error)
	FindByPhone(db *gorm.DB, phone string) (*entity.Patient, error)
}
