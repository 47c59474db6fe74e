package repository

import (
	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id int64) (*entity.Doctor, error)
	// FindByIDForUpdate locks the row until the transaction ends; deletes take it
	FindByIDForUpdate(db *gorm.DB, id int64) (*entity.Doctor, error)
	// FindByIDForShare blocks a concurrent FindByIDForUpdate; bookings take it
	FindByIDForShare(db *gorm.DB, id int64) (*entity.Doctor, error)
	FindAll(db *gorm.DB) ([]entity.Doctor, error)
	Delete(db *gorm.DB, id int64) (int64, error)
}
