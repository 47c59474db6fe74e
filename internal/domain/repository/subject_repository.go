package repository

import (
	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type SubjectRepository interface {
	Create(db *gorm.DB, subject *entity.Subject) error
	FindByID(db *gorm.DB, id int64) (*entity.Subject, error)
	FindAll(db *gorm.DB) ([]entity.Subject, error)
	Count(db *gorm.DB) (int64, error)
	Delete(db *gorm.DB, id int64) (int64, error)
}
