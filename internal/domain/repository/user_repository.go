package repository

import (
	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByID(db *gorm.DB, id int64) (*entity.User, error)
	FindByUsername(db *gorm.DB, username string) (*entity.User, error)
}
