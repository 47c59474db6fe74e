package repository

import (
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type subjectRepository struct{}

func NewSubjectRepository() domainRepo.SubjectRepository {
	return &subjectRepository{}
}

func (r *subjectRepository) Create(db *gorm.DB, subject *entity.Subject) error {
	return db.Create(subject).Error
}

func (r *subjectRepository) FindByID(db *gorm.DB, id int64) (*entity.Subject, error) {
	var subject entity.Subject
	err := db.Where("id = ?", id).First(&subject).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepository) FindAll(db *gorm.DB) ([]entity.Subject, error) {
	var subjects []entity.Subject
	err := db.Order("title ASC").Find(&subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.Subject{}).Count(&count).Error
	return count, err
}

func (r *subjectRepository) Delete(db *gorm.DB, id int64) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Subject{})
	return result.RowsAffected, result.Error
}
