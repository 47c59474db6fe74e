package entity

import (
	"time"

	"clinic-booking/internal/domain/schedule"
)

// Doctor is a bookable practitioner with a recurring weekly availability
type Doctor struct {
	ID           int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string                      `gorm:"type:varchar(255);not null;index" json:"name"`
	Specialty    string                      `gorm:"type:varchar(255);not null" json:"specialty"`
	Availability schedule.WeeklyAvailability `gorm:"embedded;embeddedPrefix:available_" json:"-"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}
