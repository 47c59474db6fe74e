package entity

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusCheckedIn AppointmentStatus = "CheckedIn"
)

// Appointment is one booked slot. At most one Confirmed row may exist per
// (doctor_id, appointment_date, appointment_time); the partial unique index below enforces it.
type Appointment struct {
	ID              int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID       int64             `gorm:"not null;index" json:"patient_id"`
	DoctorID        int64             `gorm:"not null;index;uniqueIndex:idx_appointments_confirmed_slot,where:status = 'Confirmed'" json:"doctor_id"`
	SubjectID       *int64            `gorm:"index" json:"subject_id,omitempty"`
	AppointmentDate string            `gorm:"type:varchar(10);not null;uniqueIndex:idx_appointments_confirmed_slot,where:status = 'Confirmed'" json:"appointment_date"`
	AppointmentTime string            `gorm:"type:varchar(5);not null;uniqueIndex:idx_appointments_confirmed_slot,where:status = 'Confirmed'" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient Patient  `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
	Doctor  Doctor   `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"doctor,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:SET NULL" json:"subject,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsConfirmed checks if the appointment still occupies its slot
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// SlotKey returns the "date|time" key used for occupancy lookups
func (a *Appointment) SlotKey() string {
	return a.AppointmentDate + "|" + a.AppointmentTime
}
