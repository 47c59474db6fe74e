package dto

import "time"

// Request DTOs

// CreateDoctorRequest takes the weekly availability either structured
// (available_days + available_start + available_end) or as the legacy
// "Monday, Wednesday | 09:00 - 12:00" text in available_time.
type CreateDoctorRequest struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Specialty      string   `json:"specialty" validate:"required,max=255"`
	AvailableDays  []string `json:"available_days" validate:"omitempty,max=7,dive,required"`
	AvailableStart string   `json:"available_start" validate:"omitempty,datetime=15:04"`
	AvailableEnd   string   `json:"available_end" validate:"omitempty,datetime=15:04"`
	AvailableTime  string   `json:"available_time" validate:"omitempty,max=255"`
}

// Response DTOs

type DoctorResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Specialty      string    `json:"specialty"`
	AvailableDays  []string  `json:"available_days"`
	AvailableStart string    `json:"available_start,omitempty"`
	AvailableEnd   string    `json:"available_end,omitempty"`
	AvailableTime  string    `json:"available_time"`
	CreatedAt      time.Time `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
