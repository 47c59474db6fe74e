package dto

import "time"

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID        int64  `json:"doctor_id" validate:"required,gt=0"`
	SubjectID       *int64 `json:"subject_id" validate:"omitempty,gt=0"`
	AppointmentDate string `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointment_time" validate:"required,datetime=15:04"`
}

type SearchAppointmentsRequest struct {
	Phone string `validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patient_id"`
	PatientName     string    `json:"patient_name,omitempty"`
	PatientPhone    string    `json:"patient_phone,omitempty"`
	DoctorID        int64     `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	Specialty       string    `json:"specialty,omitempty"`
	SubjectID       *int64    `json:"subject_id,omitempty"`
	SubjectTitle    string    `json:"subject_title,omitempty"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// CalendarEvent is one entry of the staff calendar feed
type CalendarEvent struct {
	Title         string               `json:"title"`
	Start         string               `json:"start"`
	Color         string               `json:"color"`
	ExtendedProps CalendarEventDetails `json:"extendedProps"`
}

type CalendarEventDetails struct {
	PatientName     string `json:"patientName"`
	DoctorName      string `json:"doctorName"`
	SubjectTitle    string `json:"subjectTitle"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
}
