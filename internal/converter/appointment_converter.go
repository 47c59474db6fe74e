package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

const (
	CalendarEventColor  = "#007bff"
	UnspecifiedSubject  = "Unspecified"
	calendarTitlePrefix = "Dr. "
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Related names are filled only when the relation was preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		SubjectID:       appointment.SubjectID,
		AppointmentDate: appointment.AppointmentDate,
		AppointmentTime: appointment.AppointmentTime,
		Status:          string(appointment.Status),
		CreatedAt:       appointment.CreatedAt,
	}

	if appointment.Patient.ID != 0 {
		response.PatientName = appointment.Patient.Name
		response.PatientPhone = appointment.Patient.Phone
	}
	if appointment.Doctor.ID != 0 {
		response.DoctorName = appointment.Doctor.Name
		response.Specialty = appointment.Doctor.Specialty
	}
	if appointment.Subject != nil {
		response.SubjectTitle = appointment.Subject.Title
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// AppointmentToCalendarEvent renders a Confirmed appointment for the staff calendar
func AppointmentToCalendarEvent(appointment *entity.Appointment) dto.CalendarEvent {
	subjectTitle := UnspecifiedSubject
	if appointment.Subject != nil {
		subjectTitle = appointment.Subject.Title
	}

	return dto.CalendarEvent{
		Title: calendarTitlePrefix + appointment.Doctor.Name,
		Start: appointment.AppointmentDate + "T" + appointment.AppointmentTime,
		Color: CalendarEventColor,
		ExtendedProps: dto.CalendarEventDetails{
			PatientName:     appointment.Patient.Name,
			DoctorName:      appointment.Doctor.Name,
			SubjectTitle:    subjectTitle,
			AppointmentDate: appointment.AppointmentDate,
			AppointmentTime: appointment.AppointmentTime,
		},
	}
}

func AppointmentsToCalendarEvents(appointments []entity.Appointment) []dto.CalendarEvent {
	events := make([]dto.CalendarEvent, len(appointments))
	for i := range appointments {
		events[i] = AppointmentToCalendarEvent(&appointments[i])
	}
	return events
}
