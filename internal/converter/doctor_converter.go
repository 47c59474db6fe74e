package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	response := &dto.DoctorResponse{
		ID:            doctor.ID,
		Name:          doctor.Name,
		Specialty:     doctor.Specialty,
		AvailableDays: doctor.Availability.Days.Names(),
		AvailableTime: doctor.Availability.String(),
		CreatedAt:     doctor.CreatedAt,
	}
	if doctor.Availability.Specified() {
		response.AvailableStart = doctor.Availability.Start.String()
		response.AvailableEnd = doctor.Availability.End.String()
	}

	return response
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
