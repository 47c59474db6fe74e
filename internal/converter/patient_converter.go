package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}
	return &dto.PatientResponse{
		ID:        patient.ID,
		Name:      patient.Name,
		Phone:     patient.Phone,
		CreatedAt: patient.CreatedAt,
	}
}
