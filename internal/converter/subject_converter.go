package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

func SubjectToResponse(subject *entity.Subject) *dto.SubjectResponse {
	if subject == nil {
		return nil
	}
	return &dto.SubjectResponse{ID: subject.ID, Title: subject.Title}
}

func SubjectsToResponses(subjects []entity.Subject) []dto.SubjectResponse {
	responses := make([]dto.SubjectResponse, len(subjects))
	for i := range subjects {
		responses[i] = *SubjectToResponse(&subjects[i])
	}
	return responses
}
