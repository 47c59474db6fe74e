package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"
)

type SubjectHandler struct {
	subjectUsecase usecase.SubjectUsecase
	validator      *validator.CustomValidator
}

func NewSubjectHandler(subjectUsecase usecase.SubjectUsecase, validator *validator.CustomValidator) *SubjectHandler {
	return &SubjectHandler{
		subjectUsecase: subjectUsecase,
		validator:      validator,
	}
}

func (h *SubjectHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	subject, err := h.subjectUsecase.CreateSubject(r.Context(), &req)
	if err != nil {
		if accessError(w, err) {
			return
		}
		if errors.Is(err, usecase.ErrSubjectExists) {
			response.Conflict(w, "Subject already exists")
			return
		}
		response.InternalServerError(w, "Failed to create subject")
		return
	}

	response.Success(w, http.StatusCreated, "Subject created successfully", subject)
}

func (h *SubjectHandler) GetAllSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.subjectUsecase.ListSubjects(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get subjects")
		return
	}

	response.Success(w, http.StatusOK, "Subjects retrieved successfully", subjects)
}

func (h *SubjectHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid subject ID", nil)
		return
	}

	if err := h.subjectUsecase.DeleteSubject(r.Context(), subjectID); err != nil {
		if accessError(w, err) {
			return
		}
		if errors.Is(err, usecase.ErrSubjectNotFound) {
			response.NotFound(w, "Subject not found")
			return
		}
		response.InternalServerError(w, "Failed to delete subject")
		return
	}

	response.Success(w, http.StatusOK, "Subject deleted successfully", nil)
}
