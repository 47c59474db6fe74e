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

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Book(r.Context(), &req)
	if err != nil {
		if accessError(w, err) {
			return
		}
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrSubjectNotFound):
			response.NotFound(w, "Subject not found")
		case errors.Is(err, usecase.ErrInvalidDateFormat), errors.Is(err, usecase.ErrInvalidTimeFormat),
			errors.Is(err, usecase.ErrSlotOutsideSchedule):
			response.BadRequest(w, err.Error())
		case errors.Is(err, usecase.ErrSlotTaken), errors.Is(err, usecase.ErrDuplicateBooking):
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to book appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.GetMyAppointments(r.Context())
	if err != nil {
		if accessError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	if err := h.appointmentUsecase.Cancel(r.Context(), appointmentID); err != nil {
		if accessError(w, err) {
			return
		}
		switch {
		case errors.Is(err, usecase.ErrAppointmentNotFound):
			response.NotFound(w, "Appointment not found")
		case errors.Is(err, usecase.ErrAppointmentNotOwned):
			response.Forbidden(w, "Appointment does not belong to you")
		default:
			response.InternalServerError(w, "Failed to cancel appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}

func (h *AppointmentHandler) CheckInAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	if err := h.appointmentUsecase.CheckIn(r.Context(), appointmentID); err != nil {
		if accessError(w, err) {
			return
		}
		if errors.Is(err, usecase.ErrAppointmentNotFound) {
			response.NotFound(w, "Appointment not found")
			return
		}
		response.InternalServerError(w, "Failed to check in appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment checked in successfully", nil)
}

func (h *AppointmentHandler) SearchAppointments(w http.ResponseWriter, r *http.Request) {
	req := dto.SearchAppointmentsRequest{Phone: r.URL.Query().Get("phone")}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointments, err := h.appointmentUsecase.SearchByPhone(r.Context(), req.Phone)
	if err != nil {
		response.InternalServerError(w, "Failed to search appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

// GetCalendarEvents answers with a bare event array for the staff calendar widget
func (h *AppointmentHandler) GetCalendarEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.appointmentUsecase.GetCalendarEvents(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get calendar events")
		return
	}

	response.JSON(w, http.StatusOK, events)
}
