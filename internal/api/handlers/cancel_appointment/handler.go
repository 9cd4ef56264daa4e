package cancel_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidAppointmentID = "некорректный идентификатор записи"
	msgMissingToken         = "не указан токен записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgAlreadyCancelled     = "запись уже отменена"
	msgCannotCancel         = "завершенную запись нельзя отменить"
)

type Handler struct {
	service AppointmentsService
	logger  Logger
}

func NewHandler(service AppointmentsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{id}/cancel
// Отмена по ID для внутреннего использования (администратор провайдера)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid appointment ID: %s", vars["id"])
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.service.CancelByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, id)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/cancel - Appointment cancelled: appointment_id=%d", id)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleByToken DELETE /api/v1/appointments/by-token/{token}
// Отмена по токену - путь для клиента, токен выдается при подтверждении записи
func (h *Handler) HandleByToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if token == "" {
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	result, err := h.service.CancelByToken(r.Context(), token)
	if err != nil {
		h.respondError(w, err, 0)
		return
	}

	h.logger.Info("DELETE /appointments/by-token - Appointment cancelled: appointment_id=%d", result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, id int64) {
	switch {
	case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
		h.logger.Warn("Cancel appointment - Appointment not found: appointment_id=%d", id)
		handlers.RespondNotFound(w, msgAppointmentNotFound)

	case errors.Is(err, appointmentsService.ErrAlreadyCancelled):
		h.logger.Warn("Cancel appointment - Already cancelled: appointment_id=%d", id)
		handlers.RespondError(w, http.StatusConflict, msgAlreadyCancelled)

	case errors.Is(err, appointmentsService.ErrCannotCancel):
		h.logger.Warn("Cancel appointment - Cannot cancel: appointment_id=%d", id)
		handlers.RespondError(w, http.StatusConflict, msgCannotCancel)

	case errors.Is(err, appointmentsService.ErrInvalidInput):
		h.logger.Warn("Cancel appointment - Invalid input: %v", err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("Cancel appointment - Failed: appointment_id=%d, error=%v", id, err)
		handlers.RespondInternalError(w)
	}
}
