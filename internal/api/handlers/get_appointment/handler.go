package get_appointment

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

// Handle GET /api/v1/appointments/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /appointments/{id} - Invalid appointment ID: %s", vars["id"])
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, id)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleByToken GET /api/v1/appointments/by-token/{token}
// Позволяет клиенту посмотреть свою запись по токену отмены без аутентификации
func (h *Handler) HandleByToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if token == "" {
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	result, err := h.service.GetByCancelToken(r.Context(), token)
	if err != nil {
		h.respondError(w, err, 0)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, id int64) {
	switch {
	case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
		h.logger.Warn("GET /appointments - Appointment not found: appointment_id=%d", id)
		handlers.RespondNotFound(w, msgAppointmentNotFound)

	case errors.Is(err, appointmentsService.ErrInvalidInput):
		h.logger.Warn("GET /appointments - Invalid input: %v", err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("GET /appointments - Failed: appointment_id=%d, error=%v", id, err)
		handlers.RespondInternalError(w)
	}
}
