package confirm_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	confirmBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/confirm_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateOrTime   = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgServiceNotFound     = "услуга не найдена"
	msgSlotTaken           = "выбранный временной слот уже занят"
	msgHoldMismatch        = "токен брони указывает на другой слот"
	msgOutsideWorkingHours = "слот вне рабочих часов"
	msgInvalidDate         = "некорректная дата или время в прошлом"
	msgBusy                = "слот обрабатывается, повторите запрос"
)

type Handler struct {
	useCase ConfirmBookingUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ConfirmBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, confirmBooking.ErrSlotTaken):
			h.logger.Warn("POST /appointments - Slot taken: provider_id=%d, time=%s", req.ProviderID, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotTaken)

		case errors.Is(err, confirmBooking.ErrBusy):
			h.logger.Warn("POST /appointments - Slot busy: provider_id=%d, time=%s", req.ProviderID, req.StartTime)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgBusy)

		case errors.Is(err, confirmBooking.ErrHoldMismatch):
			h.logger.Warn("POST /appointments - Hold mismatch: provider_id=%d, time=%s", req.ProviderID, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgHoldMismatch)

		case errors.Is(err, confirmBooking.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%s", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, confirmBooking.ErrOutsideWorkingHours):
			h.logger.Warn("POST /appointments - Outside working hours: provider_id=%d, time=%s", req.ProviderID, req.StartTime)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, confirmBooking.ErrInvalidDate):
			h.logger.Warn("POST /appointments - Invalid date: provider_id=%d, date=%s", req.ProviderID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, confirmBooking.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /appointments - Failed: provider_id=%d, error=%v", req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, provider_id=%d",
		result.ID, req.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
