package place_hold

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	placeHold "github.com/m04kA/SMC-AppointmentService/internal/usecase/place_hold"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDateOrTime    = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgServiceNotFound      = "услуга не найдена"
	msgSlotTaken            = "выбранный временной слот уже занят"
	msgSlotHeld             = "выбранный временной слот уже удерживается"
	msgOutsideWorkingHours  = "слот вне рабочих часов"
	msgInvalidDate          = "некорректная дата или время в прошлом"
)

type Handler struct {
	useCase PlaceHoldUseCase
	logger  Logger
}

func NewHandler(useCase PlaceHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req PlaceHoldRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /holds - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /holds - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, placeHold.ErrSlotTaken):
			h.logger.Warn("POST /holds - Slot taken: provider_id=%d, time=%s", req.ProviderID, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotTaken)

		case errors.Is(err, placeHold.ErrSlotHeld):
			h.logger.Warn("POST /holds - Slot held: provider_id=%d, time=%s", req.ProviderID, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotHeld)

		case errors.Is(err, placeHold.ErrServiceNotFound):
			h.logger.Warn("POST /holds - Service not found: service_id=%s", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, placeHold.ErrOutsideWorkingHours):
			h.logger.Warn("POST /holds - Outside working hours: provider_id=%d, time=%s", req.ProviderID, req.StartTime)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, placeHold.ErrInvalidDate):
			h.logger.Warn("POST /holds - Invalid date: provider_id=%d, date=%s", req.ProviderID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, placeHold.ErrInvalidInput):
			h.logger.Warn("POST /holds - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /holds - Failed: provider_id=%d, error=%v", req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds - Hold placed: provider_id=%d, date=%s, time=%s",
		req.ProviderID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
