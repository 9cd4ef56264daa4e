package get_hold

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	reservationLedger "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/reservation"
)

const (
	msgMissingToken = "не указан токен брони"
	msgHoldNotFound = "бронь не найдена или истекла"
)

type Handler struct {
	ledger ReservationLedger
	logger Logger
}

func NewHandler(ledger ReservationLedger, logger Logger) *Handler {
	return &Handler{
		ledger: ledger,
		logger: logger,
	}
}

// Handle GET /api/v1/holds/{token}
// Истекшая бронь неотличима от несуществующей: в обоих случаях 404
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if token == "" {
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	res, err := h.ledger.GetByToken(token)
	if err != nil {
		if errors.Is(err, reservationLedger.ErrReservationNotFound) {
			h.logger.Warn("GET /holds - Hold not found or expired")
			handlers.RespondNotFound(w, msgHoldNotFound)
			return
		}
		h.logger.Error("GET /holds - Internal error: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /holds - Hold status returned for provider=%d", res.ProviderID)
	handlers.RespondJSON(w, http.StatusOK, FromDomainReservation(res))
}
