package release_hold

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const msgMissingToken = "не указан токен брони"

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

// Handle DELETE /api/v1/holds/{token}
// Снятие несуществующей или истекшей брони не является ошибкой:
// ответ всегда 204, чтобы клиент мог безопасно повторять запрос
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if token == "" {
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	h.ledger.Release(token)

	h.logger.Info("DELETE /holds - Hold released")
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
