package scheduler_control

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const msgUnknownAction = "неизвестное действие, допустимы start, stop, enable и disable"

type Handler struct {
	scheduler ReminderScheduler
	logger    Logger
}

func NewHandler(scheduler ReminderScheduler, logger Logger) *Handler {
	return &Handler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// Handle POST /api/v1/scheduler/reminders/{action}
// Управляет планировщиком без перезапуска сервиса: start/stop запускают и
// останавливают цикл сканирования, enable/disable переключают отправку
// при работающем цикле
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]

	switch action {
	case "start":
		// Цикл живет дольше запроса, поэтому привязан к фоновому контексту;
		// остановка выполняется через Stop
		h.scheduler.Start(context.Background())
		h.logger.Info("POST /scheduler/reminders - Scheduler started")
	case "stop":
		h.scheduler.Stop()
		h.logger.Info("POST /scheduler/reminders - Scheduler stopped")
	case "enable":
		h.scheduler.Enable()
		h.logger.Info("POST /scheduler/reminders - Scheduler enabled")
	case "disable":
		h.scheduler.Disable()
		h.logger.Info("POST /scheduler/reminders - Scheduler disabled")
	default:
		h.logger.Warn("POST /scheduler/reminders - Unknown action: %s", action)
		handlers.RespondBadRequest(w, msgUnknownAction)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.scheduler.GetStatus())
}
