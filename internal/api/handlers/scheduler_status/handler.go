package scheduler_status

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

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

// Handle GET /api/v1/scheduler/reminders/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.scheduler.GetStatus())
}
