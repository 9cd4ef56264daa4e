package scheduler_control

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/scheduler/reminder"
)

// ReminderScheduler интерфейс планировщика напоминаний
type ReminderScheduler interface {
	Start(ctx context.Context)
	Stop()
	Enable()
	Disable()
	GetStatus() reminder.Status
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
