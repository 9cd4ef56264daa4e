package scheduler_status

import (
	"github.com/m04kA/SMC-AppointmentService/internal/scheduler/reminder"
)

// ReminderScheduler интерфейс планировщика напоминаний
type ReminderScheduler interface {
	GetStatus() reminder.Status
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
