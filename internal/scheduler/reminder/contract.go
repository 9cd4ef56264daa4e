package reminder

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentStore интерфейс хранилища записей
type AppointmentStore interface {
	// ListPendingReminders возвращает подтвержденные записи без отправленного напоминания
	ListPendingReminders(ctx context.Context) ([]*domain.Appointment, error)
	// MarkReminderSent устанавливает флаг отправленного напоминания
	MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error
}

// Notifier интерфейс отправки напоминаний клиенту
type Notifier interface {
	SendReminder(ctx context.Context, appt *domain.Appointment) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
