package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentStore интерфейс хранилища записей
type AppointmentStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByCancelToken(ctx context.Context, token string) (*domain.Appointment, error)
	GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Cancel(ctx context.Context, id int64) (*domain.Appointment, error)
}

// Notifier интерфейс отправки уведомлений клиенту
type Notifier interface {
	SendCancellation(ctx context.Context, appt *domain.Appointment) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
