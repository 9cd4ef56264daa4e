package confirm_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentStore интерфейс хранилища записей
type AppointmentStore interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error)
}

// ReservationLedger интерфейс журнала временных броней
type ReservationLedger interface {
	GetByToken(token string) (*domain.TemporaryReservation, error)
	Release(token string)
}

// ServiceCatalog интерфейс каталога услуг
type ServiceCatalog interface {
	Get(id string) (domain.ServiceSpec, bool)
}

// TransactionManager интерфейс для управления транзакциями
// Ключ задает гранулярность взаимного исключения: подтверждения одного
// провайдера на одну дату сериализуются, остальные идут параллельно
type TransactionManager interface {
	DoSerializable(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Notifier интерфейс отправки уведомлений клиенту
type Notifier interface {
	SendConfirmation(ctx context.Context, appt *domain.Appointment) error
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
// Отдает время в настроенной временной зоне сервиса: проверки "дата в прошлом"
// и "время уже прошло" выполняются по календарю этой зоны, а не зоны сервера
type RealTimeProvider struct {
	location *time.Location
}

// NewRealTimeProvider создает провайдер времени в указанной зоне
func NewRealTimeProvider(location *time.Location) *RealTimeProvider {
	if location == nil {
		location = time.UTC
	}
	return &RealTimeProvider{location: location}
}

// Now возвращает текущее время в настроенной зоне
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().In(p.location)
}
