package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentStore интерфейс хранилища записей
type AppointmentStore interface {
	// GetByProviderAndDate получает все записи провайдера на конкретную дату
	GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error)
}

// ReservationLedger интерфейс журнала временных броней
type ReservationLedger interface {
	// HeldSlots возвращает активные брони провайдера на дату
	HeldSlots(providerID int64, date time.Time) []*domain.TemporaryReservation
}

// ServiceCatalog интерфейс каталога услуг
type ServiceCatalog interface {
	Get(id string) (domain.ServiceSpec, bool)
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
// и фильтрация прошедших слотов выполняются по календарю этой зоны, а не зоны сервера
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
