package confirm_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на подтверждение бронирования
type Request struct {
	ProviderID  int64            // ID провайдера
	ServiceID   string           // ID услуги
	Date        time.Time        // Дата записи (без времени)
	StartTime   types.TimeString // Время начала
	ClientName  string           // Имя клиента
	ClientPhone string           // Телефон клиента
	HoldToken   string           // Токен временной брони (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID              int64            // ID записи
	ProviderID      int64            // ID провайдера
	Date            time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи
	ClientName      string           // Имя клиента
	ClientPhone     string           // Телефон клиента
	ServiceName     string           // Название услуги (денормализовано)
	ServicePrice    float64          // Цена услуги (денормализовано)
	CancelToken     string           // Токен для отмены записи клиентом
	CreatedAt       time.Time        // Время создания
}
