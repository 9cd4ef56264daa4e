package get_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на получение сетки доступности
type Request struct {
	ProviderID int64     // ID провайдера
	ServiceID  string    // ID услуги (определяет длительность слота)
	Date       time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа с сеткой слотов
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	ProviderID      int64     // ID провайдера
	ServiceID       string    // ID услуги
	ServiceName     string    // Название услуги
	DurationMinutes int       // Длительность слота в минутах
	Slots           []Slot    // Сетка слотов с признаком доступности
}

// Slot модель временного слота
type Slot struct {
	StartTime       types.TimeString // Время начала слота (например, "10:00")
	DurationMinutes int              // Длительность слота в минутах
	Available       bool             // Свободен ли слот
}
