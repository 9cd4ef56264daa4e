package place_hold

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на удержание слота
type Request struct {
	ProviderID int64            // ID провайдера
	ServiceID  string           // ID услуги (определяет длительность слота)
	Date       time.Time        // Дата слота (без времени)
	StartTime  types.TimeString // Время начала слота
}

// Response модель ответа с токеном брони
type Response struct {
	Token      string           // Токен брони для подтверждения или отмены
	ProviderID int64            // ID провайдера
	Date       time.Time        // Дата слота
	StartTime  types.TimeString // Время начала слота
	ExpiresAt  time.Time        // Момент истечения брони
}
