package get_hold

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ReservationLedger интерфейс журнала временных броней
type ReservationLedger interface {
	GetByToken(token string) (*domain.TemporaryReservation, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
