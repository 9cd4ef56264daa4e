package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// TemporaryReservation represents a short-lived hold on a slot while a client
// completes the booking form. Holds are non-durable and disappear on promotion,
// explicit release or TTL expiry.
type TemporaryReservation struct {
	ID         int64
	ProviderID int64
	Date       time.Time
	StartTime  types.TimeString

	// Token непересекающийся случайный идентификатор; единственный способ
	// сослаться на резервацию снаружи
	Token string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the reservation is past its TTL at the given instant
func (r *TemporaryReservation) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// IsSameSlot returns true if the reservation holds the given (provider, date, time) tuple
func (r *TemporaryReservation) IsSameSlot(providerID int64, date time.Time, startTime types.TimeString) bool {
	return r.ProviderID == providerID &&
		isSameDay(r.Date, date) &&
		r.StartTime == startTime
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
