package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment represents a confirmed client appointment with a provider
type Appointment struct {
	ID              int64
	ProviderID      int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	ClientName  string
	ClientPhone string

	// Denormalized service data for history
	ServiceName  string
	ServicePrice float64

	// CancelToken капабилити для отмены без аутентификации
	CancelToken string

	ReminderSent   bool
	ReminderSentAt *time.Time

	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive returns true if the appointment still occupies its slot
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
// Only confirmed appointments can be cancelled: completion and cancellation
// are both terminal states
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusConfirmed
}

// CanBeCompleted returns true if the appointment can be marked completed
// Completion is allowed at any time while the appointment is confirmed
func (a *Appointment) CanBeCompleted() bool {
	return a.Status == StatusConfirmed
}

// NeedsReminder returns true if the appointment is still waiting for its reminder
func (a *Appointment) NeedsReminder() bool {
	return a.Status == StatusConfirmed && !a.ReminderSent
}

// StartDateTime combines the appointment date and start time in the given location
func (a *Appointment) StartDateTime(loc *time.Location) (time.Time, error) {
	minutes, err := a.StartTime.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}

// SlotLockKey ключ критической секции для пары (провайдер, дата)
// Все check-then-act операции над слотами одного провайдера на одну дату
// выполняются под одним ключом
func SlotLockKey(providerID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", providerID, date.Format(DateFormat))
}
