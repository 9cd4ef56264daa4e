package domain

import "github.com/m04kA/SMC-AppointmentService/pkg/types"

// AvailableSlot represents a candidate start time for a booking and whether it
// is currently free. Derived, never persisted; produced fresh per query.
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
	Available       bool
}
