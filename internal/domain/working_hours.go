package domain

import (
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// TimeRange один непрерывный рабочий интервал в течение дня, например 09:00-12:00
// Интервал полуоткрытый: слот должен закончиться не позже End
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// Contains returns true if a slot [start, start+duration) fits entirely inside the range
func (r TimeRange) Contains(start types.TimeString, durationMinutes int) bool {
	if start.IsBefore(r.Start) {
		return false
	}
	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return false
	}
	return !end.IsAfter(r.End)
}

// WorkingHours represents the static working-hours configuration: an ordered
// set of disjoint time ranges (e.g. morning and afternoon blocks) and a fixed
// slot granularity used to step through each range. Not mutated at runtime.
type WorkingHours struct {
	Ranges             []TimeRange
	GranularityMinutes int
}

// ContainsSlot returns true if the slot fits entirely inside one of the ranges
func (w WorkingHours) ContainsSlot(start types.TimeString, durationMinutes int) bool {
	for _, r := range w.Ranges {
		if r.Contains(start, durationMinutes) {
			return true
		}
	}
	return false
}
