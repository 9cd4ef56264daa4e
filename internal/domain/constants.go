package domain

// Default configuration values
const (
	DefaultSlotGranularityMinutes = 15
	DefaultHoldTTLMinutes         = 15
	DefaultReminderOffsetMinutes  = 60
	DefaultReminderPeriodMinutes  = 5
	DefaultLockTimeoutMillis      = 500
)

// Business validation constants
const (
	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 480 // 8 hours
	MaxClientNameLength       = 200
	MaxClientPhoneLength      = 32
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ValidStatuses список допустимых статусов записи
var ValidStatuses = []AppointmentStatus{
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
}
