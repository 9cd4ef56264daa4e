package confirm_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID == "" {
		return fmt.Errorf("%w: serviceID is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}

	if strings.TrimSpace(req.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}

	if len(req.ClientName) > domain.MaxClientNameLength {
		return fmt.Errorf("%w: client name is too long (max %d characters)", ErrInvalidInput, domain.MaxClientNameLength)
	}

	if strings.TrimSpace(req.ClientPhone) == "" {
		return fmt.Errorf("%w: client phone is required", ErrInvalidInput)
	}

	if len(req.ClientPhone) > domain.MaxClientPhoneLength {
		return fmt.Errorf("%w: client phone is too long (max %d characters)", ErrInvalidInput, domain.MaxClientPhoneLength)
	}

	return nil
}

// validateSlotTime проверяет, что слот не начинается в прошлом
// Сравниваются календарные даты, а не моменты времени: дата запроса парсится
// без зоны, now приходит в настроенной зоне сервиса
func validateSlotTime(date time.Time, start types.TimeString, now time.Time) error {
	requested := calendarDay(date)
	today := calendarDay(now)

	if requested < today {
		return ErrInvalidDate
	}

	if requested == today && start.IsBefore(types.NewTimeString(now)) {
		return ErrInvalidDate
	}

	return nil
}

// calendarDay сворачивает дату в сравнимое число YYYYMMDD
func calendarDay(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// countOverlappingAppointments подсчитывает количество активных записей,
// пересекающихся со слотом [start, start+duration)
// Полуоткрытые интервалы: граничащие записи не считаются пересечением
func countOverlappingAppointments(slotStart types.TimeString, slotDuration int, appointments []*domain.Appointment) (int, error) {
	slotEnd, err := slotStart.AddMinutes(slotDuration)
	if err != nil {
		return 0, err
	}

	count := 0

	for _, appt := range appointments {
		if !appt.IsActive() {
			continue
		}

		apptEnd, err := appt.StartTime.AddMinutes(appt.DurationMinutes)
		if err != nil {
			continue
		}

		if appt.StartTime.IsBefore(slotEnd) && apptEnd.IsAfter(slotStart) {
			count++
		}
	}

	return count, nil
}
