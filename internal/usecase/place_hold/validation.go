package place_hold

import (
	"fmt"
	"time"

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
