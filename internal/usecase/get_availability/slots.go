package get_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// generateTimeSlots генерирует все возможные времена начала слота на день
// Внутри каждого рабочего интервала времена идут с фиксированным шагом granularity,
// начиная с начала интервала. Слот попадает в сетку, только если целиком
// помещается в интервал: для услуги на 30 минут при интервале 09:00-12:00
// последний слот - 11:30
func generateTimeSlots(
	workingHours domain.WorkingHours,
	durationMinutes int,
	requestDate time.Time,
	now time.Time,
) ([]types.TimeString, error) {
	if isDateInPast(requestDate, now) {
		return []types.TimeString{}, nil
	}

	allSlots := make([]types.TimeString, 0)

	for _, r := range workingHours.Ranges {
		currentSlot := r.Start

		for currentSlot.IsBefore(r.End) {
			slotEnd, err := currentSlot.AddMinutes(durationMinutes)
			if err != nil {
				break
			}
			if slotEnd.IsAfter(r.End) {
				break
			}

			allSlots = append(allSlots, currentSlot)

			currentSlot, err = currentSlot.AddMinutes(workingHours.GranularityMinutes)
			if err != nil {
				break
			}
		}
	}

	// На будущие даты возвращаем всю сетку
	if !isSameDay(requestDate, now) {
		return allSlots, nil
	}

	// Сегодня: отбрасываем слоты, время начала которых уже прошло
	currentTime := types.NewTimeString(now)
	futureSlots := make([]types.TimeString, 0, len(allSlots))
	for _, slot := range allSlots {
		if !slot.IsBefore(currentTime) {
			futureSlots = append(futureSlots, slot)
		}
	}

	return futureSlots, nil
}

// markAvailability помечает каждый слот сетки свободным или занятым
// Слот занят, если он пересекается с активной записью (полуоткрытые интервалы:
// граничащие записи не мешают) или на его время начала удерживается временная бронь
func markAvailability(
	slots []types.TimeString,
	durationMinutes int,
	appointments []*domain.Appointment,
	held []*domain.TemporaryReservation,
) []Slot {
	heldStarts := make(map[types.TimeString]struct{}, len(held))
	for _, res := range held {
		heldStarts[res.StartTime] = struct{}{}
	}

	result := make([]Slot, len(slots))

	for i, slotStart := range slots {
		available := countOverlappingAppointments(slotStart, durationMinutes, appointments) == 0
		if available {
			_, isHeld := heldStarts[slotStart]
			available = !isHeld
		}

		result[i] = Slot{
			StartTime:       slotStart,
			DurationMinutes: durationMinutes,
			Available:       available,
		}
	}

	return result
}

// countOverlappingAppointments подсчитывает количество активных записей,
// пересекающихся с указанным слотом
// Пересечение есть только если интервалы действительно накладываются друг на друга:
// если запись заканчивается ровно там, где начинается слот (или наоборот) - это НЕ пересечение
//
// Примеры:
// - Слот 11:30-12:00, запись 11:20-11:40 → ЕСТЬ пересечение (11:30-11:40)
// - Слот 11:30-12:00, запись 11:00-11:30 → НЕТ пересечения (граничат)
// - Слот 11:30-12:00, запись 12:00-12:30 → НЕТ пересечения (граничат)
func countOverlappingAppointments(slotStart types.TimeString, slotDuration int, appointments []*domain.Appointment) int {
	slotEnd, err := slotStart.AddMinutes(slotDuration)
	if err != nil {
		return 0
	}

	count := 0

	for _, appt := range appointments {
		if !appt.IsActive() {
			continue
		}

		apptStart := appt.StartTime
		apptEnd, err := appt.StartTime.AddMinutes(appt.DurationMinutes)
		if err != nil {
			continue
		}

		// Строгие неравенства: граничные случаи не считаются пересечением
		if apptStart.IsBefore(slotEnd) && apptEnd.IsAfter(slotStart) {
			count++
		}
	}

	return count
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
// Сравниваются календарные даты, а не моменты времени: дата запроса парсится
// без зоны, now приходит в настроенной зоне сервиса
func isDateInPast(date, now time.Time) bool {
	requested := date.Year()*10000 + int(date.Month())*100 + date.Day()
	today := now.Year()*10000 + int(now.Month())*100 + now.Day()
	return requested < today
}
