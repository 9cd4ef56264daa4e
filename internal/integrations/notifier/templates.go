package notifier

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Шаблоны сообщений клиенту

// confirmationMessage текст подтверждения записи
func confirmationMessage(appt *domain.Appointment) string {
	return fmt.Sprintf(
		"Здравствуйте, %s! Ваша запись подтверждена.\n"+
			"Услуга: %s\n"+
			"Дата: %s\n"+
			"Время: %s\n"+
			"Для отмены записи используйте код: %s",
		appt.ClientName,
		appt.ServiceName,
		appt.Date.Format(domain.DateFormat),
		appt.StartTime,
		appt.CancelToken,
	)
}

// reminderMessage текст напоминания о предстоящей записи
func reminderMessage(appt *domain.Appointment) string {
	return fmt.Sprintf(
		"Здравствуйте, %s! Напоминаем о вашей записи.\n"+
			"Услуга: %s\n"+
			"Дата: %s\n"+
			"Время: %s\n"+
			"Ждем вас!",
		appt.ClientName,
		appt.ServiceName,
		appt.Date.Format(domain.DateFormat),
		appt.StartTime,
	)
}

// cancellationMessage текст уведомления об отмене записи
func cancellationMessage(appt *domain.Appointment) string {
	return fmt.Sprintf(
		"Здравствуйте, %s! Ваша запись отменена.\n"+
			"Услуга: %s\n"+
			"Дата: %s\n"+
			"Время: %s",
		appt.ClientName,
		appt.ServiceName,
		appt.Date.Format(domain.DateFormat),
		appt.StartTime,
	)
}
