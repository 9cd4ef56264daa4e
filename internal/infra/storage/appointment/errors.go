package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrSlotTaken возвращается, когда слот уже занят подтвержденной записью
	ErrSlotTaken = errors.New("appointment.repository: slot is already taken")

	// ErrAlreadyCancelled возвращается при повторной отмене записи
	ErrAlreadyCancelled = errors.New("appointment.repository: appointment is already cancelled")

	// ErrInvalidTransition возвращается при недопустимой смене статуса
	// Отмена терминальна: из cancelled нет переходов
	ErrInvalidTransition = errors.New("appointment.repository: invalid status transition")

	// ErrReminderAlreadySent возвращается, когда флаг напоминания уже установлен
	// Защита от двойной отправки при конкурентных сканах планировщика
	ErrReminderAlreadySent = errors.New("appointment.repository: reminder already sent")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
