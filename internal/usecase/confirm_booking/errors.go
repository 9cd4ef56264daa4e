package confirm_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("service not found")

	// ErrSlotTaken возвращается, когда слот уже занят подтвержденной записью
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrHoldMismatch возвращается, когда токен брони указывает на другой слот
	ErrHoldMismatch = errors.New("hold token does not match the requested slot")

	// ErrOutsideWorkingHours возвращается, когда слот не попадает в рабочие часы
	ErrOutsideWorkingHours = errors.New("slot is outside working hours")

	// ErrInvalidDate возвращается при попытке записи на прошедшее время
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrBusy возвращается, когда не удалось получить блокировку слота за отведенное время
	// Клиенту следует повторить запрос
	ErrBusy = errors.New("slot is busy, retry later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
