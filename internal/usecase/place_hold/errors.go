package place_hold

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("service not found")

	// ErrSlotTaken возвращается, когда слот уже занят подтвержденной записью
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrSlotHeld возвращается, когда слот уже удерживается другой бронью
	ErrSlotHeld = errors.New("slot is already held")

	// ErrOutsideWorkingHours возвращается, когда слот не попадает в рабочие часы
	ErrOutsideWorkingHours = errors.New("slot is outside working hours")

	// ErrInvalidDate возвращается при попытке удержать слот в прошлом
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
