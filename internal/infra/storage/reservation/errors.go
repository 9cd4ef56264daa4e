package reservation

import "errors"

var (
	// ErrSlotHeld возвращается, когда слот уже удерживается активной бронью
	ErrSlotHeld = errors.New("reservation.ledger: slot is already held")

	// ErrReservationNotFound возвращается, когда бронь не найдена или истекла
	ErrReservationNotFound = errors.New("reservation.ledger: reservation not found")
)
