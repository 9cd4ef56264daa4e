package notifier

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifier client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от шлюза
	ErrInvalidResponse = errors.New("notifier client: invalid response")

	// ErrSendFailed возвращается, когда шлюз не смог доставить сообщение
	ErrSendFailed = errors.New("notifier client: failed to send message")
)
