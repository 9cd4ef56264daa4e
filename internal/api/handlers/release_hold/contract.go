package release_hold

// ReservationLedger интерфейс журнала временных броней
type ReservationLedger interface {
	Release(token string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
