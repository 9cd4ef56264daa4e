package reservation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Ledger in-memory журнал временных броней слотов
// Брони живут только в памяти процесса: перезапуск сервиса их сбрасывает,
// подтвержденные записи при этом остаются в основном хранилище.
// Истекшие брони вычищаются лениво при каждом обращении -
// отдельной фоновой горутины для этого не требуется
type Ledger struct {
	mu      sync.Mutex
	byToken map[string]*domain.TemporaryReservation
	nextID  int64
	ttl     time.Duration

	now func() time.Time

	onPlaced  func()
	onExpired func(count int)
}

// NewLedger создает новый журнал временных броней с заданным TTL
func NewLedger(ttl time.Duration) *Ledger {
	return &Ledger{
		byToken: make(map[string]*domain.TemporaryReservation),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (l *Ledger) SetNowFunc(now func() time.Time) {
	l.now = now
}

// SetPlacedCallback устанавливает колбэк, вызываемый при успешном удержании слота
// Используется для метрик
func (l *Ledger) SetPlacedCallback(fn func()) {
	l.onPlaced = fn
}

// SetExpiredCallback устанавливает колбэк, вызываемый при вычистке истекших броней
// Используется для метрик
func (l *Ledger) SetExpiredCallback(fn func(count int)) {
	l.onExpired = fn
}

// Place удерживает слот и возвращает бронь с токеном
// Проверка занятости и вставка выполняются атомарно под мьютексом журнала:
// из двух конкурентных попыток на один слот ровно одна получает бронь,
// вторая - ErrSlotHeld
func (l *Ledger) Place(providerID int64, date time.Time, start types.TimeString) (*domain.TemporaryReservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepExpiredLocked(now)

	for _, res := range l.byToken {
		if res.IsSameSlot(providerID, date, start) {
			return nil, ErrSlotHeld
		}
	}

	l.nextID++
	res := &domain.TemporaryReservation{
		ID:         l.nextID,
		ProviderID: providerID,
		Date:       date,
		StartTime:  start,
		Token:      uuid.NewString(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(l.ttl),
	}

	l.byToken[res.Token] = res

	if l.onPlaced != nil {
		l.onPlaced()
	}

	return cloneReservation(res), nil
}

// IsHeld проверяет, удерживается ли слот активной бронью
func (l *Ledger) IsHeld(providerID int64, date time.Time, start types.TimeString) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepExpiredLocked(l.now())

	for _, res := range l.byToken {
		if res.IsSameSlot(providerID, date, start) {
			return true
		}
	}
	return false
}

// HeldSlots возвращает активные брони провайдера на дату
// Используется при построении сетки доступности
func (l *Ledger) HeldSlots(providerID int64, date time.Time) []*domain.TemporaryReservation {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepExpiredLocked(l.now())

	held := make([]*domain.TemporaryReservation, 0)
	for _, res := range l.byToken {
		if res.ProviderID == providerID && isSameDay(res.Date, date) {
			held = append(held, cloneReservation(res))
		}
	}
	return held
}

// GetByToken возвращает активную бронь по токену
// Истекшая бронь неотличима от несуществующей
func (l *Ledger) GetByToken(token string) (*domain.TemporaryReservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepExpiredLocked(l.now())

	res, ok := l.byToken[token]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return cloneReservation(res), nil
}

// Release снимает бронь по токену
// Снятие несуществующей или истекшей брони не является ошибкой:
// клиент мог отпустить слот уже после истечения TTL
func (l *Ledger) Release(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.byToken, token)
}

// sweepExpiredLocked вычищает истекшие брони (вызывающий держит мьютекс)
func (l *Ledger) sweepExpiredLocked(now time.Time) {
	expired := 0
	for token, res := range l.byToken {
		if res.IsExpired(now) {
			delete(l.byToken, token)
			expired++
		}
	}

	if expired > 0 && l.onExpired != nil {
		l.onExpired(expired)
	}
}

func cloneReservation(r *domain.TemporaryReservation) *domain.TemporaryReservation {
	clone := *r
	return &clone
}

func isSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
