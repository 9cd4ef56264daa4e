package memtx

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/keymutex"
)

var (
	// ErrBusy возвращается, когда критическую секцию не удалось захватить
	// за отведенное время; вызывающая сторона может повторить запрос
	ErrBusy = errors.New("memtx: lock wait timed out")
)

// TransactionManager менеджер критических секций для in-memory хранилища
// Аналог сериализуемой транзакции БД: все check-then-act операции над одним
// ключом (провайдер+дата) выполняются строго последовательно, операции над
// разными ключами не блокируют друг друга
type TransactionManager struct {
	locks       *keymutex.KeyMutex
	lockTimeout time.Duration
}

// NewTransactionManager создает новый менеджер критических секций
func NewTransactionManager(lockTimeout time.Duration) *TransactionManager {
	return &TransactionManager{
		locks:       keymutex.New(),
		lockTimeout: lockTimeout,
	}
}

// DoSerializable выполняет fn под блокировкой по ключу
// Ожидание блокировки ограничено: по таймауту возвращается ErrBusy,
// запрос никогда не зависает на неопределенный срок
func (m *TransactionManager) DoSerializable(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := m.locks.Lock(ctx, key, m.lockTimeout); err != nil {
		if errors.Is(err, keymutex.ErrLockTimeout) {
			return ErrBusy
		}
		return err
	}
	defer m.locks.Unlock(key)

	return fn(ctx)
}
