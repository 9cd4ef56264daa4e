package keymutex

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrLockTimeout возвращается, когда блокировку не удалось получить за отведенное время
	ErrLockTimeout = errors.New("keymutex: lock acquisition timed out")
)

// KeyMutex набор мьютексов по строковому ключу с ограниченным временем ожидания
// Позволяет сериализовать операции над одним ключом (например, провайдер+дата),
// не блокируя операции над другими ключами
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{} // буфер 1: токен владения
	refs int
}

// New создает новый набор мьютексов по ключу
func New() *KeyMutex {
	return &KeyMutex{
		locks: make(map[string]*entry),
	}
}

// Lock захватывает блокировку по ключу
// Ожидание ограничено timeout и контекстом; по истечении возвращает ErrLockTimeout
func (k *KeyMutex) Lock(ctx context.Context, key string, timeout time.Duration) error {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		return nil
	case <-timer.C:
		k.release(key)
		return ErrLockTimeout
	case <-ctx.Done():
		k.release(key)
		return ctx.Err()
	}
}

// Unlock освобождает блокировку по ключу
// Вызов без предшествующего Lock является ошибкой программирования и приводит к панике
func (k *KeyMutex) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	k.mu.Unlock()

	if !ok {
		panic("keymutex: unlock of unheld key " + key)
	}

	select {
	case <-e.ch:
	default:
		panic("keymutex: unlock of unheld key " + key)
	}

	k.release(key)
}

// release уменьшает счетчик ссылок и удаляет запись, когда она больше не нужна
func (k *KeyMutex) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(k.locks, key)
	}
}
