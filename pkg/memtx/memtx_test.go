package memtx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSerializable_RunsFunction(t *testing.T) {
	m := NewTransactionManager(time.Second)

	called := false
	err := m.DoSerializable(context.Background(), "provider:1:2026-02-10", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestDoSerializable_PropagatesError(t *testing.T) {
	m := NewTransactionManager(time.Second)
	wantErr := errors.New("slot taken")

	err := m.DoSerializable(context.Background(), "key", func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestDoSerializable_SameKeySerialized(t *testing.T) {
	m := NewTransactionManager(5 * time.Second)
	ctx := context.Background()

	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.DoSerializable(ctx, "same-key", func(ctx context.Context) error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside, "секции с одним ключом не должны выполняться параллельно")
}

func TestDoSerializable_DifferentKeysParallel(t *testing.T) {
	m := NewTransactionManager(100 * time.Millisecond)
	ctx := context.Background()

	blocker := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = m.DoSerializable(ctx, "key-a", func(ctx context.Context) error {
			close(started)
			<-blocker
			return nil
		})
	}()
	<-started

	// Другой ключ не ждет освобождения key-a
	err := m.DoSerializable(ctx, "key-b", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)

	close(blocker)
}

func TestDoSerializable_TimeoutReturnsBusy(t *testing.T) {
	m := NewTransactionManager(50 * time.Millisecond)
	ctx := context.Background()

	blocker := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = m.DoSerializable(ctx, "contended", func(ctx context.Context) error {
			close(started)
			<-blocker
			return nil
		})
	}()
	<-started

	err := m.DoSerializable(ctx, "contended", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)

	close(blocker)
	<-done

	// После освобождения ключ снова доступен
	err = m.DoSerializable(ctx, "contended", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestDoSerializable_ContextCancelled(t *testing.T) {
	m := NewTransactionManager(5 * time.Second)

	blocker := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = m.DoSerializable(context.Background(), "ctx-key", func(ctx context.Context) error {
			close(started)
			<-blocker
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.DoSerializable(ctx, "ctx-key", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	close(blocker)
}
