package reservation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_PlaceAndGet(t *testing.T) {
	ledger := NewLedger(15 * time.Minute)
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	res, err := ledger.Place(1, date, "10:00")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, res.CreatedAt.Add(15*time.Minute), res.ExpiresAt)

	got, err := ledger.GetByToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	assert.True(t, ledger.IsHeld(1, date, "10:00"))
	assert.False(t, ledger.IsHeld(1, date, "10:30"))
	assert.False(t, ledger.IsHeld(2, date, "10:00"))
}

func TestLedger_SecondPlaceRejected(t *testing.T) {
	ledger := NewLedger(15 * time.Minute)
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	_, err := ledger.Place(1, date, "10:00")
	require.NoError(t, err)

	_, err = ledger.Place(1, date, "10:00")
	assert.ErrorIs(t, err, ErrSlotHeld)

	// Другой слот того же провайдера свободен
	_, err = ledger.Place(1, date, "10:30")
	assert.NoError(t, err)
}

func TestLedger_ConcurrentPlaceSingleWinner(t *testing.T) {
	ledger := NewLedger(15 * time.Minute)
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Place(1, date, "10:00")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotHeld)
		}
	}
	assert.Equal(t, 1, winners, "ровно одна из конкурентных попыток должна удержать слот")
}

func TestLedger_ExpiryFreesSlot(t *testing.T) {
	ledger := NewLedger(15 * time.Minute)
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	ledger.SetNowFunc(func() time.Time { return now })

	expiredCount := 0
	ledger.SetExpiredCallback(func(count int) { expiredCount += count })

	res, err := ledger.Place(1, date, "10:00")
	require.NoError(t, err)

	// За минуту до истечения бронь еще активна
	now = now.Add(14 * time.Minute)
	assert.True(t, ledger.IsHeld(1, date, "10:00"))

	// Ровно в момент истечения бронь исчезает
	now = now.Add(time.Minute)
	assert.False(t, ledger.IsHeld(1, date, "10:00"))
	assert.Equal(t, 1, expiredCount)

	_, err = ledger.GetByToken(res.Token)
	assert.ErrorIs(t, err, ErrReservationNotFound, "истекшая бронь неотличима от несуществующей")

	// Слот снова можно удержать
	_, err = ledger.Place(1, date, "10:00")
	assert.NoError(t, err)
}

func TestLedger_ReleaseIsIdempotent(t *testing.T) {
	ledger := NewLedger(15 * time.Minute)
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	res, err := ledger.Place(1, date, "10:00")
	require.NoError(t, err)

	ledger.Release(res.Token)
	assert.False(t, ledger.IsHeld(1, date, "10:00"))

	// Повторное снятие и снятие неизвестного токена не паникуют и не ошибаются
	ledger.Release(res.Token)
	ledger.Release("unknown-token")
}

func TestLedger_HeldSlots(t *testing.T) {
	ledger := NewLedger(15 * time.Minute)
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	otherDate := date.AddDate(0, 0, 1)

	_, err := ledger.Place(1, date, "10:00")
	require.NoError(t, err)
	_, err = ledger.Place(1, date, "11:00")
	require.NoError(t, err)
	_, err = ledger.Place(1, otherDate, "12:00")
	require.NoError(t, err)
	_, err = ledger.Place(2, date, "13:00")
	require.NoError(t, err)

	held := ledger.HeldSlots(1, date)
	assert.Len(t, held, 2, "только брони этого провайдера на эту дату")
}

func TestLedger_PlacedCallback(t *testing.T) {
	ledger := NewLedger(15 * time.Minute)
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	placed := 0
	ledger.SetPlacedCallback(func() { placed++ })

	_, err := ledger.Place(1, date, "10:00")
	require.NoError(t, err)

	_, err = ledger.Place(1, date, "10:00")
	require.ErrorIs(t, err, ErrSlotHeld)

	assert.Equal(t, 1, placed, "колбэк вызывается только при успешном удержании")
}
