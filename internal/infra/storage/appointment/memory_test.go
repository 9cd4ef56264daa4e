package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, &domain.Appointment{
		ProviderID:      1,
		Date:            date,
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
		ClientName:      "Анна",
		ClientPhone:     "+79990001122",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.NotEmpty(t, created.CancelToken, "токен отмены генерируется при создании")

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	byToken, err := repo.GetByCancelToken(ctx, created.CancelToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byToken.ID)
}

func TestMemoryRepository_CreateRejectsOverlap(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	// Частичное пересечение: 10:15-10:45
	_, err = repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:15", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Граничащий слот 10:30-11:00 не пересекается
	_, err = repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:30", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	assert.NoError(t, err)

	// Другой провайдер не конфликтует
	_, err = repo.Create(ctx, &domain.Appointment{
		ProviderID: 2, Date: date, StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	assert.NoError(t, err)
}

func TestMemoryRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, &domain.Appointment{
				ProviderID: 1, Date: date, StartTime: "10:00", DurationMinutes: 30,
				Status: domain.StatusConfirmed,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, winners, "ровно одна из конкурентных попыток должна выиграть слот")
}

func TestMemoryRepository_CancelIsTerminal(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	cancelled, err := repo.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// Повторная отмена - ошибка, а не тихий успех
	_, err = repo.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	// Из cancelled нет переходов
	err = repo.UpdateStatus(ctx, created.ID, domain.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Отмененная запись освобождает слот
	_, err = repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	assert.NoError(t, err)
}

func TestMemoryRepository_CancelCompletedRejected(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, domain.StatusCompleted))

	// Завершение терминально: из completed нет перехода в cancelled
	_, err = repo.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestMemoryRepository_CancelNotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.Cancel(context.Background(), 42)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestMemoryRepository_MarkReminderSentOnce(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	sentAt := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkReminderSent(ctx, created.ID, sentAt))

	err = repo.MarkReminderSent(ctx, created.ID, sentAt.Add(time.Minute))
	assert.ErrorIs(t, err, ErrReminderAlreadySent)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)
	require.NotNil(t, got.ReminderSentAt)
	assert.Equal(t, sentAt, *got.ReminderSentAt, "время первой отправки не перетирается")
}

func TestMemoryRepository_ListPendingReminders(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	first, err := repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "11:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	second, err := repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	cancelled, err := repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "12:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)
	_, err = repo.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)

	require.NoError(t, repo.MarkReminderSent(ctx, first.ID, time.Now()))

	pending, err := repo.ListPendingReminders(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1, "отмененные и уже отправленные не попадают в выборку")
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestMemoryRepository_ReturnsClones(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, &domain.Appointment{
		ProviderID: 1, Date: date, StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	// Мутация возвращенной копии не должна влиять на хранилище
	created.Status = domain.StatusCancelled
	created.StartTime = "23:00"

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	got.ClientName = "изменено"
	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "изменено", again.ClientName)
}

func TestMemoryRepository_GetByProviderAndDateSorted(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	for _, start := range []string{"15:00", "09:00", "12:00"} {
		_, err := repo.Create(ctx, &domain.Appointment{
			ProviderID: 1, Date: date, StartTime: types.TimeString(start),
			DurationMinutes: 30, Status: domain.StatusConfirmed,
		})
		require.NoError(t, err)
	}

	appointments, err := repo.GetByProviderAndDate(ctx, 1, date)
	require.NoError(t, err)
	require.Len(t, appointments, 3)
	assert.Equal(t, "09:00", appointments[0].StartTime.String())
	assert.Equal(t, "12:00", appointments[1].StartTime.String())
	assert.Equal(t, "15:00", appointments[2].StartTime.String())
}
