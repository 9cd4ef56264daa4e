package place_hold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateSlotTime(t *testing.T) {
	now := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)

	// Будущая дата
	err := validateSlotTime(time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), "09:00", now)
	assert.NoError(t, err)

	// Прошедшая дата
	err = validateSlotTime(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), "09:00", now)
	assert.ErrorIs(t, err, ErrInvalidDate)

	// Сегодня, время уже прошло
	err = validateSlotTime(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "09:00", now)
	assert.ErrorIs(t, err, ErrInvalidDate)

	// Сегодня, время впереди
	err = validateSlotTime(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "11:00", now)
	assert.NoError(t, err)
}

func TestValidateSlotTime_DifferentZones(t *testing.T) {
	// Дата запроса - UTC-полночь, "сейчас" - утро того же календарного дня
	// в зоне UTC-5. Как момент времени UTC-полночь раньше now, но сравнение
	// идет по календарным дням настроенной зоны
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	west := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 2, 10, 9, 30, 0, 0, west)
	assert.NoError(t, validateSlotTime(date, "10:00", now),
		"сегодняшний слот в будущем не должен отклоняться как прошедший")
	assert.ErrorIs(t, validateSlotTime(date, "09:00", now), ErrInvalidDate)

	// В зоне UTC+9 уже наступил следующий календарный день
	east := time.FixedZone("UTC+9", 9*60*60)
	now = time.Date(2026, 2, 11, 1, 0, 0, 0, east)
	assert.ErrorIs(t, validateSlotTime(date, "10:00", now), ErrInvalidDate)
}
