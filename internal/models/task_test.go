package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from TaskStatus
		to   TaskStatus
		ok   bool
	}{
		{TaskNotStarted, TaskInProgress, true},
		{TaskNotStarted, TaskPaused, false},
		{TaskNotStarted, TaskCompleted, false},
		{TaskInProgress, TaskPaused, true},
		{TaskInProgress, TaskCompleted, true},
		{TaskInProgress, TaskNotStarted, false},
		{TaskPaused, TaskInProgress, true},
		{TaskPaused, TaskCompleted, true},
		{TaskPaused, TaskNotStarted, false},
		// Завершение необратимо
		{TaskCompleted, TaskInProgress, false},
		{TaskCompleted, TaskNotStarted, false},
		{TaskCompleted, TaskPaused, false},
	}

	for _, c := range cases {
		task := &Task{Status: c.from}
		assert.Equal(t, c.ok, task.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestIsProtected(t *testing.T) {
	assert.False(t, (&Task{Status: TaskNotStarted}).IsProtected())
	assert.True(t, (&Task{Status: TaskInProgress}).IsProtected())
	assert.True(t, (&Task{Status: TaskPaused}).IsProtected())
	assert.True(t, (&Task{Status: TaskCompleted}).IsProtected())
}

func TestTotalMinutes(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	started := now.Add(-50 * time.Minute)
	finished := now.Add(-5 * time.Minute)

	// Не начата
	assert.Zero(t, (&Task{}).TotalMinutes(now))

	// Идет прямо сейчас
	running := &Task{Status: TaskInProgress, StartedAt: &started}
	assert.InDelta(t, 50, running.TotalMinutes(now), 1e-9)

	// Пауза вычитается
	paused := &Task{Status: TaskInProgress, StartedAt: &started, TotalPauseSecs: 600}
	assert.InDelta(t, 40, paused.TotalMinutes(now), 1e-9)

	// Завершена: считается до finished_at
	done := &Task{Status: TaskCompleted, StartedAt: &started, FinishedAt: &finished, TotalPauseSecs: 300}
	assert.InDelta(t, 40, done.TotalMinutes(now), 1e-9)

	// На паузе: время после постановки на паузу не тикает
	pausedAt := now.Add(-20 * time.Minute)
	onHold := &Task{Status: TaskPaused, StartedAt: &started, PausedAt: &pausedAt}
	assert.InDelta(t, 30, onHold.TotalMinutes(now), 1e-9)

	// Паузы больше общего времени: отрицательное обрезается до нуля
	clamped := &Task{Status: TaskInProgress, StartedAt: &started, TotalPauseSecs: 100000}
	assert.Zero(t, clamped.TotalMinutes(now))
}

func TestSnapshotStampAndMatch(t *testing.T) {
	reading := &InventoryDayItem{Quantity: 2, OverrideCreateTask: false, OverrideNoTask: false}
	task := &Task{}

	// Без снимка совпадения нет
	assert.False(t, task.SnapshotMatches(reading, 4))

	task.StampSnapshot(reading, 4)
	assert.True(t, task.SnapshotMatches(reading, 4))

	// Любое расхождение ломает совпадение
	assert.False(t, task.SnapshotMatches(reading, 5))

	reading.Quantity = 3
	assert.False(t, task.SnapshotMatches(reading, 4))
	reading.Quantity = 2

	reading.OverrideCreateTask = true
	assert.False(t, task.SnapshotMatches(reading, 4))
	reading.OverrideCreateTask = false

	reading.OverrideNoTask = true
	assert.False(t, task.SnapshotMatches(reading, 4))
}

func TestSnapshotStampCopiesValues(t *testing.T) {
	reading := &InventoryDayItem{Quantity: 2}
	task := &Task{}
	task.StampSnapshot(reading, 4)

	// Снимок хранит копии, а не указатели на показание
	reading.Quantity = 7
	assert.Equal(t, 2.0, *task.SnapshotQuantity)
}
