package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepline/server/internal/models"
)

func finishedTask(cost float64, finishedAt time.Time) models.Task {
	return models.Task{
		Status:     models.TaskCompleted,
		LaborCost:  &cost,
		FinishedAt: &finishedAt,
	}
}

func TestComputeLaborStatsWindows(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// Отсортировано по finished_at по убыванию, как отдает запрос
	tasks := []models.Task{
		finishedTask(10, asOf.AddDate(0, 0, -1)),  // неделя и месяц
		finishedTask(14, asOf.AddDate(0, 0, -5)),  // неделя и месяц
		finishedTask(20, asOf.AddDate(0, 0, -20)), // только месяц
		finishedTask(40, asOf.AddDate(0, 0, -60)), // только все время
	}

	stats := ComputeLaborStats(tasks, asOf)

	require.NotNil(t, stats.MostRecent)
	assert.InDelta(t, 10, *stats.MostRecent, 1e-9)

	require.NotNil(t, stats.Week7Avg)
	assert.InDelta(t, 12, *stats.Week7Avg, 1e-9)

	require.NotNil(t, stats.Month30Avg)
	assert.InDelta(t, (10.0+14+20)/3, *stats.Month30Avg, 1e-9)

	require.NotNil(t, stats.AllTimeAvg)
	assert.InDelta(t, 21, *stats.AllTimeAvg, 1e-9)
}

func TestComputeLaborStatsWindowBoundary(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// Ровно на границе окна: задача входит в окно
	tasks := []models.Task{finishedTask(8, asOf.AddDate(0, 0, -7))}
	stats := ComputeLaborStats(tasks, asOf)
	require.NotNil(t, stats.Week7Avg)
	assert.InDelta(t, 8, *stats.Week7Avg, 1e-9)
}

func TestComputeLaborStatsEmpty(t *testing.T) {
	stats := ComputeLaborStats(nil, time.Now())
	assert.Nil(t, stats.MostRecent)
	assert.Nil(t, stats.Week7Avg)
	assert.Nil(t, stats.Month30Avg)
	assert.Nil(t, stats.AllTimeAvg)
}

func TestComputeLaborStatsZeroCostDistinctFromMissing(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// Нулевая стоимость валидна и участвует в среднем
	tasks := []models.Task{finishedTask(0, asOf.AddDate(0, 0, -1))}
	stats := ComputeLaborStats(tasks, asOf)
	require.NotNil(t, stats.MostRecent)
	assert.Zero(t, *stats.MostRecent)
	require.NotNil(t, stats.AllTimeAvg)
	assert.Zero(t, *stats.AllTimeAvg)
}

func TestComputeLaborStatsSkipsIncomplete(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cost := 5.0
	fin := asOf.AddDate(0, 0, -2)

	tasks := []models.Task{
		{Status: models.TaskCompleted, LaborCost: &cost},  // нет finished_at
		{Status: models.TaskCompleted, FinishedAt: &fin},  // нет стоимости
		finishedTask(12, asOf.AddDate(0, 0, -3)),
	}

	stats := ComputeLaborStats(tasks, asOf)
	require.NotNil(t, stats.MostRecent)
	assert.InDelta(t, 12, *stats.MostRecent, 1e-9)
	require.NotNil(t, stats.AllTimeAvg)
	assert.InDelta(t, 12, *stats.AllTimeAvg, 1e-9)
}
