package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepline/server/internal/models"
)

func doughItem() *models.InventoryItem {
	return &models.InventoryItem{
		ID:                "item-dough",
		Name:              "Тесто в холодильнике",
		BatchID:           sptr("batch-dough"),
		ParLevel:          4,
		ParUnitEqualsType: models.ParUnitAuto,
		Batch: &models.Batch{
			ID:          "batch-dough",
			YieldAmount: fptr(32),
			YieldUnit:   sptr("oz"),
		},
	}
}

func readingFor(item *models.InventoryItem, qty float64) *models.InventoryDayItem {
	return &models.InventoryDayItem{
		ID:              "reading-" + item.ID,
		DayID:           "day-1",
		InventoryItemID: item.ID,
		Quantity:        qty,
		InventoryItem:   item,
	}
}

func TestPlanItemActionBelowParCreates(t *testing.T) {
	reading := readingFor(doughItem(), 1.5)

	plan, err := planItemAction(reading, nil, false)
	require.NoError(t, err)
	assert.Equal(t, actionCreate, plan.Action)

	// Дефицит 2.5 par-единицы, auto: 32/4 = 8 oz на единицу
	require.NotNil(t, plan.SizeAmount)
	assert.InDelta(t, 20, *plan.SizeAmount, 1e-9)
	require.NotNil(t, plan.SizeUnit)
	assert.Equal(t, "oz", *plan.SizeUnit)
	assert.Contains(t, plan.Description, "Тесто в холодильнике")
}

func TestPlanItemActionAtParDeletesNotStarted(t *testing.T) {
	reading := readingFor(doughItem(), 4)
	stale := models.Task{ID: "task-1", Status: models.TaskNotStarted, AutoGenerated: true}

	plan, err := planItemAction(reading, []models.Task{stale}, false)
	require.NoError(t, err)
	assert.Equal(t, actionDelete, plan.Action)
	assert.Equal(t, "task-1", plan.Task.ID)
}

func TestPlanItemActionAtParNoTask(t *testing.T) {
	reading := readingFor(doughItem(), 5)

	plan, err := planItemAction(reading, nil, false)
	require.NoError(t, err)
	assert.Equal(t, actionNone, plan.Action)
}

func TestPlanItemActionOverrideNoTaskSuppresses(t *testing.T) {
	reading := readingFor(doughItem(), 1)
	reading.OverrideNoTask = true

	plan, err := planItemAction(reading, nil, false)
	require.NoError(t, err)
	assert.Equal(t, actionNone, plan.Action)

	// Существующая незапущенная задача при подавлении удаляется
	stale := models.Task{ID: "task-1", Status: models.TaskNotStarted}
	plan, err = planItemAction(reading, []models.Task{stale}, false)
	require.NoError(t, err)
	assert.Equal(t, actionDelete, plan.Action)
}

func TestPlanItemActionOverrideCreateForces(t *testing.T) {
	// Остаток выше par, но задача форсирована: дефицит обрезается до нуля
	reading := readingFor(doughItem(), 6)
	reading.OverrideCreateTask = true

	plan, err := planItemAction(reading, nil, false)
	require.NoError(t, err)
	assert.Equal(t, actionCreate, plan.Action)
	require.NotNil(t, plan.SizeAmount)
	assert.Zero(t, *plan.SizeAmount)
}

func TestPlanItemActionConflictingOverrides(t *testing.T) {
	reading := readingFor(doughItem(), 1)
	reading.OverrideCreateTask = true
	reading.OverrideNoTask = true

	_, err := planItemAction(reading, nil, false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlanItemActionProtectedTaskUntouchable(t *testing.T) {
	running := models.Task{ID: "task-run", Status: models.TaskInProgress}

	// Остаток поднялся выше par: запущенная задача все равно не трогается
	reading := readingFor(doughItem(), 10)
	plan, err := planItemAction(reading, []models.Task{running}, false)
	require.NoError(t, err)
	assert.Equal(t, actionNone, plan.Action)

	// И при force тоже
	reading = readingFor(doughItem(), 1)
	plan, err = planItemAction(reading, []models.Task{running}, true)
	require.NoError(t, err)
	assert.Equal(t, actionNone, plan.Action)
}

func TestPlanItemActionNoBatchNoTask(t *testing.T) {
	item := doughItem()
	item.BatchID = nil
	reading := readingFor(item, 0)

	plan, err := planItemAction(reading, nil, false)
	require.NoError(t, err)
	assert.Equal(t, actionNone, plan.Action)
}

func TestPlanItemActionSnapshotIdempotence(t *testing.T) {
	item := doughItem()
	reading := readingFor(item, 2)

	task := models.Task{ID: "task-1", Status: models.TaskNotStarted}
	task.StampSnapshot(reading, item.ParLevel)

	// Показание не менялось: повторный прогон ничего не делает
	plan, err := planItemAction(reading, []models.Task{task}, false)
	require.NoError(t, err)
	assert.Equal(t, actionNone, plan.Action)
	assert.NotNil(t, plan.Task)

	// force пересчитывает задачу даже при совпадающем снимке
	plan, err = planItemAction(reading, []models.Task{task}, true)
	require.NoError(t, err)
	assert.Equal(t, actionUpdate, plan.Action)

	// Изменившееся показание перегенерирует задачу
	reading.Quantity = 1
	plan, err = planItemAction(reading, []models.Task{task}, false)
	require.NoError(t, err)
	assert.Equal(t, actionUpdate, plan.Action)
	require.NotNil(t, plan.SizeAmount)
	assert.InDelta(t, 24, *plan.SizeAmount, 1e-9)
}

func TestPlanItemActionTaskWithoutSnapshot(t *testing.T) {
	reading := readingFor(doughItem(), 2)
	legacy := models.Task{ID: "task-old", Status: models.TaskNotStarted}

	// Задача без снимка всегда перегенерируется
	plan, err := planItemAction(reading, []models.Task{legacy}, false)
	require.NoError(t, err)
	assert.Equal(t, actionUpdate, plan.Action)
}

func TestPlanItemActionMissingItem(t *testing.T) {
	reading := &models.InventoryDayItem{ID: "r", InventoryItemID: "ghost"}
	_, err := planItemAction(reading, nil, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskSizingAuto(t *testing.T) {
	item := doughItem()

	amount, unit := taskSizing(item, 2)
	require.NotNil(t, amount)
	assert.InDelta(t, 16, *amount, 1e-9)
	require.NotNil(t, unit)
	assert.Equal(t, "oz", *unit)
}

func TestTaskSizingCustom(t *testing.T) {
	item := &models.InventoryItem{
		Name:                "Соус",
		ParUnitEqualsType:   models.ParUnitCustom,
		ParUnitEqualsAmount: fptr(2),
		ParUnitEqualsUnit:   sptr("qt"),
	}

	amount, unit := taskSizing(item, 3)
	require.NotNil(t, amount)
	assert.InDelta(t, 6, *amount, 1e-9)
	require.NotNil(t, unit)
	assert.Equal(t, "qt", *unit)
}

func TestTaskSizingItself(t *testing.T) {
	item := &models.InventoryItem{
		Name:              "Противни",
		ParUnitEqualsType: models.ParUnitItself,
		ParUnitName:       &models.ParUnitName{Name: "противень"},
	}

	amount, unit := taskSizing(item, 5)
	require.NotNil(t, amount)
	assert.InDelta(t, 5, *amount, 1e-9)
	require.NotNil(t, unit)
	assert.Equal(t, "противень", *unit)
}

func TestTaskSizingVariableYield(t *testing.T) {
	item := &models.InventoryItem{
		Name:              "Бульон",
		ParLevel:          3,
		ParUnitEqualsType: models.ParUnitAuto,
		Batch:             &models.Batch{ID: "b", VariableYield: true},
	}

	// Переменный выход: множитель не выводится, размер неизвестен
	amount, unit := taskSizing(item, 2)
	assert.Nil(t, amount)
	assert.Nil(t, unit)
}
