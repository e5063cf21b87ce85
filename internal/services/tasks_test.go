package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prepline/server/internal/models"
)

func TestRequiresMadeAmount(t *testing.T) {
	// Ручная задача без заготовки и позиции: факт выхода не нужен
	assert.False(t, requiresMadeAmount(&models.Task{}))

	// Заготовка с фиксированным выходом
	fixed := &models.Batch{YieldAmount: fptr(32), YieldUnit: sptr("oz")}
	assert.False(t, requiresMadeAmount(&models.Task{Batch: fixed}))

	// Переменный выход заготовки требует факта
	variable := &models.Batch{VariableYield: true}
	assert.True(t, requiresMadeAmount(&models.Task{Batch: variable}))

	// Позиция с выводимым множителем par-единицы
	item := &models.InventoryItem{
		ParLevel:          4,
		ParUnitEqualsType: models.ParUnitAuto,
		Batch:             fixed,
	}
	assert.False(t, requiresMadeAmount(&models.Task{InventoryItem: item}))

	// Позиция с невыводимым множителем требует факта
	loose := &models.InventoryItem{ParUnitEqualsType: models.ParUnitCustom}
	assert.True(t, requiresMadeAmount(&models.Task{InventoryItem: loose}))

	// Переменный выход заготовки позиции требует факта
	itemVar := &models.InventoryItem{
		ParUnitEqualsType: models.ParUnitItself,
		Batch:             variable,
	}
	assert.True(t, requiresMadeAmount(&models.Task{InventoryItem: itemVar}))
}
