package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepline/server/internal/models"
)

func TestInventoryStatusOf(t *testing.T) {
	// Пороги: ниже 25% par критично, ниже 50% предупреждение
	assert.Equal(t, "critical", inventoryStatusOf(0, 4))
	assert.Equal(t, "critical", inventoryStatusOf(0.9, 4))
	assert.Equal(t, "warning", inventoryStatusOf(1, 4))
	assert.Equal(t, "warning", inventoryStatusOf(1.9, 4))
	assert.Equal(t, "ok", inventoryStatusOf(2, 4))
	assert.Equal(t, "ok", inventoryStatusOf(10, 4))

	// Нулевой par: любой остаток не ниже порогов
	assert.Equal(t, "ok", inventoryStatusOf(0, 0))
}

func TestMadeInParUnits(t *testing.T) {
	units := NewUnitService()
	item := &models.InventoryItem{
		ParUnitEqualsType: models.ParUnitAuto,
		ParLevel:          4,
		Batch:             &models.Batch{YieldAmount: fptr(32), YieldUnit: sptr("oz")},
	}

	// 16 oz при 8 oz на par-единицу: две par-единицы
	made := &models.Task{
		InventoryItem: item,
		MadeAmount:    fptr(16),
		MadeUnit:      sptr("oz"),
	}
	got := madeInParUnits(units, made)
	require.NotNil(t, got)
	assert.InDelta(t, 2, *got, 1e-9)

	// Фактический выход в другой весовой единице конвертируется
	made.MadeAmount = fptr(1)
	made.MadeUnit = sptr("lb")
	got = madeInParUnits(units, made)
	require.NotNil(t, got)
	assert.InDelta(t, 2, *got, 1e-9)

	// Без факта выхода или позиции перевод не выводится
	assert.Nil(t, madeInParUnits(units, &models.Task{InventoryItem: item}))
	assert.Nil(t, madeInParUnits(units, &models.Task{MadeAmount: fptr(1), MadeUnit: sptr("lb")}))

	// Несовместимая единица факта: перевод не выводится
	made.MadeUnit = sptr("gal")
	assert.Nil(t, madeInParUnits(units, made))
}
