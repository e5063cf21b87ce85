package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParUnitEqualsCalculated(t *testing.T) {
	// itself: множитель всегда единица
	itself := &InventoryItem{ParUnitEqualsType: ParUnitItself}
	v := itself.ParUnitEqualsCalculated()
	require.NotNil(t, v)
	assert.Equal(t, 1.0, *v)

	// custom: явное количество
	amount := 2.5
	custom := &InventoryItem{ParUnitEqualsType: ParUnitCustom, ParUnitEqualsAmount: &amount}
	v = custom.ParUnitEqualsCalculated()
	require.NotNil(t, v)
	assert.Equal(t, 2.5, *v)

	// custom без количества не выводится
	assert.Nil(t, (&InventoryItem{ParUnitEqualsType: ParUnitCustom}).ParUnitEqualsCalculated())

	// auto: выход заготовки делится на par level
	yield := 32.0
	auto := &InventoryItem{
		ParUnitEqualsType: ParUnitAuto,
		ParLevel:          4,
		Batch:             &Batch{YieldAmount: &yield},
	}
	v = auto.ParUnitEqualsCalculated()
	require.NotNil(t, v)
	assert.Equal(t, 8.0, *v)

	// auto без заготовки или с переменным выходом не выводится
	assert.Nil(t, (&InventoryItem{ParUnitEqualsType: ParUnitAuto, ParLevel: 4}).ParUnitEqualsCalculated())
	varYield := &InventoryItem{
		ParUnitEqualsType: ParUnitAuto,
		ParLevel:          4,
		Batch:             &Batch{VariableYield: true, YieldAmount: &yield},
	}
	assert.Nil(t, varYield.ParUnitEqualsCalculated())

	// auto с нулевым par level не выводится
	zeroPar := &InventoryItem{
		ParUnitEqualsType: ParUnitAuto,
		Batch:             &Batch{YieldAmount: &yield},
	}
	assert.Nil(t, zeroPar.ParUnitEqualsCalculated())
}

func TestHasFixedMultiplier(t *testing.T) {
	assert.True(t, (&InventoryItem{ParUnitEqualsType: ParUnitItself}).HasFixedMultiplier())
	assert.False(t, (&InventoryItem{ParUnitEqualsType: ParUnitCustom}).HasFixedMultiplier())
}

func TestBelowPar(t *testing.T) {
	reading := &InventoryDayItem{Quantity: 3}
	assert.True(t, reading.BelowPar(4))
	// Ровно на уровне: не ниже
	assert.False(t, reading.BelowPar(3))
	assert.False(t, reading.BelowPar(2))
}

func TestIsFinalized(t *testing.T) {
	assert.False(t, (&InventoryDay{}).IsFinalized())
	assert.True(t, (&InventoryDay{Finalized: true}).IsFinalized())

	// Выставленный момент закрытия означает закрытый день даже без флага
	now := time.Now()
	assert.True(t, (&InventoryDay{FinalizedAt: &now}).IsFinalized())
}
