package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatedLaborCost(t *testing.T) {
	b := &Batch{EstimatedLaborMinutes: 45, HourlyLaborRate: 16.75}
	assert.InDelta(t, 12.5625, b.EstimatedLaborCost(), 1e-9)

	b = &Batch{EstimatedLaborMinutes: 0, HourlyLaborRate: 16.75}
	assert.Zero(t, b.EstimatedLaborCost())
}

func TestAvailableScalesUnscalable(t *testing.T) {
	b := &Batch{CanBeScaled: false, ScaleDouble: true, ScaleHalf: true}

	// Флаги множителей без разрешения масштабирования игнорируются
	scales := b.AvailableScales()
	require.Len(t, scales, 1)
	assert.Equal(t, "full", scales[0].Key)
	assert.Equal(t, 1.0, scales[0].Factor)
}

func TestAvailableScales(t *testing.T) {
	b := &Batch{CanBeScaled: true, ScaleDouble: true, ScaleHalf: true, ScaleSixteenth: true}

	scales := b.AvailableScales()
	require.Len(t, scales, 4)

	keys := make(map[string]float64, len(scales))
	for _, s := range scales {
		keys[s.Key] = s.Factor
	}
	assert.Equal(t, 1.0, keys["full"])
	assert.Equal(t, 2.0, keys["double"])
	assert.Equal(t, 0.5, keys["half"])
	assert.Equal(t, 0.0625, keys["sixteenth"])
}

func TestScaledYield(t *testing.T) {
	amount := 32.0
	unit := "oz"
	b := &Batch{YieldAmount: &amount, YieldUnit: &unit}

	half := b.ScaledYield(0.5)
	require.NotNil(t, half)
	assert.InDelta(t, 16, *half, 1e-9)

	// Переменный выход не масштабируется
	b.VariableYield = true
	assert.Nil(t, b.ScaledYield(0.5))
}
