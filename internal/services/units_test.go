package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepline/server/internal/models"
)

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }
func iptr(v int) *int         { return &v }

func TestConvertWeight(t *testing.T) {
	s := NewUnitService()

	got, err := s.ConvertWeight(1, "lb", "oz")
	require.NoError(t, err)
	assert.InDelta(t, 16, got, 1e-9)

	got, err = s.ConvertWeight(32, "oz", "lb")
	require.NoError(t, err)
	assert.InDelta(t, 2, got, 1e-9)

	got, err = s.ConvertWeight(1, "kg", "g")
	require.NoError(t, err)
	assert.InDelta(t, 1000, got, 0.5)

	_, err = s.ConvertWeight(1, "lb", "gal")
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestConvertVolume(t *testing.T) {
	s := NewUnitService()

	got, err := s.ConvertVolume(1, "gal", "qt")
	require.NoError(t, err)
	assert.InDelta(t, 4, got, 1e-9)

	got, err = s.ConvertVolume(1, "gal", "fl_oz")
	require.NoError(t, err)
	assert.InDelta(t, 128, got, 1e-9)

	got, err = s.ConvertVolume(8, "cup", "qt")
	require.NoError(t, err)
	assert.InDelta(t, 2, got, 1e-9)
}

func TestConvertBaking(t *testing.T) {
	s := NewUnitService()

	got, err := s.ConvertBaking(1, "cup", "tbsp")
	require.NoError(t, err)
	assert.InDelta(t, 16, got, 1e-9)

	got, err = s.ConvertBaking(3, "tsp", "tbsp")
	require.NoError(t, err)
	assert.InDelta(t, 1, got, 1e-9)

	// 1/2 чашки = 2 меры на чашку
	got, err = s.ConvertBaking(1, "cup", "1_2_cup")
	require.NoError(t, err)
	assert.InDelta(t, 2, got, 1e-9)
}

func TestConvertSameUnit(t *testing.T) {
	s := NewUnitService()
	got, err := s.Convert(7.5, "lb", "lb", nil)
	require.NoError(t, err)
	assert.Equal(t, 7.5, got)
}

func TestConvertCrossFamilyWithoutBridge(t *testing.T) {
	s := NewUnitService()

	// Без кондитерской конверсии плотность неизвестна
	_, err := s.Convert(1, "cup", "oz", nil)
	assert.ErrorIs(t, err, ErrIncompatibleUnits)

	ing := &models.Ingredient{Name: "Соль", UsageType: models.UsageWeight}
	_, err = s.Convert(1, "lb", "gal", ing)
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestConvertWeightVolumeViaBakingBridge(t *testing.T) {
	s := NewUnitService()

	// Мука: 1 чашка весит 4.25 oz
	flour := &models.Ingredient{
		Name:                  "Мука",
		UsageType:             models.UsageWeight,
		HasBakingConversion:   true,
		BakingMeasurementUnit: sptr("cup"),
		BakingWeightAmount:    fptr(4.25),
		BakingWeightUnit:      sptr("oz"),
	}

	got, err := s.Convert(2, "cup", "oz", flour)
	require.NoError(t, err)
	assert.InDelta(t, 8.5, got, 1e-9)

	// Обратное направление
	got, err = s.Convert(8.5, "oz", "cup", flour)
	require.NoError(t, err)
	assert.InDelta(t, 2, got, 1e-9)

	// Кондитерская мера -> вес
	got, err = s.Convert(16, "tbsp", "oz", flour)
	require.NoError(t, err)
	assert.InDelta(t, 4.25, got, 1e-9)
}

func TestConvertBridgeWithFractionalMeasure(t *testing.T) {
	s := NewUnitService()

	// Конверсия задана на 1/2 чашки: полный вес чашки вдвое больше
	sugar := &models.Ingredient{
		Name:                  "Сахар",
		UsageType:             models.UsageWeight,
		HasBakingConversion:   true,
		BakingMeasurementUnit: sptr("1_2_cup"),
		BakingWeightAmount:    fptr(3.5),
		BakingWeightUnit:      sptr("oz"),
	}

	got, err := s.Convert(1, "cup", "oz", sugar)
	require.NoError(t, err)
	assert.InDelta(t, 7, got, 1e-9)
}

func TestConvertVolumeToBaking(t *testing.T) {
	s := NewUnitService()

	got, err := s.Convert(1, "qt", "tbsp", nil)
	require.NoError(t, err)
	assert.InDelta(t, 64, got, 1e-9)
}

func TestConvertCount(t *testing.T) {
	s := NewUnitService()

	ing := &models.Ingredient{
		Name:         "Банки томатов",
		UsageType:    models.UsageCount,
		PurchaseType: models.PurchaseCase,
		ItemsPerCase: iptr(6),
	}

	got, err := s.Convert(2, "case", "item", ing)
	require.NoError(t, err)
	assert.InDelta(t, 12, got, 1e-9)

	got, err = s.Convert(3, "item", "case", ing)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)

	// Без items_per_case множитель не выводится
	_, err = s.Convert(1, "case", "item", &models.Ingredient{Name: "X"})
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyWeight, FamilyOf("lb"))
	assert.Equal(t, FamilyVolume, FamilyOf("cup")) // чашка в первую очередь объем
	assert.Equal(t, FamilyBaking, FamilyOf("tbsp"))
	assert.Equal(t, FamilyCount, FamilyOf("item"))
	assert.Equal(t, FamilyUnknown, FamilyOf("bucket"))
}

func TestResolveParUnitConversion(t *testing.T) {
	s := NewUnitService()
	fixedBatch := &models.Batch{YieldAmount: fptr(32), YieldUnit: sptr("oz")}

	// Ручная настройка важнее всего остального
	manual := &models.InventoryItem{
		ParUnitEqualsType:   models.ParUnitCustom,
		ParUnitEqualsAmount: fptr(2),
		ParUnitEqualsUnit:   sptr("qt"),
		ParLevel:            4,
		Batch:               fixedBatch,
		ParUnitName:         &models.ParUnitName{Name: "oz"},
	}
	res := s.ResolveParUnitConversion(manual)
	assert.Equal(t, ParConvManual, res.Method)
	assert.Equal(t, "high", res.Confidence)
	assert.Equal(t, 2.0, *res.AmountPerPar)
	assert.Equal(t, "qt", *res.Unit)

	// Имя par-единицы совпадает с единицей выхода
	direct := &models.InventoryItem{
		ParUnitEqualsType: models.ParUnitItself,
		Batch:             fixedBatch,
		ParUnitName:       &models.ParUnitName{Name: "oz"},
	}
	res = s.ResolveParUnitConversion(direct)
	assert.Equal(t, ParConvDirectMatch, res.Method)
	assert.Equal(t, 1.0, *res.AmountPerPar)

	// Имя par-единицы известная единица, перевод по таблице
	standard := &models.InventoryItem{
		ParUnitEqualsType: models.ParUnitItself,
		Batch:             fixedBatch,
		ParUnitName:       &models.ParUnitName{Name: "lb"},
	}
	res = s.ResolveParUnitConversion(standard)
	assert.Equal(t, ParConvStandard, res.Method)
	assert.Equal(t, "medium", res.Confidence)
	assert.InDelta(t, 16, *res.AmountPerPar, 1e-9)
	assert.Equal(t, "oz", *res.Unit)

	// Непереводимое имя при типе auto: деление выхода на par level
	ratio := &models.InventoryItem{
		ParUnitEqualsType: models.ParUnitAuto,
		ParLevel:          4,
		Batch:             fixedBatch,
		ParUnitName:       &models.ParUnitName{Name: "лоток"},
	}
	res = s.ResolveParUnitConversion(ratio)
	assert.Equal(t, ParConvBatchRatio, res.Method)
	assert.Equal(t, "low", res.Confidence)
	assert.InDelta(t, 8, *res.AmountPerPar, 1e-9)

	// Переменный выход без ручной настройки: соответствие не выводится
	loose := &models.InventoryItem{
		ParUnitEqualsType: models.ParUnitItself,
		Batch:             &models.Batch{VariableYield: true},
		ParUnitName:       &models.ParUnitName{Name: "лоток"},
	}
	res = s.ResolveParUnitConversion(loose)
	assert.Equal(t, ParConvNone, res.Method)
	assert.Nil(t, res.AmountPerPar)
}
