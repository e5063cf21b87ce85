package services

import (
	"fmt"

	"prepline/server/internal/models"
)

// Таблицы конвертации с фиксированными коэффициентами к базовой единице
// Вес: базовая единица фунт, объем: галлон, кондитерские меры: чашка
var (
	weightConversions = map[string]float64{
		"lb": 1,
		"oz": 16,
		"g":  453.592,
		"kg": 0.453592,
	}

	volumeConversions = map[string]float64{
		"gal":   1,
		"qt":    4,
		"pt":    8,
		"cup":   16,
		"fl_oz": 128,
		"l":     3.78541,
		"ml":    3785.41,
	}

	bakingMeasurements = map[string]float64{
		"cup":     1,
		"3_4_cup": 1.333,
		"2_3_cup": 1.5,
		"1_2_cup": 2,
		"1_3_cup": 3,
		"1_4_cup": 4,
		"1_8_cup": 8,
		"tbsp":    16,
		"tsp":     48,
	}
)

// UnitFamily представляет семейство единиц измерения
type UnitFamily string

const (
	FamilyWeight  UnitFamily = "weight"
	FamilyVolume  UnitFamily = "volume"
	FamilyCount   UnitFamily = "count"
	FamilyBaking  UnitFamily = "baking"
	FamilyUnknown UnitFamily = "unknown"
)

// FamilyOf определяет семейство единицы
func FamilyOf(unit string) UnitFamily {
	if _, ok := weightConversions[unit]; ok {
		return FamilyWeight
	}
	if _, ok := volumeConversions[unit]; ok {
		return FamilyVolume
	}
	if _, ok := bakingMeasurements[unit]; ok {
		return FamilyBaking
	}
	if unit == "item" || unit == "case" {
		return FamilyCount
	}
	return FamilyUnknown
}

// UnitService конвертирует количества между совместимыми единицами
// Мост вес-объем возможен только через кондитерскую конверсию ингредиента
type UnitService struct{}

// NewUnitService создает новый экземпляр UnitService
func NewUnitService() *UnitService {
	return &UnitService{}
}

// ConvertWeight конвертирует вес между единицами одной таблицы
func (s *UnitService) ConvertWeight(amount float64, fromUnit, toUnit string) (float64, error) {
	from, okFrom := weightConversions[fromUnit]
	to, okTo := weightConversions[toUnit]
	if !okFrom || !okTo {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, fromUnit, toUnit)
	}
	return amount * to / from, nil
}

// ConvertVolume конвертирует объем между единицами одной таблицы
func (s *UnitService) ConvertVolume(amount float64, fromUnit, toUnit string) (float64, error) {
	from, okFrom := volumeConversions[fromUnit]
	to, okTo := volumeConversions[toUnit]
	if !okFrom || !okTo {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, fromUnit, toUnit)
	}
	return amount * to / from, nil
}

// ConvertBaking конвертирует между кондитерскими мерами
func (s *UnitService) ConvertBaking(amount float64, fromUnit, toUnit string) (float64, error) {
	from, okFrom := bakingMeasurements[fromUnit]
	to, okTo := bakingMeasurements[toUnit]
	if !okFrom || !okTo {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, fromUnit, toUnit)
	}
	return amount * to / from, nil
}

// Convert конвертирует количество с учетом настроек ингредиента
// Перекрестная конвертация вес-объем запрещена без явного кондитерского моста:
// неявных предположений о плотности нет
func (s *UnitService) Convert(amount float64, fromUnit, toUnit string, ing *models.Ingredient) (float64, error) {
	if fromUnit == toUnit {
		return amount, nil
	}

	fromFamily := FamilyOf(fromUnit)
	toFamily := FamilyOf(toUnit)

	if fromFamily == FamilyUnknown || toFamily == FamilyUnknown {
		return 0, fmt.Errorf("%w: неизвестная единица %s или %s", ErrIncompatibleUnits, fromUnit, toUnit)
	}

	// Конвертация внутри одного семейства
	if fromFamily == toFamily {
		switch fromFamily {
		case FamilyWeight:
			return s.ConvertWeight(amount, fromUnit, toUnit)
		case FamilyVolume:
			return s.ConvertVolume(amount, fromUnit, toUnit)
		case FamilyBaking:
			return s.ConvertBaking(amount, fromUnit, toUnit)
		case FamilyCount:
			return s.convertCount(amount, fromUnit, toUnit, ing)
		}
	}

	// Мост вес <-> объем/кондитерская мера через настройки ингредиента
	if fromFamily == FamilyBaking && toFamily == FamilyWeight {
		return s.bakingToWeight(amount, fromUnit, toUnit, ing)
	}
	if fromFamily == FamilyWeight && toFamily == FamilyBaking {
		return s.weightToBaking(amount, fromUnit, toUnit, ing)
	}
	if fromFamily == FamilyVolume && toFamily == FamilyWeight {
		cups, err := s.ConvertVolume(amount, fromUnit, "cup")
		if err != nil {
			return 0, err
		}
		perCup, err := s.weightPerCup(ing, toUnit)
		if err != nil {
			return 0, err
		}
		return cups * perCup, nil
	}
	if fromFamily == FamilyWeight && toFamily == FamilyVolume {
		perCup, err := s.weightPerCup(ing, fromUnit)
		if err != nil {
			return 0, err
		}
		if perCup == 0 {
			return 0, fmt.Errorf("%w: нулевой вес кондитерской меры", ErrIncompatibleUnits)
		}
		return s.ConvertVolume(amount/perCup, "cup", toUnit)
	}
	// Кондитерские меры сами по себе объемные
	if fromFamily == FamilyBaking && toFamily == FamilyVolume {
		cups, err := s.ConvertBaking(amount, fromUnit, "cup")
		if err != nil {
			return 0, err
		}
		return s.ConvertVolume(cups, "cup", toUnit)
	}
	if fromFamily == FamilyVolume && toFamily == FamilyBaking {
		cups, err := s.ConvertVolume(amount, fromUnit, "cup")
		if err != nil {
			return 0, err
		}
		return s.ConvertBaking(cups, "cup", toUnit)
	}

	return 0, fmt.Errorf("%w: %s (%s) -> %s (%s)", ErrIncompatibleUnits, fromUnit, fromFamily, toUnit, toFamily)
}

// convertCount конвертирует между штукой и кейсом через items-per-case
func (s *UnitService) convertCount(amount float64, fromUnit, toUnit string, ing *models.Ingredient) (float64, error) {
	if ing == nil || ing.ItemsPerCase == nil || *ing.ItemsPerCase <= 0 {
		return 0, fmt.Errorf("%w: конвертация %s -> %s требует items_per_case", ErrIncompatibleUnits, fromUnit, toUnit)
	}
	perCase := float64(*ing.ItemsPerCase)
	if fromUnit == "case" && toUnit == "item" {
		return amount * perCase, nil
	}
	if fromUnit == "item" && toUnit == "case" {
		return amount / perCase, nil
	}
	return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, fromUnit, toUnit)
}

// weightPerCup возвращает вес одной чашки в указанной весовой единице
func (s *UnitService) weightPerCup(ing *models.Ingredient, weightUnit string) (float64, error) {
	if ing == nil || !ing.HasBakingConversion ||
		ing.BakingMeasurementUnit == nil || ing.BakingWeightAmount == nil || ing.BakingWeightUnit == nil {
		return 0, fmt.Errorf("%w: у ингредиента нет кондитерской конверсии", ErrIncompatibleUnits)
	}
	factor, ok := bakingMeasurements[*ing.BakingMeasurementUnit]
	if !ok {
		return 0, fmt.Errorf("%w: неизвестная кондитерская мера %s", ErrIncompatibleUnits, *ing.BakingMeasurementUnit)
	}

	// Определенная мера содержит 1/factor чашки
	perCup := *ing.BakingWeightAmount * factor
	if *ing.BakingWeightUnit != weightUnit {
		converted, err := s.ConvertWeight(perCup, *ing.BakingWeightUnit, weightUnit)
		if err != nil {
			return 0, err
		}
		perCup = converted
	}
	return perCup, nil
}

func (s *UnitService) bakingToWeight(amount float64, fromUnit, toUnit string, ing *models.Ingredient) (float64, error) {
	perCup, err := s.weightPerCup(ing, toUnit)
	if err != nil {
		return 0, err
	}
	cups, err := s.ConvertBaking(amount, fromUnit, "cup")
	if err != nil {
		return 0, err
	}
	return cups * perCup, nil
}

func (s *UnitService) weightToBaking(amount float64, fromUnit, toUnit string, ing *models.Ingredient) (float64, error) {
	perCup, err := s.weightPerCup(ing, fromUnit)
	if err != nil {
		return 0, err
	}
	if perCup == 0 {
		return 0, fmt.Errorf("%w: нулевой вес кондитерской меры", ErrIncompatibleUnits)
	}
	cups := amount / perCup
	return s.ConvertBaking(cups, "cup", toUnit)
}

// Способы вывода соответствия par-единицы и выхода заготовки,
// в порядке убывания доверия
const (
	ParConvManual      = "manual_override"
	ParConvDirectMatch = "direct_match"
	ParConvStandard    = "standard_table"
	ParConvBatchRatio  = "batch_ratio"
	ParConvNone        = "none"
)

// ParConversionResolution описывает, как одна par-единица позиции
// переводится в единицы выхода привязанной заготовки
type ParConversionResolution struct {
	Method       string   `json:"method"`
	Confidence   string   `json:"confidence"` // high, medium, low
	AmountPerPar *float64 `json:"amount_per_par"`
	Unit         *string  `json:"unit"`
}

// ResolveParUnitConversion выводит соответствие par-единицы позиции
// и выхода заготовки. Требует предзагруженных связей Batch и ParUnitName.
// Ручная настройка важнее прямого совпадения единицы, совпадение важнее
// табличной конвертации, таблица важнее деления выхода на par level
func (s *UnitService) ResolveParUnitConversion(item *models.InventoryItem) *ParConversionResolution {
	if item.ParUnitEqualsType == models.ParUnitCustom &&
		item.ParUnitEqualsAmount != nil && *item.ParUnitEqualsAmount > 0 && item.ParUnitEqualsUnit != nil {
		return &ParConversionResolution{
			Method:       ParConvManual,
			Confidence:   "high",
			AmountPerPar: item.ParUnitEqualsAmount,
			Unit:         item.ParUnitEqualsUnit,
		}
	}

	var yieldUnit *string
	if item.Batch != nil && !item.Batch.VariableYield {
		yieldUnit = item.Batch.YieldUnit
	}

	if yieldUnit != nil && item.ParUnitName != nil {
		parUnit := item.ParUnitName.Name

		if parUnit == *yieldUnit {
			one := 1.0
			return &ParConversionResolution{
				Method:       ParConvDirectMatch,
				Confidence:   "high",
				AmountPerPar: &one,
				Unit:         yieldUnit,
			}
		}

		if FamilyOf(parUnit) != FamilyUnknown {
			if converted, err := s.Convert(1, parUnit, *yieldUnit, nil); err == nil {
				return &ParConversionResolution{
					Method:       ParConvStandard,
					Confidence:   "medium",
					AmountPerPar: &converted,
					Unit:         yieldUnit,
				}
			}
		}
	}

	if item.ParUnitEqualsType == models.ParUnitAuto {
		if equals := item.ParUnitEqualsCalculated(); equals != nil {
			return &ParConversionResolution{
				Method:       ParConvBatchRatio,
				Confidence:   "low",
				AmountPerPar: equals,
				Unit:         yieldUnit,
			}
		}
	}

	return &ParConversionResolution{Method: ParConvNone, Confidence: "low"}
}
