package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepline/server/internal/models"
)

// Мешок муки: $18.50 за 50 lb
func flourIngredient() *models.Ingredient {
	return &models.Ingredient{
		ID:                  "ing-flour",
		Name:                "Мука",
		UsageType:           models.UsageWeight,
		PurchaseType:        models.PurchaseSingle,
		PurchaseTotalCost:   18.50,
		NetWeightVolumeItem: fptr(50),
		NetUnit:             sptr("lb"),
	}
}

func noStats(string) (*LaborStats, error) {
	return &LaborStats{}, nil
}

func TestIngredientCostPerUnit(t *testing.T) {
	units := NewUnitService()
	flour := flourIngredient()

	cpu, err := IngredientCostPerUnit(units, flour, "lb")
	require.NoError(t, err)
	assert.InDelta(t, 0.37, cpu, 1e-9)

	// Унция дешевле фунта в 16 раз
	cpu, err = IngredientCostPerUnit(units, flour, "oz")
	require.NoError(t, err)
	assert.InDelta(t, 0.37/16, cpu, 1e-9)
}

func TestIngredientCostPerUnitOverride(t *testing.T) {
	units := NewUnitService()
	flour := flourIngredient()
	flour.UsesPricePerWeightVolume = true
	flour.PricePerWeightVolume = fptr(0.50)

	// Явная цена имеет приоритет над расчетом из закупки
	cpu, err := IngredientCostPerUnit(units, flour, "lb")
	require.NoError(t, err)
	assert.InDelta(t, 0.50, cpu, 1e-9)
}

func TestIngredientCostPerUnitItemPricing(t *testing.T) {
	units := NewUnitService()
	cans := &models.Ingredient{
		ID:                  "ing-cans",
		Name:                "Банки томатов",
		UsageType:           models.UsageCount,
		PurchaseType:        models.PurchaseCase,
		PurchaseTotalCost:   24,
		UseItemCountPricing: true,
		ItemsPerCase:        iptr(6),
	}

	cpu, err := IngredientCostPerUnit(units, cans, "item")
	require.NoError(t, err)
	assert.InDelta(t, 4, cpu, 1e-9)

	cpu, err = IngredientCostPerUnit(units, cans, "case")
	require.NoError(t, err)
	assert.InDelta(t, 24, cpu, 1e-9)

	_, err = IngredientCostPerUnit(units, cans, "lb")
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestIngredientCostPerUnitIncompleteData(t *testing.T) {
	units := NewUnitService()
	// Нет цены и нетто-количества: стоимость нулевая, не ошибка
	cpu, err := IngredientCostPerUnit(units, &models.Ingredient{Name: "Пустой"}, "lb")
	require.NoError(t, err)
	assert.Zero(t, cpu)
}

// Граф для тестов: тесто из 2 lb муки, выход 128 oz, 45 минут труда по $16.75
func doughGraph(stats func(string) (*LaborStats, error)) *costGraph {
	flour := flourIngredient()
	recipe := models.Recipe{
		ID:   "rec-dough",
		Name: "Тесто",
		Ingredients: []models.RecipeIngredient{
			{RecipeID: "rec-dough", IngredientID: flour.ID, Ingredient: flour, Quantity: 2, Unit: "lb"},
		},
	}
	batch := models.Batch{
		ID:                    "batch-dough",
		Name:                  "Тесто (замес)",
		RecipeID:              "rec-dough",
		YieldAmount:           fptr(128),
		YieldUnit:             sptr("oz"),
		EstimatedLaborMinutes: 45,
		HourlyLaborRate:       16.75,
	}
	return newCostGraph(NewUnitService(), []models.Recipe{recipe}, []models.Batch{batch}, stats)
}

func TestRecipeCost(t *testing.T) {
	g := doughGraph(noStats)

	total, noData, err := g.recipeCost("rec-dough", LaborEstimated, map[string]bool{})
	require.NoError(t, err)
	assert.False(t, noData)
	assert.InDelta(t, 0.74, total, 1e-9)
}

func TestBatchCostEstimated(t *testing.T) {
	g := doughGraph(noStats)

	res, err := g.batchCost("batch-dough", LaborEstimated, map[string]bool{})
	require.NoError(t, err)

	// 45 минут по $16.75/час
	assert.InDelta(t, 12.5625, res.LaborCost, 1e-9)
	assert.InDelta(t, 0.74, res.RecipeCost, 1e-9)
	assert.InDelta(t, 13.3025, res.Total, 1e-9)
	assert.False(t, res.NoActualData)

	require.NotNil(t, res.CostPerYieldUnit)
	assert.InDelta(t, 13.3025/128, *res.CostPerYieldUnit, 1e-9)
	require.NotNil(t, res.YieldUnit)
	assert.Equal(t, "oz", *res.YieldUnit)
}

func TestBatchCostActualBasisFallback(t *testing.T) {
	g := doughGraph(noStats)

	// Фактических данных нет: откат к плановой стоимости с флагом
	res, err := g.batchCost("batch-dough", LaborMostRecent, map[string]bool{})
	require.NoError(t, err)
	assert.True(t, res.NoActualData)
	assert.InDelta(t, 12.5625, res.LaborCost, 1e-9)
}

func TestBatchCostActualBasis(t *testing.T) {
	g := doughGraph(func(string) (*LaborStats, error) {
		return &LaborStats{MostRecent: fptr(10.50)}, nil
	})

	res, err := g.batchCost("batch-dough", LaborMostRecent, map[string]bool{})
	require.NoError(t, err)
	assert.False(t, res.NoActualData)
	assert.InDelta(t, 10.50, res.LaborCost, 1e-9)
}

func TestVariableYieldBatch(t *testing.T) {
	flour := flourIngredient()
	recipe := models.Recipe{
		ID:   "rec-stock",
		Name: "Бульон",
		Ingredients: []models.RecipeIngredient{
			{RecipeID: "rec-stock", IngredientID: flour.ID, Ingredient: flour, Quantity: 1, Unit: "lb"},
		},
	}
	batch := models.Batch{
		ID:                    "batch-stock",
		Name:                  "Бульон (варка)",
		RecipeID:              "rec-stock",
		VariableYield:         true,
		EstimatedLaborMinutes: 60,
		HourlyLaborRate:       16.75,
	}
	g := newCostGraph(NewUnitService(), []models.Recipe{recipe}, []models.Batch{batch}, noStats)

	// Стоимость за единицу выхода не определена
	res, err := g.batchCost("batch-stock", LaborEstimated, map[string]bool{})
	require.NoError(t, err)
	assert.Nil(t, res.CostPerYieldUnit)

	// Размерная порция от переменного выхода запрещена
	_, err = g.batchPortionCost("batch-stock", fptr(8), sptr("oz"), false, nil, LaborEstimated, map[string]bool{})
	assert.ErrorIs(t, err, ErrValidation)

	// Процентная порция работает
	pc, err := g.batchPortionCost("batch-stock", nil, nil, true, fptr(0.25), LaborEstimated, map[string]bool{})
	require.NoError(t, err)
	assert.InDelta(t, 0.37*0.25, pc.Recipe, 1e-9)
	assert.InDelta(t, 16.75*0.25, pc.Labor, 1e-9)
}

func TestBatchPortionCostBySize(t *testing.T) {
	g := doughGraph(noStats)

	// 32 oz от выхода 128 oz: четверть полной стоимости
	pc, err := g.batchPortionCost("batch-dough", fptr(32), sptr("oz"), false, nil, LaborEstimated, map[string]bool{})
	require.NoError(t, err)
	assert.InDelta(t, 0.74*0.25, pc.Recipe, 1e-9)
	assert.InDelta(t, 12.5625*0.25, pc.Labor, 1e-9)

	// Порция в другой весовой единице конвертируется
	pc2, err := g.batchPortionCost("batch-dough", fptr(2), sptr("lb"), false, nil, LaborEstimated, map[string]bool{})
	require.NoError(t, err)
	assert.InDelta(t, pc.Recipe, pc2.Recipe, 1e-9)
	assert.InDelta(t, pc.Labor, pc2.Labor, 1e-9)
}

func TestBatchPortionMonotonicity(t *testing.T) {
	g := doughGraph(noStats)

	small, err := g.batchPortionCost("batch-dough", fptr(8), sptr("oz"), false, nil, LaborEstimated, map[string]bool{})
	require.NoError(t, err)
	large, err := g.batchPortionCost("batch-dough", fptr(16), sptr("oz"), false, nil, LaborEstimated, map[string]bool{})
	require.NoError(t, err)

	assert.Less(t, small.Recipe+small.Labor, large.Recipe+large.Labor)
}

func TestRecipeCycleDetection(t *testing.T) {
	// Рецепт включает порцию заготовки, сделанной по нему же
	recipe := models.Recipe{
		ID:   "rec-loop",
		Name: "Замкнутый",
		BatchPortions: []models.RecipeBatchPortion{
			{RecipeID: "rec-loop", BatchID: "batch-loop", UsePercentOfCost: true, PercentOfCost: fptr(0.5)},
		},
	}
	batch := models.Batch{
		ID:       "batch-loop",
		Name:     "Замкнутая заготовка",
		RecipeID: "rec-loop",
	}
	g := newCostGraph(NewUnitService(), []models.Recipe{recipe}, []models.Batch{batch}, noStats)

	_, _, err := g.recipeCost("rec-loop", LaborEstimated, map[string]bool{})
	assert.ErrorIs(t, err, ErrStructuralError)
}

func TestDishCost(t *testing.T) {
	units := NewUnitService()
	base := &models.Ingredient{
		ID:                  "ing-base",
		Name:                "Основа",
		UsageType:           models.UsageCount,
		PurchaseType:        models.PurchaseSingle,
		PurchaseTotalCost:   4.25,
		UseItemCountPricing: true,
	}
	dish := &models.Dish{
		ID:        "dish-1",
		Name:      "Маргарита",
		SalePrice: 15.99,
		IngredientPortions: []models.DishIngredientPortion{
			{DishID: "dish-1", IngredientID: base.ID, Ingredient: base, Quantity: 1, Unit: "item"},
		},
	}
	g := newCostGraph(units, nil, nil, noStats)

	res, err := g.dishCost(dish, LaborEstimated)
	require.NoError(t, err)

	assert.InDelta(t, 4.25, res.Total, 1e-9)
	assert.InDelta(t, 11.74, res.Margin, 1e-9)
	require.NotNil(t, res.FoodCostPct)
	assert.InDelta(t, 26.58, *res.FoodCostPct, 0.01)
	require.NotNil(t, res.Markup)
	assert.InDelta(t, 376.24, *res.Markup, 0.01)
}

func TestDishCostUndefinedMetrics(t *testing.T) {
	g := newCostGraph(NewUnitService(), nil, nil, noStats)

	// Нулевая цена продажи: food cost не определен
	res, err := g.dishCost(&models.Dish{ID: "dish-free", Name: "Бесплатный"}, LaborEstimated)
	require.NoError(t, err)
	assert.Nil(t, res.FoodCostPct)
	// Нулевая себестоимость: наценка не определена
	assert.Nil(t, res.Markup)
}

func TestParseLaborBasis(t *testing.T) {
	basis, err := ParseLaborBasis("")
	require.NoError(t, err)
	assert.Equal(t, LaborEstimated, basis)

	basis, err = ParseLaborBasis("week_avg")
	require.NoError(t, err)
	assert.Equal(t, LaborWeekAvg, basis)

	_, err = ParseLaborBasis("yearly")
	assert.ErrorIs(t, err, ErrValidation)
}
