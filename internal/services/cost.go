package services

import (
	"fmt"
	"time"

	"prepline/server/internal/models"

	"gorm.io/gorm"
)

// LaborBasis определяет способ оценки стоимости труда в калькуляции
type LaborBasis string

const (
	LaborEstimated  LaborBasis = "estimated"
	LaborMostRecent LaborBasis = "most_recent"
	LaborWeekAvg    LaborBasis = "week_avg"
	LaborMonthAvg   LaborBasis = "month_avg"
	LaborAllTimeAvg LaborBasis = "all_time_avg"
)

// ParseLaborBasis разбирает базу труда из строки запроса
func ParseLaborBasis(raw string) (LaborBasis, error) {
	switch LaborBasis(raw) {
	case LaborEstimated, LaborMostRecent, LaborWeekAvg, LaborMonthAvg, LaborAllTimeAvg:
		return LaborBasis(raw), nil
	case "":
		return LaborEstimated, nil
	}
	return "", fmt.Errorf("%w: неизвестная база труда %q", ErrValidation, raw)
}

// IngredientCostResult представляет себестоимость ингредиента за единицу
type IngredientCostResult struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	CostPerUnit  float64 `json:"cost_per_unit"`
}

// RecipeCostResult представляет полную себестоимость рецепта
type RecipeCostResult struct {
	RecipeID     string     `json:"recipe_id"`
	Name         string     `json:"name"`
	Total        float64    `json:"total"`
	Basis        LaborBasis `json:"basis"`
	NoActualData bool       `json:"no_actual_data"`
}

// BatchCostResult представляет разбивку себестоимости заготовки
type BatchCostResult struct {
	BatchID          string     `json:"batch_id"`
	Name             string     `json:"name"`
	RecipeCost       float64    `json:"recipe_cost"`
	LaborCost        float64    `json:"labor_cost"`
	Total            float64    `json:"total"`
	Basis            LaborBasis `json:"basis"`
	NoActualData     bool       `json:"no_actual_data"`
	CostPerYieldUnit *float64   `json:"cost_per_yield_unit"`
	YieldUnit        *string    `json:"yield_unit"`
}

// DishCostResult представляет калькуляцию блюда с выведенными метриками
// FoodCostPct и Markup равны nil при неопределенности (нулевой знаменатель)
type DishCostResult struct {
	DishID               string     `json:"dish_id"`
	Name                 string     `json:"name"`
	RecipeCost           float64    `json:"recipe_cost"`
	LaborCost            float64    `json:"labor_cost"`
	DirectIngredientCost float64    `json:"direct_ingredient_cost"`
	Total                float64    `json:"total"`
	SalePrice            float64    `json:"sale_price"`
	FoodCostPct          *float64   `json:"food_cost_pct"`
	Margin               float64    `json:"margin"`
	Markup               *float64   `json:"markup"`
	Basis                LaborBasis `json:"basis"`
	NoActualData         bool       `json:"no_actual_data"`
}

// portionCost представляет вклад порции заготовки, разложенный на части
type portionCost struct {
	Recipe       float64
	Labor        float64
	NoActualData bool
}

// costGraph считает себестоимость по предзагруженному графу рецептов и заготовок
// Все вычисления на лету: кешированных значений нет
type costGraph struct {
	units   *UnitService
	recipes map[string]*models.Recipe
	batches map[string]*models.Batch
	stats   func(batchID string) (*LaborStats, error)
}

func newCostGraph(units *UnitService, recipes []models.Recipe, batches []models.Batch, stats func(string) (*LaborStats, error)) *costGraph {
	g := &costGraph{
		units:   units,
		recipes: make(map[string]*models.Recipe, len(recipes)),
		batches: make(map[string]*models.Batch, len(batches)),
		stats:   stats,
	}
	for i := range recipes {
		g.recipes[recipes[i].ID] = &recipes[i]
	}
	for i := range batches {
		g.batches[batches[i].ID] = &batches[i]
	}
	return g
}

// IngredientCostPerUnit возвращает себестоимость ингредиента за единицу
// Приоритет: явная цена за единицу > расчет из параметров закупки
func IngredientCostPerUnit(units *UnitService, ing *models.Ingredient, unit string) (float64, error) {
	if ing.UseItemCountPricing {
		switch unit {
		case "item", "":
			return ing.CostPerItem(), nil
		case "case":
			if ing.PurchaseType == models.PurchaseCase {
				return ing.PurchaseTotalCost, nil
			}
			return 0, fmt.Errorf("%w: ингредиент %s закупается не кейсами", ErrIncompatibleUnits, ing.Name)
		default:
			return 0, fmt.Errorf("%w: ингредиент %s со штучным ценообразованием, единица %s", ErrIncompatibleUnits, ing.Name, unit)
		}
	}

	var base float64
	if ing.UsesPricePerWeightVolume && ing.PricePerWeightVolume != nil {
		base = *ing.PricePerWeightVolume
	} else {
		totalNet := ing.TotalNetAmount()
		if totalNet <= 0 || ing.PurchaseTotalCost <= 0 {
			return 0, nil
		}
		base = ing.PurchaseTotalCost / totalNet
	}

	if ing.NetUnit == nil || unit == *ing.NetUnit || unit == "" {
		return base, nil
	}

	// Стоимость запрошенной единицы через ее эквивалент в нетто-единицах
	netPerRequested, err := units.Convert(1, unit, *ing.NetUnit, ing)
	if err != nil {
		return 0, err
	}
	return base * netPerRequested, nil
}

// recipeCost считает полную стоимость рецепта с рекурсией по порциям заготовок
// path содержит рецепты текущей цепочки вызовов для обнаружения циклов
func (g *costGraph) recipeCost(recipeID string, basis LaborBasis, path map[string]bool) (float64, bool, error) {
	if path[recipeID] {
		return 0, false, fmt.Errorf("%w: рецепт %s замыкает цикл", ErrStructuralError, recipeID)
	}
	r, ok := g.recipes[recipeID]
	if !ok {
		return 0, false, fmt.Errorf("%w: рецепт %s", ErrNotFound, recipeID)
	}
	path[recipeID] = true
	defer delete(path, recipeID)

	var total float64
	noData := false

	for _, line := range r.Ingredients {
		if line.Ingredient == nil {
			return 0, false, fmt.Errorf("%w: ингредиент %s", ErrNotFound, line.IngredientID)
		}
		cpu, err := IngredientCostPerUnit(g.units, line.Ingredient, line.Unit)
		if err != nil {
			return 0, false, err
		}
		total += cpu * line.Quantity
	}

	for _, p := range r.BatchPortions {
		pc, err := g.batchPortionCost(p.BatchID, p.PortionSize, p.PortionUnit, p.UsePercentOfCost, p.PercentOfCost, basis, path)
		if err != nil {
			return 0, false, err
		}
		total += pc.Recipe + pc.Labor
		noData = noData || pc.NoActualData
	}

	return total, noData, nil
}

// laborCost выбирает стоимость труда заготовки по базе
// При отсутствии фактических данных откатывается к плановой с флагом
func (g *costGraph) laborCost(b *models.Batch, basis LaborBasis) (float64, bool, error) {
	if basis == LaborEstimated {
		return b.EstimatedLaborCost(), false, nil
	}

	stats, err := g.stats(b.ID)
	if err != nil {
		return 0, false, err
	}

	var v *float64
	switch basis {
	case LaborMostRecent:
		v = stats.MostRecent
	case LaborWeekAvg:
		v = stats.Week7Avg
	case LaborMonthAvg:
		v = stats.Month30Avg
	case LaborAllTimeAvg:
		v = stats.AllTimeAvg
	default:
		return 0, false, fmt.Errorf("%w: неизвестная база труда %q", ErrValidation, basis)
	}

	if v == nil {
		return b.EstimatedLaborCost(), true, nil
	}
	return *v, false, nil
}

// batchCost считает полную стоимость заготовки: рецепт + труд
func (g *costGraph) batchCost(batchID string, basis LaborBasis, path map[string]bool) (*BatchCostResult, error) {
	b, ok := g.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("%w: заготовка %s", ErrNotFound, batchID)
	}

	recipeCost, recipeNoData, err := g.recipeCost(b.RecipeID, basis, path)
	if err != nil {
		return nil, err
	}

	laborCost, laborNoData, err := g.laborCost(b, basis)
	if err != nil {
		return nil, err
	}

	res := &BatchCostResult{
		BatchID:      b.ID,
		Name:         b.Name,
		RecipeCost:   recipeCost,
		LaborCost:    laborCost,
		Total:        recipeCost + laborCost,
		Basis:        basis,
		NoActualData: recipeNoData || laborNoData,
	}

	// Стоимость за единицу выхода доступна только при фиксированном выходе
	if !b.VariableYield && b.YieldAmount != nil && *b.YieldAmount > 0 {
		per := res.Total / *b.YieldAmount
		res.CostPerYieldUnit = &per
		res.YieldUnit = b.YieldUnit
	}

	return res, nil
}

// batchPortionCost считает вклад порции заготовки
// Процентный режим: доля от полной стоимости. Размерный режим: отношение
// порции к выходу, требует совместимости единиц и фиксированного выхода
func (g *costGraph) batchPortionCost(batchID string, size *float64, unit *string, usePercent bool, percent *float64, basis LaborBasis, path map[string]bool) (*portionCost, error) {
	bc, err := g.batchCost(batchID, basis, path)
	if err != nil {
		return nil, err
	}

	if usePercent {
		if percent == nil {
			return nil, fmt.Errorf("%w: процентная порция без значения процента", ErrValidation)
		}
		return &portionCost{
			Recipe:       bc.RecipeCost * *percent,
			Labor:        bc.LaborCost * *percent,
			NoActualData: bc.NoActualData,
		}, nil
	}

	b := g.batches[batchID]
	if b.VariableYield {
		return nil, fmt.Errorf("%w: размерная порция недоступна для заготовки %s с переменным выходом", ErrValidation, b.Name)
	}
	if size == nil || unit == nil {
		return nil, fmt.Errorf("%w: размерная порция без размера или единицы", ErrValidation)
	}
	if b.YieldAmount == nil || *b.YieldAmount <= 0 || b.YieldUnit == nil {
		return nil, fmt.Errorf("%w: у заготовки %s не задан выход", ErrValidation, b.Name)
	}

	converted, err := g.units.Convert(*size, *unit, *b.YieldUnit, nil)
	if err != nil {
		return nil, err
	}
	ratio := converted / *b.YieldAmount

	return &portionCost{
		Recipe:       bc.RecipeCost * ratio,
		Labor:        bc.LaborCost * ratio,
		NoActualData: bc.NoActualData,
	}, nil
}

// dishCost считает калькуляцию блюда по выбранной базе труда
func (g *costGraph) dishCost(d *models.Dish, basis LaborBasis) (*DishCostResult, error) {
	path := make(map[string]bool)

	var recipePart, laborPart, directCost float64
	noData := false

	for _, p := range d.BatchPortions {
		pc, err := g.batchPortionCost(p.BatchID, p.PortionSize, p.PortionUnit, p.UsePercentOfCost, p.PercentOfCost, basis, path)
		if err != nil {
			return nil, err
		}
		recipePart += pc.Recipe
		laborPart += pc.Labor
		noData = noData || pc.NoActualData
	}

	for _, line := range d.IngredientPortions {
		if line.Ingredient == nil {
			return nil, fmt.Errorf("%w: ингредиент %s", ErrNotFound, line.IngredientID)
		}
		cpu, err := IngredientCostPerUnit(g.units, line.Ingredient, line.Unit)
		if err != nil {
			return nil, err
		}
		directCost += cpu * line.Quantity
	}

	total := recipePart + laborPart + directCost
	res := &DishCostResult{
		DishID:               d.ID,
		Name:                 d.Name,
		RecipeCost:           recipePart,
		LaborCost:            laborPart,
		DirectIngredientCost: directCost,
		Total:                total,
		SalePrice:            d.SalePrice,
		Margin:               d.SalePrice - total,
		Basis:                basis,
		NoActualData:         noData,
	}

	// Деление на ноль не ошибка, а ожидаемое состояние: метрика не определена
	if d.SalePrice > 0 {
		pct := total / d.SalePrice * 100
		res.FoodCostPct = &pct
	}
	if total > 0 {
		mk := d.SalePrice / total * 100
		res.Markup = &mk
	}

	return res, nil
}

// CostService вычисляет себестоимость по всей цепочке
// ингредиент -> рецепт -> заготовка -> блюдо
type CostService struct {
	db    *gorm.DB
	units *UnitService
	labor *LaborService
}

// NewCostService создает новый экземпляр CostService
func NewCostService(db *gorm.DB) *CostService {
	return &CostService{
		db:    db,
		units: NewUnitService(),
		labor: NewLaborService(db),
	}
}

// buildGraph загружает граф рецептов и заготовок целиком
// Объем данных ресторанный, одна загрузка дешевле точечных запросов в рекурсии
func (s *CostService) buildGraph() (*costGraph, error) {
	var recipes []models.Recipe
	if err := s.db.
		Preload("Ingredients.Ingredient").
		Preload("BatchPortions").
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки рецептов: %w", err)
	}

	var batches []models.Batch
	if err := s.db.Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки заготовок: %w", err)
	}

	return newCostGraph(s.units, recipes, batches, func(batchID string) (*LaborStats, error) {
		return s.labor.Stats(batchID, time.Now().UTC())
	}), nil
}

// CostOfIngredient возвращает себестоимость ингредиента за указанную единицу
func (s *CostService) CostOfIngredient(ingredientID, unit string) (*IngredientCostResult, error) {
	var ing models.Ingredient
	if err := s.db.Where("id = ?", ingredientID).First(&ing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: ингредиент %s", ErrNotFound, ingredientID)
		}
		return nil, fmt.Errorf("ошибка загрузки ингредиента: %w", err)
	}

	if unit == "" {
		if ing.UseItemCountPricing {
			unit = "item"
		} else if ing.NetUnit != nil {
			unit = *ing.NetUnit
		}
	}

	cpu, err := IngredientCostPerUnit(s.units, &ing, unit)
	if err != nil {
		return nil, err
	}

	return &IngredientCostResult{
		IngredientID: ing.ID,
		Name:         ing.Name,
		Unit:         unit,
		CostPerUnit:  cpu,
	}, nil
}

// CostOfRecipe возвращает полную стоимость рецепта
func (s *CostService) CostOfRecipe(recipeID string, basis LaborBasis) (*RecipeCostResult, error) {
	g, err := s.buildGraph()
	if err != nil {
		return nil, err
	}

	r, ok := g.recipes[recipeID]
	if !ok {
		return nil, fmt.Errorf("%w: рецепт %s", ErrNotFound, recipeID)
	}

	total, noData, err := g.recipeCost(recipeID, basis, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	return &RecipeCostResult{
		RecipeID:     r.ID,
		Name:         r.Name,
		Total:        total,
		Basis:        basis,
		NoActualData: noData,
	}, nil
}

// CostOfBatch возвращает разбивку стоимости заготовки
func (s *CostService) CostOfBatch(batchID string, basis LaborBasis) (*BatchCostResult, error) {
	g, err := s.buildGraph()
	if err != nil {
		return nil, err
	}
	return g.batchCost(batchID, basis, make(map[string]bool))
}

// CostOfDish возвращает калькуляцию блюда
func (s *CostService) CostOfDish(dishID string, basis LaborBasis) (*DishCostResult, error) {
	var dish models.Dish
	if err := s.db.
		Preload("BatchPortions").
		Preload("IngredientPortions.Ingredient").
		Where("id = ?", dishID).First(&dish).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: блюдо %s", ErrNotFound, dishID)
		}
		return nil, fmt.Errorf("ошибка загрузки блюда: %w", err)
	}

	g, err := s.buildGraph()
	if err != nil {
		return nil, err
	}
	return g.dishCost(&dish, basis)
}

// ComputeCost вычисляет себестоимость сущности по типу
func (s *CostService) ComputeCost(entityType, entityID string, basis LaborBasis) (interface{}, error) {
	switch entityType {
	case "ingredient":
		return s.CostOfIngredient(entityID, "")
	case "recipe":
		return s.CostOfRecipe(entityID, basis)
	case "batch":
		return s.CostOfBatch(entityID, basis)
	case "dish":
		return s.CostOfDish(entityID, basis)
	}
	return nil, fmt.Errorf("%w: неизвестный тип сущности %q", ErrValidation, entityType)
}
