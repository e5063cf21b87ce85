package services

import (
	"fmt"
	"log"

	"prepline/server/internal/models"

	"gorm.io/gorm"
)

// IngredientService управляет ингредиентами
type IngredientService struct {
	db    *gorm.DB
	units *UnitService
}

// NewIngredientService создает новый экземпляр IngredientService
func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{
		db:    db,
		units: NewUnitService(),
	}
}

// GetAllIngredients возвращает все ингредиенты со справочниками
func (s *IngredientService) GetAllIngredients() ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.db.
		Preload("Category").
		Preload("Vendor").
		Preload("VendorUnit").
		Order("name ASC").
		Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки ингредиентов: %w", err)
	}
	return ingredients, nil
}

// GetIngredientByID возвращает ингредиент по ID
func (s *IngredientService) GetIngredientByID(ingredientID string) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.
		Preload("Category").
		Preload("Vendor").
		Preload("VendorUnit").
		Where("id = ?", ingredientID).First(&ing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: ингредиент %s", ErrNotFound, ingredientID)
		}
		return nil, fmt.Errorf("ошибка загрузки ингредиента: %w", err)
	}
	return &ing, nil
}

// CreateIngredient создает ингредиент с проверкой настроек единиц
func (s *IngredientService) CreateIngredient(ing *models.Ingredient) (*models.Ingredient, error) {
	if err := s.validate(ing); err != nil {
		return nil, err
	}
	if err := s.db.Create(ing).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания ингредиента: %w", err)
	}
	log.Printf("✅ Создан ингредиент: %s (%s)", ing.Name, ing.ID)
	return s.GetIngredientByID(ing.ID)
}

// UpdateIngredient обновляет ингредиент
func (s *IngredientService) UpdateIngredient(ingredientID string, updates map[string]interface{}) (*models.Ingredient, error) {
	result := s.db.Model(&models.Ingredient{}).Where("id = ?", ingredientID).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка обновления ингредиента: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: ингредиент %s", ErrNotFound, ingredientID)
	}

	updated, err := s.GetIngredientByID(ingredientID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteIngredient мягко удаляет ингредиент
// Ингредиент, используемый в рецептах или блюдах, не удаляется
func (s *IngredientService) DeleteIngredient(ingredientID string) error {
	var recipeCount, dishCount int64
	if err := s.db.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", ingredientID).Count(&recipeCount).Error; err != nil {
		return fmt.Errorf("ошибка проверки рецептов: %w", err)
	}
	if err := s.db.Model(&models.DishIngredientPortion{}).Where("ingredient_id = ?", ingredientID).Count(&dishCount).Error; err != nil {
		return fmt.Errorf("ошибка проверки блюд: %w", err)
	}
	if recipeCount > 0 || dishCount > 0 {
		return fmt.Errorf("%w: ингредиент %s используется в рецептах или блюдах", ErrValidation, ingredientID)
	}

	result := s.db.Where("id = ?", ingredientID).Delete(&models.Ingredient{})
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления ингредиента: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: ингредиент %s", ErrNotFound, ingredientID)
	}
	return nil
}

// AvailableUnits возвращает допустимые единицы ингредиента
func (s *IngredientService) AvailableUnits(ingredientID string) ([]string, error) {
	ing, err := s.GetIngredientByID(ingredientID)
	if err != nil {
		return nil, err
	}

	var units []string
	if ing.UseItemCountPricing {
		units = append(units, "item")
		if ing.PurchaseType == models.PurchaseCase && ing.ItemsPerCase != nil {
			units = append(units, "case")
		}
		return units, nil
	}

	switch ing.UsageType {
	case models.UsageWeight:
		for u := range weightConversions {
			units = append(units, u)
		}
	case models.UsageVolume:
		for u := range volumeConversions {
			units = append(units, u)
		}
	}
	if ing.HasBakingConversion {
		for u := range bakingMeasurements {
			units = append(units, u)
		}
	}
	return units, nil
}

// validate проверяет согласованность типа использования и единиц
// Смешение веса и объема без кондитерского моста отклоняется
func (s *IngredientService) validate(ing *models.Ingredient) error {
	if ing.Name == "" {
		return fmt.Errorf("%w: имя ингредиента обязательно", ErrValidation)
	}

	switch ing.UsageType {
	case models.UsageWeight, models.UsageVolume, models.UsageCount:
	default:
		return fmt.Errorf("%w: неизвестный тип использования %q", ErrValidation, ing.UsageType)
	}

	if ing.NetUnit != nil {
		family := FamilyOf(*ing.NetUnit)
		switch ing.UsageType {
		case models.UsageWeight:
			if family != FamilyWeight {
				return fmt.Errorf("%w: весовой ингредиент %s с нетто-единицей %s", ErrIncompatibleUnits, ing.Name, *ing.NetUnit)
			}
		case models.UsageVolume:
			if family != FamilyVolume {
				return fmt.Errorf("%w: объемный ингредиент %s с нетто-единицей %s", ErrIncompatibleUnits, ing.Name, *ing.NetUnit)
			}
		}
	}

	if ing.HasBakingConversion {
		if ing.BakingMeasurementUnit == nil || ing.BakingWeightAmount == nil || ing.BakingWeightUnit == nil {
			return fmt.Errorf("%w: кондитерская конверсия %s задана не полностью", ErrValidation, ing.Name)
		}
		if _, ok := bakingMeasurements[*ing.BakingMeasurementUnit]; !ok {
			return fmt.Errorf("%w: неизвестная кондитерская мера %s", ErrValidation, *ing.BakingMeasurementUnit)
		}
		if FamilyOf(*ing.BakingWeightUnit) != FamilyWeight {
			return fmt.Errorf("%w: кондитерская конверсия %s требует весовую единицу", ErrIncompatibleUnits, ing.Name)
		}
	}

	if ing.PurchaseType == models.PurchaseCase && ing.UseItemCountPricing {
		if ing.ItemsPerCase == nil || *ing.ItemsPerCase <= 0 {
			return fmt.Errorf("%w: закупка кейсом %s без items_per_case", ErrValidation, ing.Name)
		}
	}

	return nil
}
