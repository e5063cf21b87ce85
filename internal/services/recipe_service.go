package services

import (
	"fmt"
	"log"

	"prepline/server/internal/models"

	"gorm.io/gorm"
)

// RecipeIngredientInput представляет ингредиентную строку рецепта
type RecipeIngredientInput struct {
	IngredientID string  `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
	Unit         string  `json:"unit" binding:"required"`
}

// BatchPortionInput представляет порцию заготовки в рецепте или блюде
type BatchPortionInput struct {
	BatchID          string   `json:"batch_id" binding:"required"`
	PortionSize      *float64 `json:"portion_size"`
	PortionUnit      *string  `json:"portion_unit"`
	UsePercentOfCost bool     `json:"use_percent_of_cost"`
	PercentOfCost    *float64 `json:"percent_of_cost"`
}

// CreateRecipeRequest представляет создание рецепта
type CreateRecipeRequest struct {
	Name         string                  `json:"name" binding:"required"`
	Instructions *string                 `json:"instructions"`
	CategoryID   *string                 `json:"category_id"`
	Ingredients  []RecipeIngredientInput `json:"ingredients"`
}

// RecipeService управляет рецептами и их строками
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService создает новый экземпляр RecipeService
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{
		db: db,
	}
}

// GetAllRecipes возвращает все рецепты со строками
func (s *RecipeService) GetAllRecipes() ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := s.db.
		Preload("Category").
		Preload("Ingredients.Ingredient").
		Preload("BatchPortions.Batch").
		Order("name ASC").
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки рецептов: %w", err)
	}
	return recipes, nil
}

// GetRecipeByID возвращает рецепт по ID
func (s *RecipeService) GetRecipeByID(recipeID string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.
		Preload("Category").
		Preload("Ingredients.Ingredient").
		Preload("BatchPortions.Batch").
		Where("id = ?", recipeID).First(&recipe).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: рецепт %s", ErrNotFound, recipeID)
		}
		return nil, fmt.Errorf("ошибка загрузки рецепта: %w", err)
	}
	return &recipe, nil
}

// CreateRecipe создает рецепт с ингредиентными строками
func (s *RecipeService) CreateRecipe(req *CreateRecipeRequest) (*models.Recipe, error) {
	var created *models.Recipe

	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		recipe := models.Recipe{
			Name:         req.Name,
			Instructions: req.Instructions,
			CategoryID:   req.CategoryID,
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return fmt.Errorf("ошибка создания рецепта: %w", err)
		}

		for i, line := range req.Ingredients {
			ri := models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
				Unit:         line.Unit,
				SortOrder:    i,
			}
			if err := tx.Create(&ri).Error; err != nil {
				return fmt.Errorf("ошибка создания строки рецепта: %w", err)
			}
		}

		created = &recipe
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Создан рецепт: %s (%s)", created.Name, created.ID)
	return s.GetRecipeByID(created.ID)
}

// UpdateRecipe обновляет поля рецепта
func (s *RecipeService) UpdateRecipe(recipeID string, updates map[string]interface{}) (*models.Recipe, error) {
	result := s.db.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка обновления рецепта: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: рецепт %s", ErrNotFound, recipeID)
	}
	return s.GetRecipeByID(recipeID)
}

// DeleteRecipe мягко удаляет рецепт
// Рецепт, на котором построена заготовка, не удаляется
func (s *RecipeService) DeleteRecipe(recipeID string) error {
	var count int64
	if err := s.db.Model(&models.Batch{}).Where("recipe_id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("ошибка проверки заготовок: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: на рецепте %s построены заготовки", ErrValidation, recipeID)
	}

	result := s.db.Where("id = ?", recipeID).Delete(&models.Recipe{})
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления рецепта: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: рецепт %s", ErrNotFound, recipeID)
	}
	return nil
}

// SetIngredientLines заменяет ингредиентные строки рецепта
func (s *RecipeService) SetIngredientLines(recipeID string, lines []RecipeIngredientInput) (*models.Recipe, error) {
	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ?", recipeID).First(&recipe).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: рецепт %s", ErrNotFound, recipeID)
			}
			return fmt.Errorf("ошибка загрузки рецепта: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("ошибка очистки строк рецепта: %w", err)
		}
		for i, line := range lines {
			ri := models.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
				Unit:         line.Unit,
				SortOrder:    i,
			}
			if err := tx.Create(&ri).Error; err != nil {
				return fmt.Errorf("ошибка создания строки рецепта: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipeByID(recipeID)
}

// AddBatchPortion добавляет порцию заготовки в рецепт
// Циклы отклоняются в момент добавления строки, рецепты остаются без изменений
func (s *RecipeService) AddBatchPortion(recipeID string, input *BatchPortionInput) (*models.Recipe, error) {
	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ?", recipeID).First(&recipe).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: рецепт %s", ErrNotFound, recipeID)
			}
			return fmt.Errorf("ошибка загрузки рецепта: %w", err)
		}

		var batch models.Batch
		if err := tx.Where("id = ?", input.BatchID).First(&batch).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: заготовка %s", ErrNotFound, input.BatchID)
			}
			return fmt.Errorf("ошибка загрузки заготовки: %w", err)
		}

		if err := validatePortionInput(input, &batch); err != nil {
			return err
		}

		if err := s.checkCyclicDependency(tx, recipeID, batch.RecipeID, map[string]bool{}); err != nil {
			return err
		}

		portion := models.RecipeBatchPortion{
			RecipeID:         recipeID,
			BatchID:          input.BatchID,
			PortionSize:      input.PortionSize,
			PortionUnit:      input.PortionUnit,
			UsePercentOfCost: input.UsePercentOfCost,
			PercentOfCost:    input.PercentOfCost,
		}
		if err := tx.Create(&portion).Error; err != nil {
			return fmt.Errorf("ошибка создания порции: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipeByID(recipeID)
}

// RemoveBatchPortion удаляет порцию заготовки из рецепта
func (s *RecipeService) RemoveBatchPortion(recipeID, portionID string) error {
	result := s.db.Where("id = ? AND recipe_id = ?", portionID, recipeID).Delete(&models.RecipeBatchPortion{})
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления порции: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: порция %s", ErrNotFound, portionID)
	}
	return nil
}

// validatePortionInput проверяет согласованность режима порции
func validatePortionInput(input *BatchPortionInput, batch *models.Batch) error {
	if input.UsePercentOfCost {
		if input.PercentOfCost == nil || *input.PercentOfCost <= 0 {
			return fmt.Errorf("%w: процентная порция без значения процента", ErrValidation)
		}
		return nil
	}
	// Размерный режим недоступен для переменного выхода
	if batch.VariableYield {
		return fmt.Errorf("%w: заготовка %s с переменным выходом принимает только процентные порции", ErrValidation, batch.Name)
	}
	if input.PortionSize == nil || input.PortionUnit == nil {
		return fmt.Errorf("%w: размерная порция без размера или единицы", ErrValidation)
	}
	if batch.YieldUnit != nil {
		if FamilyOf(*input.PortionUnit) != FamilyOf(*batch.YieldUnit) {
			return fmt.Errorf("%w: единица порции %s несовместима с выходом в %s", ErrIncompatibleUnits, *input.PortionUnit, *batch.YieldUnit)
		}
	}
	return nil
}

// checkCyclicDependency рекурсивно проверяет циклические зависимости
// Обходит граф: рецепт -> порции заготовок -> рецепты заготовок
func (s *RecipeService) checkCyclicDependency(tx *gorm.DB, originalRecipeID, currentRecipeID string, visited map[string]bool) error {
	if currentRecipeID == originalRecipeID {
		return fmt.Errorf("%w: рецепт %s ссылается на себя через цепочку заготовок", ErrStructuralError, originalRecipeID)
	}
	if visited[currentRecipeID] {
		return nil // Уже проверяли этот рецепт
	}
	visited[currentRecipeID] = true

	var portions []models.RecipeBatchPortion
	if err := tx.Where("recipe_id = ?", currentRecipeID).Find(&portions).Error; err != nil {
		return fmt.Errorf("ошибка загрузки порций: %w", err)
	}

	for _, p := range portions {
		var batch models.Batch
		if err := tx.Where("id = ?", p.BatchID).First(&batch).Error; err != nil {
			continue // Заготовка не найдена - не критично
		}
		if err := s.checkCyclicDependency(tx, originalRecipeID, batch.RecipeID, visited); err != nil {
			return err
		}
	}

	return nil
}
