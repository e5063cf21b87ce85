package services

import (
	"fmt"
	"log"

	"prepline/server/internal/models"

	"gorm.io/gorm"
)

// DishIngredientInput представляет прямую ингредиентную строку блюда
type DishIngredientInput struct {
	IngredientID string  `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
	Unit         string  `json:"unit" binding:"required"`
}

// DishService управляет блюдами и их составом
type DishService struct {
	db *gorm.DB
}

// NewDishService создает новый экземпляр DishService
func NewDishService(db *gorm.DB) *DishService {
	return &DishService{
		db: db,
	}
}

// GetAllDishes возвращает все блюда с составом
func (s *DishService) GetAllDishes() ([]models.Dish, error) {
	var dishes []models.Dish
	if err := s.db.
		Preload("Category").
		Preload("BatchPortions.Batch").
		Preload("IngredientPortions.Ingredient").
		Order("name ASC").
		Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки блюд: %w", err)
	}
	return dishes, nil
}

// GetDishByID возвращает блюдо по ID
func (s *DishService) GetDishByID(dishID string) (*models.Dish, error) {
	var dish models.Dish
	if err := s.db.
		Preload("Category").
		Preload("BatchPortions.Batch").
		Preload("IngredientPortions.Ingredient").
		Where("id = ?", dishID).First(&dish).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: блюдо %s", ErrNotFound, dishID)
		}
		return nil, fmt.Errorf("ошибка загрузки блюда: %w", err)
	}
	return &dish, nil
}

// CreateDish создает блюдо
func (s *DishService) CreateDish(dish *models.Dish) (*models.Dish, error) {
	if dish.Name == "" {
		return nil, fmt.Errorf("%w: имя блюда обязательно", ErrValidation)
	}
	if dish.SalePrice < 0 {
		return nil, fmt.Errorf("%w: отрицательная цена продажи", ErrValidation)
	}
	if err := s.db.Create(dish).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания блюда: %w", err)
	}
	log.Printf("✅ Создано блюдо: %s (%s)", dish.Name, dish.ID)
	return s.GetDishByID(dish.ID)
}

// UpdateDish обновляет блюдо
func (s *DishService) UpdateDish(dishID string, updates map[string]interface{}) (*models.Dish, error) {
	result := s.db.Model(&models.Dish{}).Where("id = ?", dishID).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка обновления блюда: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: блюдо %s", ErrNotFound, dishID)
	}
	return s.GetDishByID(dishID)
}

// DeleteDish мягко удаляет блюдо вместе со строками состава
func (s *DishService) DeleteDish(dishID string) error {
	return runWithRetry(s.db, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", dishID).Delete(&models.Dish{})
		if result.Error != nil {
			return fmt.Errorf("ошибка удаления блюда: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: блюдо %s", ErrNotFound, dishID)
		}
		if err := tx.Where("dish_id = ?", dishID).Delete(&models.DishBatchPortion{}).Error; err != nil {
			return fmt.Errorf("ошибка удаления порций блюда: %w", err)
		}
		if err := tx.Where("dish_id = ?", dishID).Delete(&models.DishIngredientPortion{}).Error; err != nil {
			return fmt.Errorf("ошибка удаления строк блюда: %w", err)
		}
		return nil
	})
}

// AddBatchPortion добавляет порцию заготовки в блюдо
// Режимы и проверки те же, что у порций рецепта. Цикл здесь невозможен:
// на блюдо ничто не ссылается
func (s *DishService) AddBatchPortion(dishID string, input *BatchPortionInput) (*models.Dish, error) {
	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		var dish models.Dish
		if err := tx.Where("id = ?", dishID).First(&dish).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: блюдо %s", ErrNotFound, dishID)
			}
			return fmt.Errorf("ошибка загрузки блюда: %w", err)
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

		portion := models.DishBatchPortion{
			DishID:           dishID,
			BatchID:          input.BatchID,
			PortionSize:      input.PortionSize,
			PortionUnit:      input.PortionUnit,
			UsePercentOfCost: input.UsePercentOfCost,
			PercentOfCost:    input.PercentOfCost,
		}
		if err := tx.Create(&portion).Error; err != nil {
			return fmt.Errorf("ошибка создания порции блюда: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetDishByID(dishID)
}

// RemoveBatchPortion удаляет порцию заготовки из блюда
func (s *DishService) RemoveBatchPortion(dishID, portionID string) error {
	result := s.db.Where("id = ? AND dish_id = ?", portionID, dishID).Delete(&models.DishBatchPortion{})
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления порции блюда: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: порция %s", ErrNotFound, portionID)
	}
	return nil
}

// SetIngredientLines заменяет прямые ингредиентные строки блюда
func (s *DishService) SetIngredientLines(dishID string, lines []DishIngredientInput) (*models.Dish, error) {
	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		var dish models.Dish
		if err := tx.Where("id = ?", dishID).First(&dish).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: блюдо %s", ErrNotFound, dishID)
			}
			return fmt.Errorf("ошибка загрузки блюда: %w", err)
		}

		if err := tx.Where("dish_id = ?", dishID).Delete(&models.DishIngredientPortion{}).Error; err != nil {
			return fmt.Errorf("ошибка очистки строк блюда: %w", err)
		}
		for i, line := range lines {
			dip := models.DishIngredientPortion{
				DishID:       dishID,
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
				Unit:         line.Unit,
				SortOrder:    i,
			}
			if err := tx.Create(&dip).Error; err != nil {
				return fmt.Errorf("ошибка создания строки блюда: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetDishByID(dishID)
}
