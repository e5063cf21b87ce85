package services

import (
	"fmt"
	"log"

	"prepline/server/internal/models"

	"gorm.io/gorm"
)

// BatchService управляет заготовками
type BatchService struct {
	db *gorm.DB
}

// NewBatchService создает новый экземпляр BatchService
func NewBatchService(db *gorm.DB) *BatchService {
	return &BatchService{
		db: db,
	}
}

// GetAllBatches возвращает все заготовки
func (s *BatchService) GetAllBatches() ([]models.Batch, error) {
	var batches []models.Batch
	if err := s.db.
		Preload("Recipe").
		Preload("Category").
		Order("name ASC").
		Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки заготовок: %w", err)
	}
	return batches, nil
}

// GetBatchByID возвращает заготовку по ID
func (s *BatchService) GetBatchByID(batchID string) (*models.Batch, error) {
	var batch models.Batch
	if err := s.db.
		Preload("Recipe").
		Preload("Category").
		Where("id = ?", batchID).First(&batch).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: заготовка %s", ErrNotFound, batchID)
		}
		return nil, fmt.Errorf("ошибка загрузки заготовки: %w", err)
	}
	return &batch, nil
}

// CreateBatch создает заготовку
func (s *BatchService) CreateBatch(batch *models.Batch) (*models.Batch, error) {
	if err := s.validate(batch); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := s.db.Where("id = ?", batch.RecipeID).First(&recipe).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: рецепт %s", ErrNotFound, batch.RecipeID)
		}
		return nil, fmt.Errorf("ошибка загрузки рецепта: %w", err)
	}

	if err := s.db.Create(batch).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания заготовки: %w", err)
	}
	log.Printf("✅ Создана заготовка: %s (%s)", batch.Name, batch.ID)
	return s.GetBatchByID(batch.ID)
}

// UpdateBatch обновляет заготовку
func (s *BatchService) UpdateBatch(batchID string, updates map[string]interface{}) (*models.Batch, error) {
	result := s.db.Model(&models.Batch{}).Where("id = ?", batchID).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка обновления заготовки: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: заготовка %s", ErrNotFound, batchID)
	}

	updated, err := s.GetBatchByID(batchID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBatch мягко удаляет заготовку
// Заготовка, на которую ссылаются порции или позиции, не удаляется
func (s *BatchService) DeleteBatch(batchID string) error {
	var refs int64
	if err := s.db.Model(&models.RecipeBatchPortion{}).Where("batch_id = ?", batchID).Count(&refs).Error; err != nil {
		return fmt.Errorf("ошибка проверки порций рецептов: %w", err)
	}
	var dishRefs int64
	if err := s.db.Model(&models.DishBatchPortion{}).Where("batch_id = ?", batchID).Count(&dishRefs).Error; err != nil {
		return fmt.Errorf("ошибка проверки порций блюд: %w", err)
	}
	var itemRefs int64
	if err := s.db.Model(&models.InventoryItem{}).Where("batch_id = ?", batchID).Count(&itemRefs).Error; err != nil {
		return fmt.Errorf("ошибка проверки позиций инвентаря: %w", err)
	}
	if refs+dishRefs+itemRefs > 0 {
		return fmt.Errorf("%w: на заготовку %s есть ссылки", ErrValidation, batchID)
	}

	result := s.db.Where("id = ?", batchID).Delete(&models.Batch{})
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления заготовки: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: заготовка %s", ErrNotFound, batchID)
	}
	return nil
}

// validate проверяет согласованность выхода заготовки
func (s *BatchService) validate(batch *models.Batch) error {
	if batch.Name == "" {
		return fmt.Errorf("%w: имя заготовки обязательно", ErrValidation)
	}
	if batch.RecipeID == "" {
		return fmt.Errorf("%w: заготовка без рецепта", ErrValidation)
	}

	if !batch.VariableYield {
		if batch.YieldAmount == nil || *batch.YieldAmount <= 0 {
			return fmt.Errorf("%w: фиксированный выход %s без объема", ErrValidation, batch.Name)
		}
		if batch.YieldUnit == nil || FamilyOf(*batch.YieldUnit) == FamilyUnknown {
			return fmt.Errorf("%w: заготовка %s с неизвестной единицей выхода", ErrValidation, batch.Name)
		}
	}

	if batch.EstimatedLaborMinutes < 0 {
		return fmt.Errorf("%w: отрицательные плановые минуты", ErrValidation)
	}
	if batch.HourlyLaborRate < 0 {
		return fmt.Errorf("%w: отрицательная ставка", ErrValidation)
	}
	return nil
}
