package services

import (
	"fmt"
	"log"

	"prepline/server/internal/models"

	"gorm.io/gorm"
)

// InventoryItemService управляет настройками позиций инвентаризации
type InventoryItemService struct {
	db *gorm.DB
}

// NewInventoryItemService создает новый экземпляр InventoryItemService
func NewInventoryItemService(db *gorm.DB) *InventoryItemService {
	return &InventoryItemService{
		db: db,
	}
}

// GetAllItems возвращает все позиции
func (s *InventoryItemService) GetAllItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.
		Preload("Category").
		Preload("Batch").
		Preload("ParUnitName").
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки позиций: %w", err)
	}
	return items, nil
}

// GetItemByID возвращает позицию по ID
func (s *InventoryItemService) GetItemByID(itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.
		Preload("Category").
		Preload("Batch").
		Preload("ParUnitName").
		Where("id = ?", itemID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: позиция %s", ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("ошибка загрузки позиции: %w", err)
	}
	return &item, nil
}

// CreateItem создает позицию с проверкой определения par-единицы
func (s *InventoryItemService) CreateItem(item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := s.validate(item); err != nil {
		return nil, err
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания позиции: %w", err)
	}
	log.Printf("✅ Создана позиция инвентаря: %s (%s)", item.Name, item.ID)
	return s.GetItemByID(item.ID)
}

// UpdateItem обновляет позицию
func (s *InventoryItemService) UpdateItem(itemID string, updates map[string]interface{}) (*models.InventoryItem, error) {
	result := s.db.Model(&models.InventoryItem{}).Where("id = ?", itemID).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка обновления позиции: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: позиция %s", ErrNotFound, itemID)
	}

	updated, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ParConversion возвращает способ перевода par-единицы позиции в единицы выхода заготовки
func (s *InventoryItemService) ParConversion(itemID string) (*ParConversionResolution, error) {
	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	return NewUnitService().ResolveParUnitConversion(item), nil
}

// DeleteItem мягко удаляет позицию
func (s *InventoryItemService) DeleteItem(itemID string) error {
	result := s.db.Where("id = ?", itemID).Delete(&models.InventoryItem{})
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления позиции: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: позиция %s", ErrNotFound, itemID)
	}
	return nil
}

// validate проверяет определение par-unit-equals
// Тип auto требует привязанной заготовки с фиксированным выходом
func (s *InventoryItemService) validate(item *models.InventoryItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: имя позиции обязательно", ErrValidation)
	}
	if item.ParLevel < 0 {
		return fmt.Errorf("%w: отрицательный par level", ErrValidation)
	}

	switch item.ParUnitEqualsType {
	case models.ParUnitItself:
	case models.ParUnitCustom:
		if item.ParUnitEqualsAmount == nil || *item.ParUnitEqualsAmount <= 0 || item.ParUnitEqualsUnit == nil {
			return fmt.Errorf("%w: custom par-unit-equals у %s задан не полностью", ErrValidation, item.Name)
		}
		if FamilyOf(*item.ParUnitEqualsUnit) == FamilyUnknown {
			return fmt.Errorf("%w: неизвестная единица %s", ErrValidation, *item.ParUnitEqualsUnit)
		}
	case models.ParUnitAuto:
		if item.BatchID == nil {
			return fmt.Errorf("%w: auto par-unit-equals у %s требует привязанную заготовку", ErrValidation, item.Name)
		}
		var batch models.Batch
		if err := s.db.Where("id = ?", *item.BatchID).First(&batch).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: заготовка %s", ErrNotFound, *item.BatchID)
			}
			return fmt.Errorf("ошибка загрузки заготовки: %w", err)
		}
		if batch.VariableYield {
			return fmt.Errorf("%w: auto par-unit-equals у %s требует фиксированный выход заготовки", ErrValidation, item.Name)
		}
	default:
		return fmt.Errorf("%w: неизвестный тип par-unit-equals %q", ErrValidation, item.ParUnitEqualsType)
	}

	return nil
}
