package services

import (
	"fmt"

	"prepline/server/internal/models"

	"gorm.io/gorm"
)

// ReferenceService управляет справочниками: категории, поставщики,
// единицы закупки, par-единицы, накладные расходы, шаблоны уборки
type ReferenceService struct {
	db *gorm.DB
}

// NewReferenceService создает новый экземпляр ReferenceService
func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{
		db: db,
	}
}

// GetCategories возвращает все категории
func (s *ReferenceService) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки категорий: %w", err)
	}
	return categories, nil
}

// CreateCategory создает категорию
func (s *ReferenceService) CreateCategory(name string) (*models.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: имя категории обязательно", ErrValidation)
	}
	category := models.Category{Name: name}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания категории: %w", err)
	}
	return &category, nil
}

// DeleteCategory удаляет категорию без ссылок
func (s *ReferenceService) DeleteCategory(categoryID string) error {
	var refs int64
	if err := s.db.Model(&models.Ingredient{}).Where("category_id = ?", categoryID).Count(&refs).Error; err != nil {
		return fmt.Errorf("ошибка проверки ссылок: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: категория используется", ErrValidation)
	}
	result := s.db.Where("id = ?", categoryID).Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления категории: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: категория %s", ErrNotFound, categoryID)
	}
	return nil
}

// GetVendors возвращает всех поставщиков
func (s *ReferenceService) GetVendors() ([]models.Vendor, error) {
	var vendors []models.Vendor
	if err := s.db.Order("name ASC").Find(&vendors).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки поставщиков: %w", err)
	}
	return vendors, nil
}

// CreateVendor создает поставщика
func (s *ReferenceService) CreateVendor(vendor *models.Vendor) (*models.Vendor, error) {
	if vendor.Name == "" {
		return nil, fmt.Errorf("%w: имя поставщика обязательно", ErrValidation)
	}
	if err := s.db.Create(vendor).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания поставщика: %w", err)
	}
	return vendor, nil
}

// GetVendorUnits возвращает единицы закупки
func (s *ReferenceService) GetVendorUnits() ([]models.VendorUnit, error) {
	var units []models.VendorUnit
	if err := s.db.Order("name ASC").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки единиц закупки: %w", err)
	}
	return units, nil
}

// CreateVendorUnit создает единицу закупки
func (s *ReferenceService) CreateVendorUnit(name string) (*models.VendorUnit, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: имя единицы обязательно", ErrValidation)
	}
	unit := models.VendorUnit{Name: name}
	if err := s.db.Create(&unit).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания единицы закупки: %w", err)
	}
	return &unit, nil
}

// GetParUnitNames возвращает имена par-единиц
func (s *ReferenceService) GetParUnitNames() ([]models.ParUnitName, error) {
	var names []models.ParUnitName
	if err := s.db.Order("name ASC").Find(&names).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки par-единиц: %w", err)
	}
	return names, nil
}

// CreateParUnitName создает имя par-единицы
func (s *ReferenceService) CreateParUnitName(name string) (*models.ParUnitName, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: имя par-единицы обязательно", ErrValidation)
	}
	parUnit := models.ParUnitName{Name: name}
	if err := s.db.Create(&parUnit).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания par-единицы: %w", err)
	}
	return &parUnit, nil
}

// GetUtilityCosts возвращает накладные расходы
func (s *ReferenceService) GetUtilityCosts() ([]models.UtilityCost, error) {
	var costs []models.UtilityCost
	if err := s.db.Order("name ASC").Find(&costs).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки накладных расходов: %w", err)
	}
	return costs, nil
}

// UpsertUtilityCost создает или обновляет накладной расход
func (s *ReferenceService) UpsertUtilityCost(cost *models.UtilityCost) (*models.UtilityCost, error) {
	if cost.Name == "" {
		return nil, fmt.Errorf("%w: имя расхода обязательно", ErrValidation)
	}
	if cost.MonthlyCost < 0 {
		return nil, fmt.Errorf("%w: отрицательный расход", ErrValidation)
	}

	var existing models.UtilityCost
	res := s.db.Where("name = ?", cost.Name).First(&existing)
	if res.Error == nil {
		existing.MonthlyCost = cost.MonthlyCost
		existing.Notes = cost.Notes
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("ошибка обновления расхода: %w", err)
		}
		return &existing, nil
	}
	if res.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("ошибка проверки расхода: %w", res.Error)
	}

	if err := s.db.Create(cost).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания расхода: %w", err)
	}
	return cost, nil
}

// GetJanitorialTasks возвращает шаблоны уборочных задач
func (s *ReferenceService) GetJanitorialTasks() ([]models.JanitorialTask, error) {
	var tasks []models.JanitorialTask
	if err := s.db.Preload("Category").Order("title ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки уборочных задач: %w", err)
	}
	return tasks, nil
}

// CreateJanitorialTask создает шаблон уборочной задачи
func (s *ReferenceService) CreateJanitorialTask(task *models.JanitorialTask) (*models.JanitorialTask, error) {
	if task.Title == "" {
		return nil, fmt.Errorf("%w: заголовок задачи обязателен", ErrValidation)
	}
	switch task.TaskType {
	case models.JanitorialDaily, models.JanitorialManual:
	case "":
		task.TaskType = models.JanitorialManual
	default:
		return nil, fmt.Errorf("%w: неизвестный тип уборочной задачи %q", ErrValidation, task.TaskType)
	}
	if err := s.db.Create(task).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания уборочной задачи: %w", err)
	}
	return task, nil
}
