package services

import (
	"fmt"
	"log"
	"time"

	"prepline/server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateDayRequest представляет создание инвентарного дня
type CreateDayRequest struct {
	Date        string   `json:"date" binding:"required"` // YYYY-MM-DD
	EmployeeIDs []string `json:"employee_ids"`
	GlobalNotes *string  `json:"global_notes"`
}

// UpdateReadingRequest представляет обновление показания позиции
type UpdateReadingRequest struct {
	Quantity           *float64 `json:"quantity"`
	OverrideCreateTask *bool    `json:"override_create_task"`
	OverrideNoTask     *bool    `json:"override_no_task"`
}

// InventoryService управляет инвентарными днями и показаниями
type InventoryService struct {
	db     *gorm.DB
	events *EventService
}

// NewInventoryService создает новый экземпляр InventoryService
func NewInventoryService(db *gorm.DB, events *EventService) *InventoryService {
	return &InventoryService{
		db:     db,
		events: events,
	}
}

// CreateDay создает инвентарный день на дату
// На каждую активную позицию заводится нулевое показание
func (s *InventoryService) CreateDay(req *CreateDayRequest) (*models.InventoryDay, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: дата %q, ожидается YYYY-MM-DD", ErrValidation, req.Date)
	}

	var created *models.InventoryDay

	err = runWithRetry(s.db, func(tx *gorm.DB) error {
		var existing models.InventoryDay
		res := tx.Where("date = ?", date).First(&existing)
		if res.Error == nil {
			return fmt.Errorf("%w: %s", ErrDuplicateDay, req.Date)
		}
		if res.Error != gorm.ErrRecordNotFound {
			return fmt.Errorf("ошибка проверки даты: %w", res.Error)
		}

		day := models.InventoryDay{
			Date:        date,
			GlobalNotes: req.GlobalNotes,
		}
		if err := tx.Create(&day).Error; err != nil {
			return fmt.Errorf("ошибка создания дня: %w", err)
		}

		if len(req.EmployeeIDs) > 0 {
			if err := s.replaceEmployees(tx, &day, req.EmployeeIDs); err != nil {
				return err
			}
		}

		var items []models.InventoryItem
		if err := tx.Find(&items).Error; err != nil {
			return fmt.Errorf("ошибка загрузки позиций: %w", err)
		}
		for _, item := range items {
			reading := models.InventoryDayItem{
				DayID:           day.ID,
				InventoryItemID: item.ID,
				Quantity:        0,
			}
			if err := tx.Create(&reading).Error; err != nil {
				return fmt.Errorf("ошибка создания показания: %w", err)
			}
		}

		created = &day
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Создан инвентарный день %s (%s)", created.ID, req.Date)
	return s.GetDay(created.ID)
}

// GetDay возвращает день со связями
func (s *InventoryService) GetDay(dayID string) (*models.InventoryDay, error) {
	var day models.InventoryDay
	if err := s.db.
		Preload("Employees").
		Preload("Items").
		Preload("Items.InventoryItem").
		Preload("Items.InventoryItem.Batch").
		Preload("Items.InventoryItem.ParUnitName").
		Where("id = ?", dayID).First(&day).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: день %s", ErrNotFound, dayID)
		}
		return nil, fmt.Errorf("ошибка загрузки дня: %w", err)
	}
	return &day, nil
}

// GetDayByDate возвращает день по календарной дате
func (s *InventoryService) GetDayByDate(dateStr string) (*models.InventoryDay, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: дата %q", ErrValidation, dateStr)
	}
	var day models.InventoryDay
	if err := s.db.Where("date = ?", date).First(&day).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: день на %s", ErrNotFound, dateStr)
		}
		return nil, fmt.Errorf("ошибка загрузки дня: %w", err)
	}
	return s.GetDay(day.ID)
}

// ListDays возвращает дни по убыванию даты
func (s *InventoryService) ListDays(limit int) ([]models.InventoryDay, error) {
	if limit <= 0 {
		limit = 30
	}
	var days []models.InventoryDay
	if err := s.db.Order("date DESC").Limit(limit).Find(&days).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки дней: %w", err)
	}
	return days, nil
}

// UpdateReading обновляет показание позиции дня
// Оба override-флага одновременно не принимаются
func (s *InventoryService) UpdateReading(dayID, itemID string, req *UpdateReadingRequest) (*models.InventoryDayItem, error) {
	var updated *models.InventoryDayItem

	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		if err := s.ensureMutable(tx, dayID); err != nil {
			return err
		}

		var reading models.InventoryDayItem
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("day_id = ? AND inventory_item_id = ?", dayID, itemID).
			First(&reading)
		if res.Error == gorm.ErrRecordNotFound {
			reading = models.InventoryDayItem{
				DayID:           dayID,
				InventoryItemID: itemID,
			}
		} else if res.Error != nil {
			return fmt.Errorf("ошибка загрузки показания: %w", res.Error)
		}

		if req.Quantity != nil {
			if *req.Quantity < 0 {
				return fmt.Errorf("%w: отрицательный остаток", ErrValidation)
			}
			reading.Quantity = *req.Quantity
		}
		if req.OverrideCreateTask != nil {
			reading.OverrideCreateTask = *req.OverrideCreateTask
		}
		if req.OverrideNoTask != nil {
			reading.OverrideNoTask = *req.OverrideNoTask
		}
		if reading.OverrideCreateTask && reading.OverrideNoTask {
			return fmt.Errorf("%w: override-флаги взаимоисключающие", ErrValidation)
		}

		if err := tx.Save(&reading).Error; err != nil {
			return fmt.Errorf("ошибка сохранения показания: %w", err)
		}
		updated = &reading
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetEmployees заменяет список сотрудников дня
func (s *InventoryService) SetEmployees(dayID string, employeeIDs []string) (*models.InventoryDay, error) {
	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		if err := s.ensureMutable(tx, dayID); err != nil {
			return err
		}
		var day models.InventoryDay
		if err := tx.Where("id = ?", dayID).First(&day).Error; err != nil {
			return fmt.Errorf("ошибка загрузки дня: %w", err)
		}
		return s.replaceEmployees(tx, &day, employeeIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetDay(dayID)
}

func (s *InventoryService) replaceEmployees(tx *gorm.DB, day *models.InventoryDay, employeeIDs []string) error {
	var employees []models.Employee
	if len(employeeIDs) > 0 {
		if err := tx.Where("id IN ?", employeeIDs).Find(&employees).Error; err != nil {
			return fmt.Errorf("ошибка загрузки сотрудников: %w", err)
		}
		if len(employees) != len(employeeIDs) {
			return fmt.Errorf("%w: часть сотрудников не найдена", ErrNotFound)
		}
	}
	if err := tx.Model(day).Association("Employees").Replace(employees); err != nil {
		return fmt.Errorf("ошибка назначения сотрудников: %w", err)
	}
	return nil
}

// UpdateNotes обновляет заметки дня
func (s *InventoryService) UpdateNotes(dayID string, notes *string) error {
	return runWithRetry(s.db, func(tx *gorm.DB) error {
		if err := s.ensureMutable(tx, dayID); err != nil {
			return err
		}
		if err := tx.Model(&models.InventoryDay{}).
			Where("id = ?", dayID).
			Update("global_notes", notes).Error; err != nil {
			return fmt.Errorf("ошибка сохранения заметок: %w", err)
		}
		return nil
	})
}

// SetJanitorialSelection отмечает уборочные задачи дня
// Для включенных записей заводится ручная задача, для снятых
// удаляется только незапущенная
func (s *InventoryService) SetJanitorialSelection(dayID string, selections map[string]bool) error {
	return runWithRetry(s.db, func(tx *gorm.DB) error {
		if err := s.ensureMutable(tx, dayID); err != nil {
			return err
		}

		for jtID, include := range selections {
			var jt models.JanitorialTask
			if err := tx.Where("id = ?", jtID).First(&jt).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: уборочная задача %s", ErrNotFound, jtID)
				}
				return fmt.Errorf("ошибка загрузки уборочной задачи: %w", err)
			}

			var row models.JanitorialTaskDay
			res := tx.Where("day_id = ? AND janitorial_task_id = ?", dayID, jtID).First(&row)
			if res.Error == gorm.ErrRecordNotFound {
				row = models.JanitorialTaskDay{DayID: dayID, JanitorialTaskID: jtID}
			} else if res.Error != nil {
				return fmt.Errorf("ошибка загрузки выбора уборки: %w", res.Error)
			}
			row.IncludeTask = include
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("ошибка сохранения выбора уборки: %w", err)
			}

			var existing models.Task
			taskRes := tx.Where("day_id = ? AND janitorial_task_id = ?", dayID, jtID).First(&existing)

			if include && taskRes.Error == gorm.ErrRecordNotFound {
				task := models.Task{
					DayID:            dayID,
					JanitorialTaskID: &jtID,
					CategoryID:       jt.CategoryID,
					Description:      jt.Title,
					AutoGenerated:    false,
					Status:           models.TaskNotStarted,
				}
				if err := tx.Create(&task).Error; err != nil {
					return fmt.Errorf("ошибка создания уборочной задачи: %w", err)
				}
			}
			if !include && taskRes.Error == nil && existing.Status == models.TaskNotStarted {
				if err := tx.Select(clause.Associations).Delete(&existing).Error; err != nil {
					return fmt.Errorf("ошибка удаления уборочной задачи: %w", err)
				}
			}
		}
		return nil
	})
}

// FinalizeDay финализирует день: фиксирует момент и закрывает все записи
// Чтения и отчеты остаются доступными
func (s *InventoryService) FinalizeDay(dayID string) (*models.InventoryDay, error) {
	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		var day models.InventoryDay
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", dayID).First(&day).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: день %s", ErrNotFound, dayID)
			}
			return fmt.Errorf("ошибка загрузки дня: %w", err)
		}
		if day.IsFinalized() {
			return fmt.Errorf("%w: день %s уже финализирован", ErrFinalizedDayImmutable, dayID)
		}

		now := time.Now().UTC()
		day.Finalized = true
		day.FinalizedAt = &now
		if err := tx.Omit(clause.Associations).Save(&day).Error; err != nil {
			return fmt.Errorf("ошибка финализации дня: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ День %s финализирован", dayID)
	if s.events != nil {
		s.events.PublishDayFinalized(dayID)
	}
	return s.GetDay(dayID)
}

// ensureMutable проверяет, что день существует и не финализирован
func (s *InventoryService) ensureMutable(tx *gorm.DB, dayID string) error {
	var day models.InventoryDay
	if err := tx.Where("id = ?", dayID).First(&day).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: день %s", ErrNotFound, dayID)
		}
		return fmt.Errorf("ошибка загрузки дня: %w", err)
	}
	if day.IsFinalized() {
		return fmt.Errorf("%w: день %s", ErrFinalizedDayImmutable, dayID)
	}
	return nil
}
