package services

import (
	"fmt"
	"log"
	"time"

	"prepline/server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskTransitionPayload представляет данные действия над задачей
type TaskTransitionPayload struct {
	MadeAmount *float64 `json:"made_amount"`
	MadeUnit   *string  `json:"made_unit"`
	Notes      *string  `json:"notes"`
}

// CreateTaskRequest представляет создание ручной задачи
type CreateTaskRequest struct {
	DayID            string   `json:"day_id" binding:"required"`
	Description      string   `json:"description" binding:"required"`
	CategoryID       *string  `json:"category_id"`
	BatchID          *string  `json:"batch_id"`
	JanitorialTaskID *string  `json:"janitorial_task_id"`
	AssigneeIDs      []string `json:"assignee_ids"`
	SelectedScale    *string  `json:"selected_scale"`
	Notes            *string  `json:"notes"`
}

// TaskScaleOption представляет вариант масштабирования с текстом выхода
type TaskScaleOption struct {
	Key    string  `json:"key"`
	Factor float64 `json:"factor"`
	Label  string  `json:"label"`
	Yield  string  `json:"yield"`
}

// FinishRequirements описывает, что нужно для завершения задачи
type FinishRequirements struct {
	RequiresMadeAmount bool           `json:"requires_made_amount"`
	AvailableUnits     []string       `json:"available_units"`
	InventoryInfo      *InventoryInfo `json:"inventory_info"`
}

// InventoryInfo представляет сводку показания позиции задачи
type InventoryInfo struct {
	Current     float64 `json:"current"`
	ParLevel    float64 `json:"par_level"`
	ParUnitName string  `json:"par_unit_name"`
}

// TaskService управляет жизненным циклом задач
// Переходы статусов проверяются через машину состояний модели
type TaskService struct {
	db     *gorm.DB
	events *EventService
}

// NewTaskService создает новый экземпляр TaskService
func NewTaskService(db *gorm.DB, events *EventService) *TaskService {
	return &TaskService{
		db:     db,
		events: events,
	}
}

// GetTask возвращает задачу со связями
func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	var task models.Task
	if err := s.db.
		Preload("Assignees").
		Preload("Batch").
		Preload("InventoryItem").
		Preload("InventoryItem.Batch").
		Preload("InventoryItem.ParUnitName").
		Preload("JanitorialTask").
		Where("id = ?", taskID).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: задача %s", ErrNotFound, taskID)
		}
		return nil, fmt.Errorf("ошибка загрузки задачи: %w", err)
	}
	return &task, nil
}

// ListTasksByDay возвращает все задачи дня
func (s *TaskService) ListTasksByDay(dayID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.
		Preload("Assignees").
		Preload("Batch").
		Preload("InventoryItem").
		Where("day_id = ?", dayID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки задач дня: %w", err)
	}
	return tasks, nil
}

// requiresMadeAmount проверяет обязательность ввода фактического выхода
// Требуется при переменном выходе заготовки либо когда множитель
// par-единицы позиции не выводится из настроек
func requiresMadeAmount(t *models.Task) bool {
	if t.Batch != nil && t.Batch.VariableYield {
		return true
	}
	if t.InventoryItem != nil {
		if t.InventoryItem.Batch != nil && t.InventoryItem.Batch.VariableYield {
			return true
		}
		if !t.InventoryItem.HasFixedMultiplier() {
			return true
		}
	}
	return false
}

// Transition выполняет действие над задачей: start, pause, resume, complete
func (s *TaskService) Transition(taskID, action string, payload *TaskTransitionPayload) (*models.Task, error) {
	var updated *models.Task

	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", taskID).First(&task).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: задача %s", ErrNotFound, taskID)
			}
			return fmt.Errorf("ошибка загрузки задачи: %w", err)
		}

		if err := s.ensureDayMutable(tx, task.DayID); err != nil {
			return err
		}

		// Момент перехода фиксируется один раз и не пересчитывается
		now := time.Now().UTC()

		switch action {
		case "start":
			if !task.CanTransitionTo(models.TaskInProgress) || task.Status != models.TaskNotStarted {
				return fmt.Errorf("%w: задача %s, %s -> in_progress", ErrInvalidTransition, taskID, task.Status)
			}
			task.Status = models.TaskInProgress
			task.StartedAt = &now

		case "pause":
			if task.Status != models.TaskInProgress {
				return fmt.Errorf("%w: задача %s, %s -> paused", ErrInvalidTransition, taskID, task.Status)
			}
			task.Status = models.TaskPaused
			task.PausedAt = &now

		case "resume":
			if task.Status != models.TaskPaused {
				return fmt.Errorf("%w: задача %s, %s -> in_progress", ErrInvalidTransition, taskID, task.Status)
			}
			if task.PausedAt != nil {
				task.TotalPauseSecs += int(now.Sub(*task.PausedAt).Seconds())
			}
			task.Status = models.TaskInProgress
			task.PausedAt = nil

		case "complete":
			if err := s.complete(tx, &task, payload, now); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: неизвестное действие %q", ErrValidation, action)
		}

		if payload != nil && payload.Notes != nil {
			task.Notes = payload.Notes
		}

		if err := tx.Omit(clause.Associations).Save(&task).Error; err != nil {
			return fmt.Errorf("ошибка сохранения задачи: %w", err)
		}
		updated = &task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Задача %s: действие %s, статус %s", taskID, action, updated.Status)
	if s.events != nil {
		s.events.PublishTaskStatus(updated)
	}

	return s.GetTask(taskID)
}

// complete завершает задачу: проверяет обязательный факт выхода,
// считает чистое время и замораживает стоимость труда навсегда
func (s *TaskService) complete(tx *gorm.DB, task *models.Task, payload *TaskTransitionPayload, now time.Time) error {
	if !task.CanTransitionTo(models.TaskCompleted) {
		return fmt.Errorf("%w: задача %s, %s -> completed", ErrInvalidTransition, task.ID, task.Status)
	}

	// Завершение из паузы досчитывает последний интервал паузы
	if task.Status == models.TaskPaused && task.PausedAt != nil {
		task.TotalPauseSecs += int(now.Sub(*task.PausedAt).Seconds())
		task.PausedAt = nil
	}

	if task.BatchID != nil && task.Batch == nil {
		var batch models.Batch
		if err := tx.Where("id = ?", *task.BatchID).First(&batch).Error; err == nil {
			task.Batch = &batch
		}
	}
	if task.InventoryItemID != nil && task.InventoryItem == nil {
		var item models.InventoryItem
		if err := tx.Preload("Batch").Where("id = ?", *task.InventoryItemID).First(&item).Error; err == nil {
			task.InventoryItem = &item
		}
	}

	if requiresMadeAmount(task) {
		if payload == nil || payload.MadeAmount == nil || payload.MadeUnit == nil {
			return fmt.Errorf("%w: задача %s требует фактический выход", ErrMissingRequiredInput, task.ID)
		}
	}
	if payload != nil && payload.MadeAmount != nil {
		task.MadeAmount = payload.MadeAmount
		task.MadeUnit = payload.MadeUnit
	}

	var assignees []models.Employee
	if err := tx.Model(task).Association("Assignees").Find(&assignees); err != nil {
		return fmt.Errorf("ошибка загрузки исполнителей: %w", err)
	}
	if len(assignees) == 0 {
		return fmt.Errorf("%w: задача %s без исполнителей, ставка не определима", ErrMissingRequiredInput, task.ID)
	}

	// Стоимость труда по максимальной ставке среди исполнителей
	highestWage := 0.0
	for _, e := range assignees {
		if e.HourlyWage > highestWage {
			highestWage = e.HourlyWage
		}
	}

	task.Status = models.TaskCompleted
	task.FinishedAt = &now
	minutes := task.TotalMinutes(now)
	laborCost := minutes / 60.0 * highestWage
	task.LaborCost = &laborCost

	return nil
}

// ensureDayMutable проверяет, что день задачи не финализирован
func (s *TaskService) ensureDayMutable(tx *gorm.DB, dayID string) error {
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

// CreateManual создает ручную задачу
func (s *TaskService) CreateManual(req *CreateTaskRequest) (*models.Task, error) {
	var created *models.Task

	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		if err := s.ensureDayMutable(tx, req.DayID); err != nil {
			return err
		}

		task := models.Task{
			DayID:            req.DayID,
			Description:      req.Description,
			CategoryID:       req.CategoryID,
			BatchID:          req.BatchID,
			JanitorialTaskID: req.JanitorialTaskID,
			AutoGenerated:    false,
			Status:           models.TaskNotStarted,
			Notes:            req.Notes,
		}
		if req.SelectedScale != nil {
			task.SelectedScale = *req.SelectedScale
		}
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("ошибка создания задачи: %w", err)
		}

		if len(req.AssigneeIDs) > 0 {
			if err := s.replaceAssignees(tx, &task, req.AssigneeIDs); err != nil {
				return err
			}
		}

		created = &task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Создана ручная задача %s для дня %s", created.ID, req.DayID)
	return s.GetTask(created.ID)
}

// SetAssignees заменяет список исполнителей задачи
// Запрещено для завершенных задач
func (s *TaskService) SetAssignees(taskID string, employeeIDs []string) (*models.Task, error) {
	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", taskID).First(&task).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: задача %s", ErrNotFound, taskID)
			}
			return fmt.Errorf("ошибка загрузки задачи: %w", err)
		}
		if err := s.ensureDayMutable(tx, task.DayID); err != nil {
			return err
		}
		if task.Status == models.TaskCompleted {
			return fmt.Errorf("%w: задача %s завершена, исполнители не меняются", ErrInvalidTransition, taskID)
		}
		return s.replaceAssignees(tx, &task, employeeIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(taskID)
}

func (s *TaskService) replaceAssignees(tx *gorm.DB, task *models.Task, employeeIDs []string) error {
	var employees []models.Employee
	if len(employeeIDs) > 0 {
		if err := tx.Where("id IN ?", employeeIDs).Find(&employees).Error; err != nil {
			return fmt.Errorf("ошибка загрузки сотрудников: %w", err)
		}
		if len(employees) != len(employeeIDs) {
			return fmt.Errorf("%w: часть сотрудников не найдена", ErrNotFound)
		}
	}
	if err := tx.Model(task).Association("Assignees").Replace(employees); err != nil {
		return fmt.Errorf("ошибка назначения исполнителей: %w", err)
	}
	return nil
}

// Delete удаляет задачу. Допустимо только для незапущенных задач
func (s *TaskService) Delete(taskID string) error {
	err := runWithRetry(s.db, func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", taskID).First(&task).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: задача %s", ErrNotFound, taskID)
			}
			return fmt.Errorf("ошибка загрузки задачи: %w", err)
		}
		if err := s.ensureDayMutable(tx, task.DayID); err != nil {
			return err
		}
		if task.Status != models.TaskNotStarted {
			return fmt.Errorf("%w: задача %s в статусе %s не удаляется", ErrInvalidTransition, taskID, task.Status)
		}
		if err := tx.Select(clause.Associations).Delete(&task).Error; err != nil {
			return fmt.Errorf("ошибка удаления задачи: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("✅ Задача %s удалена", taskID)
	return nil
}

// ScaleOptions возвращает доступные масштабы задачи с текстом выхода
func (s *TaskService) ScaleOptions(taskID string) ([]TaskScaleOption, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	batch := task.Batch
	if batch == nil && task.InventoryItem != nil {
		batch = task.InventoryItem.Batch
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: у задачи %s нет заготовки", ErrNotFound, taskID)
	}

	var result []TaskScaleOption
	for _, sc := range batch.AvailableScales() {
		yieldText := "Переменный выход"
		if scaled := batch.ScaledYield(sc.Factor); scaled != nil && batch.YieldUnit != nil {
			yieldText = fmt.Sprintf("%g %s", *scaled, *batch.YieldUnit)
		}
		result = append(result, TaskScaleOption{
			Key:    sc.Key,
			Factor: sc.Factor,
			Label:  sc.Label,
			Yield:  yieldText,
		})
	}
	return result, nil
}

// GetFinishRequirements возвращает требования к завершению задачи
func (s *TaskService) GetFinishRequirements(taskID string) (*FinishRequirements, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	result := &FinishRequirements{
		RequiresMadeAmount: requiresMadeAmount(task),
		AvailableUnits:     []string{},
	}

	batch := task.Batch
	if batch == nil && task.InventoryItem != nil {
		batch = task.InventoryItem.Batch
	}

	if result.RequiresMadeAmount {
		if batch != nil && batch.YieldUnit != nil {
			units := []string{*batch.YieldUnit}
			switch FamilyOf(*batch.YieldUnit) {
			case FamilyWeight:
				for u := range weightConversions {
					if u != *batch.YieldUnit {
						units = append(units, u)
					}
				}
			case FamilyVolume:
				for u := range volumeConversions {
					if u != *batch.YieldUnit {
						units = append(units, u)
					}
				}
			}
			result.AvailableUnits = units
		} else {
			result.AvailableUnits = []string{"lb", "oz", "gal", "qt", "cup"}
		}
	}

	if task.InventoryItem != nil {
		var reading models.InventoryDayItem
		if err := s.db.
			Where("day_id = ? AND inventory_item_id = ?", task.DayID, task.InventoryItem.ID).
			First(&reading).Error; err == nil {
			parUnitName := "units"
			if task.InventoryItem.ParUnitName != nil {
				parUnitName = task.InventoryItem.ParUnitName.Name
			}
			result.InventoryInfo = &InventoryInfo{
				Current:     reading.Quantity,
				ParLevel:    task.InventoryItem.ParLevel,
				ParUnitName: parUnitName,
			}
		}
	}

	return result, nil
}
