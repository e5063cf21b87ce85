package services

import (
	"fmt"
	"log"

	"prepline/server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenerateResult представляет итог прогона генератора задач по дню
type GenerateResult struct {
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Suppressed int `json:"suppressed"`
}

type genAction int

const (
	actionNone genAction = iota
	actionCreate
	actionUpdate
	actionDelete
)

// plannedAction представляет решение генератора по одной позиции
type plannedAction struct {
	Action      genAction
	Reading     *models.InventoryDayItem
	Task        *models.Task
	Description string
	SizeAmount  *float64
	SizeUnit    *string
}

// taskSizing переводит дефицит в par-единицах в единицы выхода заготовки
// через определение par-unit-equals. nil означает, что множитель не выводится
// и размер станет известен только из фактического выхода
func taskSizing(item *models.InventoryItem, shortfallPar float64) (*float64, *string) {
	equals := item.ParUnitEqualsCalculated()
	if equals == nil {
		return nil, nil
	}

	amount := shortfallPar * *equals

	var unit *string
	switch item.ParUnitEqualsType {
	case models.ParUnitCustom:
		unit = item.ParUnitEqualsUnit
	case models.ParUnitAuto:
		if item.Batch != nil {
			unit = item.Batch.YieldUnit
		}
	case models.ParUnitItself:
		if item.ParUnitName != nil {
			unit = &item.ParUnitName.Name
		}
	}

	return &amount, unit
}

// buildTaskDescription формирует описание автозадачи
func buildTaskDescription(item *models.InventoryItem, amount *float64, unit *string) string {
	if amount != nil && unit != nil {
		return fmt.Sprintf("Приготовить %s: %g %s", item.Name, *amount, *unit)
	}
	if amount != nil {
		return fmt.Sprintf("Приготовить %s: %g", item.Name, *amount)
	}
	return fmt.Sprintf("Приготовить %s", item.Name)
}

// planItemAction применяет таблицу решений к одной позиции дня
//
// Правила: без привязанной заготовки задача не создается никогда;
// ниже par без override'ов задача должна существовать; override-no-task
// подавляет создание; override-create форсирует задачу при остатке не ниже par.
// Одновременно взведенные override-флаги отклоняются как противоречие
func planItemAction(reading *models.InventoryDayItem, existing []models.Task, force bool) (*plannedAction, error) {
	item := reading.InventoryItem
	if item == nil {
		return nil, fmt.Errorf("%w: позиция %s", ErrNotFound, reading.InventoryItemID)
	}

	if reading.OverrideCreateTask && reading.OverrideNoTask {
		return nil, fmt.Errorf("%w: у позиции %s взведены оба override-флага", ErrValidation, item.Name)
	}

	none := &plannedAction{Action: actionNone, Reading: reading}

	if item.BatchID == nil {
		return none, nil
	}

	// Начатая или завершенная задача неприкосновенна независимо от показаний
	var notStarted *models.Task
	for i := range existing {
		if existing[i].IsProtected() {
			return none, nil
		}
		if notStarted == nil {
			notStarted = &existing[i]
		}
	}

	belowPar := reading.BelowPar(item.ParLevel)
	wantTask := reading.OverrideCreateTask || (belowPar && !reading.OverrideNoTask)

	if !wantTask {
		if notStarted != nil {
			return &plannedAction{Action: actionDelete, Reading: reading, Task: notStarted}, nil
		}
		return none, nil
	}

	shortfall := item.ParLevel - reading.Quantity
	if shortfall < 0 {
		shortfall = 0
	}
	amount, unit := taskSizing(item, shortfall)
	desc := buildTaskDescription(item, amount, unit)

	if notStarted != nil {
		// Неизменный снимок означает, что задача уже соответствует показанию.
		// Задача не трогается, назначенные сотрудники сохраняются
		if !force && notStarted.SnapshotMatches(reading, item.ParLevel) {
			return &plannedAction{Action: actionNone, Reading: reading, Task: notStarted}, nil
		}
		return &plannedAction{
			Action:      actionUpdate,
			Reading:     reading,
			Task:        notStarted,
			Description: desc,
			SizeAmount:  amount,
			SizeUnit:    unit,
		}, nil
	}

	return &plannedAction{
		Action:      actionCreate,
		Reading:     reading,
		Description: desc,
		SizeAmount:  amount,
		SizeUnit:    unit,
	}, nil
}

// TaskGenService генерирует и обновляет автозадачи по par-уровням дня
// Прогон идемпотентен: повторный запуск без изменений показаний ничего не меняет
type TaskGenService struct {
	db     *gorm.DB
	events *EventService
}

// NewTaskGenService создает новый экземпляр TaskGenService
func NewTaskGenService(db *gorm.DB, events *EventService) *TaskGenService {
	return &TaskGenService{
		db:     db,
		events: events,
	}
}

// GenerateOrUpdateTasks выполняет прогон генератора по дню
// force пропускает сравнение снимков и переприменяет логику ко всем
// незапущенным автозадачам
func (s *TaskGenService) GenerateOrUpdateTasks(dayID string, force bool) (*GenerateResult, error) {
	var result *GenerateResult

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
			return fmt.Errorf("%w: день %s", ErrFinalizedDayImmutable, dayID)
		}

		var readings []models.InventoryDayItem
		if err := tx.
			Preload("InventoryItem").
			Preload("InventoryItem.Batch").
			Preload("InventoryItem.ParUnitName").
			Where("day_id = ?", dayID).
			Find(&readings).Error; err != nil {
			return fmt.Errorf("ошибка загрузки показаний дня: %w", err)
		}

		var autoTasks []models.Task
		if err := tx.
			Where("day_id = ? AND auto_generated = ? AND inventory_item_id IS NOT NULL", dayID, true).
			Find(&autoTasks).Error; err != nil {
			return fmt.Errorf("ошибка загрузки автозадач дня: %w", err)
		}

		tasksByItem := make(map[string][]models.Task)
		for _, t := range autoTasks {
			tasksByItem[*t.InventoryItemID] = append(tasksByItem[*t.InventoryItemID], t)
		}

		res := &GenerateResult{}
		for i := range readings {
			reading := &readings[i]
			plan, err := planItemAction(reading, tasksByItem[reading.InventoryItemID], force)
			if err != nil {
				return err
			}
			if err := s.apply(tx, &day, plan, res); err != nil {
				return err
			}
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📋 Генерация задач для дня %s: создано=%d обновлено=%d без изменений=%d подавлено=%d",
		dayID, result.Created, result.Updated, result.Unchanged, result.Suppressed)

	if s.events != nil {
		s.events.PublishTasksGenerated(dayID, result)
	}

	return result, nil
}

// apply выполняет запланированное действие в рамках транзакции
func (s *TaskGenService) apply(tx *gorm.DB, day *models.InventoryDay, plan *plannedAction, res *GenerateResult) error {
	switch plan.Action {
	case actionNone:
		if plan.Task != nil {
			res.Unchanged++
		}
		return nil

	case actionCreate:
		item := plan.Reading.InventoryItem
		task := models.Task{
			DayID:           day.ID,
			InventoryItemID: &item.ID,
			BatchID:         item.BatchID,
			CategoryID:      item.CategoryID,
			Description:     plan.Description,
			AutoGenerated:   true,
			Status:          models.TaskNotStarted,
			MadeUnit:        plan.SizeUnit,
		}
		task.StampSnapshot(plan.Reading, item.ParLevel)
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("ошибка создания задачи: %w", err)
		}
		res.Created++
		return nil

	case actionUpdate:
		item := plan.Reading.InventoryItem
		plan.Task.Description = plan.Description
		plan.Task.MadeUnit = plan.SizeUnit
		plan.Task.StampSnapshot(plan.Reading, item.ParLevel)
		// Связи не трогаются: назначенные сотрудники сохраняются
		if err := tx.Omit(clause.Associations).Save(plan.Task).Error; err != nil {
			return fmt.Errorf("ошибка обновления задачи: %w", err)
		}
		res.Updated++
		return nil

	case actionDelete:
		if err := tx.Select(clause.Associations).Delete(plan.Task).Error; err != nil {
			return fmt.Errorf("ошибка удаления задачи: %w", err)
		}
		res.Suppressed++
		return nil
	}
	return nil
}
