package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus представляет статус задачи
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskPaused     TaskStatus = "paused"
	TaskCompleted  TaskStatus = "completed"
)

// allowedTaskTransitions описывает допустимые переходы статусов
var allowedTaskTransitions = map[TaskStatus][]TaskStatus{
	TaskNotStarted: {TaskInProgress},
	TaskInProgress: {TaskPaused, TaskCompleted},
	TaskPaused:     {TaskInProgress, TaskCompleted},
	TaskCompleted:  {},
}

// Task представляет задачу инвентарного дня
// Snapshot-колонки хранят показание на момент последней (пере)генерации
type Task struct {
	ID               string  `json:"id" gorm:"type:uuid;primaryKey"`
	DayID            string  `json:"day_id" gorm:"type:uuid;not null;index"`
	InventoryItemID  *string `json:"inventory_item_id" gorm:"type:uuid;index:idx_task_day_item"`
	BatchID          *string `json:"batch_id" gorm:"type:uuid;index"`
	JanitorialTaskID *string `json:"janitorial_task_id" gorm:"type:uuid"`
	CategoryID       *string `json:"category_id" gorm:"type:uuid"`

	Description   string     `json:"description" gorm:"type:varchar(500);not null"`
	Notes         *string    `json:"notes" gorm:"type:text"`
	AutoGenerated bool       `json:"auto_generated" gorm:"default:false;index"`
	Status        TaskStatus `json:"status" gorm:"type:varchar(20);default:'not_started';index"`

	// Хронометраж
	StartedAt      *time.Time `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at"`
	PausedAt       *time.Time `json:"paused_at"`
	TotalPauseSecs int        `json:"total_pause_secs" gorm:"default:0"`

	// Масштаб производства
	SelectedScale string  `json:"selected_scale" gorm:"type:varchar(20);default:'full'"`
	ScaleFactor   float64 `json:"scale_factor" gorm:"type:decimal(8,4);default:1.0"`

	// Фактический выход, фиксируется при завершении
	MadeAmount *float64 `json:"made_amount" gorm:"type:decimal(12,4)"`
	MadeUnit   *string  `json:"made_unit" gorm:"type:varchar(20)"`

	// Стоимость труда, замораживается при завершении
	LaborCost *float64 `json:"labor_cost" gorm:"type:decimal(10,2)"`

	// Снимок показания на момент последней генерации
	SnapshotQuantity       *float64 `json:"snapshot_quantity" gorm:"type:decimal(12,4)"`
	SnapshotParLevel       *float64 `json:"snapshot_par_level" gorm:"type:decimal(12,4)"`
	SnapshotOverrideCreate *bool    `json:"snapshot_override_create"`
	SnapshotOverrideNoTask *bool    `json:"snapshot_override_no_task"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Day            *InventoryDay   `json:"day,omitempty" gorm:"foreignKey:DayID"`
	InventoryItem  *InventoryItem  `json:"inventory_item,omitempty" gorm:"foreignKey:InventoryItemID"`
	Batch          *Batch          `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
	JanitorialTask *JanitorialTask `json:"janitorial_task,omitempty" gorm:"foreignKey:JanitorialTaskID"`
	Assignees      []Employee      `json:"assignees,omitempty" gorm:"many2many:task_assignees;"`
}

// TableName указывает имя таблицы
func (Task) TableName() string {
	return "tasks"
}

// BeforeCreate генерирует UUID
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// CanTransitionTo проверяет допустимость перехода статуса
func (t *Task) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range allowedTaskTransitions[t.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsProtected сообщает, защищена ли задача от действий генератора
// Начатые и завершенные задачи никогда не удаляются и не перегенерируются
func (t *Task) IsProtected() bool {
	return t.Status != TaskNotStarted
}

// TotalMinutes возвращает чистое время работы в минутах без пауз
func (t *Task) TotalMinutes(now time.Time) float64 {
	if t.StartedAt == nil {
		return 0
	}
	end := now
	if t.FinishedAt != nil {
		end = *t.FinishedAt
	} else if t.Status == TaskPaused && t.PausedAt != nil {
		end = *t.PausedAt
	}
	secs := end.Sub(*t.StartedAt).Seconds() - float64(t.TotalPauseSecs)
	if secs < 0 {
		return 0
	}
	return secs / 60.0
}

// SnapshotMatches сравнивает снимок с текущим показанием
func (t *Task) SnapshotMatches(reading *InventoryDayItem, parLevel float64) bool {
	if t.SnapshotQuantity == nil || t.SnapshotParLevel == nil ||
		t.SnapshotOverrideCreate == nil || t.SnapshotOverrideNoTask == nil {
		return false
	}
	return *t.SnapshotQuantity == reading.Quantity &&
		*t.SnapshotParLevel == parLevel &&
		*t.SnapshotOverrideCreate == reading.OverrideCreateTask &&
		*t.SnapshotOverrideNoTask == reading.OverrideNoTask
}

// StampSnapshot перезаписывает снимок текущим показанием
func (t *Task) StampSnapshot(reading *InventoryDayItem, parLevel float64) {
	q := reading.Quantity
	p := parLevel
	oc := reading.OverrideCreateTask
	on := reading.OverrideNoTask
	t.SnapshotQuantity = &q
	t.SnapshotParLevel = &p
	t.SnapshotOverrideCreate = &oc
	t.SnapshotOverrideNoTask = &on
}

// JanitorialTaskType определяет тип уборочной задачи
type JanitorialTaskType string

const (
	JanitorialDaily  JanitorialTaskType = "daily"
	JanitorialManual JanitorialTaskType = "manual"
)

// JanitorialTask представляет шаблон уборочной задачи
type JanitorialTask struct {
	ID           string             `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string             `json:"title" gorm:"type:varchar(255);not null;index"`
	Instructions *string            `json:"instructions" gorm:"type:text"`
	TaskType     JanitorialTaskType `json:"task_type" gorm:"type:varchar(20);default:'manual'"`
	CategoryID   *string            `json:"category_id" gorm:"type:uuid"`
	CreatedAt    time.Time          `json:"created_at" gorm:"autoCreateTime"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (JanitorialTask) TableName() string {
	return "janitorial_tasks"
}

func (jt *JanitorialTask) BeforeCreate(tx *gorm.DB) error {
	if jt.ID == "" {
		jt.ID = uuid.New().String()
	}
	return nil
}

// JanitorialTaskDay представляет выбор уборочной задачи на конкретный день
type JanitorialTaskDay struct {
	ID               string `json:"id" gorm:"type:uuid;primaryKey"`
	DayID            string `json:"day_id" gorm:"type:uuid;not null;index:idx_jan_day,unique"`
	JanitorialTaskID string `json:"janitorial_task_id" gorm:"type:uuid;not null;index:idx_jan_day,unique"`
	IncludeTask      bool   `json:"include_task" gorm:"default:false"`

	Day            *InventoryDay   `json:"day,omitempty" gorm:"foreignKey:DayID"`
	JanitorialTask *JanitorialTask `json:"janitorial_task,omitempty" gorm:"foreignKey:JanitorialTaskID"`
}

func (JanitorialTaskDay) TableName() string {
	return "janitorial_task_days"
}

func (jtd *JanitorialTaskDay) BeforeCreate(tx *gorm.DB) error {
	if jtd.ID == "" {
		jtd.ID = uuid.New().String()
	}
	return nil
}
