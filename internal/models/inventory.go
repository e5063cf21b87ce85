package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParUnitEqualsType определяет способ перевода par-единицы в конкретное количество
type ParUnitEqualsType string

const (
	// ParUnitAuto — выход заготовки делится на par level
	ParUnitAuto ParUnitEqualsType = "auto"
	// ParUnitItself — par-единица и есть штука, множитель 1
	ParUnitItself ParUnitEqualsType = "par_unit_itself"
	// ParUnitCustom — явное количество + единица
	ParUnitCustom ParUnitEqualsType = "custom"
)

// InventoryItem представляет позицию ежедневной инвентаризации
type InventoryItem struct {
	ID            string  `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string  `json:"name" gorm:"type:varchar(255);not null;index"`
	CategoryID    *string `json:"category_id" gorm:"type:uuid;index"`
	BatchID       *string `json:"batch_id" gorm:"type:uuid;index"`
	ParUnitNameID *string `json:"par_unit_name_id" gorm:"type:uuid"`
	ParLevel      float64 `json:"par_level" gorm:"type:decimal(12,4);default:0"`

	ParUnitEqualsType   ParUnitEqualsType `json:"par_unit_equals_type" gorm:"type:varchar(20);default:'par_unit_itself'"`
	ParUnitEqualsAmount *float64          `json:"par_unit_equals_amount" gorm:"type:decimal(12,4)"`
	ParUnitEqualsUnit   *string           `json:"par_unit_equals_unit" gorm:"type:varchar(20)"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Category    *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Batch       *Batch       `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
	ParUnitName *ParUnitName `json:"par_unit_name,omitempty" gorm:"foreignKey:ParUnitNameID"`
}

// TableName указывает имя таблицы
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// BeforeCreate генерирует UUID
func (ii *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == "" {
		ii.ID = uuid.New().String()
	}
	return nil
}

// ParUnitEqualsCalculated возвращает количество на одну par-единицу
// Требует предзагруженной связи Batch для типа auto
func (ii *InventoryItem) ParUnitEqualsCalculated() *float64 {
	switch ii.ParUnitEqualsType {
	case ParUnitItself:
		one := 1.0
		return &one
	case ParUnitCustom:
		if ii.ParUnitEqualsAmount != nil && *ii.ParUnitEqualsAmount > 0 {
			return ii.ParUnitEqualsAmount
		}
	case ParUnitAuto:
		if ii.Batch != nil && !ii.Batch.VariableYield &&
			ii.Batch.YieldAmount != nil && ii.ParLevel > 0 {
			v := *ii.Batch.YieldAmount / ii.ParLevel
			return &v
		}
	}
	return nil
}

// HasFixedMultiplier сообщает, выводится ли из настроек позиции
// однозначный множитель par-единицы. Если нет, задача по позиции
// требует ввода фактически сделанного количества при завершении
func (ii *InventoryItem) HasFixedMultiplier() bool {
	return ii.ParUnitEqualsCalculated() != nil
}

// InventoryDay представляет инвентарный день, один на календарную дату
type InventoryDay struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	Date        time.Time  `json:"date" gorm:"type:date;uniqueIndex;not null"`
	GlobalNotes *string    `json:"global_notes" gorm:"type:text"`
	Finalized   bool       `json:"finalized" gorm:"default:false"`
	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	FinalizedAt *time.Time `json:"finalized_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Items     []InventoryDayItem `json:"items,omitempty" gorm:"foreignKey:DayID"`
	Employees []Employee         `json:"employees,omitempty" gorm:"many2many:inventory_day_employees;"`
	Tasks     []Task             `json:"tasks,omitempty" gorm:"foreignKey:DayID"`
}

// TableName указывает имя таблицы
func (InventoryDay) TableName() string {
	return "inventory_days"
}

// BeforeCreate генерирует UUID и фиксирует момент начала дня
func (d *InventoryDay) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now().UTC()
	}
	return nil
}

// IsFinalized проверяет закрыт ли день для изменений
func (d *InventoryDay) IsFinalized() bool {
	return d.Finalized || d.FinalizedAt != nil
}

// InventoryDayItem представляет показание (день, позиция): остаток + override-флаги
type InventoryDayItem struct {
	ID                 string  `json:"id" gorm:"type:uuid;primaryKey"`
	DayID              string  `json:"day_id" gorm:"type:uuid;not null;index:idx_day_item,unique"`
	InventoryItemID    string  `json:"inventory_item_id" gorm:"type:uuid;not null;index:idx_day_item,unique"`
	Quantity           float64 `json:"quantity" gorm:"type:decimal(12,4);default:0"`
	OverrideCreateTask bool    `json:"override_create_task" gorm:"default:false"`
	OverrideNoTask     bool    `json:"override_no_task" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Day           *InventoryDay  `json:"day,omitempty" gorm:"foreignKey:DayID"`
	InventoryItem *InventoryItem `json:"inventory_item,omitempty" gorm:"foreignKey:InventoryItemID"`
}

func (InventoryDayItem) TableName() string {
	return "inventory_day_items"
}

func (idi *InventoryDayItem) BeforeCreate(tx *gorm.DB) error {
	if idi.ID == "" {
		idi.ID = uuid.New().String()
	}
	return nil
}

// BelowPar проверяет, ниже ли остаток целевого уровня позиции
func (idi *InventoryDayItem) BelowPar(parLevel float64) bool {
	return idi.Quantity < parLevel
}
