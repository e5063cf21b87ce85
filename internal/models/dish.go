package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dish представляет блюдо меню с ценой продажи
// Себестоимость не хранится, а считается по выбранной базе труда
type Dish struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null;index"`
	CategoryID  *string        `json:"category_id" gorm:"type:uuid;index"`
	SalePrice   float64        `json:"sale_price" gorm:"type:decimal(10,2);default:0"`
	Description *string        `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Category           *Category               `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	BatchPortions      []DishBatchPortion      `json:"batch_portions,omitempty" gorm:"foreignKey:DishID"`
	IngredientPortions []DishIngredientPortion `json:"ingredient_portions,omitempty" gorm:"foreignKey:DishID"`
}

// TableName указывает имя таблицы
func (Dish) TableName() string {
	return "dishes"
}

// BeforeCreate генерирует UUID
func (d *Dish) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// DishBatchPortion представляет порцию заготовки в блюде
// Режимы те же, что у RecipeBatchPortion
type DishBatchPortion struct {
	ID               string   `json:"id" gorm:"type:uuid;primaryKey"`
	DishID           string   `json:"dish_id" gorm:"type:uuid;not null;index"`
	BatchID          string   `json:"batch_id" gorm:"type:uuid;not null;index"`
	PortionSize      *float64 `json:"portion_size" gorm:"type:decimal(12,4)"`
	PortionUnit      *string  `json:"portion_unit" gorm:"type:varchar(20)"`
	UsePercentOfCost bool     `json:"use_percent_of_cost" gorm:"default:false"`
	PercentOfCost    *float64 `json:"percent_of_cost" gorm:"type:decimal(8,4)"`
	SortOrder        int      `json:"sort_order" gorm:"default:0"`

	Dish  *Dish  `json:"dish,omitempty" gorm:"foreignKey:DishID"`
	Batch *Batch `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

func (DishBatchPortion) TableName() string {
	return "dish_batch_portions"
}

func (dbp *DishBatchPortion) BeforeCreate(tx *gorm.DB) error {
	if dbp.ID == "" {
		dbp.ID = uuid.New().String()
	}
	return nil
}

// DishIngredientPortion представляет прямую ингредиентную строку блюда
type DishIngredientPortion struct {
	ID           string  `json:"id" gorm:"type:uuid;primaryKey"`
	DishID       string  `json:"dish_id" gorm:"type:uuid;not null;index"`
	IngredientID string  `json:"ingredient_id" gorm:"type:uuid;not null;index"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"type:varchar(20);not null"`
	SortOrder    int     `json:"sort_order" gorm:"default:0"`

	Dish       *Dish       `json:"dish,omitempty" gorm:"foreignKey:DishID"`
	Ingredient *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
}

func (DishIngredientPortion) TableName() string {
	return "dish_ingredient_portions"
}

func (dip *DishIngredientPortion) BeforeCreate(tx *gorm.DB) error {
	if dip.ID == "" {
		dip.ID = uuid.New().String()
	}
	return nil
}
