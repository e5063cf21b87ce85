package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe представляет рецепт: упорядоченный набор ингредиентных строк
// и порций других заготовок
type Recipe struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null;index"`
	Instructions *string        `json:"instructions" gorm:"type:text"`
	CategoryID   *string        `json:"category_id" gorm:"type:uuid;index"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Category      *Category            `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Ingredients   []RecipeIngredient   `json:"ingredients,omitempty" gorm:"foreignKey:RecipeID"`
	BatchPortions []RecipeBatchPortion `json:"batch_portions,omitempty" gorm:"foreignKey:RecipeID"`
}

// TableName указывает имя таблицы
func (Recipe) TableName() string {
	return "recipes"
}

// BeforeCreate генерирует UUID
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// RecipeIngredient представляет строку рецепта: ингредиент + количество + единица
type RecipeIngredient struct {
	ID           string  `json:"id" gorm:"type:uuid;primaryKey"`
	RecipeID     string  `json:"recipe_id" gorm:"type:uuid;not null;index"`
	IngredientID string  `json:"ingredient_id" gorm:"type:uuid;not null;index"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"type:varchar(20);not null"`
	SortOrder    int     `json:"sort_order" gorm:"default:0"`

	Recipe     *Recipe     `json:"recipe,omitempty" gorm:"foreignKey:RecipeID"`
	Ingredient *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == "" {
		ri.ID = uuid.New().String()
	}
	return nil
}

// RecipeBatchPortion представляет порцию заготовки внутри рецепта
// Два режима: абсолютный размер порции либо процент от стоимости заготовки
type RecipeBatchPortion struct {
	ID               string   `json:"id" gorm:"type:uuid;primaryKey"`
	RecipeID         string   `json:"recipe_id" gorm:"type:uuid;not null;index"`
	BatchID          string   `json:"batch_id" gorm:"type:uuid;not null;index"`
	PortionSize      *float64 `json:"portion_size" gorm:"type:decimal(12,4)"`
	PortionUnit      *string  `json:"portion_unit" gorm:"type:varchar(20)"`
	UsePercentOfCost bool     `json:"use_percent_of_cost" gorm:"default:false"`
	PercentOfCost    *float64 `json:"percent_of_cost" gorm:"type:decimal(8,4)"` // Доля: 0.25 = 25%
	SortOrder        int      `json:"sort_order" gorm:"default:0"`

	Recipe *Recipe `json:"recipe,omitempty" gorm:"foreignKey:RecipeID"`
	Batch  *Batch  `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

func (RecipeBatchPortion) TableName() string {
	return "recipe_batch_portions"
}

func (rbp *RecipeBatchPortion) BeforeCreate(tx *gorm.DB) error {
	if rbp.ID == "" {
		rbp.ID = uuid.New().String()
	}
	return nil
}
