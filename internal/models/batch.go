package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScaleOption описывает доступный множитель масштабирования заготовки
type ScaleOption struct {
	Key    string  `json:"key"`
	Factor float64 `json:"factor"`
	Label  string  `json:"label"`
}

// Batch представляет заготовку: один рецепт + выход + параметры труда
type Batch struct {
	ID         string  `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string  `json:"name" gorm:"type:varchar(255);not null;index"`
	RecipeID   string  `json:"recipe_id" gorm:"type:uuid;not null;index"`
	CategoryID *string `json:"category_id" gorm:"type:uuid;index"`

	// Выход: фиксированный объем либо переменный
	VariableYield bool     `json:"variable_yield" gorm:"default:false"`
	YieldAmount   *float64 `json:"yield_amount" gorm:"type:decimal(12,4)"`
	YieldUnit     *string  `json:"yield_unit" gorm:"type:varchar(20)"`

	EstimatedLaborMinutes int     `json:"estimated_labor_minutes" gorm:"default:0"`
	HourlyLaborRate       float64 `json:"hourly_labor_rate" gorm:"type:decimal(10,2);default:16.75"`

	// Разрешенные множители масштабирования
	CanBeScaled    bool `json:"can_be_scaled" gorm:"default:false"`
	ScaleDouble    bool `json:"scale_double" gorm:"default:false"`
	ScaleTriple    bool `json:"scale_triple" gorm:"default:false"`
	ScaleQuadruple bool `json:"scale_quadruple" gorm:"default:false"`
	ScaleHalf      bool `json:"scale_half" gorm:"default:false"`
	ScaleQuarter   bool `json:"scale_quarter" gorm:"default:false"`
	ScaleEighth    bool `json:"scale_eighth" gorm:"default:false"`
	ScaleSixteenth bool `json:"scale_sixteenth" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Recipe   *Recipe   `json:"recipe,omitempty" gorm:"foreignKey:RecipeID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName указывает имя таблицы
func (Batch) TableName() string {
	return "batches"
}

// BeforeCreate генерирует UUID
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// EstimatedLaborCost возвращает плановую стоимость труда
func (b *Batch) EstimatedLaborCost() float64 {
	return float64(b.EstimatedLaborMinutes) / 60.0 * b.HourlyLaborRate
}

// AvailableScales возвращает разрешенные варианты масштабирования
func (b *Batch) AvailableScales() []ScaleOption {
	scales := []ScaleOption{{Key: "full", Factor: 1.0, Label: "Полная заготовка"}}
	if !b.CanBeScaled {
		return scales
	}
	if b.ScaleDouble {
		scales = append(scales, ScaleOption{Key: "double", Factor: 2.0, Label: "Двойная (x2)"})
	}
	if b.ScaleTriple {
		scales = append(scales, ScaleOption{Key: "triple", Factor: 3.0, Label: "Тройная (x3)"})
	}
	if b.ScaleQuadruple {
		scales = append(scales, ScaleOption{Key: "quadruple", Factor: 4.0, Label: "Четверная (x4)"})
	}
	if b.ScaleHalf {
		scales = append(scales, ScaleOption{Key: "half", Factor: 0.5, Label: "Половина (1/2)"})
	}
	if b.ScaleQuarter {
		scales = append(scales, ScaleOption{Key: "quarter", Factor: 0.25, Label: "Четверть (1/4)"})
	}
	if b.ScaleEighth {
		scales = append(scales, ScaleOption{Key: "eighth", Factor: 0.125, Label: "Восьмая (1/8)"})
	}
	if b.ScaleSixteenth {
		scales = append(scales, ScaleOption{Key: "sixteenth", Factor: 0.0625, Label: "Шестнадцатая (1/16)"})
	}
	return scales
}

// ScaledYield возвращает выход для заданного множителя
// Для переменного выхода возвращает nil
func (b *Batch) ScaledYield(factor float64) *float64 {
	if b.VariableYield || b.YieldAmount == nil {
		return nil
	}
	scaled := *b.YieldAmount * factor
	return &scaled
}
