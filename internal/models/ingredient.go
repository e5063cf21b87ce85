package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageType определяет семейство единиц измерения ингредиента
type UsageType string

const (
	UsageWeight UsageType = "weight"
	UsageVolume UsageType = "volume"
	UsageCount  UsageType = "count"
)

// PurchaseType определяет форму закупки: штучно или кейсом
type PurchaseType string

const (
	PurchaseSingle PurchaseType = "single"
	PurchaseCase   PurchaseType = "case"
)

// Ingredient представляет ингредиент с параметрами закупки
// Себестоимость за единицу никогда не хранится, а вычисляется при чтении
type Ingredient struct {
	ID           string       `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string       `json:"name" gorm:"type:varchar(255);not null;index"`
	UsageType    UsageType    `json:"usage_type" gorm:"type:varchar(20);not null"`
	CategoryID   *string      `json:"category_id" gorm:"type:uuid;index"`
	VendorID     *string      `json:"vendor_id" gorm:"type:uuid;index"`
	VendorUnitID *string      `json:"vendor_unit_id" gorm:"type:uuid"`

	// Параметры закупки
	PurchaseType      PurchaseType `json:"purchase_type" gorm:"type:varchar(20);default:'single'"`
	PurchaseUnitName  *string      `json:"purchase_unit_name" gorm:"type:varchar(100)"` // Кейс, мешок, коробка
	PurchaseTotalCost float64      `json:"purchase_total_cost" gorm:"type:decimal(10,2);default:0"`
	BreakableCase     bool         `json:"breakable_case" gorm:"default:false"`

	// Штучное ценообразование
	UseItemCountPricing bool     `json:"use_item_count_pricing" gorm:"default:false"`
	ItemsPerCase        *int     `json:"items_per_case"`
	NetWeightVolumeItem *float64 `json:"net_weight_volume_item" gorm:"type:decimal(12,4)"`
	NetWeightVolumeCase *float64 `json:"net_weight_volume_case" gorm:"type:decimal(12,4)"`
	NetUnit             *string  `json:"net_unit" gorm:"type:varchar(20)"`

	// Прямое переопределение цены за единицу
	UsesPricePerWeightVolume bool     `json:"uses_price_per_weight_volume" gorm:"default:false"`
	PricePerWeightVolume     *float64 `json:"price_per_weight_volume" gorm:"type:decimal(10,4)"`

	// Кондитерская конверсия: мост между весом и объемом
	HasBakingConversion   bool     `json:"has_baking_conversion" gorm:"default:false"`
	BakingMeasurementUnit *string  `json:"baking_measurement_unit" gorm:"type:varchar(20)"` // cup, 1_2_cup и т.д.
	BakingWeightAmount    *float64 `json:"baking_weight_amount" gorm:"type:decimal(12,4)"`
	BakingWeightUnit      *string  `json:"baking_weight_unit" gorm:"type:varchar(20)"` // oz, g, lb

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Category   *Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Vendor     *Vendor     `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	VendorUnit *VendorUnit `json:"vendor_unit,omitempty" gorm:"foreignKey:VendorUnitID"`
}

// TableName указывает имя таблицы
func (Ingredient) TableName() string {
	return "ingredients"
}

// BeforeCreate генерирует UUID
func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TotalItemCount возвращает количество штук в закупке
func (i *Ingredient) TotalItemCount() int {
	if i.PurchaseType == PurchaseCase && i.ItemsPerCase != nil && *i.ItemsPerCase > 0 {
		return *i.ItemsPerCase
	}
	return 1
}

// CostPerItem возвращает стоимость одной штуки
func (i *Ingredient) CostPerItem() float64 {
	if i.UseItemCountPricing {
		if i.PurchaseType == PurchaseCase && i.ItemsPerCase != nil && *i.ItemsPerCase > 0 {
			return i.PurchaseTotalCost / float64(*i.ItemsPerCase)
		}
		return i.PurchaseTotalCost
	}
	if i.NetWeightVolumeItem != nil && i.PurchaseTotalCost > 0 {
		if i.PurchaseType == PurchaseCase && i.NetWeightVolumeCase != nil && *i.NetWeightVolumeCase > 0 {
			return i.PurchaseTotalCost * (*i.NetWeightVolumeItem / *i.NetWeightVolumeCase)
		}
		return i.PurchaseTotalCost
	}
	return 0
}

// TotalNetAmount возвращает суммарное нетто-количество закупки в NetUnit
func (i *Ingredient) TotalNetAmount() float64 {
	if i.PurchaseType == PurchaseCase && i.NetWeightVolumeCase != nil && *i.NetWeightVolumeCase > 0 {
		return *i.NetWeightVolumeCase
	}
	if i.NetWeightVolumeItem != nil {
		return *i.NetWeightVolumeItem
	}
	return 0
}
