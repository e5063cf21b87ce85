package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category представляет категорию ингредиентов
type Category struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Ingredients []Ingredient `json:"ingredients,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Vendor представляет поставщика
type Vendor struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	ContactPerson *string   `json:"contact_person" gorm:"type:varchar(255)"`
	Phone         *string   `json:"phone" gorm:"type:varchar(50)"`
	Email         *string   `json:"email" gorm:"type:varchar(255)"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Ingredients []Ingredient `json:"ingredients,omitempty" gorm:"foreignKey:VendorID"`
}

func (Vendor) TableName() string {
	return "vendors"
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// VendorUnit представляет пользовательскую единицу закупки (кейс, мешок, коробка)
type VendorUnit struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (VendorUnit) TableName() string {
	return "vendor_units"
}

func (vu *VendorUnit) BeforeCreate(tx *gorm.DB) error {
	if vu.ID == "" {
		vu.ID = uuid.New().String()
	}
	return nil
}

// ParUnitName представляет пользовательское имя par-единицы (контейнер, лоток, бутылка)
type ParUnitName struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ParUnitName) TableName() string {
	return "par_unit_names"
}

func (p *ParUnitName) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// UtilityCost представляет накладной расход (аренда, электричество, вода)
// Используется в дневном отчете для сводки по расходам
type UtilityCost struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	MonthlyCost float64   `json:"monthly_cost" gorm:"type:decimal(10,2);not null"`
	Notes       *string   `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UtilityCost) TableName() string {
	return "utility_costs"
}

func (u *UtilityCost) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// DailyCost возвращает расход в пересчете на день (месяц = 30 дней)
func (u *UtilityCost) DailyCost() float64 {
	return u.MonthlyCost / 30.0
}
