package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeRole представляет роль сотрудника в системе
type EmployeeRole string

const (
	RoleAdmin   EmployeeRole = "admin"
	RoleManager EmployeeRole = "manager"
	RoleUser    EmployeeRole = "user"
)

// Employee представляет сотрудника кухни
// Почасовая ставка используется при расчете стоимости труда по задачам
type Employee struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string         `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255)"`
	FullName     string         `json:"full_name" gorm:"type:varchar(255)"`
	Email        *string        `json:"email" gorm:"type:varchar(255)"`
	HourlyWage   float64        `json:"hourly_wage" gorm:"type:decimal(10,2);default:15.0"`
	WorkSchedule string         `json:"work_schedule" gorm:"type:varchar(255)"` // Дни недели через запятую
	Role         EmployeeRole   `json:"role" gorm:"type:varchar(20);default:'user';index"`
	IsActive     bool           `json:"is_active" gorm:"default:true;index"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Employee) TableName() string {
	return "employees"
}

// BeforeCreate генерирует UUID
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// CanFinalizeDay проверяет, имеет ли роль право финализировать инвентарный день
func (e *Employee) CanFinalizeDay() bool {
	return e.Role == RoleAdmin || e.Role == RoleManager
}

// CanOverridePar проверяет, имеет ли роль право выставлять override-флаги
func (e *Employee) CanOverridePar() bool {
	return e.Role == RoleAdmin || e.Role == RoleManager
}
