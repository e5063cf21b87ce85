package services

import (
	"fmt"
	"log"

	"prepline/server/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateEmployeeRequest представляет создание сотрудника
type CreateEmployeeRequest struct {
	Username     string  `json:"username" binding:"required"`
	Password     string  `json:"password" binding:"required"`
	FullName     string  `json:"full_name"`
	Email        *string `json:"email"`
	HourlyWage   float64 `json:"hourly_wage"`
	WorkSchedule string  `json:"work_schedule"`
	Role         string  `json:"role"`
}

// EmployeeService управляет сотрудниками
type EmployeeService struct {
	db *gorm.DB
}

// NewEmployeeService создает новый экземпляр EmployeeService
func NewEmployeeService(db *gorm.DB) *EmployeeService {
	return &EmployeeService{
		db: db,
	}
}

// GetAllEmployees возвращает активных сотрудников
func (s *EmployeeService) GetAllEmployees() ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.
		Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки сотрудников: %w", err)
	}
	return employees, nil
}

// GetEmployeeByID возвращает сотрудника по ID
func (s *EmployeeService) GetEmployeeByID(employeeID string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.Where("id = ?", employeeID).First(&employee).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: сотрудник %s", ErrNotFound, employeeID)
		}
		return nil, fmt.Errorf("ошибка загрузки сотрудника: %w", err)
	}
	return &employee, nil
}

// CreateEmployee создает сотрудника с хешированием пароля
func (s *EmployeeService) CreateEmployee(req *CreateEmployeeRequest) (*models.Employee, error) {
	role := models.EmployeeRole(req.Role)
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleUser:
	case "":
		role = models.RoleUser
	default:
		return nil, fmt.Errorf("%w: неизвестная роль %q", ErrValidation, req.Role)
	}
	if req.HourlyWage < 0 {
		return nil, fmt.Errorf("%w: отрицательная ставка", ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	employee := models.Employee{
		Username:     req.Username,
		PasswordHash: string(passwordHash),
		FullName:     req.FullName,
		Email:        req.Email,
		HourlyWage:   req.HourlyWage,
		WorkSchedule: req.WorkSchedule,
		Role:         role,
		IsActive:     true,
	}
	if employee.HourlyWage == 0 {
		employee.HourlyWage = 15.0
	}

	if err := s.db.Create(&employee).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания сотрудника: %w", err)
	}
	log.Printf("✅ Создан сотрудник: %s (%s)", employee.Username, employee.ID)
	return &employee, nil
}

// UpdateEmployee обновляет сотрудника
func (s *EmployeeService) UpdateEmployee(employeeID string, updates map[string]interface{}) (*models.Employee, error) {
	if password, ok := updates["password"]; ok {
		raw, _ := password.(string)
		if raw == "" {
			return nil, fmt.Errorf("%w: пустой пароль", ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
		}
		delete(updates, "password")
		updates["password_hash"] = string(hash)
	}

	result := s.db.Model(&models.Employee{}).Where("id = ?", employeeID).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка обновления сотрудника: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: сотрудник %s", ErrNotFound, employeeID)
	}
	return s.GetEmployeeByID(employeeID)
}

// DeactivateEmployee деактивирует сотрудника
// История задач сохраняется, записи не удаляются
func (s *EmployeeService) DeactivateEmployee(employeeID string) error {
	result := s.db.Model(&models.Employee{}).Where("id = ?", employeeID).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("ошибка деактивации сотрудника: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: сотрудник %s", ErrNotFound, employeeID)
	}
	log.Printf("✅ Сотрудник %s деактивирован", employeeID)
	return nil
}

// Authenticate проверяет логин и пароль
func (s *EmployeeService) Authenticate(username, password string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.Where("username = ? AND is_active = ?", username, true).First(&employee).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: сотрудник %s", ErrNotFound, username)
		}
		return nil, fmt.Errorf("ошибка загрузки сотрудника: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: неверный пароль", ErrValidation)
	}
	return &employee, nil
}
