package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/services"
)

// EmployeeController обрабатывает HTTP запросы для сотрудников
type EmployeeController struct {
	employeeService *services.EmployeeService
}

// NewEmployeeController создает новый контроллер сотрудников
func NewEmployeeController(employeeService *services.EmployeeService) *EmployeeController {
	return &EmployeeController{
		employeeService: employeeService,
	}
}

// GetEmployees возвращает всех активных сотрудников
// GET /api/v1/employees
func (ec *EmployeeController) GetEmployees(c *gin.Context) {
	employees, err := ec.employeeService.GetAllEmployees()
	if err != nil {
		respondError(c, err, "Ошибка получения сотрудников")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": employees,
		"count":     len(employees),
	})
}

// GetEmployee возвращает сотрудника по ID
// GET /api/v1/employees/:id
func (ec *EmployeeController) GetEmployee(c *gin.Context) {
	employee, err := ec.employeeService.GetEmployeeByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения сотрудника")
		return
	}

	c.JSON(http.StatusOK, employee)
}

// CreateEmployee создает нового сотрудника
// POST /api/v1/employees
func (ec *EmployeeController) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	employee, err := ec.employeeService.CreateEmployee(&req)
	if err != nil {
		respondError(c, err, "Ошибка создания сотрудника")
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee обновляет сотрудника
// PUT /api/v1/employees/:id
func (ec *EmployeeController) UpdateEmployee(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	employee, err := ec.employeeService.UpdateEmployee(c.Param("id"), updates)
	if err != nil {
		respondError(c, err, "Ошибка обновления сотрудника")
		return
	}

	c.JSON(http.StatusOK, employee)
}

// DeactivateEmployee деактивирует сотрудника, сохраняя его историю
// DELETE /api/v1/employees/:id
func (ec *EmployeeController) DeactivateEmployee(c *gin.Context) {
	if err := ec.employeeService.DeactivateEmployee(c.Param("id")); err != nil {
		respondError(c, err, "Ошибка деактивации сотрудника")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Сотрудник деактивирован"})
}

// Login проверяет учетные данные сотрудника
// POST /api/v1/auth/login
func (ec *EmployeeController) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	employee, err := ec.employeeService.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверные учетные данные"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employee": employee,
		"message":  "Авторизация успешна",
	})
}
