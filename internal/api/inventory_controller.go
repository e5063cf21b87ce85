package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/services"
)

// InventoryController обрабатывает HTTP запросы инвентарных дней
type InventoryController struct {
	inventoryService *services.InventoryService
	taskGenService   *services.TaskGenService
}

// NewInventoryController создает новый контроллер инвентаря
func NewInventoryController(inventoryService *services.InventoryService, taskGenService *services.TaskGenService) *InventoryController {
	return &InventoryController{
		inventoryService: inventoryService,
		taskGenService:   taskGenService,
	}
}

// ListDays возвращает последние инвентарные дни
// GET /api/v1/inventory/days?limit=30
func (ic *InventoryController) ListDays(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit <= 0 {
		limit = 30
	}

	days, err := ic.inventoryService.ListDays(limit)
	if err != nil {
		respondError(c, err, "Ошибка получения инвентарных дней")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":  days,
		"count": len(days),
	})
}

// CreateDay создает инвентарный день на дату
// POST /api/v1/inventory/days
func (ic *InventoryController) CreateDay(c *gin.Context) {
	var req services.CreateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	day, err := ic.inventoryService.CreateDay(&req)
	if err != nil {
		respondError(c, err, "Ошибка создания инвентарного дня")
		return
	}

	c.JSON(http.StatusCreated, day)
}

// GetDay возвращает инвентарный день по ID
// GET /api/v1/inventory/days/:id
func (ic *InventoryController) GetDay(c *gin.Context) {
	day, err := ic.inventoryService.GetDay(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения инвентарного дня")
		return
	}

	c.JSON(http.StatusOK, day)
}

// GetDayByDate возвращает инвентарный день на дату
// GET /api/v1/inventory/days/by-date/:date
func (ic *InventoryController) GetDayByDate(c *gin.Context) {
	day, err := ic.inventoryService.GetDayByDate(c.Param("date"))
	if err != nil {
		respondError(c, err, "Ошибка получения инвентарного дня")
		return
	}

	c.JSON(http.StatusOK, day)
}

// UpdateReading обновляет показание позиции
// PUT /api/v1/inventory/days/:id/readings/:item_id
func (ic *InventoryController) UpdateReading(c *gin.Context) {
	var req services.UpdateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	reading, err := ic.inventoryService.UpdateReading(c.Param("id"), c.Param("item_id"), &req)
	if err != nil {
		respondError(c, err, "Ошибка обновления показания")
		return
	}

	c.JSON(http.StatusOK, reading)
}

// SetEmployees заменяет список сотрудников дня
// PUT /api/v1/inventory/days/:id/employees
func (ic *InventoryController) SetEmployees(c *gin.Context) {
	var req struct {
		EmployeeIDs []string `json:"employee_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	day, err := ic.inventoryService.SetEmployees(c.Param("id"), req.EmployeeIDs)
	if err != nil {
		respondError(c, err, "Ошибка обновления сотрудников дня")
		return
	}

	c.JSON(http.StatusOK, day)
}

// UpdateNotes обновляет заметки дня
// PUT /api/v1/inventory/days/:id/notes
func (ic *InventoryController) UpdateNotes(c *gin.Context) {
	var req struct {
		GlobalNotes *string `json:"global_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	if err := ic.inventoryService.UpdateNotes(c.Param("id"), req.GlobalNotes); err != nil {
		respondError(c, err, "Ошибка обновления заметок")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Заметки обновлены"})
}

// SetJanitorialSelection обновляет выбор хозяйственных задач дня
// PUT /api/v1/inventory/days/:id/janitorial
func (ic *InventoryController) SetJanitorialSelection(c *gin.Context) {
	var selections map[string]bool
	if err := c.ShouldBindJSON(&selections); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	if err := ic.inventoryService.SetJanitorialSelection(c.Param("id"), selections); err != nil {
		respondError(c, err, "Ошибка обновления хозяйственных задач")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Хозяйственные задачи обновлены"})
}

// GenerateTasks создает или обновляет задачи по показаниям дня
// POST /api/v1/inventory/days/:id/generate-tasks?force=true
func (ic *InventoryController) GenerateTasks(c *gin.Context) {
	force := c.Query("force") == "true"

	result, err := ic.taskGenService.GenerateOrUpdateTasks(c.Param("id"), force)
	if err != nil {
		respondError(c, err, "Ошибка генерации задач")
		return
	}

	c.JSON(http.StatusOK, result)
}

// FinalizeDay финализирует инвентарный день
// POST /api/v1/inventory/days/:id/finalize
func (ic *InventoryController) FinalizeDay(c *gin.Context) {
	day, err := ic.inventoryService.FinalizeDay(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка финализации дня")
		return
	}

	c.JSON(http.StatusOK, day)
}
