package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/models"
	"prepline/server/internal/services"
)

// ReferenceController обрабатывает HTTP запросы справочников
type ReferenceController struct {
	referenceService *services.ReferenceService
}

// NewReferenceController создает новый контроллер справочников
func NewReferenceController(referenceService *services.ReferenceService) *ReferenceController {
	return &ReferenceController{
		referenceService: referenceService,
	}
}

// GetCategories возвращает все категории
// GET /api/v1/references/categories
func (rc *ReferenceController) GetCategories(c *gin.Context) {
	categories, err := rc.referenceService.GetCategories()
	if err != nil {
		respondError(c, err, "Ошибка получения категорий")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory создает категорию
// POST /api/v1/references/categories
func (rc *ReferenceController) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	category, err := rc.referenceService.CreateCategory(req.Name)
	if err != nil {
		respondError(c, err, "Ошибка создания категории")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// DeleteCategory удаляет категорию
// DELETE /api/v1/references/categories/:id
func (rc *ReferenceController) DeleteCategory(c *gin.Context) {
	if err := rc.referenceService.DeleteCategory(c.Param("id")); err != nil {
		respondError(c, err, "Ошибка удаления категории")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Категория удалена"})
}

// GetVendors возвращает всех поставщиков
// GET /api/v1/references/vendors
func (rc *ReferenceController) GetVendors(c *gin.Context) {
	vendors, err := rc.referenceService.GetVendors()
	if err != nil {
		respondError(c, err, "Ошибка получения поставщиков")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vendors": vendors,
		"count":   len(vendors),
	})
}

// CreateVendor создает поставщика
// POST /api/v1/references/vendors
func (rc *ReferenceController) CreateVendor(c *gin.Context) {
	var vendor models.Vendor
	if err := c.ShouldBindJSON(&vendor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	created, err := rc.referenceService.CreateVendor(&vendor)
	if err != nil {
		respondError(c, err, "Ошибка создания поставщика")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetVendorUnits возвращает единицы закупки
// GET /api/v1/references/vendor-units
func (rc *ReferenceController) GetVendorUnits(c *gin.Context) {
	units, err := rc.referenceService.GetVendorUnits()
	if err != nil {
		respondError(c, err, "Ошибка получения единиц закупки")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"units": units,
		"count": len(units),
	})
}

// CreateVendorUnit создает единицу закупки
// POST /api/v1/references/vendor-units
func (rc *ReferenceController) CreateVendorUnit(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	unit, err := rc.referenceService.CreateVendorUnit(req.Name)
	if err != nil {
		respondError(c, err, "Ошибка создания единицы закупки")
		return
	}

	c.JSON(http.StatusCreated, unit)
}

// GetParUnitNames возвращает пользовательские названия пар-единиц
// GET /api/v1/references/par-unit-names
func (rc *ReferenceController) GetParUnitNames(c *gin.Context) {
	names, err := rc.referenceService.GetParUnitNames()
	if err != nil {
		respondError(c, err, "Ошибка получения названий пар-единиц")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"names": names,
		"count": len(names),
	})
}

// CreateParUnitName создает название пар-единицы
// POST /api/v1/references/par-unit-names
func (rc *ReferenceController) CreateParUnitName(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	name, err := rc.referenceService.CreateParUnitName(req.Name)
	if err != nil {
		respondError(c, err, "Ошибка создания названия пар-единицы")
		return
	}

	c.JSON(http.StatusCreated, name)
}

// GetUtilityCosts возвращает коммунальные расходы
// GET /api/v1/references/utility-costs
func (rc *ReferenceController) GetUtilityCosts(c *gin.Context) {
	costs, err := rc.referenceService.GetUtilityCosts()
	if err != nil {
		respondError(c, err, "Ошибка получения коммунальных расходов")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"costs": costs,
		"count": len(costs),
	})
}

// UpsertUtilityCost создает или обновляет коммунальный расход
// PUT /api/v1/references/utility-costs
func (rc *ReferenceController) UpsertUtilityCost(c *gin.Context) {
	var cost models.UtilityCost
	if err := c.ShouldBindJSON(&cost); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	saved, err := rc.referenceService.UpsertUtilityCost(&cost)
	if err != nil {
		respondError(c, err, "Ошибка сохранения коммунального расхода")
		return
	}

	c.JSON(http.StatusOK, saved)
}

// GetJanitorialTasks возвращает шаблоны хозяйственных задач
// GET /api/v1/references/janitorial-tasks
func (rc *ReferenceController) GetJanitorialTasks(c *gin.Context) {
	tasks, err := rc.referenceService.GetJanitorialTasks()
	if err != nil {
		respondError(c, err, "Ошибка получения хозяйственных задач")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// CreateJanitorialTask создает шаблон хозяйственной задачи
// POST /api/v1/references/janitorial-tasks
func (rc *ReferenceController) CreateJanitorialTask(c *gin.Context) {
	var task models.JanitorialTask
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	created, err := rc.referenceService.CreateJanitorialTask(&task)
	if err != nil {
		respondError(c, err, "Ошибка создания хозяйственной задачи")
		return
	}

	c.JSON(http.StatusCreated, created)
}
