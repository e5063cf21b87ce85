package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/models"
	"prepline/server/internal/services"
)

// InventoryItemController обрабатывает HTTP запросы позиций инвентаря
type InventoryItemController struct {
	itemService *services.InventoryItemService
}

// NewInventoryItemController создает новый контроллер позиций инвентаря
func NewInventoryItemController(itemService *services.InventoryItemService) *InventoryItemController {
	return &InventoryItemController{
		itemService: itemService,
	}
}

// GetItems возвращает все позиции инвентаря
// GET /api/v1/inventory/items
func (ic *InventoryItemController) GetItems(c *gin.Context) {
	items, err := ic.itemService.GetAllItems()
	if err != nil {
		respondError(c, err, "Ошибка получения позиций инвентаря")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GetItem возвращает позицию инвентаря по ID
// GET /api/v1/inventory/items/:id
func (ic *InventoryItemController) GetItem(c *gin.Context) {
	item, err := ic.itemService.GetItemByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения позиции инвентаря")
		return
	}

	c.JSON(http.StatusOK, item)
}

// CreateItem создает новую позицию инвентаря
// POST /api/v1/inventory/items
func (ic *InventoryItemController) CreateItem(c *gin.Context) {
	var item models.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	created, err := ic.itemService.CreateItem(&item)
	if err != nil {
		respondError(c, err, "Ошибка создания позиции инвентаря")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateItem обновляет позицию инвентаря
// PUT /api/v1/inventory/items/:id
func (ic *InventoryItemController) UpdateItem(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	item, err := ic.itemService.UpdateItem(c.Param("id"), updates)
	if err != nil {
		respondError(c, err, "Ошибка обновления позиции инвентаря")
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetParConversion возвращает способ перевода par-единицы в выход заготовки
// GET /api/v1/inventory/items/:id/par-conversion
func (ic *InventoryItemController) GetParConversion(c *gin.Context) {
	resolution, err := ic.itemService.ParConversion(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка определения конвертации par-единицы")
		return
	}

	c.JSON(http.StatusOK, resolution)
}

// DeleteItem удаляет позицию инвентаря
// DELETE /api/v1/inventory/items/:id
func (ic *InventoryItemController) DeleteItem(c *gin.Context) {
	if err := ic.itemService.DeleteItem(c.Param("id")); err != nil {
		respondError(c, err, "Ошибка удаления позиции инвентаря")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Позиция инвентаря удалена"})
}
