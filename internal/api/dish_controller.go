package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/models"
	"prepline/server/internal/services"
)

// DishController обрабатывает HTTP запросы для блюд меню
type DishController struct {
	dishService *services.DishService
}

// NewDishController создает новый контроллер блюд
func NewDishController(dishService *services.DishService) *DishController {
	return &DishController{
		dishService: dishService,
	}
}

// GetDishes возвращает все блюда
// GET /api/v1/dishes
func (dc *DishController) GetDishes(c *gin.Context) {
	dishes, err := dc.dishService.GetAllDishes()
	if err != nil {
		respondError(c, err, "Ошибка получения блюд")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dishes": dishes,
		"count":  len(dishes),
	})
}

// GetDish возвращает блюдо по ID
// GET /api/v1/dishes/:id
func (dc *DishController) GetDish(c *gin.Context) {
	dish, err := dc.dishService.GetDishByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения блюда")
		return
	}

	c.JSON(http.StatusOK, dish)
}

// CreateDish создает новое блюдо
// POST /api/v1/dishes
func (dc *DishController) CreateDish(c *gin.Context) {
	var dish models.Dish
	if err := c.ShouldBindJSON(&dish); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	created, err := dc.dishService.CreateDish(&dish)
	if err != nil {
		respondError(c, err, "Ошибка создания блюда")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateDish обновляет блюдо
// PUT /api/v1/dishes/:id
func (dc *DishController) UpdateDish(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	dish, err := dc.dishService.UpdateDish(c.Param("id"), updates)
	if err != nil {
		respondError(c, err, "Ошибка обновления блюда")
		return
	}

	c.JSON(http.StatusOK, dish)
}

// DeleteDish удаляет блюдо
// DELETE /api/v1/dishes/:id
func (dc *DishController) DeleteDish(c *gin.Context) {
	if err := dc.dishService.DeleteDish(c.Param("id")); err != nil {
		respondError(c, err, "Ошибка удаления блюда")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Блюдо удалено"})
}

// SetIngredientLines заменяет прямые ингредиентные строки блюда
// PUT /api/v1/dishes/:id/ingredients
func (dc *DishController) SetIngredientLines(c *gin.Context) {
	var lines []services.DishIngredientInput
	if err := c.ShouldBindJSON(&lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	dish, err := dc.dishService.SetIngredientLines(c.Param("id"), lines)
	if err != nil {
		respondError(c, err, "Ошибка обновления ингредиентов блюда")
		return
	}

	c.JSON(http.StatusOK, dish)
}

// AddBatchPortion добавляет порцию заготовки в блюдо
// POST /api/v1/dishes/:id/batch-portions
func (dc *DishController) AddBatchPortion(c *gin.Context) {
	var input services.BatchPortionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	dish, err := dc.dishService.AddBatchPortion(c.Param("id"), &input)
	if err != nil {
		respondError(c, err, "Ошибка добавления порции заготовки")
		return
	}

	c.JSON(http.StatusCreated, dish)
}

// RemoveBatchPortion удаляет порцию заготовки из блюда
// DELETE /api/v1/dishes/:id/batch-portions/:portion_id
func (dc *DishController) RemoveBatchPortion(c *gin.Context) {
	if err := dc.dishService.RemoveBatchPortion(c.Param("id"), c.Param("portion_id")); err != nil {
		respondError(c, err, "Ошибка удаления порции заготовки")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Порция заготовки удалена"})
}
