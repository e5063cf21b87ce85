package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/models"
	"prepline/server/internal/services"
)

// IngredientController обрабатывает HTTP запросы для ингредиентов
type IngredientController struct {
	ingredientService *services.IngredientService
}

// NewIngredientController создает новый контроллер ингредиентов
func NewIngredientController(ingredientService *services.IngredientService) *IngredientController {
	return &IngredientController{
		ingredientService: ingredientService,
	}
}

// GetIngredients возвращает все ингредиенты
// GET /api/v1/ingredients
func (ic *IngredientController) GetIngredients(c *gin.Context) {
	ingredients, err := ic.ingredientService.GetAllIngredients()
	if err != nil {
		respondError(c, err, "Ошибка получения ингредиентов")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ingredients": ingredients,
		"count":       len(ingredients),
	})
}

// GetIngredient возвращает ингредиент по ID
// GET /api/v1/ingredients/:id
func (ic *IngredientController) GetIngredient(c *gin.Context) {
	ingredient, err := ic.ingredientService.GetIngredientByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения ингредиента")
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

// CreateIngredient создает новый ингредиент
// POST /api/v1/ingredients
func (ic *IngredientController) CreateIngredient(c *gin.Context) {
	var ingredient models.Ingredient
	if err := c.ShouldBindJSON(&ingredient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	created, err := ic.ingredientService.CreateIngredient(&ingredient)
	if err != nil {
		respondError(c, err, "Ошибка создания ингредиента")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateIngredient обновляет ингредиент
// PUT /api/v1/ingredients/:id
func (ic *IngredientController) UpdateIngredient(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	updated, err := ic.ingredientService.UpdateIngredient(c.Param("id"), updates)
	if err != nil {
		respondError(c, err, "Ошибка обновления ингредиента")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteIngredient удаляет ингредиент
// DELETE /api/v1/ingredients/:id
func (ic *IngredientController) DeleteIngredient(c *gin.Context) {
	if err := ic.ingredientService.DeleteIngredient(c.Param("id")); err != nil {
		respondError(c, err, "Ошибка удаления ингредиента")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ингредиент удален"})
}

// GetAvailableUnits возвращает единицы измерения, доступные для ингредиента
// GET /api/v1/ingredients/:id/units
func (ic *IngredientController) GetAvailableUnits(c *gin.Context) {
	units, err := ic.ingredientService.AvailableUnits(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения единиц измерения")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"units": units,
		"count": len(units),
	})
}
