package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/services"
)

// RecipeController обрабатывает HTTP запросы для рецептов
type RecipeController struct {
	recipeService *services.RecipeService
}

// NewRecipeController создает новый контроллер рецептов
func NewRecipeController(recipeService *services.RecipeService) *RecipeController {
	return &RecipeController{
		recipeService: recipeService,
	}
}

// GetRecipes возвращает все рецепты
// GET /api/v1/recipes
func (rc *RecipeController) GetRecipes(c *gin.Context) {
	recipes, err := rc.recipeService.GetAllRecipes()
	if err != nil {
		respondError(c, err, "Ошибка получения рецептов")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// GetRecipe возвращает рецепт по ID
// GET /api/v1/recipes/:id
func (rc *RecipeController) GetRecipe(c *gin.Context) {
	recipe, err := rc.recipeService.GetRecipeByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения рецепта")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe создает новый рецепт
// POST /api/v1/recipes
func (rc *RecipeController) CreateRecipe(c *gin.Context) {
	var req services.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	recipe, err := rc.recipeService.CreateRecipe(&req)
	if err != nil {
		respondError(c, err, "Ошибка создания рецепта")
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe обновляет рецепт
// PUT /api/v1/recipes/:id
func (rc *RecipeController) UpdateRecipe(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	recipe, err := rc.recipeService.UpdateRecipe(c.Param("id"), updates)
	if err != nil {
		respondError(c, err, "Ошибка обновления рецепта")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe удаляет рецепт
// DELETE /api/v1/recipes/:id
func (rc *RecipeController) DeleteRecipe(c *gin.Context) {
	if err := rc.recipeService.DeleteRecipe(c.Param("id")); err != nil {
		respondError(c, err, "Ошибка удаления рецепта")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Рецепт удален"})
}

// SetIngredientLines заменяет ингредиентные строки рецепта
// PUT /api/v1/recipes/:id/ingredients
func (rc *RecipeController) SetIngredientLines(c *gin.Context) {
	var lines []services.RecipeIngredientInput
	if err := c.ShouldBindJSON(&lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	recipe, err := rc.recipeService.SetIngredientLines(c.Param("id"), lines)
	if err != nil {
		respondError(c, err, "Ошибка обновления ингредиентов рецепта")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// AddBatchPortion добавляет порцию заготовки в рецепт
// POST /api/v1/recipes/:id/batch-portions
func (rc *RecipeController) AddBatchPortion(c *gin.Context) {
	var input services.BatchPortionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	recipe, err := rc.recipeService.AddBatchPortion(c.Param("id"), &input)
	if err != nil {
		respondError(c, err, "Ошибка добавления порции заготовки")
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// RemoveBatchPortion удаляет порцию заготовки из рецепта
// DELETE /api/v1/recipes/:id/batch-portions/:portion_id
func (rc *RecipeController) RemoveBatchPortion(c *gin.Context) {
	if err := rc.recipeService.RemoveBatchPortion(c.Param("id"), c.Param("portion_id")); err != nil {
		respondError(c, err, "Ошибка удаления порции заготовки")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Порция заготовки удалена"})
}
