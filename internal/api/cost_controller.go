package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/services"
)

// CostController обрабатывает HTTP запросы калькуляции себестоимости
type CostController struct {
	costService  *services.CostService
	laborService *services.LaborService
}

// NewCostController создает новый контроллер себестоимости
func NewCostController(costService *services.CostService, laborService *services.LaborService) *CostController {
	return &CostController{
		costService:  costService,
		laborService: laborService,
	}
}

// ComputeCost вычисляет себестоимость сущности
// GET /api/v1/costs/:entity_type/:id?basis=estimated&unit=lb
func (cc *CostController) ComputeCost(c *gin.Context) {
	entityType := c.Param("entity_type")
	entityID := c.Param("id")

	basis, err := services.ParseLaborBasis(c.DefaultQuery("basis", "estimated"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверная база расчета труда", "details": err.Error()})
		return
	}

	// Для ингредиентов можно запросить стоимость в конкретной единице
	if entityType == "ingredient" {
		result, err := cc.costService.CostOfIngredient(entityID, c.Query("unit"))
		if err != nil {
			respondError(c, err, "Ошибка расчета себестоимости")
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := cc.costService.ComputeCost(entityType, entityID, basis)
	if err != nil {
		respondError(c, err, "Ошибка расчета себестоимости")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLaborStats возвращает статистику фактического труда по заготовке
// GET /api/v1/batches/:id/labor-stats
func (cc *CostController) GetLaborStats(c *gin.Context) {
	stats, err := cc.laborService.Stats(c.Param("id"), time.Now())
	if err != nil {
		respondError(c, err, "Ошибка получения статистики труда")
		return
	}

	c.JSON(http.StatusOK, stats)
}
