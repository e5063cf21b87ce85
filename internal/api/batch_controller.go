package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/models"
	"prepline/server/internal/services"
)

// BatchController обрабатывает HTTP запросы для заготовок
type BatchController struct {
	batchService *services.BatchService
	laborService *services.LaborService
}

// NewBatchController создает новый контроллер заготовок
func NewBatchController(batchService *services.BatchService, laborService *services.LaborService) *BatchController {
	return &BatchController{
		batchService: batchService,
		laborService: laborService,
	}
}

// GetBatches возвращает все заготовки
// GET /api/v1/batches
func (bc *BatchController) GetBatches(c *gin.Context) {
	batches, err := bc.batchService.GetAllBatches()
	if err != nil {
		respondError(c, err, "Ошибка получения заготовок")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batches": batches,
		"count":   len(batches),
	})
}

// GetBatch возвращает заготовку по ID
// GET /api/v1/batches/:id
func (bc *BatchController) GetBatch(c *gin.Context) {
	batch, err := bc.batchService.GetBatchByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения заготовки")
		return
	}

	c.JSON(http.StatusOK, batch)
}

// CreateBatch создает новую заготовку
// POST /api/v1/batches
func (bc *BatchController) CreateBatch(c *gin.Context) {
	var batch models.Batch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	created, err := bc.batchService.CreateBatch(&batch)
	if err != nil {
		respondError(c, err, "Ошибка создания заготовки")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateBatch обновляет заготовку
// PUT /api/v1/batches/:id
func (bc *BatchController) UpdateBatch(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	batch, err := bc.batchService.UpdateBatch(c.Param("id"), updates)
	if err != nil {
		respondError(c, err, "Ошибка обновления заготовки")
		return
	}

	c.JSON(http.StatusOK, batch)
}

// DeleteBatch удаляет заготовку
// DELETE /api/v1/batches/:id
func (bc *BatchController) DeleteBatch(c *gin.Context) {
	if err := bc.batchService.DeleteBatch(c.Param("id")); err != nil {
		respondError(c, err, "Ошибка удаления заготовки")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Заготовка удалена"})
}

// GetScaleOptions возвращает доступные масштабы заготовки
// GET /api/v1/batches/:id/scales
func (bc *BatchController) GetScaleOptions(c *gin.Context) {
	batch, err := bc.batchService.GetBatchByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения заготовки")
		return
	}

	scales := batch.AvailableScales()
	c.JSON(http.StatusOK, gin.H{
		"scales": scales,
		"count":  len(scales),
	})
}
