package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/services"
)

// TaskController обрабатывает HTTP запросы жизненного цикла задач
type TaskController struct {
	taskService *services.TaskService
}

// NewTaskController создает новый контроллер задач
func NewTaskController(taskService *services.TaskService) *TaskController {
	return &TaskController{
		taskService: taskService,
	}
}

// ListTasksByDay возвращает задачи инвентарного дня
// GET /api/v1/inventory/days/:id/tasks
func (tc *TaskController) ListTasksByDay(c *gin.Context) {
	tasks, err := tc.taskService.ListTasksByDay(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения задач")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetTask возвращает задачу по ID
// GET /api/v1/tasks/:id
func (tc *TaskController) GetTask(c *gin.Context) {
	task, err := tc.taskService.GetTask(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения задачи")
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask создает ручную задачу
// POST /api/v1/tasks
func (tc *TaskController) CreateTask(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	task, err := tc.taskService.CreateManual(&req)
	if err != nil {
		respondError(c, err, "Ошибка создания задачи")
		return
	}

	c.JSON(http.StatusCreated, task)
}

// Transition выполняет переход статуса задачи
// POST /api/v1/tasks/:id/:action (start | pause | resume | complete)
func (tc *TaskController) Transition(c *gin.Context) {
	var payload services.TaskTransitionPayload
	// Тело опционально для start/pause/resume
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}
	}

	task, err := tc.taskService.Transition(c.Param("id"), c.Param("action"), &payload)
	if err != nil {
		respondError(c, err, "Ошибка перехода статуса задачи")
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask удаляет незапущенную задачу
// DELETE /api/v1/tasks/:id
func (tc *TaskController) DeleteTask(c *gin.Context) {
	if err := tc.taskService.Delete(c.Param("id")); err != nil {
		respondError(c, err, "Ошибка удаления задачи")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Задача удалена"})
}

// SetAssignees заменяет исполнителей задачи
// PUT /api/v1/tasks/:id/assignees
func (tc *TaskController) SetAssignees(c *gin.Context) {
	var req struct {
		EmployeeIDs []string `json:"employee_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
		return
	}

	task, err := tc.taskService.SetAssignees(c.Param("id"), req.EmployeeIDs)
	if err != nil {
		respondError(c, err, "Ошибка обновления исполнителей")
		return
	}

	c.JSON(http.StatusOK, task)
}

// GetScaleOptions возвращает варианты масштабирования задачи
// GET /api/v1/tasks/:id/scale-options
func (tc *TaskController) GetScaleOptions(c *gin.Context) {
	options, err := tc.taskService.ScaleOptions(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения вариантов масштабирования")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"options": options,
		"count":   len(options),
	})
}

// GetFinishRequirements возвращает требования для завершения задачи
// GET /api/v1/tasks/:id/finish-requirements
func (tc *TaskController) GetFinishRequirements(c *gin.Context) {
	req, err := tc.taskService.GetFinishRequirements(c.Param("id"))
	if err != nil {
		respondError(c, err, "Ошибка получения требований завершения")
		return
	}

	c.JSON(http.StatusOK, req)
}
