package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"prepline/server/internal/api"
	"prepline/server/internal/config"
	"prepline/server/internal/database"
	"prepline/server/internal/models"
	"prepline/server/internal/services"
	"prepline/server/internal/utils"
)

func main() {
	// Загружаем переменные окружения из .env файла (если существует)
	// Игнорируем ошибку, если файл не найден (для production окружений)
	if err := godotenv.Load(); err != nil {
		log.Printf("ℹ️ .env файл не найден, используем переменные окружения системы")
	} else {
		log.Printf("✅ Переменные окружения загружены из .env файла")
	}

	cfg := config.Load()

	// Логируем наличие DATABASE_URL (без пароля)
	if cfg.DatabaseURL != "" {
		safeURL := cfg.DatabaseURL
		if idx := strings.Index(safeURL, "@"); idx > 0 {
			if schemeIdx := strings.Index(safeURL, "://"); schemeIdx > 0 {
				safeURL = safeURL[:schemeIdx+3] + "***@" + safeURL[idx+1:]
			}
		}
		log.Printf("📋 DATABASE_URL установлен: %s", safeURL)
	} else {
		log.Printf("⚠️ DATABASE_URL не установлен, используется значение по умолчанию")
	}

	// Подключение к PostgreSQL
	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ PostgreSQL connection failed: %v", err)
	}
	defer database.ClosePostgres(db)

	// Выполняем миграции
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Данные по умолчанию (администратор, названия пар-единиц)
	if err := models.InitDefaultData(db); err != nil {
		log.Printf("⚠️ Ошибка инициализации данных по умолчанию: %v", err)
	}

	// Подключение к Redis (с поддержкой Sentinel)
	// Redis опционален: без него отчеты просто не кэшируются
	redisClient, err := database.ConnectRedis(
		cfg.RedisURL,
		cfg.RedisSentinelAddrs,
		cfg.RedisMasterName,
	)
	var redisUtil *utils.RedisClient
	if err != nil {
		log.Printf("⚠️ Redis connection failed: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		redisUtil = utils.NewRedisClient(redisClient)
	}
	defer database.CloseRedis(redisClient)

	// Публикатор событий задач (заглушка без Kafka)
	eventService := services.NewEventService(cfg.KafkaBrokers, cfg.KafkaTaskTopic)
	defer eventService.Close()

	// Сервисы
	ingredientService := services.NewIngredientService(db)
	recipeService := services.NewRecipeService(db)
	batchService := services.NewBatchService(db)
	dishService := services.NewDishService(db)
	employeeService := services.NewEmployeeService(db)
	referenceService := services.NewReferenceService(db)
	laborService := services.NewLaborService(db)
	costService := services.NewCostService(db)
	itemService := services.NewInventoryItemService(db)
	inventoryService := services.NewInventoryService(db, eventService)
	taskGenService := services.NewTaskGenService(db, eventService)
	taskService := services.NewTaskService(db, eventService)
	reportService := services.NewReportService(db, redisUtil)
	log.Println("✅ Services initialized")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Health check endpoint
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "Prepline Server",
			"version": "1.0.0",
		})
	})

	// Логирование всех запросов
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Printf("🌐 %s %s - Status: %d - Latency: %v", method, path, status, latency)
	})

	// CORS для фронтенда
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Контроллеры
	ingredientController := api.NewIngredientController(ingredientService)
	recipeController := api.NewRecipeController(recipeService)
	batchController := api.NewBatchController(batchService, laborService)
	dishController := api.NewDishController(dishService)
	costController := api.NewCostController(costService, laborService)
	employeeController := api.NewEmployeeController(employeeService)
	referenceController := api.NewReferenceController(referenceService)
	itemController := api.NewInventoryItemController(itemService)
	inventoryController := api.NewInventoryController(inventoryService, taskGenService)
	taskController := api.NewTaskController(taskService)
	reportController := api.NewReportController(reportService)
	wsController := api.NewWSController()

	apiGroup := r.Group("/api/v1")

	// Авторизация
	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/login", employeeController.Login)
	}

	// Каталог: ингредиенты
	ingredientGroup := apiGroup.Group("/ingredients")
	{
		ingredientGroup.GET("", ingredientController.GetIngredients)
		ingredientGroup.GET("/:id", ingredientController.GetIngredient)
		ingredientGroup.GET("/:id/units", ingredientController.GetAvailableUnits)
		ingredientGroup.POST("", ingredientController.CreateIngredient)
		ingredientGroup.PUT("/:id", ingredientController.UpdateIngredient)
		ingredientGroup.DELETE("/:id", ingredientController.DeleteIngredient)
	}

	// Каталог: рецепты
	recipeGroup := apiGroup.Group("/recipes")
	{
		recipeGroup.GET("", recipeController.GetRecipes)
		recipeGroup.GET("/:id", recipeController.GetRecipe)
		recipeGroup.POST("", recipeController.CreateRecipe)
		recipeGroup.PUT("/:id", recipeController.UpdateRecipe)
		recipeGroup.DELETE("/:id", recipeController.DeleteRecipe)
		recipeGroup.PUT("/:id/ingredients", recipeController.SetIngredientLines)
		recipeGroup.POST("/:id/batch-portions", recipeController.AddBatchPortion)
		recipeGroup.DELETE("/:id/batch-portions/:portion_id", recipeController.RemoveBatchPortion)
	}

	// Каталог: заготовки
	batchGroup := apiGroup.Group("/batches")
	{
		batchGroup.GET("", batchController.GetBatches)
		batchGroup.GET("/:id", batchController.GetBatch)
		batchGroup.GET("/:id/scales", batchController.GetScaleOptions)
		batchGroup.GET("/:id/labor-stats", costController.GetLaborStats)
		batchGroup.POST("", batchController.CreateBatch)
		batchGroup.PUT("/:id", batchController.UpdateBatch)
		batchGroup.DELETE("/:id", batchController.DeleteBatch)
	}

	// Каталог: блюда меню
	dishGroup := apiGroup.Group("/dishes")
	{
		dishGroup.GET("", dishController.GetDishes)
		dishGroup.GET("/:id", dishController.GetDish)
		dishGroup.POST("", dishController.CreateDish)
		dishGroup.PUT("/:id", dishController.UpdateDish)
		dishGroup.DELETE("/:id", dishController.DeleteDish)
		dishGroup.PUT("/:id/ingredients", dishController.SetIngredientLines)
		dishGroup.POST("/:id/batch-portions", dishController.AddBatchPortion)
		dishGroup.DELETE("/:id/batch-portions/:portion_id", dishController.RemoveBatchPortion)
	}

	// Калькуляция себестоимости
	apiGroup.GET("/costs/:entity_type/:id", costController.ComputeCost)

	// Сотрудники
	employeeGroup := apiGroup.Group("/employees")
	{
		employeeGroup.GET("", employeeController.GetEmployees)
		employeeGroup.GET("/:id", employeeController.GetEmployee)
		employeeGroup.POST("", employeeController.CreateEmployee)
		employeeGroup.PUT("/:id", employeeController.UpdateEmployee)
		employeeGroup.DELETE("/:id", employeeController.DeactivateEmployee)
	}

	// Справочники
	referenceGroup := apiGroup.Group("/references")
	{
		referenceGroup.GET("/categories", referenceController.GetCategories)
		referenceGroup.POST("/categories", referenceController.CreateCategory)
		referenceGroup.DELETE("/categories/:id", referenceController.DeleteCategory)
		referenceGroup.GET("/vendors", referenceController.GetVendors)
		referenceGroup.POST("/vendors", referenceController.CreateVendor)
		referenceGroup.GET("/vendor-units", referenceController.GetVendorUnits)
		referenceGroup.POST("/vendor-units", referenceController.CreateVendorUnit)
		referenceGroup.GET("/par-unit-names", referenceController.GetParUnitNames)
		referenceGroup.POST("/par-unit-names", referenceController.CreateParUnitName)
		referenceGroup.GET("/utility-costs", referenceController.GetUtilityCosts)
		referenceGroup.PUT("/utility-costs", referenceController.UpsertUtilityCost)
		referenceGroup.GET("/janitorial-tasks", referenceController.GetJanitorialTasks)
		referenceGroup.POST("/janitorial-tasks", referenceController.CreateJanitorialTask)
	}

	// Инвентарь: позиции и дни
	inventoryGroup := apiGroup.Group("/inventory")
	{
		inventoryGroup.GET("/items", itemController.GetItems)
		inventoryGroup.GET("/items/:id", itemController.GetItem)
		inventoryGroup.POST("/items", itemController.CreateItem)
		inventoryGroup.PUT("/items/:id", itemController.UpdateItem)
		inventoryGroup.DELETE("/items/:id", itemController.DeleteItem)
		inventoryGroup.GET("/items/:id/par-conversion", itemController.GetParConversion)

		inventoryGroup.GET("/days", inventoryController.ListDays)
		inventoryGroup.POST("/days", inventoryController.CreateDay)
		inventoryGroup.GET("/days/by-date/:date", inventoryController.GetDayByDate)
		inventoryGroup.GET("/days/:id", inventoryController.GetDay)
		inventoryGroup.GET("/days/:id/tasks", taskController.ListTasksByDay)
		inventoryGroup.PUT("/days/:id/readings/:item_id", inventoryController.UpdateReading)
		inventoryGroup.PUT("/days/:id/employees", inventoryController.SetEmployees)
		inventoryGroup.PUT("/days/:id/notes", inventoryController.UpdateNotes)
		inventoryGroup.PUT("/days/:id/janitorial", inventoryController.SetJanitorialSelection)
		inventoryGroup.POST("/days/:id/generate-tasks", inventoryController.GenerateTasks)
		inventoryGroup.POST("/days/:id/finalize", inventoryController.FinalizeDay)
	}

	// Задачи
	taskGroup := apiGroup.Group("/tasks")
	{
		taskGroup.GET("/:id", taskController.GetTask)
		taskGroup.GET("/:id/scale-options", taskController.GetScaleOptions)
		taskGroup.GET("/:id/finish-requirements", taskController.GetFinishRequirements)
		taskGroup.POST("", taskController.CreateTask)
		taskGroup.POST("/:id/:action", taskController.Transition)
		taskGroup.PUT("/:id/assignees", taskController.SetAssignees)
		taskGroup.DELETE("/:id", taskController.DeleteTask)
	}

	// Отчеты
	reportGroup := apiGroup.Group("/reports")
	{
		reportGroup.GET("/days/:id", reportController.GetDayReport)
		reportGroup.GET("/days/:id/xlsx", reportController.ExportDayReportXLSX)
	}

	// WebSocket доска задач для кухонных планшетов
	r.GET("/ws/tasks", wsController.HandleTaskBoard)
	go api.TaskBoardHub.Run()
	log.Println("📱 WebSocket Hub запущен для доски задач")

	// Kafka Consumer транслирует события задач на доску
	if cfg.KafkaBrokers != "" {
		kafkaConsumer := api.NewKafkaWSConsumer(cfg.KafkaBrokers, cfg.KafkaTaskTopic, redisUtil, reportService, cfg.KafkaUsername, cfg.KafkaPassword, cfg.KafkaCACert)
		kafkaConsumer.Start()
		defer kafkaConsumer.Stop()
	} else {
		log.Println("⚠️ Kafka WS Consumer НЕ запущен: KAFKA_BROKERS не установлен")
	}

	port := cfg.ServerPort
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s", port)
	log.Printf("📡 API доступен на http://0.0.0.0:%s/api/v1", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
