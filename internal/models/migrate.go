package models

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AutoMigrate выполняет миграцию всех таблиц
// Миграции только аддитивные: существующие колонки не удаляются и не меняются
func AutoMigrate(db *gorm.DB) error {
	// ============================================
	// СПРАВОЧНИКИ
	// Порядок важен: справочники мигрируются первыми,
	// на них ссылаются все остальные таблицы
	// ============================================

	if err := db.AutoMigrate(&Category{}); err != nil {
		log.Printf("❌ AutoMigrate для Category failed: %v", err)
		return err
	}
	log.Println("✅ Category table migrated successfully")

	if err := db.AutoMigrate(&Vendor{}); err != nil {
		log.Printf("❌ AutoMigrate для Vendor failed: %v", err)
		return err
	}
	log.Println("✅ Vendor table migrated successfully")

	if err := db.AutoMigrate(&VendorUnit{}); err != nil {
		log.Printf("❌ AutoMigrate для VendorUnit failed: %v", err)
		return err
	}
	log.Println("✅ VendorUnit table migrated successfully")

	if err := db.AutoMigrate(&ParUnitName{}); err != nil {
		log.Printf("❌ AutoMigrate для ParUnitName failed: %v", err)
		return err
	}
	log.Println("✅ ParUnitName table migrated successfully")

	if err := db.AutoMigrate(&UtilityCost{}); err != nil {
		log.Printf("❌ AutoMigrate для UtilityCost failed: %v", err)
		return err
	}
	log.Println("✅ UtilityCost table migrated successfully")

	// Мигрируем Employee (на сотрудников ссылаются дни и задачи)
	if err := db.AutoMigrate(&Employee{}); err != nil {
		log.Printf("❌ AutoMigrate для Employee failed: %v", err)
		return err
	}
	log.Println("✅ Employee table migrated successfully")

	// ============================================
	// КАЛЬКУЛЯЦИОННАЯ ЦЕПОЧКА
	// Ingredient -> Recipe -> Batch -> Dish
	// ============================================

	if err := db.AutoMigrate(&Ingredient{}); err != nil {
		log.Printf("❌ AutoMigrate для Ingredient failed: %v", err)
		return err
	}
	log.Println("✅ Ingredient table migrated successfully")

	if err := db.AutoMigrate(&Recipe{}); err != nil {
		log.Printf("❌ AutoMigrate для Recipe failed: %v", err)
		return err
	}
	log.Println("✅ Recipe table migrated successfully")

	if err := db.AutoMigrate(&RecipeIngredient{}); err != nil {
		log.Printf("❌ AutoMigrate для RecipeIngredient failed: %v", err)
		return err
	}
	log.Println("✅ RecipeIngredient table migrated successfully")

	// Batch мигрируется до RecipeBatchPortion: порции ссылаются на заготовки
	if err := db.AutoMigrate(&Batch{}); err != nil {
		log.Printf("❌ AutoMigrate для Batch failed: %v", err)
		return err
	}
	log.Println("✅ Batch table migrated successfully")

	if err := db.AutoMigrate(&RecipeBatchPortion{}); err != nil {
		log.Printf("❌ AutoMigrate для RecipeBatchPortion failed: %v", err)
		return err
	}
	log.Println("✅ RecipeBatchPortion table migrated successfully")

	if err := db.AutoMigrate(&Dish{}); err != nil {
		log.Printf("❌ AutoMigrate для Dish failed: %v", err)
		return err
	}
	log.Println("✅ Dish table migrated successfully")

	if err := db.AutoMigrate(&DishBatchPortion{}); err != nil {
		log.Printf("❌ AutoMigrate для DishBatchPortion failed: %v", err)
		return err
	}
	log.Println("✅ DishBatchPortion table migrated successfully")

	if err := db.AutoMigrate(&DishIngredientPortion{}); err != nil {
		log.Printf("❌ AutoMigrate для DishIngredientPortion failed: %v", err)
		return err
	}
	log.Println("✅ DishIngredientPortion table migrated successfully")

	// ============================================
	// ИНВЕНТАРИЗАЦИЯ И ЗАДАЧИ
	// ============================================

	if err := db.AutoMigrate(&InventoryItem{}); err != nil {
		log.Printf("❌ AutoMigrate для InventoryItem failed: %v", err)
		return err
	}
	log.Println("✅ InventoryItem table migrated successfully")

	if err := db.AutoMigrate(&InventoryDay{}); err != nil {
		log.Printf("❌ AutoMigrate для InventoryDay failed: %v", err)
		return err
	}
	log.Println("✅ InventoryDay table migrated successfully")

	if err := db.AutoMigrate(&InventoryDayItem{}); err != nil {
		log.Printf("❌ AutoMigrate для InventoryDayItem failed: %v", err)
		return err
	}
	log.Println("✅ InventoryDayItem table migrated successfully")

	if err := db.AutoMigrate(&JanitorialTask{}); err != nil {
		log.Printf("❌ AutoMigrate для JanitorialTask failed: %v", err)
		return err
	}
	log.Println("✅ JanitorialTask table migrated successfully")

	if err := db.AutoMigrate(&JanitorialTaskDay{}); err != nil {
		log.Printf("❌ AutoMigrate для JanitorialTaskDay failed: %v", err)
		return err
	}
	log.Println("✅ JanitorialTaskDay table migrated successfully")

	// Task мигрируется последней: ссылается на день, позицию, заготовку и уборку
	if err := db.AutoMigrate(&Task{}); err != nil {
		log.Printf("❌ AutoMigrate для Task failed: %v", err)
		return err
	}
	log.Println("✅ Task table migrated successfully")

	// Инициализируем дефолтные данные
	if err := InitDefaultData(db); err != nil {
		log.Printf("⚠️ Ошибка инициализации дефолтных данных: %v", err)
	}

	return nil
}

// InitDefaultData создает дефолтного админа и базовые справочники
func InitDefaultData(db *gorm.DB) error {
	// Проверяем, есть ли уже админ с логином "admin"
	var existingAdmin Employee
	result := db.Where("username = ?", "admin").First(&existingAdmin)

	if result.Error == nil {
		log.Println("✅ Дефолтный админ уже существует")
	} else if result.Error == gorm.ErrRecordNotFound {
		// Хешируем пароль "admin"
		passwordHash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		admin := Employee{
			Username:     "admin",
			PasswordHash: string(passwordHash),
			FullName:     "Администратор",
			Role:         RoleAdmin,
			IsActive:     true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("✅ Создан дефолтный админ: username=admin, password=admin")
	} else {
		return result.Error
	}

	// Базовые par-единицы
	for _, name := range []string{"Контейнер", "Лоток", "Бутылка"} {
		var existing ParUnitName
		res := db.Where("name = ?", name).First(&existing)
		if res.Error == gorm.ErrRecordNotFound {
			if err := db.Create(&ParUnitName{Name: name}).Error; err != nil {
				log.Printf("⚠️ Не удалось создать par-единицу %s: %v", name, err)
			}
		}
	}

	return nil
}
