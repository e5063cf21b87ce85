package services

import "errors"

// Ошибки предметной области. Контроллеры сопоставляют их через errors.Is
// и преобразуют в HTTP-статусы
var (
	// ErrIncompatibleUnits возникает при конвертации между несовместимыми единицами
	ErrIncompatibleUnits = errors.New("несовместимые единицы измерения")

	// ErrStructuralError возникает при попытке создать цикл заготовка-рецепт
	ErrStructuralError = errors.New("циклическая ссылка в структуре рецептов")

	// ErrInvalidTransition возникает при недопустимом переходе статуса задачи
	ErrInvalidTransition = errors.New("недопустимый переход статуса")

	// ErrMissingRequiredInput возникает при завершении задачи без обязательного факта выхода
	ErrMissingRequiredInput = errors.New("не указаны обязательные данные")

	// ErrFinalizedDayImmutable возникает при мутации финализированного дня
	ErrFinalizedDayImmutable = errors.New("день финализирован и недоступен для изменений")

	// ErrDuplicateDay возникает при создании второго дня на ту же дату
	ErrDuplicateDay = errors.New("инвентарный день на эту дату уже существует")

	// ErrConflict возникает при повторной неудаче из-за конкурентного доступа
	ErrConflict = errors.New("конфликт конкурентного доступа")

	// ErrNotFound возникает когда сущность не найдена
	ErrNotFound = errors.New("запись не найдена")

	// ErrValidation возникает при некорректных входных данных
	ErrValidation = errors.New("некорректные данные")
)
