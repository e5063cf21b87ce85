package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// runWithRetry выполняет fn в транзакции с одной повторной попыткой
// при сбое фиксации. Ошибки предметной области не ретраятся. Повторная
// неудача поднимается как ErrConflict: безграничных ретраев нет
func runWithRetry(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		tx := db.Begin()
		if tx.Error != nil {
			return fmt.Errorf("ошибка открытия транзакции: %w", tx.Error)
		}

		if err := fn(tx); err != nil {
			tx.Rollback()
			if isDomainError(err) {
				return err
			}
			lastErr = err
			log.Printf("⚠️ Транзакция не прошла (попытка %d): %v", attempt+1, err)
			continue
		}

		if err := tx.Commit().Error; err != nil {
			lastErr = err
			log.Printf("⚠️ Ошибка фиксации транзакции (попытка %d): %v", attempt+1, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

// isDomainError проверяет, относится ли ошибка к предметной области
// Такие ошибки детерминированы и повтор не имеет смысла
func isDomainError(err error) bool {
	for _, domain := range []error{
		ErrIncompatibleUnits,
		ErrStructuralError,
		ErrInvalidTransition,
		ErrMissingRequiredInput,
		ErrFinalizedDayImmutable,
		ErrDuplicateDay,
		ErrNotFound,
		ErrValidation,
	} {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}
