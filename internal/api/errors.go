package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"prepline/server/internal/services"
)

// respondError переводит доменные ошибки сервисов в HTTP статусы
func respondError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrIncompatibleUnits),
		errors.Is(err, services.ErrMissingRequiredInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrFinalizedDayImmutable),
		errors.Is(err, services.ErrStructuralError),
		errors.Is(err, services.ErrDuplicateDay),
		errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
