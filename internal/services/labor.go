package services

import (
	"fmt"
	"time"

	"prepline/server/internal/models"

	"gorm.io/gorm"
)

// LaborStats представляет агрегаты стоимости труда по заготовке
// nil означает отсутствие данных в окне: ноль и "нет данных" различимы
type LaborStats struct {
	MostRecent *float64 `json:"most_recent"`
	Week7Avg   *float64 `json:"week_7_avg"`
	Month30Avg *float64 `json:"month_30_avg"`
	AllTimeAvg *float64 `json:"all_time_avg"`
}

// LaborService агрегирует историю стоимости труда по завершенным задачам
type LaborService struct {
	db *gorm.DB
}

// NewLaborService создает новый экземпляр LaborService
func NewLaborService(db *gorm.DB) *LaborService {
	return &LaborService{
		db: db,
	}
}

// Stats возвращает агрегаты стоимости труда заготовки на момент asOf
// Учитываются только завершенные задачи с зафиксированной стоимостью,
// привязанные к заготовке напрямую либо через инвентарную позицию
func (s *LaborService) Stats(batchID string, asOf time.Time) (*LaborStats, error) {
	var tasks []models.Task
	if err := s.db.
		Joins("LEFT JOIN inventory_items ON inventory_items.id = tasks.inventory_item_id").
		Where("tasks.status = ?", models.TaskCompleted).
		Where("tasks.labor_cost IS NOT NULL").
		Where("tasks.finished_at IS NOT NULL").
		Where("tasks.batch_id = ? OR inventory_items.batch_id = ?", batchID, batchID).
		Order("tasks.finished_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки истории задач: %w", err)
	}
	return ComputeLaborStats(tasks, asOf), nil
}

// ComputeLaborStats считает агрегаты по списку завершенных задач
// Задачи должны быть отсортированы по finished_at по убыванию
func ComputeLaborStats(tasks []models.Task, asOf time.Time) *LaborStats {
	stats := &LaborStats{}

	weekAgo := asOf.AddDate(0, 0, -7)
	monthAgo := asOf.AddDate(0, 0, -30)

	var weekSum, monthSum, allSum float64
	var weekN, monthN, allN int

	for _, t := range tasks {
		if t.LaborCost == nil || t.FinishedAt == nil {
			continue
		}
		cost := *t.LaborCost
		finished := *t.FinishedAt

		if stats.MostRecent == nil {
			c := cost
			stats.MostRecent = &c
		}

		allSum += cost
		allN++
		if !finished.Before(weekAgo) {
			weekSum += cost
			weekN++
		}
		if !finished.Before(monthAgo) {
			monthSum += cost
			monthN++
		}
	}

	if weekN > 0 {
		avg := weekSum / float64(weekN)
		stats.Week7Avg = &avg
	}
	if monthN > 0 {
		avg := monthSum / float64(monthN)
		stats.Month30Avg = &avg
	}
	if allN > 0 {
		avg := allSum / float64(allN)
		stats.AllTimeAvg = &avg
	}

	return stats
}
