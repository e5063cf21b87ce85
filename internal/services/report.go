package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"prepline/server/internal/models"
	"prepline/server/internal/utils"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Пороги статусов остатков относительно par level
const (
	criticalParRatio = 0.25
	warningParRatio  = 0.5
)

// DaySummary представляет сводку дня
type DaySummary struct {
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	TotalLaborCost float64 `json:"total_labor_cost"`
	TotalTimeHours float64 `json:"total_time_hours"`
}

// TaskReportRow представляет строку отчета по задаче
// MadeParUnits заполнен, когда фактический выход переводится в par-единицы позиции
type TaskReportRow struct {
	Description  string   `json:"description"`
	AssignedTo   string   `json:"assigned_to"`
	Status       string   `json:"status"`
	TimeMinutes  float64  `json:"time_minutes"`
	LaborCost    float64  `json:"labor_cost"`
	MadeAmount   *float64 `json:"made_amount"`
	MadeUnit     *string  `json:"made_unit"`
	MadeParUnits *float64 `json:"made_par_units"`
}

// InventoryStatusRow представляет строку отчета по остаткам
type InventoryStatusRow struct {
	Name            string  `json:"name"`
	CurrentQuantity float64 `json:"current_quantity"`
	ParLevel        float64 `json:"par_level"`
	ParUnitName     string  `json:"par_unit_name"`
	Status          string  `json:"status"` // critical, warning, ok
}

// EmployeeTimeRow представляет отработанное время сотрудника
type EmployeeTimeRow struct {
	Name        string  `json:"name"`
	HoursWorked float64 `json:"hours_worked"`
}

// DayReport представляет полную проекцию отчета за день
// Потребители отчета (email, экспорт) только читают его
type DayReport struct {
	DayID            string               `json:"day_id"`
	Date             string               `json:"date"`
	Finalized        bool                 `json:"finalized"`
	Summary          DaySummary           `json:"summary"`
	Tasks            []TaskReportRow      `json:"tasks"`
	InventoryStatus  []InventoryStatusRow `json:"inventory_status"`
	TimeAnalysis     []EmployeeTimeRow    `json:"time_analysis"`
	DailyUtilityCost float64              `json:"daily_utility_cost"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

// madeInParUnits переводит фактический выход задачи в par-единицы позиции
// Возвращает nil, когда перевод не выводится
func madeInParUnits(units *UnitService, t *models.Task) *float64 {
	if t.MadeAmount == nil || t.MadeUnit == nil || t.InventoryItem == nil {
		return nil
	}
	resolution := units.ResolveParUnitConversion(t.InventoryItem)
	if resolution.AmountPerPar == nil || *resolution.AmountPerPar <= 0 || resolution.Unit == nil {
		return nil
	}
	converted, err := units.Convert(*t.MadeAmount, *t.MadeUnit, *resolution.Unit, nil)
	if err != nil {
		return nil
	}
	parUnits := converted / *resolution.AmountPerPar
	return &parUnits
}

// inventoryStatusOf классифицирует остаток относительно par level
func inventoryStatusOf(quantity, parLevel float64) string {
	if quantity < parLevel*criticalParRatio {
		return "critical"
	}
	if quantity < parLevel*warningParRatio {
		return "warning"
	}
	return "ok"
}

// ReportService строит отчеты по инвентарным дням
// Отчеты финализированных дней кешируются в Redis: они больше не меняются
type ReportService struct {
	db    *gorm.DB
	redis *utils.RedisClient
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(db *gorm.DB, redis *utils.RedisClient) *ReportService {
	return &ReportService{
		db:    db,
		redis: redis,
	}
}

func reportCacheKey(dayID string) string {
	return fmt.Sprintf("report:day:%s", dayID)
}

// DayReport строит проекцию отчета за день
func (s *ReportService) DayReport(dayID string) (*DayReport, error) {
	if s.redis != nil {
		var cached DayReport
		if err := s.redis.GetJSON(reportCacheKey(dayID), &cached); err == nil {
			return &cached, nil
		}
	}

	var day models.InventoryDay
	if err := s.db.Where("id = ?", dayID).First(&day).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: день %s", ErrNotFound, dayID)
		}
		return nil, fmt.Errorf("ошибка загрузки дня: %w", err)
	}

	var tasks []models.Task
	if err := s.db.
		Preload("Assignees").
		Preload("InventoryItem").
		Preload("InventoryItem.Batch").
		Preload("InventoryItem.ParUnitName").
		Where("day_id = ?", dayID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки задач: %w", err)
	}

	var readings []models.InventoryDayItem
	if err := s.db.
		Preload("InventoryItem").
		Preload("InventoryItem.ParUnitName").
		Where("day_id = ?", dayID).
		Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки показаний: %w", err)
	}

	var utilities []models.UtilityCost
	if err := s.db.Find(&utilities).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки накладных расходов: %w", err)
	}

	now := time.Now().UTC()
	report := &DayReport{
		DayID:       day.ID,
		Date:        day.Date.Format("2006-01-02"),
		Finalized:   day.IsFinalized(),
		GeneratedAt: now,
	}

	units := NewUnitService()
	employeeMinutes := make(map[string]float64)
	for _, t := range tasks {
		row := TaskReportRow{
			Description:  t.Description,
			AssignedTo:   "Не назначено",
			Status:       string(t.Status),
			MadeAmount:   t.MadeAmount,
			MadeUnit:     t.MadeUnit,
			MadeParUnits: madeInParUnits(units, &t),
		}
		if len(t.Assignees) > 0 {
			names := ""
			for i, e := range t.Assignees {
				if i > 0 {
					names += ", "
				}
				if e.FullName != "" {
					names += e.FullName
				} else {
					names += e.Username
				}
			}
			row.AssignedTo = names
		}

		report.Summary.TotalTasks++
		if t.Status == models.TaskCompleted {
			report.Summary.CompletedTasks++
			minutes := t.TotalMinutes(now)
			row.TimeMinutes = minutes
			if t.LaborCost != nil {
				row.LaborCost = *t.LaborCost
				report.Summary.TotalLaborCost += *t.LaborCost
			}
			report.Summary.TotalTimeHours += minutes / 60.0

			for _, e := range t.Assignees {
				name := e.FullName
				if name == "" {
					name = e.Username
				}
				employeeMinutes[name] += minutes
			}
		}
		report.Tasks = append(report.Tasks, row)
	}

	for _, r := range readings {
		if r.InventoryItem == nil {
			continue
		}
		parUnitName := "units"
		if r.InventoryItem.ParUnitName != nil {
			parUnitName = r.InventoryItem.ParUnitName.Name
		}
		report.InventoryStatus = append(report.InventoryStatus, InventoryStatusRow{
			Name:            r.InventoryItem.Name,
			CurrentQuantity: r.Quantity,
			ParLevel:        r.InventoryItem.ParLevel,
			ParUnitName:     parUnitName,
			Status:          inventoryStatusOf(r.Quantity, r.InventoryItem.ParLevel),
		})
	}

	for name, minutes := range employeeMinutes {
		report.TimeAnalysis = append(report.TimeAnalysis, EmployeeTimeRow{
			Name:        name,
			HoursWorked: minutes / 60.0,
		})
	}

	for _, u := range utilities {
		report.DailyUtilityCost += u.DailyCost()
	}

	// Кешируется только финализированный день: его отчет неизменен
	if s.redis != nil && report.Finalized {
		if data, err := json.Marshal(report); err == nil {
			if err := s.redis.SetBytes(reportCacheKey(dayID), data, 24*time.Hour); err != nil {
				log.Printf("⚠️ Не удалось закешировать отчет дня %s: %v", dayID, err)
			}
		}
	}

	return report, nil
}

// InvalidateDayReport сбрасывает кеш отчета дня
func (s *ReportService) InvalidateDayReport(dayID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(reportCacheKey(dayID)); err != nil {
		log.Printf("⚠️ Не удалось сбросить кеш отчета дня %s: %v", dayID, err)
	}
}

// ExportDayReportXLSX выгружает отчет дня в XLSX
func (s *ReportService) ExportDayReportXLSX(dayID string) ([]byte, error) {
	report, err := s.DayReport(dayID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Отчет"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Отчет за день")
	f.SetCellValue(sheet, "B1", report.Date)
	f.SetCellValue(sheet, "A2", "Задач всего")
	f.SetCellValue(sheet, "B2", report.Summary.TotalTasks)
	f.SetCellValue(sheet, "A3", "Задач завершено")
	f.SetCellValue(sheet, "B3", report.Summary.CompletedTasks)
	f.SetCellValue(sheet, "A4", "Стоимость труда")
	f.SetCellValue(sheet, "B4", report.Summary.TotalLaborCost)
	f.SetCellValue(sheet, "A5", "Часов отработано")
	f.SetCellValue(sheet, "B5", report.Summary.TotalTimeHours)
	f.SetCellValue(sheet, "A6", "Накладные расходы за день")
	f.SetCellValue(sheet, "B6", report.DailyUtilityCost)

	taskHeader := 8
	f.SetCellValue(sheet, fmt.Sprintf("A%d", taskHeader), "Задача")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", taskHeader), "Исполнители")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", taskHeader), "Статус")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", taskHeader), "Минуты")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", taskHeader), "Стоимость труда")
	for i, t := range report.Tasks {
		row := taskHeader + 1 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t.Description)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.AssignedTo)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.Status)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), t.TimeMinutes)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), t.LaborCost)
	}

	invHeader := taskHeader + len(report.Tasks) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", invHeader), "Позиция")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", invHeader), "Остаток")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", invHeader), "Par level")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", invHeader), "Статус")
	for i, r := range report.InventoryStatus {
		row := invHeader + 1 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.CurrentQuantity)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.ParLevel)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Status)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи XLSX: %w", err)
	}
	return buf.Bytes(), nil
}
