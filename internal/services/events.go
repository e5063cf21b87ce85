package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"prepline/server/internal/models"

	"github.com/segmentio/kafka-go"
)

// TaskEvent представляет событие жизненного цикла задач для live-доски
type TaskEvent struct {
	Type      string      `json:"type"`
	DayID     string      `json:"day_id,omitempty"`
	TaskID    string      `json:"task_id,omitempty"`
	Status    string      `json:"status,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventService публикует события задач в Kafka
// Публикация best-effort: недоступность брокера не ломает основную операцию
type EventService struct {
	writer *kafka.Writer
}

// NewEventService создает публикатор событий
// При пустом списке брокеров возвращается сервис-заглушка
func NewEventService(kafkaBrokers, topic string) *EventService {
	if kafkaBrokers == "" {
		log.Println("⚠️ Kafka не настроена, события задач не публикуются")
		return &EventService{}
	}

	brokers := strings.Split(kafkaBrokers, ",")
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		Async:    true, // Асинхронная отправка, ответ клиенту не ждет Kafka
	}
	log.Printf("✅ Kafka producer подключен к %s (топик %s)", kafkaBrokers, topic)

	return &EventService{writer: writer}
}

// Close закрывает Kafka writer
func (s *EventService) Close() error {
	if s.writer != nil {
		return s.writer.Close()
	}
	return nil
}

// publish отправляет событие в Kafka в фоне
func (s *EventService) publish(key string, event *TaskEvent) {
	if s == nil || s.writer == nil {
		return
	}
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ Ошибка сериализации события %s: %v", event.Type, err)
		return
	}

	go func() {
		// Фоновый контекст с таймаутом: контекст запроса может быть отменен
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.writer.WriteMessages(bgCtx, kafka.Message{
			Key:   []byte(key),
			Value: data,
		}); err != nil {
			// Топик создается автоматически, первую ошибку маршрутизации игнорируем
			errStr := err.Error()
			if !strings.Contains(errStr, "Unknown Topic Or Partition") &&
				!strings.Contains(errStr, "context canceled") {
				log.Printf("⚠️ Kafka error при отправке события %s: %v", event.Type, err)
			}
		}
	}()
}

// PublishTaskStatus публикует смену статуса задачи
func (s *EventService) PublishTaskStatus(task *models.Task) {
	s.publish(task.ID, &TaskEvent{
		Type:   "task_status_changed",
		DayID:  task.DayID,
		TaskID: task.ID,
		Status: string(task.Status),
	})
}

// PublishTasksGenerated публикует итог прогона генератора
func (s *EventService) PublishTasksGenerated(dayID string, result *GenerateResult) {
	s.publish(dayID, &TaskEvent{
		Type:    "tasks_generated",
		DayID:   dayID,
		Payload: result,
	})
}

// PublishDayFinalized публикует финализацию дня
func (s *EventService) PublishDayFinalized(dayID string) {
	s.publish(dayID, &TaskEvent{
		Type:  "day_finalized",
		DayID: dayID,
	})
}
