package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"prepline/server/internal/services"
	"prepline/server/internal/utils"
)

// KafkaWSConsumer читает события задач из Kafka и транслирует их на доску
type KafkaWSConsumer struct {
	brokers   []string
	topic     string
	groupID   string
	reader    *kafka.Reader
	ctx       context.Context
	cancel    context.CancelFunc
	redisUtil *utils.RedisClient
	reports   *services.ReportService
	processed int64
	lastLog   int64
}

// NewKafkaWSConsumer создает новый Kafka Consumer для доски задач
func NewKafkaWSConsumer(brokers string, topic string, redisUtil *utils.RedisClient, reports *services.ReportService, username, password, caCert string) *KafkaWSConsumer {
	brokerList := ParseKafkaBrokers(brokers)
	ctx, cancel := context.WithCancel(context.Background())

	dialer := CreateKafkaDialer(username, password, caCert)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokerList,
		Topic:       topic,
		GroupID:     "task-board-ws-group",
		StartOffset: kafka.LastOffset, // Доска показывает только свежие события
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
		Dialer:      dialer,
	})

	return &KafkaWSConsumer{
		brokers:   brokerList,
		topic:     topic,
		groupID:   "task-board-ws-group",
		reader:    reader,
		ctx:       ctx,
		cancel:    cancel,
		redisUtil: redisUtil,
		reports:   reports,
		lastLog:   time.Now().Unix(),
	}
}

// Start запускает чтение из Kafka и отправку в WebSocket
func (kc *KafkaWSConsumer) Start() {
	log.Printf("📡 Kafka WS Consumer запущен: topic=%s, groupID=%s", kc.topic, kc.groupID)

	go func() {
		for {
			select {
			case <-kc.ctx.Done():
				log.Println("🛑 Kafka WS Consumer остановлен")
				return
			default:
				msg, err := kc.reader.ReadMessage(kc.ctx)
				if err != nil {
					if err == context.Canceled {
						return
					}
					log.Printf("⚠️ Kafka WS Consumer ошибка чтения: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}

				var event services.TaskEvent
				if err := json.Unmarshal(msg.Value, &event); err != nil {
					// Не логируем каждую ошибку парсинга, чтобы не спамить
					continue
				}

				// Кэшируем последнее событие задачи для переподключающихся планшетов
				if kc.redisUtil != nil && event.TaskID != "" {
					eventKey := fmt.Sprintf("task:last_event:%s", event.TaskID)
					if err := kc.redisUtil.SetBytes(eventKey, msg.Value, 24*time.Hour); err != nil {
						log.Printf("⚠️ Ошибка кэширования события задачи %s: %v", event.TaskID, err)
					}
					kc.redisUtil.Increment("task_events:total")
				}

				// Любое событие дня делает закешированный отчет устаревшим
				if kc.reports != nil && event.DayID != "" {
					kc.reports.InvalidateDayReport(event.DayID)
				}

				TaskBoardHub.BroadcastMessage(msg.Value)

				// Логируем только раз в 5 секунд для прогресса
				processed := atomic.AddInt64(&kc.processed, 1)
				now := time.Now().Unix()
				if now-kc.lastLog >= 5 {
					atomic.StoreInt64(&kc.lastLog, now)
					log.Printf("📊 Kafka WS Consumer: обработано %d событий", processed)
				}
			}
		}
	}()
}

// Stop останавливает Kafka Consumer
func (kc *KafkaWSConsumer) Stop() {
	kc.cancel()
	if kc.reader != nil {
		kc.reader.Close()
	}
	log.Println("🛑 Kafka WS Consumer остановлен")
}
