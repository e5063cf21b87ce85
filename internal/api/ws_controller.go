package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var taskBoardUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Планшеты подключаются с локальной сети кухни
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSController обрабатывает WebSocket подключения доски задач
type WSController struct{}

// NewWSController создает новый WebSocket контроллер
func NewWSController() *WSController {
	return &WSController{}
}

// HandleTaskBoard подключает планшет к live-доске задач
// GET /ws/tasks
func (wc *WSController) HandleTaskBoard(c *gin.Context) {
	conn, err := taskBoardUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ Ошибка WebSocket upgrade: %v", err)
		return
	}

	TaskBoardHub.AddClient(conn)
	log.Printf("📱 Планшет подключен к доске задач (всего: %d)", TaskBoardHub.GetClientsCount())

	// Читаем входящие сообщения только чтобы заметить отключение
	go func() {
		defer func() {
			TaskBoardHub.RemoveClient(conn)
			log.Printf("📱 Планшет отключен от доски задач (всего: %d)", TaskBoardHub.GetClientsCount())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
