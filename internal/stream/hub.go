// Package stream distribui alertas persistidos em tempo real para os
// dispositivos conectados do usuário via websocket.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"amparo/pkg/models"
)

type client struct {
	conn   *websocket.Conn
	sendCh chan []byte
	mu     sync.Mutex
}

// Hub mantém os clientes websocket agrupados por usuário dono.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// HandleWebSocket registra uma conexão do usuário já autenticado e a mantém
// aberta até o cliente desconectar.
func (h *Hub) HandleWebSocket(userID string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Erro upgrade websocket: %v", err)
		return
	}

	c := &client{
		conn:   conn,
		sendCh: make(chan []byte, 16),
	}

	h.register(userID, c)
	log.Printf("🔌 Cliente conectado ao stream de alertas: %s", userID)

	go c.writeLoop()

	// Loop de leitura apenas para detectar desconexão; o stream é
	// unidirecional (servidor → cliente).
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}

	h.unregister(userID, c)
	close(c.sendCh)
	conn.Close()
	log.Printf("🔌 Cliente desconectado do stream de alertas: %s", userID)
}

// Publish envia o alerta para todos os clientes conectados do dono.
// Clientes lentos são ignorados em vez de bloquear o disparo.
func (h *Hub) Publish(ownerID string, alert *models.Alert) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":   "alerta_criado",
		"alerta": alert,
	})
	if err != nil {
		log.Printf("❌ Erro ao serializar evento de alerta: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[ownerID] {
		select {
		case c.sendCh <- payload:
		default:
			log.Printf("⚠️  Cliente lento, evento de alerta descartado: %s", ownerID)
		}
	}
}

// ClientCount informa quantas conexões estão ativas.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, set := range h.clients {
		total += len(set)
	}
	return total
}

func (h *Hub) register(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *Hub) unregister(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

func (c *client) writeLoop() {
	for payload := range c.sendCh {
		c.mu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, payload)
		c.mu.Unlock()
		if err != nil {
			return
		}
	}
}
