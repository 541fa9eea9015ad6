package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amparo/pkg/models"
)

func dialHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(userID, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("esperava %d cliente(s), há %d", want, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_PublicaAlertaParaODono(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "user1")
	waitForClients(t, hub, 1)

	alert := &models.Alert{ID: "a1", OwnerID: "user1", Status: models.StatusDelivered}
	hub.Publish("user1", alert)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type   string       `json:"type"`
		Alerta models.Alert `json:"alerta"`
	}
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "alerta_criado", event.Type)
	assert.Equal(t, "a1", event.Alerta.ID)
}

func TestHub_NaoVazaAlertaParaOutroUsuario(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "user2")
	waitForClients(t, hub, 1)

	hub.Publish("user1", &models.Alert{ID: "a1", OwnerID: "user1"})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "cliente de outro usuário não recebe o evento")
}

func TestHub_ClientCountAposDesconexao(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "user1")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
