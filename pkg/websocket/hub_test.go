package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/utils"
	"clouddrive/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.NewNop())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewHandler(hub, Options{AllowedOrigins: []string{"*"}}, logger.NewNop())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set(utils.ContextUserID, c.Query("user"))
		handler.HandleWebSocket(c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(userID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients for %s, have %d", want, userID, hub.ClientCount(userID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_DeliversEventsToOwnerOnly(t *testing.T) {
	hub := startHub(t)
	srv := newTestServer(t, hub)

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")

	if msg := readMessage(t, alice); msg.Type != "welcome" {
		t.Fatalf("Expected welcome, got %q", msg.Type)
	}
	readMessage(t, bob)

	hub.Publish(context.Background(), &models.Event{
		Type:      utils.EventFileUploaded,
		UserID:    "alice",
		Data:      map[string]interface{}{"name": "a.txt"},
		Timestamp: time.Now(),
	})

	msg := readMessage(t, alice)
	if msg.Type != utils.EventFileUploaded || msg.UserID != "alice" {
		t.Errorf("Unexpected message %+v", msg)
	}

	bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Error("Bob must not receive Alice's events")
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := startHub(t)
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "carol")
	readMessage(t, conn)
	waitForClients(t, hub, "carol", 1)

	conn.Close()
	waitForClients(t, hub, "carol", 0)
}

func TestHub_PublishIgnoresAnonymousEvents(t *testing.T) {
	hub := NewHub(logger.NewNop())

	hub.Publish(context.Background(), nil)
	hub.Publish(context.Background(), &models.Event{Type: "x"})

	if len(hub.broadcast) != 0 {
		t.Errorf("Expected nothing queued, have %d", len(hub.broadcast))
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example/"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://app.example")
	if !check(req) {
		t.Error("Expected configured origin to pass")
	}

	req.Header.Set("Origin", "https://other.example")
	if check(req) {
		t.Error("Expected unknown origin to be rejected")
	}
}
