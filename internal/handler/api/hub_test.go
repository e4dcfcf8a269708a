package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"ParamSweep/internal/domain/models"
	applogger "ParamSweep/pkg/logger"
)

func dialHub(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signals" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastRespectsCoinFilter(t *testing.T) {
	hub := NewHub(time.Second, applogger.Nop())
	e := echo.New()
	e.GET("/ws/signals", hub.Serve)
	srv := httptest.NewServer(e)
	defer srv.Close()
	defer hub.Close()

	all := dialHub(t, srv, "")
	defer all.Close()
	eth := dialHub(t, srv, "?coin=eth")
	defer eth.Close()
	waitClients(t, hub, 2)

	hub.Broadcast(&models.Signal{Coin: "BTC", Action: models.ActionBuy, Price: 100, Strength: 1})
	hub.Broadcast(&models.Signal{Coin: "ETH", Action: models.ActionSell, Price: 10, Strength: 0.7})

	var got models.Signal
	_ = all.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := all.ReadJSON(&got); err != nil || got.Coin != "BTC" {
		t.Fatalf("unfiltered client: first signal %+v, err %v", got, err)
	}
	if err := all.ReadJSON(&got); err != nil || got.Coin != "ETH" {
		t.Fatalf("unfiltered client: second signal %+v, err %v", got, err)
	}

	_ = eth.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := eth.ReadJSON(&got); err != nil || got.Coin != "ETH" || got.Action != models.ActionSell {
		t.Fatalf("filtered client must only see ETH, got %+v, err %v", got, err)
	}
}

func TestHubForgetsDisconnectedClients(t *testing.T) {
	hub := NewHub(time.Second, applogger.Nop())
	e := echo.New()
	e.GET("/ws/signals", hub.Serve)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn := dialHub(t, srv, "")
	waitClients(t, hub, 1)
	conn.Close()
	waitClients(t, hub, 0)

	hub.Close()
	hub.Broadcast(&models.Signal{Coin: "BTC"})
	if hub.Clients() != 0 {
		t.Fatalf("closed hub must not accept clients")
	}
}
