package marketdata

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type quoteMessage struct {
	Type      string `json:"type"`
	Quote     Quote  `json:"quote"`
	Timestamp int64  `json:"ts"`
}

// QuoteWS streams cached quotes for one symbol over a websocket,
// refreshing from the upstream when the cached value goes stale.
type QuoteWS struct {
	service  *Service
	upgrader websocket.Upgrader
	interval time.Duration
}

func NewQuoteWS(origin string, service *Service) *QuoteWS {
	return &QuoteWS{
		service:  service,
		interval: 2 * time.Second,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) }},
	}
}

func allowOrigin(r *http.Request, origin string) bool {
	if origin == "*" {
		return true
	}
	return strings.EqualFold(r.Header.Get("Origin"), origin)
}

func (h *QuoteWS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		return
	}
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	for {
		select {
		case <-ticker.C:
			q, err := h.service.Quote(r.Context(), symbol)
			if err != nil {
				if err == context.Canceled {
					return
				}
				log.WithFields(log.Fields{"symbol": symbol, "error": err}).Debug("quote refresh failed")
				continue
			}
			msg := quoteMessage{Type: "quote", Quote: q, Timestamp: time.Now().UTC().Unix()}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
