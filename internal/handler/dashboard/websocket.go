package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dpetrov/infracopilot/backend/internal/model/health"
	healthService "github.com/dpetrov/infracopilot/backend/internal/service/health"
)

const pushInterval = 30 * time.Second

// Handler feeds live health summaries to dashboard clients over a websocket.
// The server pushes on an interval; a client may send {"type":"refresh"} to
// force an immediate re-aggregation.
type Handler struct {
	aggregator *healthService.Aggregator
	upgrader   websocket.Upgrader
}

// New creates the dashboard feed handler.
func New(aggregator *healthService.Aggregator, allowedOrigins []string) *Handler {
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	return &Handler{
		aggregator: aggregator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

type clientMessage struct {
	Type string `json:"type"`
}

type feedFrame struct {
	Event     string         `json:"event"`
	Timestamp string         `json:"timestamp"`
	Summary   health.Summary `json:"summary"`
	Warnings  []string       `json:"warnings"`
}

// HandleFeed upgrades the connection and serves the push loop until the
// client goes away.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] dashboard client connected: %s", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	refresh := make(chan struct{}, 1)
	go h.readLoop(cancel, conn, refresh)

	if err := h.push(ctx, conn); err != nil {
		return
	}

	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[ws] dashboard client disconnected: %s", r.RemoteAddr)
			return
		case <-refresh:
			if err := h.push(ctx, conn); err != nil {
				return
			}
		case <-ticker.C:
			if err := h.push(ctx, conn); err != nil {
				return
			}
		}
	}
}

func (h *Handler) readLoop(cancel context.CancelFunc, conn *websocket.Conn, refresh chan<- struct{}) {
	defer cancel()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "refresh" {
			select {
			case refresh <- struct{}{}:
			default:
			}
		}
	}
}

func (h *Handler) push(ctx context.Context, conn *websocket.Conn) error {
	snapshot := h.aggregator.Aggregate(ctx)
	frame := feedFrame{
		Event:     "health",
		Timestamp: snapshot.Timestamp.Format(time.RFC3339),
		Summary:   snapshot.Summary,
		Warnings:  snapshot.Warnings,
	}

	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] write failed: %v", err)
		return err
	}
	return nil
}
