package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/dmatos-dev/plantrack/internal/progress"
)

// DashboardStream pushes dashboard snapshots over a websocket at a fixed
// interval. One snapshot is sent immediately on connect so the client never
// waits a full interval for its first render.
type DashboardStream struct {
	progress *progress.Aggregator
	interval time.Duration
}

// NewDashboardStream creates a dashboard stream handler.
func NewDashboardStream(agg *progress.Aggregator, interval time.Duration) *DashboardStream {
	return &DashboardStream{progress: agg, interval: interval}
}

// ServeHTTP upgrades the connection and streams snapshots until the client
// disconnects.
func (h *DashboardStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept websocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Websocket close error", "error", closeErr)
		}
	}()

	ctx := r.Context()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, ws); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *DashboardStream) push(ctx context.Context, ws *websocket.Conn) error {
	d, err := h.progress.Dashboard(ctx)
	if err != nil {
		slog.Error("Failed to build dashboard snapshot", "error", err)
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
