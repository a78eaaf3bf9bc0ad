package handlers

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lyre-server/internal/app/jobs"
)

// pingInterval keeps intermediaries from closing an otherwise idle SSE
// stream.
const pingInterval = 25 * time.Second

// EventsHandler streams job status transitions to clients over SSE.
type EventsHandler struct {
	hub     *jobs.Hub
	manager *jobs.Manager
	logger  *zap.Logger
}

// NewEventsHandler creates the SSE handler.
func NewEventsHandler(hub *jobs.Hub, manager *jobs.Manager, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{hub: hub, manager: manager, logger: logger}
}

// Stream handles GET /api/events. The first frame is a `connected` ack;
// after that the client gets one `job-update` event per observed status
// transition, plus comment heartbeats. Events missed while disconnected are
// not replayed; clients re-sync through the poll endpoint.
func (h *EventsHandler) Stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// A subscriber implies interest in job progress; make sure the poller
	// is running.
	h.manager.Start()

	sub := h.hub.Subscribe()
	defer sub.Remove()

	c.SSEvent("connected", gin.H{"subscribedAt": time.Now().UTC().Format(time.RFC3339)})
	c.Writer.Flush()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("encoding job event failed", zap.Error(err))
				return true
			}
			c.SSEvent("job-update", string(payload))
			return true
		case <-ping.C:
			// Comment frame; ignored by EventSource parsers.
			_, _ = w.Write([]byte(": ping\n\n"))
			return true
		}
	})
}
