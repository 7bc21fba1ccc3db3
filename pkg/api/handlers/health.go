package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retro-plastics/squid/pkg/api/types"
	"github.com/retro-plastics/squid/pkg/hoststat"
	"github.com/retro-plastics/squid/pkg/squid"
)

// HealthHandler reports link and host health.
type HealthHandler struct {
	conn    *squid.Conn
	monitor *hoststat.Monitor
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(conn *squid.Conn, monitor *hoststat.Monitor) *HealthHandler {
	return &HealthHandler{conn: conn, monitor: monitor}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health status of the link and host
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Link is up"
// @Failure      503  {object}  types.HealthResponse  "Link is down"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	linkUp := h.conn.LinkIsUp()
	snap := h.monitor.Latest()

	status := "healthy"
	httpStatus := http.StatusOK
	if !linkUp {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:        status,
		LinkUp:        linkUp,
		CPUPercent:    snap.CPUPercent,
		MemoryPercent: snap.MemoryPercent,
		LoadAverage1:  snap.LoadAverage1,
		Timestamp:     time.Now(),
	})
}
