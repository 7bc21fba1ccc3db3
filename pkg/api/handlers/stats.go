package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retro-plastics/squid/pkg/api/types"
	"github.com/retro-plastics/squid/pkg/squid"
)

// StatsHandler exposes the engine's liveness counters as JSON, the
// squid_stats_get accessor restored from original_source/include/squid.h.
type StatsHandler struct {
	conn *squid.Conn
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(conn *squid.Conn) *StatsHandler {
	return &StatsHandler{conn: conn}
}

// Stats handles GET /stats.
// @Summary      Link statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  types.StatsResponse
// @Router       /stats [get]
func (h *StatsHandler) Stats(c *gin.Context) {
	s := h.conn.Stats()
	c.JSON(http.StatusOK, types.StatsResponse{
		LinkUp:     h.conn.LinkIsUp(),
		RxFrames:   s.RxFrames,
		TxFrames:   s.TxFrames,
		CRCErrors:  s.CRCErrors,
		Duplicates: s.Duplicates,
		Drops:      s.Drops,
		Timeouts:   s.Timeouts,
		Resends:    s.Resends,
	})
}
