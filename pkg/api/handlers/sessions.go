package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/retro-plastics/squid/pkg/api/types"
	"github.com/retro-plastics/squid/pkg/store"
)

// SessionsHandler exposes the persisted link-session history recorded by
// pkg/store across daemon restarts.
type SessionsHandler struct {
	db       *store.DB
	linkName string
}

// NewSessionsHandler creates a new sessions handler reading linkName's
// history from db.
func NewSessionsHandler(db *store.DB, linkName string) *SessionsHandler {
	return &SessionsHandler{db: db, linkName: linkName}
}

// List handles GET /sessions.
// @Summary      Recent link sessions
// @Tags         sessions
// @Produce      json
// @Param        limit  query  int  false  "max sessions to return (default 20)"
// @Success      200  {object}  types.SessionsResponse
// @Router       /sessions [get]
func (h *SessionsHandler) List(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := h.db.RecentSessions(c.Request.Context(), h.linkName, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "query_failed", Message: err.Error()})
		return
	}

	out := make([]types.SessionInfo, 0, len(rows))
	for _, s := range rows {
		info := types.SessionInfo{
			ID:        s.ID,
			LinkName:  s.LinkName,
			StartedAt: s.StartedAt,
			EndReason: s.EndReason,
			RxFrames:  s.Stats.RxFrames,
			TxFrames:  s.Stats.TxFrames,
			CRCErrors: s.Stats.CRCErrors,
			Drops:     s.Stats.Drops,
		}
		if s.EndedAt.Valid {
			ended := s.EndedAt.Time
			info.EndedAt = &ended
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, types.SessionsResponse{Sessions: out, Count: len(out)})
}
