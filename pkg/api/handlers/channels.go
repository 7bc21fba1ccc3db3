package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/retro-plastics/squid/pkg/api/types"
	"github.com/retro-plastics/squid/pkg/squid"
)

// ChannelsHandler exposes the multiplexed channel API over HTTP.
type ChannelsHandler struct {
	conn *squid.Conn
}

// NewChannelsHandler creates a new channels handler.
func NewChannelsHandler(conn *squid.Conn) *ChannelsHandler {
	return &ChannelsHandler{conn: conn}
}

func parseChannelID(c *gin.Context) (uint8, bool) {
	raw, err := strconv.Atoi(c.Param("id"))
	if err != nil || raw < 1 || raw > 15 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_channel",
			Message: "channel id must be between 1 and 15",
		})
		return 0, false
	}
	return uint8(raw), true
}

// ListChannels handles GET /channels.
// @Summary      List open channels
// @Tags         channels
// @Produce      json
// @Success      200  {object}  types.ListChannelsResponse
// @Router       /channels [get]
func (h *ChannelsHandler) ListChannels(c *gin.Context) {
	ids := h.conn.OpenChannels()
	out := make([]types.ChannelInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, types.ChannelInfo{
			ID:         id,
			RecvAvail:  h.conn.RecvAvail(id),
			SendQueued: h.conn.SendQueued(id),
		})
	}
	c.JSON(http.StatusOK, types.ListChannelsResponse{Channels: out, Count: len(out)})
}

// OpenChannel handles POST /channels.
// @Summary      Open a new channel
// @Tags         channels
// @Produce      json
// @Success      201  {object}  types.OpenChannelResponse
// @Failure      409  {object}  types.ErrorResponse  "no free channel or link disconnected"
// @Router       /channels [post]
func (h *ChannelsHandler) OpenChannel(c *gin.Context) {
	id, err := h.conn.OpenChannel()
	if err != nil {
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: "open_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, types.OpenChannelResponse{ID: id})
}

// CloseChannel handles DELETE /channels/:id.
// @Summary      Close a channel and drain its queues
// @Tags         channels
// @Produce      json
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /channels/{id} [delete]
func (h *ChannelsHandler) CloseChannel(c *gin.Context) {
	id, ok := parseChannelID(c)
	if !ok {
		return
	}
	if err := h.conn.CloseChannel(id); err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "not_open", Message: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Send handles POST /channels/:id/send.
// @Summary      Enqueue bytes for transmission on a channel
// @Tags         channels
// @Accept       json
// @Produce      json
// @Success      202  {object}  types.SendResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      409  {object}  types.ErrorResponse  "channel not open or capacity exceeded"
// @Router       /channels/{id}/send [post]
func (h *ChannelsHandler) Send(c *gin.Context) {
	id, ok := parseChannelID(c)
	if !ok {
		return
	}
	var req types.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	if err := h.conn.Send(id, req.Data); err != nil {
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: "send_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, types.SendResponse{Queued: len(req.Data)})
}

// Recv handles GET /channels/:id/recv.
// @Summary      Drain received bytes from a channel
// @Tags         channels
// @Produce      json
// @Param        max  query  int  false  "max bytes to return (default 512)"
// @Success      200  {object}  types.RecvResponse
// @Router       /channels/{id}/recv [get]
func (h *ChannelsHandler) Recv(c *gin.Context) {
	id, ok := parseChannelID(c)
	if !ok {
		return
	}
	max := 512
	if raw := c.Query("max"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			max = n
		}
	}
	buf := make([]byte, max)
	n := h.conn.Recv(id, buf)
	c.JSON(http.StatusOK, types.RecvResponse{Data: buf[:n], N: n})
}
