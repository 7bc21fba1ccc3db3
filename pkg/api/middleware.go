package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/retro-plastics/squid/pkg/squid"
)

// SetupMiddleware configures the middleware stack for the Gin router. The
// request logger is handed conn so every access log line also carries the
// link's up/down state at the time of the request, not just HTTP facts.
func SetupMiddleware(r *gin.Engine, conn *squid.Conn) {
	// Recovery middleware
	r.Use(gin.Recovery())

	// Request logging middleware
	r.Use(RequestLogger(conn))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// RequestLogger returns a Gin middleware that logs every request alongside
// the link's state, so an operator reading access logs can immediately
// tell whether a 5xx coincided with the link being down. When the route
// names a channel id (the :id param used throughout pkg/api/handlers),
// that id is attached too.
func RequestLogger(conn *squid.Conn) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Log after request
		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		logEvent := log.Info()
		if statusCode >= 400 {
			logEvent = log.Warn()
		}
		if statusCode >= 500 {
			logEvent = log.Error()
		}

		logEvent = logEvent.
			Str("method", method).
			Str("path", path).
			Int("status", statusCode).
			Dur("latency", latency).
			Str("client_ip", clientIP).
			Bool("link_up", conn.LinkIsUp())

		if id := c.Param("id"); id != "" {
			logEvent = logEvent.Str("channel", id)
		}

		logEvent.Msg("request")
	}
}
