package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retro-plastics/squid/pkg/api/handlers"
	"github.com/retro-plastics/squid/pkg/hoststat"
	"github.com/retro-plastics/squid/pkg/squid"
	"github.com/retro-plastics/squid/pkg/store"
)

// Router holds the Gin engine and its dependencies.
type Router struct {
	engine  *gin.Engine
	conn    *squid.Conn
	monitor *hoststat.Monitor
	db      *store.DB
}

// NewRouter creates a new API router over conn, reporting host health
// through monitor. db is optional: when nil, the /sessions endpoint
// serving the persisted session history is omitted.
func NewRouter(conn *squid.Conn, monitor *hoststat.Monitor, db *store.DB) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine, conn)

	router := &Router{
		engine:  engine,
		conn:    conn,
		monitor: monitor,
		db:      db,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes.
func (r *Router) setupRoutes() {
	// Prometheus scrape endpoint.
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check at root.
	healthHandler := handlers.NewHealthHandler(r.conn, r.monitor)
	r.engine.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		statsHandler := handlers.NewStatsHandler(r.conn)
		v1.GET("/stats", statsHandler.Stats)

		channelsHandler := handlers.NewChannelsHandler(r.conn)
		channels := v1.Group("/channels")
		{
			channels.GET("", channelsHandler.ListChannels)
			channels.POST("", channelsHandler.OpenChannel)
			channels.DELETE("/:id", channelsHandler.CloseChannel)
			channels.POST("/:id/send", channelsHandler.Send)
			channels.GET("/:id/recv", channelsHandler.Recv)
		}

		if r.db != nil {
			sessionsHandler := handlers.NewSessionsHandler(r.db, "default")
			v1.GET("/sessions", sessionsHandler.List)
		}
	}
}

// Run starts the HTTP server.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
