package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dm-chat/internal/service/presence"
	"github.com/iamasit07/dm-chat/internal/transport/http/middleware"
	"github.com/rs/zerolog"
)

// SessionService is what the REST layer needs from the authenticator.
type SessionService interface {
	Authenticator
	middleware.TokenVerifier
}

type RouterDeps struct {
	Sessions       SessionService
	History        HistoryReader
	Presence       *presence.Registry
	WebSocket      http.HandlerFunc
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds the gin engine serving the REST API and the websocket upgrade at /ws.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins, deps.Log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.WebSocket != nil {
		router.GET("/ws", gin.WrapF(deps.WebSocket))
	}

	authHandler := NewAuthHandler(deps.Sessions)
	historyHandler := NewHistoryHandler(deps.History)
	presenceHandler := NewPresenceHandler(deps.Presence)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("", middleware.AuthMiddleware(deps.Sessions))
		protected.GET("/history/:username", historyHandler.GetHistory)
		protected.GET("/presence", presenceHandler.List)
	}

	return router
}
