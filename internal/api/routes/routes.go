package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/turfline/leadchat/internal/api/handlers"
	"github.com/turfline/leadchat/internal/api/middleware"
)

type Deps struct {
	Chat *handlers.ChatHandler
	WS   *handlers.WSHandler
	Lead *handlers.LeadHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Widget-facing routes; writes are authorized by the session secret.
	chat := r.Group("/chat")
	chat.POST("/session", d.Chat.Start)
	chat.POST("/session/:session_id/message", d.Chat.Message)
	chat.POST("/session/:session_id/feedback", d.Chat.Feedback)
	chat.POST("/session/:session_id/reset", d.Chat.Reset)
	chat.GET("/ws/:session_id", d.WS.ChatWS)

	// Admin dashboard (JWT)
	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	admin.GET("/leads", d.Lead.List)
	admin.GET("/leads/:session_id", d.Lead.Get)
	admin.GET("/leads/:session_id/conversation", d.Lead.Conversation)
}
