package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers auth routes
func RegisterRoutes(r *gin.Engine, handler *Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
	}

	protected := r.Group("/auth")
	protected.Use(RequireAuth(handler.service))
	protected.GET("/me", handler.Me)
}
