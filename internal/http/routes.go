package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())
	r.Use(AccessLog())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/auth")
	{
		api.POST("/verification-code", RateLimit(h.Limiter, h.RateLimitPerMin), h.SendVerificationCode)
		api.POST("/signup", h.Signup)
		api.POST("/login", h.Login)
		api.POST("/refresh", h.Refresh)
		api.POST("/logout", h.Logout)
		api.POST("/find-login-id", RateLimit(h.Limiter, h.RateLimitPerMin), h.FindLoginID)
		api.POST("/reset-password", RateLimit(h.Limiter, h.RateLimitPerMin), h.ResetPassword)

		api.GET("/:provider/login", h.OAuthLogin)
		api.GET("/:provider/callback", h.OAuthCallback)
	}

	return r
}
