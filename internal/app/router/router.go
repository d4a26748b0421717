// Package router assembles the HTTP routes.
package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	authhandler "auth_backend/internal/feature/auth/transport/handler"
	"auth_backend/internal/platform/config"
	"auth_backend/internal/platform/http/handler"
	"auth_backend/internal/platform/http/middleware"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/shared/ratelimiter"
)

// NewRouter builds the gin engine with every route and middleware attached.
func NewRouter(cfg config.CORS, auth *authhandler.AuthHandler, verifier jwtmw.AccessVerifier,
	limiter ratelimiter.Limiter) *gin.Engine {
	r := gin.Default()
	r.Use(secure.New(middleware.SecurityConfig()))
	r.Use(cors.New(corsConfig(cfg)))

	// liveness
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)

	api := r.Group("/api/auth")
	api.Use(ratelimiter.Middleware(limiter))
	{
		api.POST("/register", auth.Register)
		api.POST("/login", auth.Login)
		api.POST("/google", auth.Google)
		api.POST("/refresh", auth.Refresh)
		api.GET("/me", jwtmw.AuthRequired(verifier), auth.Me)
	}

	return r
}

func corsConfig(cfg config.CORS) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if cfg.AllowAll() {
		c.AllowAllOrigins = true
		return c
	}
	for _, o := range cfg.Origins {
		if o = strings.TrimSpace(o); o != "" {
			c.AllowOrigins = append(c.AllowOrigins, o)
		}
	}
	c.AllowCredentials = true
	return c
}
