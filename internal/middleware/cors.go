package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the vaccine frontend origins. Without configured origins,
// prod-like environments allow none and others fall back to local dev servers.
func CORS(origins []string, prodLike bool) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	switch {
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	case prodLike:
		cfg.AllowOrigins = []string{}
		cfg.AllowOriginFunc = func(string) bool { return false }
	default:
		cfg.AllowOrigins = devOrigins
	}
	cfg.AddAllowMethods("GET", "POST", "PATCH", "OPTIONS")
	cfg.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-Request-ID")
	cfg.AddExposeHeaders("Content-Length", "X-Request-ID")
	cfg.AllowCredentials = true
	cfg.MaxAge = 10 * time.Minute
	return cors.New(cfg)
}
