package api

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerMiddleware() {
	if s == nil || s.router == nil {
		return
	}
	s.router.Use(gin.Logger(), gin.Recovery(), corsMiddleware())
}

// corsPolicy is parsed once from PROMPT_STUDIO_CORS_ORIGINS at startup.
// Browsers talking to a locally hosted studio do not need CORS, so the
// default is no policy at all.
type corsPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

func parseCORSOrigins(raw string) corsPolicy {
	var p corsPolicy
	for _, part := range strings.Split(raw, ",") {
		origin := strings.TrimSpace(part)
		switch origin {
		case "":
		case "*":
			return corsPolicy{allowAll: true}
		default:
			if p.origins == nil {
				p.origins = make(map[string]struct{})
			}
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) empty() bool {
	return !p.allowAll && len(p.origins) == 0
}

func (p corsPolicy) allows(origin string) bool {
	if p.allowAll {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

func corsMiddleware() gin.HandlerFunc {
	policy := parseCORSOrigins(os.Getenv("PROMPT_STUDIO_CORS_ORIGINS"))
	if policy.empty() {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" {
			c.Next()
			return
		}

		if policy.allows(origin) {
			if policy.allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func apiKeyAuthMiddleware(expected string) gin.HandlerFunc {
	expected = strings.TrimSpace(expected)
	if expected == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		// Preflight requests cannot carry the key header.
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		provided := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
