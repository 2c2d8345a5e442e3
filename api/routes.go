package api

import (
	"errors"
	"os"
	"strings"
)

func (s *Server) registerRoutes() error {
	if s == nil || s.router == nil {
		return nil
	}

	api := s.router.Group("/api")
	apiKey := strings.TrimSpace(os.Getenv("PROMPT_STUDIO_API_KEY"))
	if apiKey != "" {
		api.Use(apiKeyAuthMiddleware(apiKey))
	} else if strings.EqualFold(strings.TrimSpace(os.Getenv("PROMPT_STUDIO_DISABLE_AUTH")), "true") {
		// Explicitly allow unauthenticated access.
	} else {
		return errors.New("api: missing auth configuration: set PROMPT_STUDIO_API_KEY or set PROMPT_STUDIO_DISABLE_AUTH=true")
	}

	api.GET("/health", s.handleHealth)

	api.POST("/analyze", s.handleAnalyze)
	api.POST("/refine", s.handleRefine)

	api.POST("/templates/suggest", s.handleSuggestTemplates)
	api.POST("/templates/merge", s.handleMergeTemplate)
	// Wildcard route: template slugs may contain slashes (hub-style names).
	api.GET("/templates/*slug", s.handleGetTemplate)

	api.POST("/optimize", s.handleOptimize)

	api.GET("/analyses", s.handleListAnalyses)
	api.GET("/analyses/:id", s.handleGetAnalysis)

	return nil
}
