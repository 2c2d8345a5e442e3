package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const staticRoot = "web/static"

// registerStatic installs the built frontend as the NoRoute handler so
// every path the API router does not claim falls through to the SPA.
// A root catch-all route would collide with the /api tree in gin.
func (s *Server) registerStatic() {
	if s == nil || s.router == nil {
		return
	}
	s.router.NoRoute(serveStatic)
}

func serveStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	path := c.Request.URL.Path
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	rootAbs, err := filepath.Abs(staticRoot)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	indexPath := filepath.Join(rootAbs, "index.html")
	if path == "/" {
		c.File(indexPath)
		return
	}

	cleaned := filepath.Clean(strings.TrimPrefix(path, "/"))
	fullAbs, err := filepath.Abs(filepath.Join(staticRoot, cleaned))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	rootPrefix := rootAbs + string(os.PathSeparator)
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootPrefix) {
		c.Status(http.StatusForbidden)
		return
	}
	if info, err := os.Stat(fullAbs); err == nil && !info.IsDir() {
		c.File(fullAbs)
		return
	}

	// Unknown paths get index.html so client side routing works on reload.
	c.File(indexPath)
}
