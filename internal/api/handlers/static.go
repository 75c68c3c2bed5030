package handlers

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-voice/internal/api/responses"
)

// Index serves the browser client's entry page.
func (h *Handlers) Index(c *gin.Context) {
	path := filepath.Join(h.staticPath, "index.html")
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		responses.NotFound(c, "index.html not found")
		return
	}
	c.File(path)
}
