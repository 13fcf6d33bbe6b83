package server

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"sparkos/internal/logging"
)

// downloadBackup exports the full state document and streams it back.
func (s *Server) downloadBackup(c *gin.Context) {
	dir := s.cfg.Backup.Directory
	if dir == "" {
		dir = os.TempDir()
	}
	path, err := s.engine.Store().ExportBackup(dir)
	if err != nil {
		fail(c, err)
		return
	}
	logging.Backup("serving backup %s", path)
	c.FileAttachment(path, filepath.Base(path))
}

// resetState wipes every collection. Requires explicit confirmation in the
// body; there is no undo.
func (s *Server) resetState(c *gin.Context) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !body.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reset requires {\"confirm\": true}"})
		return
	}
	if err := s.engine.Store().Reset(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "factory reset complete"})
}
