package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sparkos/internal/types"
)

func (s *Server) listManpower(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Store().Manpower())
}

func (s *Server) hireWorker(c *gin.Context) {
	var w types.Manpower
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	hired, err := s.engine.Hire(w)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, hired)
}

func (s *Server) updateWorker(c *gin.Context) {
	var w types.Manpower
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	w.ID = c.Param("id")
	if err := s.engine.UpdateWorker(w); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) terminateWorker(c *gin.Context) {
	if err := s.engine.Terminate(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// toggleAttendance cycles the worker's mark for a date. Omitted date means
// today.
func (s *Server) toggleAttendance(c *gin.Context) {
	var body struct {
		Date string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	worker, err := s.engine.ToggleAttendance(c.Param("id"), body.Date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, worker)
}
