package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sparkos/internal/types"
)

// =============================================================================
// SUPPLIERS
// =============================================================================

func (s *Server) listSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Store().Suppliers())
}

func (s *Server) addSupplier(c *gin.Context) {
	var sup types.Supplier
	if err := c.ShouldBindJSON(&sup); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	added, err := s.engine.AddSupplier(sup)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// =============================================================================
// HSE INCIDENTS
// =============================================================================

func (s *Server) listIncidents(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Store().Incidents())
}

func (s *Server) logIncident(c *gin.Context) {
	var inc types.SafetyIncident
	if err := c.ShouldBindJSON(&inc); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	logged, err := s.engine.LogIncident(inc)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, logged)
}

func (s *Server) resolveIncident(c *gin.Context) {
	if err := s.engine.ResolveIncident(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// =============================================================================
// TRAINING
// =============================================================================

func (s *Server) listCourses(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Store().Courses())
}

func (s *Server) addCourse(c *gin.Context) {
	var course types.TrainingCourse
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	added, err := s.engine.AddCourse(course)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (s *Server) enrollWorker(c *gin.Context) {
	var body struct {
		WorkerID string `json:"workerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if err := s.engine.EnrollWorker(c.Param("id"), body.WorkerID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"settings": s.engine.Store().Settings(),
		"plnRate":  s.engine.Store().PLNRate(),
	})
}

func (s *Server) updateSettings(c *gin.Context) {
	var settings types.CompanySettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if err := s.engine.UpdateSettings(settings); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) setPLNRate(c *gin.Context) {
	var body struct {
		Rate float64 `json:"rate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if err := s.engine.SetPLNRate(body.Rate); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plnRate": body.Rate})
}
