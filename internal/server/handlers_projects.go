package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sparkos/internal/types"
)

func (s *Server) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Store().Projects())
}

func (s *Server) createProject(c *gin.Context) {
	var p types.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	created, err := s.engine.CreateProject(p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProject(c *gin.Context) {
	var p types.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	p.ID = c.Param("id")
	if err := s.engine.UpdateProject(p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.engine.DeleteProject(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) updateProjectStatus(c *gin.Context) {
	var body struct {
		Status types.ProjectStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if err := s.engine.UpdateProjectStatus(c.Param("id"), body.Status); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": body.Status})
}

func (s *Server) saveProjectNotes(c *gin.Context) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if err := s.engine.SaveNotes(c.Param("id"), body.Notes); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) assignWorker(c *gin.Context) {
	var body struct {
		WorkerID string `json:"workerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if err := s.engine.AssignWorker(c.Param("id"), body.WorkerID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
