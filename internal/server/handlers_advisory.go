package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sparkos/internal/types"
	"sparkos/internal/uplink"
)

// Advisory endpoints: single best-effort model calls behind the console's
// per-module AI actions. Degraded model output comes back as 200 with the
// advisor's fallback text; only transport-level nil results map to 502.

func (s *Server) findProject(id string) (types.Project, bool) {
	for _, p := range s.engine.Store().Projects() {
		if p.ID == id {
			return p, true
		}
	}
	return types.Project{}, false
}

func (s *Server) uplinkProposal(c *gin.Context) {
	project, ok := s.findProject(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	proposal := s.advisor.ProjectProposal(c.Request.Context(), project)
	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

type attachmentRequest struct {
	Attachment []byte `json:"attachment" binding:"required"`
	MIMEType   string `json:"mimeType" binding:"required"`
	Task       string `json:"task"`
}

// uplinkPlan analyzes an uploaded site drawing and persists the result on
// the project record.
func (s *Server) uplinkPlan(c *gin.Context) {
	var req attachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	project, ok := s.findProject(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	analysis := s.advisor.AnalyzeProjectPlan(c.Request.Context(), uplink.Attachment{Data: req.Attachment, MIME: req.MIMEType})
	if err := s.engine.AttachPlanAnalysis(project.ID, analysis); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (s *Server) uplinkAsset(c *gin.Context) {
	var req attachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	analysis := s.advisor.AnalyzeAsset(c.Request.Context(), uplink.Attachment{Data: req.Attachment, MIME: req.MIMEType}, req.Task)
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (s *Server) uplinkSkillMatrix(c *gin.Context) {
	audit := s.advisor.AnalyzeSkillMatrix(c.Request.Context(), s.engine.Store().Manpower())
	c.JSON(http.StatusOK, gin.H{"audit": audit})
}

func (s *Server) uplinkJSA(c *gin.Context) {
	var body struct {
		Task string `json:"task" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"jsa": s.advisor.JobSafetyAnalysis(c.Request.Context(), body.Task)})
}

func (s *Server) uplinkJobDescription(c *gin.Context) {
	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": s.advisor.DraftJobDescription(c.Request.Context(), body.Role)})
}

func (s *Server) uplinkContract(c *gin.Context) {
	var body struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": s.advisor.AnalyzeContract(c.Request.Context(), body.Text)})
}

func (s *Server) uplinkEfficiency(c *gin.Context) {
	var body struct {
		CapacityKWp float64 `json:"capacityKWp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	estimate := s.advisor.CalculateProjectEfficiency(c.Request.Context(), body.CapacityKWp)
	if estimate == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "efficiency estimate unavailable"})
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// uplinkInventorySpec cross-checks a prospective item against current stock.
func (s *Server) uplinkInventorySpec(c *gin.Context) {
	var item types.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	analysis := s.advisor.AnalyzeInventorySpec(c.Request.Context(), item, s.engine.Store().Inventory())
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (s *Server) uplinkStockAnalysis(c *gin.Context) {
	for _, item := range s.engine.Store().Inventory() {
		if item.ID == c.Param("id") {
			c.JSON(http.StatusOK, gin.H{"analysis": s.advisor.AnalyzeStockItem(c.Request.Context(), item)})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
}
