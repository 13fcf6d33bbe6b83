package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sparkos/internal/logging"
	"sparkos/internal/types"
	"sparkos/internal/uplink"
)

// snapshot collects the current state for context assembly.
func (s *Server) snapshot() uplink.Snapshot {
	st := s.engine.Store()
	return uplink.Snapshot{
		Projects:     st.Projects(),
		Manpower:     st.Manpower(),
		Inventory:    st.Inventory(),
		Transactions: st.Transactions(),
		Chat:         st.Chat(),
		Settings:     st.Settings(),
	}
}

func (s *Server) chatHistory(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Store().Chat())
}

type chatRequest struct {
	Text       string         `json:"text" binding:"required"`
	Sender     string         `json:"sender"`
	Options    uplink.Options `json:"options"`
	Attachment []byte         `json:"attachment"`
	MIMEType   string         `json:"mimeType"`
}

// uplinkChat is the main GENESIS round trip: persist the directive, dispatch
// it with full context, apply any extracted command, persist the reply.
func (s *Server) uplinkChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if req.Sender == "" {
		req.Sender = "CEO"
	}

	snap := s.snapshot()

	if _, err := s.engine.AppendChat(types.ChatMessage{
		Sender:    req.Sender,
		Text:      req.Text,
		Timestamp: time.Now(),
	}); err != nil {
		fail(c, err)
		return
	}

	var att *uplink.Attachment
	if len(req.Attachment) > 0 {
		att = &uplink.Attachment{Data: req.Attachment, MIME: req.MIMEType}
	}

	reply := s.dispatcher.Process(c.Request.Context(), req.Text, snap, att, req.Options)

	applied := false
	if reply.Command != nil {
		if err := s.applier.Apply(reply.Command); err != nil {
			logging.ServerError("command %s failed: %v", reply.Command.Action, err)
		} else {
			applied = true
		}
	}

	if _, err := s.engine.AppendChat(uplink.ChatReply(reply)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":     reply.Text,
		"model":     reply.Model,
		"command":   reply.Command,
		"applied":   applied,
		"grounding": reply.Grounding,
	})
}

func (s *Server) uplinkReport(c *gin.Context) {
	snap := s.snapshot()
	report := s.advisor.SitrepReport(c.Request.Context(), snap.Projects, snap.Manpower, snap.Transactions)
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (s *Server) uplinkRisk(c *gin.Context) {
	target, ok := s.findProject(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	assessment := s.advisor.AnalyzeProjectRisk(c.Request.Context(), target, s.engine.Store().Projects())
	if assessment == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "risk analysis unavailable"})
		return
	}

	if err := s.engine.AttachRiskAssessment(target.ID, assessment); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) uplinkRiskAudit(c *gin.Context) {
	results, err := s.advisor.RiskAudit(c.Request.Context(), s.engine.Store().Projects())
	if err != nil {
		c.JSON(http.StatusBadGateway, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, results)
}

type calculatorRequest struct {
	CapacityKWp float64              `json:"capacityKWp" binding:"required"`
	RoofType    string               `json:"roofType"`
	SystemType  string               `json:"systemType"`
	Hybrid      *uplink.HybridParams `json:"hybrid"`
}

func (s *Server) uplinkCalculator(c *gin.Context) {
	var req calculatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	estimate := s.advisor.CalculateSolarProject(c.Request.Context(), req.CapacityKWp, req.RoofType, req.SystemType,
		s.engine.Store().Inventory(), req.Hybrid, s.engine.Store().PLNRate())
	c.Data(http.StatusOK, "application/json", []byte(estimate))
}
