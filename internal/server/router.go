package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sparkos/internal/logging"
)

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	api := r.Group("/api")

	// PROJECTS
	api.GET("/projects", s.listProjects)
	api.POST("/projects", s.createProject)
	api.PUT("/projects/:id", s.updateProject)
	api.DELETE("/projects/:id", s.deleteProject)
	api.POST("/projects/:id/status", s.updateProjectStatus)
	api.POST("/projects/:id/assign", s.assignWorker)
	api.PUT("/projects/:id/notes", s.saveProjectNotes)

	// MANPOWER
	api.GET("/manpower", s.listManpower)
	api.POST("/manpower", s.hireWorker)
	api.PUT("/manpower/:id", s.updateWorker)
	api.DELETE("/manpower/:id", s.terminateWorker)
	api.POST("/manpower/:id/attendance", s.toggleAttendance)

	// INVENTORY
	api.GET("/inventory", s.listInventory)
	api.GET("/inventory/low-stock", s.listLowStock)
	api.POST("/inventory", s.addInventoryItem)
	api.PUT("/inventory/:id", s.updateInventoryItem)
	api.POST("/inventory/:id/transactions", s.applyTransaction)
	api.GET("/transactions", s.listTransactions)

	// REGISTRIES
	api.GET("/suppliers", s.listSuppliers)
	api.POST("/suppliers", s.addSupplier)
	api.GET("/incidents", s.listIncidents)
	api.POST("/incidents", s.logIncident)
	api.POST("/incidents/:id/resolve", s.resolveIncident)
	api.GET("/courses", s.listCourses)
	api.POST("/courses", s.addCourse)
	api.POST("/courses/:id/enroll", s.enrollWorker)

	// SETTINGS
	api.GET("/settings", s.getSettings)
	api.PUT("/settings", s.updateSettings)
	api.PUT("/settings/pln-rate", s.setPLNRate)

	// UPLINK
	api.GET("/chat", s.chatHistory)
	api.POST("/uplink/chat", s.uplinkChat)
	api.POST("/uplink/report", s.uplinkReport)
	api.POST("/uplink/risk/:id", s.uplinkRisk)
	api.POST("/uplink/risk-audit", s.uplinkRiskAudit)
	api.POST("/uplink/calculator", s.uplinkCalculator)
	api.POST("/uplink/proposal/:id", s.uplinkProposal)
	api.POST("/uplink/plan/:id", s.uplinkPlan)
	api.POST("/uplink/asset", s.uplinkAsset)
	api.POST("/uplink/skill-matrix", s.uplinkSkillMatrix)
	api.POST("/uplink/jsa", s.uplinkJSA)
	api.POST("/uplink/job-description", s.uplinkJobDescription)
	api.POST("/uplink/contract", s.uplinkContract)
	api.POST("/uplink/efficiency", s.uplinkEfficiency)
	api.POST("/uplink/inventory-spec", s.uplinkInventorySpec)
	api.POST("/uplink/stock/:id", s.uplinkStockAnalysis)

	// ADMIN
	api.GET("/backup", s.downloadBackup)
	api.POST("/reset", s.resetState)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Server("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
