// Audit logging for sparkos. Audit events are JSON lines written to a daily
// file under .sparkos/logs/, one event per state mutation, model call, or
// backup operation, so a console session can be reconstructed afterwards.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Command dispatch events
	AuditCommandExtracted AuditEventType = "command_extracted"
	AuditCommandApplied   AuditEventType = "command_applied"
	AuditCommandRejected  AuditEventType = "command_rejected"

	// State mutation events
	AuditProjectCreate AuditEventType = "project_create"
	AuditProjectUpdate AuditEventType = "project_update"
	AuditProjectDelete AuditEventType = "project_delete"
	AuditWorkerHire    AuditEventType = "worker_hire"
	AuditWorkerRemove  AuditEventType = "worker_remove"
	AuditStockMove     AuditEventType = "stock_move"
	AuditStockRejected AuditEventType = "stock_rejected"

	// LLM API events
	AuditLLMRequest  AuditEventType = "llm_request"
	AuditLLMResponse AuditEventType = "llm_response"
	AuditLLMError    AuditEventType = "llm_error"

	// Lifecycle events
	AuditBackupExport AuditEventType = "backup_export"
	AuditStateReset   AuditEventType = "state_reset"
	AuditServerStart  AuditEventType = "server_start"
	AuditServerStop   AuditEventType = "server_stop"
)

// =============================================================================
// AUDIT EVENT STRUCTURE
// =============================================================================

// AuditEvent represents a structured audit log entry
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`      // Unix milliseconds
	EventType  AuditEventType         `json:"event"`   // What happened
	Category   string                 `json:"cat"`     // Log category
	SessionID  string                 `json:"session"` // Session correlation
	Target     string                 `json:"target"`  // Entity the event acted on
	Action     string                 `json:"action"`  // Action being performed
	Success    bool                   `json:"success"` // Operation succeeded
	DurationMs int64                  `json:"dur_ms"`  // Duration in milliseconds
	Error      string                 `json:"error"`   // Error message if failed
	Message    string                 `json:"msg"`     // Human-readable message
	Fields     map[string]interface{} `json:"fields"`  // Additional structured fields
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger handles structured audit logging
type AuditLogger struct {
	sessionID string
	category  Category
}

// InitAudit initializes the audit logging system
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil // Already initialized
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# Audit log started at %s\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)

	return nil
}

// CloseAudit closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithSession creates an audit logger scoped to a session
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// =============================================================================
// AUDIT LOGGING METHODS
// =============================================================================

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" && a.sessionID != "" {
		event.SessionID = a.sessionID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}
	if event.Fields == nil {
		event.Fields = make(map[string]interface{})
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// =============================================================================
// CONVENIENCE METHODS FOR COMMON EVENTS
// =============================================================================

// CommandApplied logs a dispatched console command
func (a *AuditLogger) CommandApplied(action, target string, success bool, errMsg string) {
	eventType := AuditCommandApplied
	if !success {
		eventType = AuditCommandRejected
	}
	a.Log(AuditEvent{
		EventType: eventType,
		Action:    action,
		Target:    target,
		Success:   success,
		Error:     errMsg,
		Message:   fmt.Sprintf("Command %s -> %s (success=%v)", action, target, success),
	})
}

// StockMove logs an inventory transaction attempt
func (a *AuditLogger) StockMove(itemID, direction string, amount int, success bool, errMsg string) {
	eventType := AuditStockMove
	if !success {
		eventType = AuditStockRejected
	}
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    itemID,
		Action:    direction,
		Success:   success,
		Error:     errMsg,
		Fields:    map[string]interface{}{"amount": amount},
		Message:   fmt.Sprintf("Stock %s %s x%d (success=%v)", direction, itemID, amount, success),
	})
}

// LLMCall logs a Gemini API call
func (a *AuditLogger) LLMCall(model string, durationMs int64, success bool, errMsg string) {
	eventType := AuditLLMResponse
	if !success {
		eventType = AuditLLMError
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     model,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("LLM call: %s (%dms, success=%v)", model, durationMs, success),
	})
}

// BackupExport logs a backup export
func (a *AuditLogger) BackupExport(path string, size int64, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType: AuditBackupExport,
		Target:    path,
		Success:   success,
		Error:     errMsg,
		Fields:    map[string]interface{}{"size": size},
		Message:   fmt.Sprintf("Backup exported: %s (%d bytes, success=%v)", path, size, success),
	})
}

// StateReset logs a full state reset
func (a *AuditLogger) StateReset(success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType: AuditStateReset,
		Success:   success,
		Error:     errMsg,
		Message:   fmt.Sprintf("State reset (success=%v)", success),
	})
}

// ServerEvent logs HTTP server lifecycle
func (a *AuditLogger) ServerEvent(eventType AuditEventType, addr string) {
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    addr,
		Success:   true,
		Message:   fmt.Sprintf("Server %s: %s", eventType, addr),
	})
}
