package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetLoggingState() {
	CloseAll()
	CloseAudit()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	configLoaded = false
	config = loggingConfig{}
	auditLogger = nil
}

func writeTestConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".sparkos")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

// TestAllCategoriesLog tests that all categories create log files when debug_mode is true
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
  categories:
    boot: true
    store: true
    ops: true
    uplink: true
    dispatch: true
    context: true
    server: true
    chat: true
    backup: true
`)

	resetLoggingState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot,
		CategoryStore,
		CategoryOps,
		CategoryUplink,
		CategoryDispatch,
		CategoryContext,
		CategoryServer,
		CategoryChat,
		CategoryBackup,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}

		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	// Also test convenience functions
	Boot("Convenience boot log")
	Store("Convenience store log")
	Ops("Convenience ops log")
	Uplink("Convenience uplink log")
	Dispatch("Convenience dispatch log")
	Context("Convenience context log")
	Server("Convenience server log")
	Chat("Convenience chat log")
	Backup("Convenience backup log")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".sparkos", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}
}

// TestDebugModeDisabled tests that no logs are created when debug_mode is false
func TestDebugModeDisabled(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: false
  categories:
    boot: true
    store: true
`)

	resetLoggingState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if IsDebugMode() {
		t.Error("Expected debug mode to be DISABLED (production mode)")
	}

	for _, cat := range []Category{CategoryBoot, CategoryStore, CategoryUplink} {
		if IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be DISABLED when debug_mode=false", cat)
		}
	}

	// Try to log - should be no-ops
	Boot("This should NOT be logged")
	Store("This should NOT be logged")

	logger := Get(CategoryBoot)
	logger.Info("This should NOT be logged")
	logger.Error("This should NOT be logged")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".sparkos", "logs")
	if _, err := os.Stat(logsPath); err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("Expected NO log files in production mode, but found %d files", len(entries))
		}
	}
}

// TestCategoryToggle tests individual category enable/disable
func TestCategoryToggle(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
  categories:
    boot: true
    store: true
    uplink: false
    dispatch: false
`)

	resetLoggingState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if !IsCategoryEnabled(CategoryBoot) {
		t.Error("boot should be enabled")
	}
	if !IsCategoryEnabled(CategoryStore) {
		t.Error("store should be enabled")
	}
	if IsCategoryEnabled(CategoryUplink) {
		t.Error("uplink should be DISABLED")
	}
	if IsCategoryEnabled(CategoryDispatch) {
		t.Error("dispatch should be DISABLED")
	}

	// Category not in config should default to enabled when debug_mode=true
	if !IsCategoryEnabled(CategoryServer) {
		t.Error("server (not in config) should default to enabled")
	}

	Boot("This SHOULD be logged")
	Store("This SHOULD be logged")
	Uplink("This should NOT be logged")
	Dispatch("This should NOT be logged")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".sparkos", "logs")
	entries, _ := os.ReadDir(logsPath)

	var hasBoot, hasStore, hasUplink, hasDispatch bool
	for _, e := range entries {
		name := e.Name()
		if strings.Contains(name, "boot") {
			hasBoot = true
		}
		if strings.Contains(name, "store") {
			hasStore = true
		}
		if strings.Contains(name, "uplink") {
			hasUplink = true
		}
		if strings.Contains(name, "dispatch") {
			hasDispatch = true
		}
	}

	if !hasBoot {
		t.Error("Expected boot log file")
	}
	if !hasStore {
		t.Error("Expected store log file")
	}
	if hasUplink {
		t.Error("Should NOT have uplink log file (disabled)")
	}
	if hasDispatch {
		t.Error("Should NOT have dispatch log file (disabled)")
	}
}

// TestTimerLogging tests the timing helper
func TestTimerLogging(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
`)

	resetLoggingState()
	Initialize(tempDir)

	timer := StartTimer(CategoryStore, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("Timer should have recorded non-zero duration")
	}

	CloseAll()
	CloseAudit()
}

// TestAuditEvents verifies audit events are written as JSON lines
func TestAuditEvents(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
`)

	resetLoggingState()
	Initialize(tempDir)

	if err := InitAudit(); err != nil {
		t.Fatalf("Failed to init audit: %v", err)
	}

	Audit().CommandApplied("ADD_PROJECT", "proj-1", true, "")
	Audit().StockMove("item-1", "OUT", 5, false, "insufficient stock")
	Audit().LLMCall("gemini-2.5-flash", 420, true, "")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".sparkos", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	var auditContent string
	for _, e := range entries {
		if strings.Contains(e.Name(), "audit") {
			data, err := os.ReadFile(filepath.Join(logsPath, e.Name()))
			if err != nil {
				t.Fatalf("Failed to read audit log: %v", err)
			}
			auditContent = string(data)
		}
	}

	if auditContent == "" {
		t.Fatal("No audit log file found")
	}
	for _, want := range []string{"command_applied", "stock_rejected", "llm_response"} {
		if !strings.Contains(auditContent, want) {
			t.Errorf("Audit log missing event %q", want)
		}
	}
}
