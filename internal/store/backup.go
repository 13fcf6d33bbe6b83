package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sparkos/internal/logging"
	"sparkos/internal/types"
)

// Snapshot is a full state export. The JSON field names match the collection
// keys so a backup file can be inspected by hand and restored across
// installs.
type Snapshot struct {
	ExportedAt   string                       `json:"exportedAt"`
	Projects     []types.Project              `json:"sparko_projects_v3"`
	Manpower     []types.Manpower             `json:"sparko_manpower_v3"`
	Inventory    []types.InventoryItem        `json:"sparko_inventory_v3"`
	Transactions []types.InventoryTransaction `json:"sparko_transactions_v3"`
	Settings     types.CompanySettings        `json:"sparko_settings_v3"`
	Safety       []types.SafetyIncident       `json:"sparko_safety_v3"`
	Training     []types.TrainingCourse       `json:"sparko_training_v3"`
	Suppliers    []types.Supplier             `json:"sparko_suppliers_v3"`
	Chat         []types.ChatMessage          `json:"sparko_chat_v3"`
	PLNRate      float64                      `json:"sparko_pln_rate"`
}

// TakeSnapshot reads every collection into a Snapshot.
func (s *Store) TakeSnapshot() Snapshot {
	return Snapshot{
		ExportedAt:   time.Now().Format(time.RFC3339),
		Projects:     s.Projects(),
		Manpower:     s.Manpower(),
		Inventory:    s.Inventory(),
		Transactions: s.Transactions(),
		Settings:     s.Settings(),
		Safety:       s.Incidents(),
		Training:     s.Courses(),
		Suppliers:    s.Suppliers(),
		Chat:         s.Chat(),
		PLNRate:      s.PLNRate(),
	}
}

// BackupFilename returns the dated backup file name for a given day.
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("Sparko_Backup_%s.json", t.Format("2006-01-02"))
}

// ExportBackup writes a full state snapshot into dir and returns the path.
func (s *Store) ExportBackup(dir string) (string, error) {
	timer := logging.StartTimer(logging.CategoryBackup, "ExportBackup")
	defer timer.Stop()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	snap := s.TakeSnapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}

	path := filepath.Join(dir, BackupFilename(time.Now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		logging.Audit().BackupExport(path, int64(len(data)), false, err.Error())
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	logging.Backup("Exported backup to %s (%d bytes)", path, len(data))
	logging.Audit().BackupExport(path, int64(len(data)), true, "")
	return path, nil
}

// RestoreBackup replaces all state with the contents of a backup file.
func (s *Store) RestoreBackup(path string) error {
	timer := logging.StartTimer(logging.CategoryBackup, "RestoreBackup")
	defer timer.Stop()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}

	return s.RestoreSnapshot(snap)
}

// RestoreSnapshot replaces all state with the given snapshot.
func (s *Store) RestoreSnapshot(snap Snapshot) error {
	steps := []struct {
		key string
		fn  func() error
	}{
		{KeyProjects, func() error { return s.SaveProjects(snap.Projects) }},
		{KeyManpower, func() error { return s.SaveManpower(snap.Manpower) }},
		{KeyInventory, func() error { return s.SaveInventory(snap.Inventory) }},
		{KeyTransactions, func() error { return s.SaveTransactions(snap.Transactions) }},
		{KeySettings, func() error { return s.SaveSettings(snap.Settings) }},
		{KeySafety, func() error { return s.SaveIncidents(snap.Safety) }},
		{KeyTraining, func() error { return s.SaveCourses(snap.Training) }},
		{KeySuppliers, func() error { return s.SaveSuppliers(snap.Suppliers) }},
		{KeyChat, func() error { return s.SaveChat(snap.Chat) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("restore %s: %w", step.key, err)
		}
	}
	if snap.PLNRate > 0 {
		if err := s.SavePLNRate(snap.PLNRate); err != nil {
			return fmt.Errorf("restore %s: %w", KeyPLNRate, err)
		}
	}

	logging.Backup("Restored snapshot exported at %s", snap.ExportedAt)
	return nil
}

// Reset removes every collection. The next reads come back as defaults.
// Callers are responsible for confirming with the operator first.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM collections"); err != nil {
		logging.Audit().StateReset(false, err.Error())
		return fmt.Errorf("failed to reset state: %w", err)
	}

	logging.Backup("State reset: all collections cleared")
	logging.Audit().StateReset(true, "")
	return nil
}
