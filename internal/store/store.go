// Package store provides SQLite-backed persistence for sparkos state.
// Each collection is stored as one JSON document in a key/value table,
// mirroring the console's storage contract: whole-collection reads and
// writes, silent fallback to defaults when a document is missing or
// corrupt, and an explicit reset that drops everything.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"sparkos/internal/logging"
	"sparkos/internal/types"
)

// Collection keys. The _v3 suffix is the state schema generation; older
// generations are simply ignored.
const (
	KeyProjects     = "sparko_projects_v3"
	KeyManpower     = "sparko_manpower_v3"
	KeyInventory    = "sparko_inventory_v3"
	KeyTransactions = "sparko_transactions_v3"
	KeySettings     = "sparko_settings_v3"
	KeySafety       = "sparko_safety_v3"
	KeyTraining     = "sparko_training_v3"
	KeySuppliers    = "sparko_suppliers_v3"
	KeyChat         = "sparko_chat_v3"
	KeyPLNRate      = "sparko_pln_rate"
)

// AllKeys lists every collection key, in backup export order.
var AllKeys = []string{
	KeyProjects, KeyManpower, KeyInventory, KeyTransactions,
	KeySettings, KeySafety, KeyTraining, KeySuppliers,
	KeyChat, KeyPLNRate,
}

// Store is the single persistence handle for sparkos state.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// New initializes the SQLite database at the given path.
func New(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.New")
	defer timer.Stop()

	logging.Store("Initializing store at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Store initialization complete")
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// loadDoc reads one collection document into v. A missing row or a document
// that fails to parse leaves v untouched, so callers pass in the default.
func (s *Store) loadDoc(key string, v interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRow("SELECT value FROM collections WHERE key = ?", key).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows {
			logging.StoreError("Failed to read collection %s: %v", key, err)
		}
		return
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logging.StoreError("Corrupt collection %s, using defaults: %v", key, err)
	}
}

// saveDoc writes one collection document, replacing the previous value.
func (s *Store) saveDoc(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal collection %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO collections (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", key, err)
	}

	logging.StoreDebug("Saved collection %s (%d bytes)", key, len(data))
	return nil
}

// =============================================================================
// TYPED COLLECTION ACCESSORS
// =============================================================================

// Projects returns all projects. Missing or corrupt data yields an empty slice.
func (s *Store) Projects() []types.Project {
	out := []types.Project{}
	s.loadDoc(KeyProjects, &out)
	return out
}

// SaveProjects replaces the projects collection.
func (s *Store) SaveProjects(projects []types.Project) error {
	return s.saveDoc(KeyProjects, projects)
}

// Manpower returns all crew members.
func (s *Store) Manpower() []types.Manpower {
	out := []types.Manpower{}
	s.loadDoc(KeyManpower, &out)
	return out
}

// SaveManpower replaces the manpower collection.
func (s *Store) SaveManpower(workers []types.Manpower) error {
	return s.saveDoc(KeyManpower, workers)
}

// Inventory returns all inventory items.
func (s *Store) Inventory() []types.InventoryItem {
	out := []types.InventoryItem{}
	s.loadDoc(KeyInventory, &out)
	return out
}

// SaveInventory replaces the inventory collection.
func (s *Store) SaveInventory(items []types.InventoryItem) error {
	return s.saveDoc(KeyInventory, items)
}

// Transactions returns the stock movement log.
func (s *Store) Transactions() []types.InventoryTransaction {
	out := []types.InventoryTransaction{}
	s.loadDoc(KeyTransactions, &out)
	return out
}

// SaveTransactions replaces the transaction log.
func (s *Store) SaveTransactions(txs []types.InventoryTransaction) error {
	return s.saveDoc(KeyTransactions, txs)
}

// Settings returns the company settings, falling back to defaults.
func (s *Store) Settings() types.CompanySettings {
	out := types.DefaultSettings()
	s.loadDoc(KeySettings, &out)
	return out
}

// SaveSettings replaces the company settings.
func (s *Store) SaveSettings(settings types.CompanySettings) error {
	return s.saveDoc(KeySettings, settings)
}

// Incidents returns the HSE incident log.
func (s *Store) Incidents() []types.SafetyIncident {
	out := []types.SafetyIncident{}
	s.loadDoc(KeySafety, &out)
	return out
}

// SaveIncidents replaces the HSE incident log.
func (s *Store) SaveIncidents(incidents []types.SafetyIncident) error {
	return s.saveDoc(KeySafety, incidents)
}

// Courses returns the training courses.
func (s *Store) Courses() []types.TrainingCourse {
	out := []types.TrainingCourse{}
	s.loadDoc(KeyTraining, &out)
	return out
}

// SaveCourses replaces the training courses.
func (s *Store) SaveCourses(courses []types.TrainingCourse) error {
	return s.saveDoc(KeyTraining, courses)
}

// Suppliers returns all suppliers.
func (s *Store) Suppliers() []types.Supplier {
	out := []types.Supplier{}
	s.loadDoc(KeySuppliers, &out)
	return out
}

// SaveSuppliers replaces the suppliers collection.
func (s *Store) SaveSuppliers(suppliers []types.Supplier) error {
	return s.saveDoc(KeySuppliers, suppliers)
}

// Chat returns the conversation log.
func (s *Store) Chat() []types.ChatMessage {
	out := []types.ChatMessage{}
	s.loadDoc(KeyChat, &out)
	return out
}

// SaveChat replaces the conversation log.
func (s *Store) SaveChat(messages []types.ChatMessage) error {
	return s.saveDoc(KeyChat, messages)
}

// PLNRate returns the grid tariff, falling back to the built-in default.
func (s *Store) PLNRate() float64 {
	rate := types.DefaultPLNRate
	s.loadDoc(KeyPLNRate, &rate)
	if rate <= 0 {
		return types.DefaultPLNRate
	}
	return rate
}

// SavePLNRate replaces the grid tariff.
func (s *Store) SavePLNRate(rate float64) error {
	return s.saveDoc(KeyPLNRate, rate)
}
