package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkos/internal/types"
)

func seedState(t *testing.T, s *Store) {
	t.Helper()
	require.NoError(t, s.SaveProjects([]types.Project{{ID: "p-1", ClientName: "PT Surya", Status: types.StatusDeal}}))
	require.NoError(t, s.SaveManpower([]types.Manpower{{ID: "m-1", Name: "Budi", DailyRate: 150000}}))
	require.NoError(t, s.SaveInventory([]types.InventoryItem{{ID: "i-1", Name: "Panel 550W", Stock: 40, MinStock: 10}}))
	require.NoError(t, s.SaveSuppliers([]types.Supplier{{ID: "s-1", Name: "CV Makmur"}}))
	require.NoError(t, s.SavePLNRate(1500))
}

func TestBackupFilename(t *testing.T) {
	ts := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Sparko_Backup_2025-03-14.json", BackupFilename(ts))
}

func TestExportBackupWritesSnapshot(t *testing.T) {
	s := newTestStore(t)
	seedState(t, s)

	dir := t.TempDir()
	path, err := s.ExportBackup(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, BackupFilename(time.Now())), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.NotEmpty(t, snap.ExportedAt)
	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "PT Surya", snap.Projects[0].ClientName)
	assert.InDelta(t, 1500.0, snap.PLNRate, 1e-9)
}

func TestRestoreBackupRoundTrip(t *testing.T) {
	src := newTestStore(t)
	seedState(t, src)

	path, err := src.ExportBackup(t.TempDir())
	require.NoError(t, err)

	dst := newTestStore(t)
	require.NoError(t, dst.RestoreBackup(path))

	if diff := cmp.Diff(src.Projects(), dst.Projects()); diff != "" {
		t.Errorf("projects mismatch (-src +dst):\n%s", diff)
	}
	if diff := cmp.Diff(src.Inventory(), dst.Inventory()); diff != "" {
		t.Errorf("inventory mismatch (-src +dst):\n%s", diff)
	}
	assert.InDelta(t, 1500.0, dst.PLNRate(), 1e-9)
}

func TestResetClearsEverything(t *testing.T) {
	s := newTestStore(t)
	seedState(t, s)

	require.NoError(t, s.Reset())

	assert.Empty(t, s.Projects())
	assert.Empty(t, s.Manpower())
	assert.Empty(t, s.Inventory())
	assert.Equal(t, "Sparko Corp", s.Settings().CompanyName)
	assert.InDelta(t, types.DefaultPLNRate, s.PLNRate(), 1e-9)
}

func TestRestoreCorruptBackupFails(t *testing.T) {
	s := newTestStore(t)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0644))

	assert.Error(t, s.RestoreBackup(path))
}
