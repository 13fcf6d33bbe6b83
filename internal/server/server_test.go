package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genai"

	"sparkos/internal/config"
	"sparkos/internal/logging"
	"sparkos/internal/ops"
	"sparkos/internal/store"
	"sparkos/internal/types"
	"sparkos/internal/uplink"
)

func TestMain(m *testing.M) {
	// The genai SDK's opencensus dependency starts a permanent stats worker
	// at init; it is not a leak.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// fakeGenerator replays canned model output and records the routed model.
type fakeGenerator struct {
	reply    string
	err      error
	gotModel string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}}},
		},
	}, nil
}

func newTestServer(t *testing.T, gen uplink.Generator) (*Server, *ops.Engine) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, logging.Initialize(dir))

	st, err := store.New(filepath.Join(dir, "sparkos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.DefaultConfig()
	cfg.Backup.Directory = filepath.Join(dir, "backups")

	engine := ops.NewEngine(st)
	if gen == nil {
		gen = &fakeGenerator{reply: "Siap."}
	}
	return New(cfg, engine, gen), engine
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// =============================================================================
// COLLECTION CRUD
// =============================================================================

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestProjectLifecycle(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodPost, "/api/projects", types.Project{ClientName: "PT Surya", CapacityKWp: 100})
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.Project
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, types.StatusLead, created.Status)
	assert.Len(t, created.Schedule, 17)

	w = doJSON(t, s, http.MethodPost, "/api/projects/"+created.ID+"/status", gin.H{"status": "Construction"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/projects", nil)
	var projects []types.Project
	decode(t, w, &projects)
	require.Len(t, projects, 1)
	assert.Equal(t, types.StatusConstruction, projects[0].Status)

	w = doJSON(t, s, http.MethodDelete, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/projects/missing/status", gin.H{"status": "Construction"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectNotesEndpoint(t *testing.T) {
	s, engine := newTestServer(t, nil)
	p, err := engine.CreateProject(types.Project{ClientName: "PT Surya"})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPut, "/api/projects/"+p.ID+"/notes", gin.H{"notes": "tunggu PLN meter"})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tunggu PLN meter", engine.Store().Projects()[0].Notes)

	w = doJSON(t, s, http.MethodPut, "/api/projects/nope/notes", gin.H{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttendanceEndpointCyclesStatus(t *testing.T) {
	s, engine := newTestServer(t, nil)
	hired, err := engine.Hire(types.Manpower{Name: "Budi", DailyRate: 150000})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/api/manpower/"+hired.ID+"/attendance", gin.H{"date": "2026-08-28"})
	require.Equal(t, http.StatusOK, w.Code)
	var worker types.Manpower
	decode(t, w, &worker)
	require.Len(t, worker.AttendanceHistory, 1)
	assert.Equal(t, types.AttendancePresent, worker.AttendanceHistory[0].Status)
	assert.Equal(t, 150000.0, worker.TotalEarnedThisMonth)

	// Second toggle flips Present to Absent and drops the earned total
	w = doJSON(t, s, http.MethodPost, "/api/manpower/"+hired.ID+"/attendance", gin.H{"date": "2026-08-28"})
	decode(t, w, &worker)
	assert.Equal(t, types.AttendanceAbsent, worker.AttendanceHistory[0].Status)
	assert.Equal(t, 0.0, worker.TotalEarnedThisMonth)
}

func TestTransactionEndpointConflictOnOverdraw(t *testing.T) {
	s, engine := newTestServer(t, nil)
	item, err := engine.AddItem(types.InventoryItem{Name: "PV Module", Stock: 10, MinStock: 2})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/api/inventory/"+item.ID+"/transactions",
		gin.H{"type": "OUT", "amount": 12, "pic": "Gudang"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/inventory/"+item.ID+"/transactions",
		gin.H{"type": "OUT", "amount": 7, "pic": "Gudang"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/inventory", nil)
	var items []types.InventoryItem
	decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Stock)
}

func TestLowStockEndpoint(t *testing.T) {
	s, engine := newTestServer(t, nil)
	_, err := engine.AddItem(types.InventoryItem{Name: "Inverter", Stock: 8, MinStock: 2})
	require.NoError(t, err)
	low, err := engine.AddItem(types.InventoryItem{Name: "MC4 Connector", Stock: 1, MinStock: 5})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, "/api/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []types.InventoryItem
	decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ID)
}

func TestSettingsAndPLNRate(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodGet, "/api/settings", nil)
	var body struct {
		Settings types.CompanySettings `json:"settings"`
		PLNRate  float64               `json:"plnRate"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Sparko Corp", body.Settings.CompanyName)
	assert.Equal(t, types.DefaultPLNRate, body.PLNRate)

	w = doJSON(t, s, http.MethodPut, "/api/settings/pln-rate", gin.H{"rate": 1500.0})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPut, "/api/settings/pln-rate", gin.H{"rate": -1.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// UPLINK
// =============================================================================

func TestUplinkChatAppliesCommandAndPersistsChat(t *testing.T) {
	gen := &fakeGenerator{reply: `Siap. {"action": "HIRE_MANPOWER", "data": {"name": "Budi"}}`}
	s, engine := newTestServer(t, gen)

	w := doJSON(t, s, http.MethodPost, "/api/uplink/chat", gin.H{"text": "rekrut Budi sebagai teknisi"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reply   string          `json:"reply"`
		Applied bool            `json:"applied"`
		Command *uplink.Command `json:"command"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "GENESIS EXECUTION PROTOCOL: Initiating HIRE_MANPOWER...", resp.Reply)
	assert.True(t, resp.Applied)

	_, ok := engine.FindWorkerByName("Budi")
	assert.True(t, ok)

	// Directive and reply both land in the conversation stream
	chat := engine.Store().Chat()
	require.Len(t, chat, 2)
	assert.Equal(t, "CEO", chat[0].Sender)
	assert.Equal(t, "GENESIS", chat[1].Sender)
}

func TestUplinkChatUsesConfiguredModelOverride(t *testing.T) {
	gen := &fakeGenerator{reply: "Siap."}
	s, _ := newTestServer(t, gen)
	s.ApplyConfig(&config.Config{Gemini: config.GeminiConfig{DefaultModel: "flash-next"}})

	w := doJSON(t, s, http.MethodPost, "/api/uplink/chat", gin.H{"text": "status?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "flash-next", gen.gotModel)
}

func TestUplinkChatTransportFailure(t *testing.T) {
	s, _ := newTestServer(t, &fakeGenerator{err: assert.AnError})

	w := doJSON(t, s, http.MethodPost, "/api/uplink/chat", gin.H{"text": "status?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reply string `json:"reply"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "SYSTEM ERROR: Neural Link Unstable. Retrying connection...", resp.Reply)
}

func TestUplinkRiskPersistsAssessment(t *testing.T) {
	gen := &fakeGenerator{reply: `{"score": 65, "level": "High", "analysis": "Cuaca musiman.", "factors": ["Hujan"], "mitigationSuggestions": ["Buffer"]}`}
	s, engine := newTestServer(t, gen)
	p, err := engine.CreateProject(types.Project{ClientName: "PT Surya", CapacityKWp: 80})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/api/uplink/risk/"+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	projects := engine.Store().Projects()
	require.Len(t, projects, 1)
	require.NotNil(t, projects[0].RiskAssessment)
	assert.Equal(t, 65, projects[0].RiskAssessment.Score)
	assert.Equal(t, types.RiskHigh, projects[0].RiskAssessment.Level)
}

func TestUplinkPlanPersistsAnalysis(t *testing.T) {
	gen := &fakeGenerator{reply: "Atap layak, estimasi 40 panel."}
	s, engine := newTestServer(t, gen)
	p, err := engine.CreateProject(types.Project{ClientName: "PT Surya"})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/api/uplink/plan/"+p.ID,
		gin.H{"attachment": []byte{0x89, 0x50}, "mimeType": "image/png"})
	require.Equal(t, http.StatusOK, w.Code)

	got := engine.Store().Projects()[0]
	assert.Equal(t, "Atap layak, estimasi 40 panel.", got.PlanAnalysis)

	w = doJSON(t, s, http.MethodPost, "/api/uplink/plan/nope",
		gin.H{"attachment": []byte{0x01}, "mimeType": "image/png"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUplinkJSAEndpoint(t *testing.T) {
	gen := &fakeGenerator{reply: "1. Gunakan full body harness."}
	s, _ := newTestServer(t, gen)

	w := doJSON(t, s, http.MethodPost, "/api/uplink/jsa", gin.H{"task": "Instalasi panel atap"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		JSA string `json:"jsa"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "1. Gunakan full body harness.", resp.JSA)

	w = doJSON(t, s, http.MethodPost, "/api/uplink/jsa", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestResetRequiresConfirmation(t *testing.T) {
	s, engine := newTestServer(t, nil)
	_, err := engine.CreateProject(types.Project{ClientName: "PT Surya"})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/api/reset", gin.H{"confirm": false})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, engine.Store().Projects(), 1)

	w = doJSON(t, s, http.MethodPost, "/api/reset", gin.H{"confirm": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, engine.Store().Projects())
}

func TestBackupDownload(t *testing.T) {
	s, engine := newTestServer(t, nil)
	_, err := engine.CreateProject(types.Project{ClientName: "PT Surya"})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, "/api/backup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Sparko_Backup_")

	var snap store.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "PT Surya", snap.Projects[0].ClientName)
}
