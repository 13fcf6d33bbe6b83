package uplink

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkos/internal/types"
)

func TestAssembleContextEmptySnapshot(t *testing.T) {
	out := AssembleContext(Snapshot{})

	assert.Contains(t, out, "=== SPARKO CORP OS: GENESIS MEMORY BANK ===")
	assert.Contains(t, out, "COMPANY: Sparko Corp")
	assert.Contains(t, out, "Completed Projects: 0")
	assert.Contains(t, out, "Avg Historical Margin: 0%")
	assert.Contains(t, out, "Total Workforce: 0")
	assert.Contains(t, out, "None identified")
	assert.Contains(t, out, "No recent activity.")
}

func TestAssembleContextMarginAndPartition(t *testing.T) {
	snap := Snapshot{
		Projects: []types.Project{
			{
				ClientName:  "PT Andalan",
				CapacityKWp: 100,
				Status:      types.StatusCommissioning,
				Financials:  types.ProjectFinancials{AgreedValue: 1000, MaterialCost: 400, LaborCost: 100, OperationalCost: 300},
			},
			{
				ClientName:  "CV Mentari",
				CapacityKWp: 50,
				Status:      types.StatusConstruction,
				Progress:    40,
				Financials:  types.ProjectFinancials{AgreedValue: 500},
			},
		},
	}
	out := AssembleContext(snap)

	// Margin over completed projects uses material+labor only
	assert.Contains(t, out, "Avg Historical Margin: 50.0%")
	assert.Contains(t, out, "Completed Projects: 1")
	assert.Contains(t, out, "- PT Andalan (100kWp) | Status: Commissioning")
	assert.Contains(t, out, "Active Projects: 1")
	assert.Contains(t, out, "- CV Mentari [Construction]: 40%")
	// Pipeline sums every project, not just active
	assert.Contains(t, out, "Total Active Pipeline: IDR 1500")
}

func TestAssembleContextManpowerBuckets(t *testing.T) {
	snap := Snapshot{
		Manpower: []types.Manpower{
			{Name: "Budi", PerformanceScore: 95},
			{Name: "Sari", PerformanceScore: 80},
			{Name: "Joko", PerformanceScore: 60},
		},
	}
	out := AssembleContext(snap)

	assert.Contains(t, out, "Top Talent (High Performance): Budi (95%)")
	assert.Contains(t, out, "Needs Training/Review: Joko")
	assert.NotContains(t, out, "Sari (80%)")
}

func TestAssembleContextInventorySections(t *testing.T) {
	snap := Snapshot{
		Inventory: []types.InventoryItem{
			{Name: "PV Module 550W", Stock: 3, MinStock: 10},
			{Name: "DC Cable", Stock: 500, MinStock: 50},
		},
		Transactions: []types.InventoryTransaction{
			{ItemName: "PV Module 550W", Type: types.TransactionOut, Amount: 40, Date: "2026-08-20T10:00:00Z", Notes: "Site A"},
			{ItemName: "DC Cable", Type: types.TransactionOut, Amount: 10, Date: "2026-08-21T10:00:00Z", Notes: "Site B"},
		},
	}
	out := AssembleContext(snap)

	assert.Contains(t, out, "Critical Low Stock: PV Module 550W (Qty: 3)")
	assert.Contains(t, out, "PV Module 550W (40 units)")
	assert.Contains(t, out, "[2026-08-21] OUT 10 DC Cable (Site B)")
}

func TestAssembleContextCaps(t *testing.T) {
	var snap Snapshot
	for i := 0; i < 30; i++ {
		snap.Transactions = append(snap.Transactions, types.InventoryTransaction{
			ItemName: fmt.Sprintf("Item %02d", i),
			Type:     types.TransactionIn,
			Amount:   1,
			Date:     "2026-08-01T00:00:00Z",
		})
		snap.Chat = append(snap.Chat, types.ChatMessage{
			Sender:    "CEO",
			Text:      fmt.Sprintf("directive number %02d", i),
			Timestamp: time.Now(),
		})
	}
	// Sub-threshold chat noise must be dropped before the window is applied
	snap.Chat = append(snap.Chat, types.ChatMessage{Sender: "CEO", Text: "ok"})

	out := AssembleContext(snap)

	logSection := section(t, out, "[RECENT TRANSACTION LOGS (Last 20)]", "[CONVERSATION STREAM]")
	assert.Equal(t, maxTransactionLogs, countLines(logSection, "[2026-08-01]"))

	chatSection := out[strings.Index(out, "[CONVERSATION STREAM]"):]
	assert.Equal(t, maxChatMessages, strings.Count(chatSection, "CEO ("))
	assert.NotContains(t, chatSection, "ok")
	// Newest messages survive the window
	assert.Contains(t, chatSection, "directive number 29")
	assert.NotContains(t, chatSection, "directive number 19")
}

func countLines(s, substr string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

func section(t *testing.T, s, from, to string) string {
	t.Helper()
	i := strings.Index(s, from)
	j := strings.Index(s, to)
	require.True(t, i >= 0 && j > i, "sections %q and %q must both appear in order", from, to)
	return s[i:j]
}
