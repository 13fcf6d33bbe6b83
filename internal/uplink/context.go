// Package uplink is the Gemini-facing layer of sparkos: it assembles the
// business-state context block, routes requests to the right model variant,
// parses replies for embedded commands, and applies those commands through
// the ops engine.
package uplink

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"sparkos/internal/types"
)

// Context slice caps. These bound prompt size and keep per-request latency
// and cost flat regardless of how much history has accumulated.
const (
	maxChatMessages    = 10
	maxTransactionLogs = 20
	maxTopMovers       = 5
	maxArchiveLines    = 5
	minChatTextLen     = 6
)

// Snapshot carries the collections the assembler summarizes. It is a plain
// value; assembly is a pure function over it.
type Snapshot struct {
	Projects     []types.Project
	Manpower     []types.Manpower
	Inventory    []types.InventoryItem
	Transactions []types.InventoryTransaction
	Chat         []types.ChatMessage
	Settings     types.CompanySettings
}

// AssembleContext renders the operational memory block fed to the model on
// every request. The model is stateless between calls; this block is the only
// "memory" it has. Empty collections produce empty sections, never errors.
func AssembleContext(snap Snapshot) string {
	var b strings.Builder

	// Inventory velocity: total moved units per item name, all time
	movement := make(map[string]int)
	for _, tx := range snap.Transactions {
		movement[tx.ItemName] += tx.Amount
	}
	type mover struct {
		name  string
		count int
	}
	movers := make([]mover, 0, len(movement))
	for name, count := range movement {
		movers = append(movers, mover{name, count})
	}
	sort.SliceStable(movers, func(i, j int) bool {
		if movers[i].count != movers[j].count {
			return movers[i].count > movers[j].count
		}
		return movers[i].name < movers[j].name
	})
	if len(movers) > maxTopMovers {
		movers = movers[:maxTopMovers]
	}
	moverParts := make([]string, len(movers))
	for i, m := range movers {
		moverParts[i] = fmt.Sprintf("%s (%d units)", m.name, m.count)
	}

	// Project partition: Commissioning and Maintenance count as archive
	var active, completed []types.Project
	for _, p := range snap.Projects {
		if p.Status.Completed() {
			completed = append(completed, p)
		} else {
			active = append(active, p)
		}
	}

	var totalPipeline float64
	for _, p := range snap.Projects {
		totalPipeline += p.Financials.AgreedValue
	}

	// Average historical margin over completed projects. Material and labor
	// only; the string "0" when there is no history, never NaN.
	avgMargin := "0"
	if len(completed) > 0 {
		var total float64
		for _, p := range completed {
			cost := p.Financials.MaterialCost + p.Financials.LaborCost
			total += (p.Financials.AgreedValue - cost) / p.Financials.AgreedValue
		}
		avgMargin = fmt.Sprintf("%.1f", total/float64(len(completed))*100)
	}

	// Workforce buckets
	var topPerformers, lowPerformers []string
	for _, m := range snap.Manpower {
		if m.PerformanceScore > 90 {
			topPerformers = append(topPerformers, fmt.Sprintf("%s (%d%%)", m.Name, m.PerformanceScore))
		}
		if m.PerformanceScore < 70 {
			lowPerformers = append(lowPerformers, m.Name)
		}
	}

	var lowStock []string
	for _, item := range snap.Inventory {
		if item.LowStock() {
			lowStock = append(lowStock, fmt.Sprintf("%s (Qty: %d)", item.Name, item.Stock))
		}
	}

	// Recent transaction log: newest first, capped
	logs := snap.Transactions
	var logLines []string
	for i := len(logs) - 1; i >= 0 && len(logLines) < maxTransactionLogs; i-- {
		tx := logs[i]
		logLines = append(logLines, fmt.Sprintf("[%s] %s %d %s (%s)", shortDate(tx.Date), tx.Type, tx.Amount, tx.ItemName, tx.Notes))
	}

	// Conversation memory: drop short noise, keep the most recent window
	var meaningful []types.ChatMessage
	for _, m := range snap.Chat {
		if len(m.Text) >= minChatTextLen {
			meaningful = append(meaningful, m)
		}
	}
	if len(meaningful) > maxChatMessages {
		meaningful = meaningful[len(meaningful)-maxChatMessages:]
	}
	chatLines := make([]string, len(meaningful))
	for i, m := range meaningful {
		chatLines[i] = fmt.Sprintf("%s (%s): %s", m.Sender, m.Timestamp.Format("15:04:05"), m.Text)
	}

	companyName := snap.Settings.CompanyName
	if companyName == "" {
		companyName = "Sparko Corp"
	}

	b.WriteString("=== SPARKO CORP OS: GENESIS MEMORY BANK ===\n")
	fmt.Fprintf(&b, "COMPANY: %s\n", companyName)
	fmt.Fprintf(&b, "TIMESTAMP: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("[LONG-TERM MEMORY: PROJECT ARCHIVES]\n")
	fmt.Fprintf(&b, "Completed Projects: %d\n", len(completed))
	b.WriteString("Historical Successes:\n")
	for i, p := range completed {
		if i >= maxArchiveLines {
			break
		}
		fmt.Fprintf(&b, "- %s (%gkWp) | Status: %s\n", p.ClientName, p.CapacityKWp, p.Status)
	}
	fmt.Fprintf(&b, "Avg Historical Margin: %s%%\n\n", avgMargin)

	b.WriteString("[FINANCIAL & OPERATIONAL HEALTH]\n")
	fmt.Fprintf(&b, "Total Active Pipeline: IDR %.0f\n", totalPipeline)
	fmt.Fprintf(&b, "Active Projects: %d\n", len(active))
	b.WriteString("Current Focus:\n")
	for _, p := range active {
		fmt.Fprintf(&b, "- %s [%s]: %d%%\n", p.ClientName, p.Status, p.Progress)
	}
	b.WriteString("\n")

	b.WriteString("[MANPOWER INTELLIGENCE]\n")
	fmt.Fprintf(&b, "Total Workforce: %d\n", len(snap.Manpower))
	fmt.Fprintf(&b, "Top Talent (High Performance): %s\n", orNone(strings.Join(topPerformers, ", ")))
	fmt.Fprintf(&b, "Needs Training/Review: %s\n\n", orNone(strings.Join(lowPerformers, ", ")))

	b.WriteString("[INVENTORY FLUCTUATIONS & LOGISTICS]\n")
	fmt.Fprintf(&b, "Top High-Velocity Items (All Time): %s\n", strings.Join(moverParts, ", "))
	fmt.Fprintf(&b, "Critical Low Stock: %s\n\n", strings.Join(lowStock, ", "))

	b.WriteString("[RECENT TRANSACTION LOGS (Last 20)]\n")
	if len(logLines) == 0 {
		b.WriteString("No recent activity.\n")
	} else {
		for _, line := range logLines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n[CONVERSATION STREAM]\n")
	for _, line := range chatLines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// shortDate renders an RFC3339 timestamp as a calendar date, passing through
// values that do not parse.
func shortDate(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Format("2006-01-02")
	}
	return ts
}

func orNone(s string) string {
	if s == "" {
		return "None identified"
	}
	return s
}
