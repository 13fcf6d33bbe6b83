package uplink

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"sparkos/internal/logging"
	"sparkos/internal/types"
)

// =============================================================================
// ADVISORY GENERATORS
// =============================================================================
// One-shot analyses on top of the same Generator the dispatcher uses. These
// are best-effort: a failed call degrades to a fixed fallback string (or nil
// for structured results) rather than an error the console has to handle.

// riskAuditConcurrency bounds parallel model calls during a fleet audit.
const riskAuditConcurrency = 4

// similarCapacityWindow is the kWp tolerance when matching a project against
// completed history for risk benchmarking.
const similarCapacityWindow = 20.0

// Advisor runs the one-shot analysis prompts.
type Advisor struct {
	gen Generator
}

func NewAdvisor(gen Generator) *Advisor {
	return &Advisor{gen: gen}
}

// generate is the shared single-prompt call path.
func (a *Advisor) generate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := a.gen.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// SitrepReport drafts the weekly situation report from headline counts.
func (a *Advisor) SitrepReport(ctx context.Context, projects []types.Project, manpower []types.Manpower, transactions []types.InventoryTransaction) string {
	activeConstruction := 0
	for _, p := range projects {
		if p.Status == types.StatusConstruction {
			activeConstruction++
		}
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	recentMoves := 0
	for _, tx := range transactions {
		if t, err := time.Parse(time.RFC3339, tx.Date); err == nil && t.After(weekAgo) {
			recentMoves++
		}
	}

	prompt := fmt.Sprintf(`GENERATE WEEKLY SITREP (Situation Report) for Sparko Corp.
Data:
Projects: %d Total. Active: %d.
Manpower: %d Personnel.
Inventory Moves (Last 7 Days): %d.
Format: Military/Corporate. Include: Executive Summary, Operational Status, Risks, and Next Actions.
Return ONLY the report text.`, len(projects), activeConstruction, len(manpower), recentMoves)

	text, err := a.generate(ctx, ModelPro, prompt, nil)
	if err != nil {
		logging.UplinkError("sitrep generation failed: %v", err)
		return "REPORT GENERATION FAILED."
	}
	return text
}

// ProjectProposal drafts a formal client proposal in markdown.
func (a *Advisor) ProjectProposal(ctx context.Context, p types.Project) string {
	prompt := fmt.Sprintf("Generate Formal Solar Proposal for %s, %gkWp. Markdown format.", p.ClientName, p.CapacityKWp)
	text, err := a.generate(ctx, ModelPro, prompt, nil)
	if err != nil {
		logging.UplinkError("proposal generation failed: %v", err)
		return "ERROR GENERATING PROPOSAL."
	}
	return text
}

// AnalyzeProjectRisk scores one project against completed history within
// the capacity window. Nil when the model call or the JSON parse fails.
func (a *Advisor) AnalyzeProjectRisk(ctx context.Context, project types.Project, history []types.Project) *types.RiskAssessment {
	var similar []types.Project
	for _, p := range history {
		if p.ID == project.ID {
			continue
		}
		if p.Status == types.StatusCommissioning && math.Abs(p.CapacityKWp-project.CapacityKWp) < similarCapacityWindow {
			similar = append(similar, p)
		}
	}

	historicalData := "No similar historical projects available."
	if len(similar) > 0 {
		var total float64
		for _, p := range similar {
			total += p.Financials.AgreedValue
		}
		historicalData = fmt.Sprintf("Historical Data: %d similar projects found. Average Value: IDR %.0f.", len(similar), total/float64(len(similar)))
	}

	prompt := fmt.Sprintf(`Analyze Risk for %s (%gkWp) at location %s.
Consider: Financials (Agreed: %.0f), Project Type (%s).
%s

Task: Flag potential risks based on parameters and historical data discrepancies.
Return JSON: {
    "score": number (0-100),
    "level": "Low"|"Medium"|"High"|"Critical",
    "analysis": "Summary string",
    "factors": ["List", "Of", "Risk", "Factors"],
    "mitigationSuggestions": ["List", "Of", "Mitigations"]
}.`, project.ClientName, project.CapacityKWp, project.Location, project.Financials.AgreedValue, project.ProjectType, historicalData)

	text, err := a.generate(ctx, ModelPro, prompt, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		logging.UplinkError("risk analysis failed for %s: %v", project.ClientName, err)
		return nil
	}

	var result types.RiskAssessment
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		logging.UplinkError("risk analysis returned unparseable JSON for %s: %v", project.ClientName, err)
		return nil
	}
	result.LastUpdated = time.Now().Format(time.RFC3339)
	return &result
}

// RiskAudit assesses every active project concurrently. A failed model call
// cancels the remaining assessments and surfaces the error; projects whose
// responses parse but score nil are simply absent from the result.
func (a *Advisor) RiskAudit(ctx context.Context, projects []types.Project) (map[string]*types.RiskAssessment, error) {
	timer := logging.StartTimer(logging.CategoryUplink, "fleet risk audit")
	defer timer.Stop()

	var active []types.Project
	for _, p := range projects {
		if !p.Status.Completed() {
			active = append(active, p)
		}
	}

	results := make([]*types.RiskAssessment, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(riskAuditConcurrency)

	for i, p := range active {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.AnalyzeProjectRisk(gctx, p, projects)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("risk audit aborted: %w", err)
	}

	out := make(map[string]*types.RiskAssessment, len(active))
	for i, p := range active {
		if results[i] != nil {
			out[p.ID] = results[i]
		}
	}
	logging.Uplink("risk audit scored %d/%d active projects", len(out), len(active))
	return out, nil
}

// AnalyzeInventorySpec compares an incoming material against the warehouse.
func (a *Advisor) AnalyzeInventorySpec(ctx context.Context, newItem types.InventoryItem, current []types.InventoryItem) string {
	lines := make([]string, len(current))
	for i, item := range current {
		lines[i] = fmt.Sprintf("%s: %d %s @ Rp%.0f", item.Name, item.Stock, item.Unit, item.PricePerUnit)
	}
	summary := strings.Join(lines, "\n")
	if len(summary) > 1000 {
		summary = summary[:1000]
	}

	prompt := fmt.Sprintf(`Analyze this new material input: %s, Price: %.0f.
Current Warehouse Context:
%s...

Task: Compare price with existing stock, check if category is overstocked/understocked, and provide a recommendation.`, newItem.Name, newItem.PricePerUnit, summary)

	text, err := a.generate(ctx, ModelFlash, prompt, nil)
	if err != nil {
		return "Analysis Error."
	}
	return text
}

// AnalyzeStockItem evaluates one warehouse line item.
func (a *Advisor) AnalyzeStockItem(ctx context.Context, item types.InventoryItem) string {
	prompt := fmt.Sprintf(`Analyze Stock Item: %s
Current Stock: %d %s
Min Stock: %d
Price: %.0f

Task:
1. Is this overstocked or understocked?
2. Evaluate if price is competitive for Indonesian Solar market.
3. Suggest procurement action.`, item.Name, item.Stock, item.Unit, item.MinStock, item.PricePerUnit)

	text, err := a.generate(ctx, ModelFlash, prompt, nil)
	if err != nil {
		return "Analysis Error."
	}
	return text
}

// AnalyzeSkillMatrix audits the workforce against solar-industry baselines.
func (a *Advisor) AnalyzeSkillMatrix(ctx context.Context, manpower []types.Manpower) string {
	var skills, roles []string
	for _, m := range manpower {
		skills = append(skills, m.Skills...)
		roles = append(roles, m.Role)
	}

	prompt := fmt.Sprintf(`Perform a CRITICAL Workforce Audit for a Solar Construction Company.
Roles present: %s
Skills Available: %s

TASK: Compare against Solar Industry Standards (DC Wiring, Working at Heights, K3/Safety, Inverter Commissioning, AC Combiner Install).

OUTPUT:
1. **CRITICAL GAP ANALYSIS**: List specifically what roles or skills are missing for a 500kWp project.
2. **RECOMMENDATION**: What roles should be hired immediately?
3. **TRAINING**: What skills should current staff be trained on?

Format: Professional, concise bullet points.`, strings.Join(roles, ", "), strings.Join(skills, ", "))

	text, err := a.generate(ctx, ModelPro, prompt, nil)
	if err != nil {
		return "Audit Failed."
	}
	return text
}

// EfficiencyEstimate is the structured answer to "what does this capacity
// take to build".
type EfficiencyEstimate struct {
	ManpowerNeeded        int     `json:"manpowerNeeded"`
	EstimatedDurationDays int     `json:"estimatedDurationDays"`
	CostPerKwp            float64 `json:"costPerKwp"`
	Analysis              string  `json:"analysis"`
}

// CalculateProjectEfficiency benchmarks manpower, duration, and cost for a
// capacity. Nil when the call or parse fails.
func (a *Advisor) CalculateProjectEfficiency(ctx context.Context, capacityKWp float64) *EfficiencyEstimate {
	prompt := fmt.Sprintf(`Calculate Project Efficiency for a %g kWp Solar PLTS project in Indonesia.

Task:
1. Estimate Ideal Manpower count (Technicians + Helpers).
2. Estimate Duration in Days (Installation to Commissioning).
3. Estimate Benchmark Cost per kWp (IDR) for this scale.

Return JSON: { "manpowerNeeded": number, "estimatedDurationDays": number, "costPerKwp": number, "analysis": "Brief explanation" }`, capacityKWp)

	text, err := a.generate(ctx, ModelFlash, prompt, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return nil
	}
	var est EfficiencyEstimate
	if err := json.Unmarshal([]byte(text), &est); err != nil {
		return nil
	}
	return &est
}

// JobSafetyAnalysis drafts a JSA for an installation task.
func (a *Advisor) JobSafetyAnalysis(ctx context.Context, taskName string) string {
	prompt := fmt.Sprintf(`Generate a JSA (Job Safety Analysis) for: %q in a Solar Project context.
Include: Potential Hazards, Risk Level (High/Med/Low), and Control Measures/PPE required.`, taskName)

	text, err := a.generate(ctx, ModelFlash, prompt, nil)
	if err != nil {
		return "JSA Generation Failed."
	}
	return text
}

// DraftJobDescription writes a hiring post for a role.
func (a *Advisor) DraftJobDescription(ctx context.Context, roleName string) string {
	prompt := fmt.Sprintf(`Draft a professional Job Description for a %q at a Solar EPC Company (Sparko Corp).
Include: Responsibilities, Requirements (Technical/Soft Skills), and "Nice to haves".`, roleName)

	text, err := a.generate(ctx, ModelFlash, prompt, nil)
	if err != nil {
		return "Drafting Failed."
	}
	return text
}

// AnalyzeContract reviews a contract clause from the contractor's side.
func (a *Advisor) AnalyzeContract(ctx context.Context, contractText string) string {
	prompt := fmt.Sprintf(`Review this legal clause/text from a Solar Construction Contract:
%q

Highlight: Risks for the contractor (Sparko Corp), ambiguous terms, and suggestions for red-lining.`, contractText)

	text, err := a.generate(ctx, ModelPro, prompt, nil)
	if err != nil {
		return "Review Failed."
	}
	return text
}

// AnalyzeAsset runs a free-form multimodal analysis over inline media.
func (a *Advisor) AnalyzeAsset(ctx context.Context, att Attachment, task string) string {
	parts := []*genai.Part{
		genai.NewPartFromBytes(att.Data, att.MIME),
		genai.NewPartFromText(fmt.Sprintf("ANALYZE ASSET. Context: PLTS Company. Task: %s", task)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := a.gen.GenerateContent(ctx, ModelPro, contents, nil)
	if err != nil {
		return "DECODING ERROR."
	}
	return resp.Text()
}

// AnalyzeProjectPlan extracts milestones, specs, and risks from an uploaded
// plan document.
func (a *Advisor) AnalyzeProjectPlan(ctx context.Context, att Attachment) string {
	parts := []*genai.Part{
		genai.NewPartFromBytes(att.Data, att.MIME),
		genai.NewPartFromText("Analyze this Project Plan/Document. Extract key milestones, technical specifications, and potential risks. Provide a summary."),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := a.gen.GenerateContent(ctx, ModelPro, contents, nil)
	if err != nil {
		return "DECODING ERROR."
	}
	return resp.Text()
}

// HybridParams size battery-backed systems in the solar calculator.
type HybridParams struct {
	DailyLoadKWh  float64 `json:"dailyLoad"`
	AutonomyDays  int     `json:"autonomyDays"`
	SystemVoltage int     `json:"systemVoltage"`
}

// CalculateSolarProject produces a JSON estimate for a system sizing. The
// PLN tariff anchors the ROI math; callers pass the stored rate. Returns
// "{}" when the call fails so downstream JSON parsing stays total.
func (a *Advisor) CalculateSolarProject(ctx context.Context, capacityKWp float64, roofType, systemType string, inventory []types.InventoryItem, hybrid *HybridParams, plnRate float64) string {
	if plnRate <= 0 {
		plnRate = types.DefaultPLNRate
	}

	lines := make([]string, len(inventory))
	for i, item := range inventory {
		lines[i] = fmt.Sprintf("%s: %d %s @ %.0f", item.Name, item.Stock, item.Unit, item.PricePerUnit)
	}

	hybridContext := ""
	if systemType == "Hybrid" || systemType == "Off-Grid" {
		load, autonomy, voltage := 0.0, 1, 48
		if hybrid != nil {
			load = hybrid.DailyLoadKWh
			if hybrid.AutonomyDays > 0 {
				autonomy = hybrid.AutonomyDays
			}
			if hybrid.SystemVoltage > 0 {
				voltage = hybrid.SystemVoltage
			}
		}
		hybridContext = fmt.Sprintf(`
HYBRID/OFF-GRID PARAMETERS:
- Daily Load: %g kWh
- Days of Autonomy: %d
- System Voltage: %dV

CALCULATION INSTRUCTIONS:
1. Calculate Battery Bank Size (Ah) = (Daily Load * Autonomy) / (System Voltage * 0.8 DoD).
2. Estimate Battery Cost based on market (or inventory LiFePO4/VRLA).
3. Include Charge Controller capacity if Off-Grid.
`, load, autonomy, voltage)
	}

	prompt := fmt.Sprintf(`Calculate Solar Estimate: %gkWp, %s, %s.
Current PLN Rate: Rp %.2f/kWh.
Use Stock: %s.
%s
Return JSON: {
    "systemPrice", "pricePerKwp", "roiYears", "monthlySaving", "materialCost", "laborCost", "margin", "analysis",
    "batteryCapacityAh", "totalBatteries", "autonomyDays", "inverterType"
}`, capacityKWp, roofType, systemType, plnRate, strings.Join(lines, "\n"), hybridContext)

	text, err := a.generate(ctx, ModelFlash, prompt, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return "{}"
	}
	return text
}
