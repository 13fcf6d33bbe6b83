package uplink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"sparkos/internal/config"
	"sparkos/internal/logging"
	"sparkos/internal/ops"
	"sparkos/internal/types"
)

// genesisSystemPrompt is the fixed identity block prepended to every dispatch
// request. The command list mirrors what Apply understands; keep the two in
// sync when adding actions.
const genesisSystemPrompt = `
IDENTITY: "GENESIS", the Central Operating Intelligence (CEO Partner) of Sparko Corp.
AUTHORITY: Full Operational Control.
LANGUAGE: Professional Indonesian (Corporate/Military precision).

CORE DIRECTIVES:
1. **LONG-TERM RECALL.** Use Historical Project Data and Inventory Fluctuations.
2. **DATA PERSISTENCE.** Assume data is permanent.
3. **STRATEGIC GROWTH.** Proactively suggest moves.
4. **SWARM THINKING.** Use 4-Layer analysis.
5. **FULL CONTROL.** You can modify Projects, Manpower, and Inventory via JSON commands.

REPORT GENERATION:
To create a file, wrap text in <<REPORT_START>> and <<REPORT_END>> tags.

JSON COMMANDS (Output these to control the app):
- ADD_PROJECT, DELETE_PROJECT, UPDATE_PROJECT_STATUS
- HIRE_MANPOWER, FIRE_MANPOWER
- ADD_INVENTORY, ADD_SUPPLIER
`

// attachmentInstruction tells the model what to do with inline media.
const attachmentInstruction = "INSTRUCTION: Analyze the attached asset thoroughly. If it is a video, summarize key events. If audio, transcribe it. If PDF/Image, extract data."

// errNeuralLink is the fixed user-facing reply for any transport failure.
// The dispatcher never exposes raw API errors to the operator.
const errNeuralLink = "SYSTEM ERROR: Neural Link Unstable. Retrying connection..."

// Options are the per-request routing toggles. Later flags win on model
// choice; tool flags accumulate.
type Options struct {
	UseThinking bool `json:"useThinking"`
	UseSearch   bool `json:"useSearch"`
	UseMaps     bool `json:"useMaps"`
	UseLite     bool `json:"useLite"`
}

// Attachment is inline media forwarded to the model alongside the directive.
type Attachment struct {
	Data []byte
	MIME string
}

// Reply is the dispatcher's answer: display text, an optional extracted
// command (not yet applied), and optional grounding sources.
type Reply struct {
	Text      string
	Model     string
	Command   *Command
	Grounding *types.GroundingMetadata
}

// ModelSet names the models routing chooses between. Empty fields fall back
// to the built-in tiers, so a zero ModelSet is the default routing table.
type ModelSet struct {
	Default  string
	Lite     string
	Thinking string
}

func (m ModelSet) withDefaults() ModelSet {
	if m.Default == "" {
		m.Default = ModelFlash
	}
	if m.Lite == "" {
		m.Lite = ModelFlashLite
	}
	if m.Thinking == "" {
		m.Thinking = ModelPro
	}
	return m
}

// ModelsFromConfig lifts the per-tier overrides out of the Gemini config.
func ModelsFromConfig(cfg *config.Config) ModelSet {
	return ModelSet{
		Default:  cfg.Gemini.DefaultModel,
		Lite:     cfg.Gemini.LiteModel,
		Thinking: cfg.Gemini.ThinkingModel,
	}
}

// Dispatcher turns operator directives into model calls. It reads state to
// build context but never writes it; command application is the caller's
// decision via Applier.
type Dispatcher struct {
	gen Generator

	mu     sync.RWMutex
	models ModelSet
}

func NewDispatcher(gen Generator) *Dispatcher {
	return &Dispatcher{gen: gen, models: ModelSet{}.withDefaults()}
}

// SetModels swaps the routing table, e.g. after a config reload. Safe to
// call while requests are in flight.
func (d *Dispatcher) SetModels(models ModelSet) {
	d.mu.Lock()
	d.models = models.withDefaults()
	d.mu.Unlock()
}

func (d *Dispatcher) currentModels() ModelSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.models
}

// route picks the model and call config for a request. Flags are evaluated
// in a fixed order so that, when several are set, the last one decides the
// model while every requested tool stays attached.
func (d *Dispatcher) route(opts Options, hasAttachment bool) (string, *genai.GenerateContentConfig) {
	models := d.currentModels()
	model := models.Default
	cfg := &genai.GenerateContentConfig{}
	var tools []*genai.Tool

	if opts.UseLite {
		model = models.Lite
	}
	if opts.UseThinking {
		model = models.Thinking
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(thinkingBudget),
		}
	}
	if opts.UseSearch {
		model = models.Default
		tools = append(tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if opts.UseMaps {
		model = models.Default
		tools = append(tools, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
	}
	if hasAttachment && !opts.UseLite && !opts.UseSearch && !opts.UseMaps {
		model = models.Thinking
	}

	if len(tools) > 0 {
		cfg.Tools = tools
	}
	return model, cfg
}

// Process assembles the memory block, calls the routed model, and scans the
// reply for an embedded command. The returned command is extracted but NOT
// applied here.
func (d *Dispatcher) Process(ctx context.Context, query string, snap Snapshot, att *Attachment, opts Options) Reply {
	timer := logging.StartTimer(logging.CategoryDispatch, "process directive")
	defer timer.Stop()

	model, cfg := d.route(opts, att != nil)
	logging.Dispatch("routing directive to %s (thinking=%t search=%t maps=%t lite=%t attachment=%t)",
		model, opts.UseThinking, opts.UseSearch, opts.UseMaps, opts.UseLite, att != nil)

	parts := []*genai.Part{
		genai.NewPartFromText(genesisSystemPrompt),
		genai.NewPartFromText(AssembleContext(snap)),
		genai.NewPartFromText(fmt.Sprintf("USER_DIRECTIVE: %q", query)),
	}
	if att != nil {
		parts = append(parts,
			genai.NewPartFromBytes(att.Data, att.MIME),
			genai.NewPartFromText(attachmentInstruction),
		)
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := d.gen.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		logging.DispatchWarn("model call failed, returning fallback reply: %v", err)
		return Reply{Text: errNeuralLink, Model: model}
	}

	text := resp.Text()
	grounding := extractGrounding(resp)

	cmd, ok := ExtractCommand(text)
	if !ok {
		return Reply{Text: text, Model: model, Grounding: grounding}
	}

	if cmd.Action == ActionAddProject {
		cmd.Data = ensureSchedule(cmd.Data)
	}
	// The reply is swapped for the fixed acknowledgement; keep the model's
	// surrounding prose in the dispatch log.
	if prose := stripCommand(text, cmd); prose != "" {
		logging.DispatchDebug("prose outside command span: %q", prose)
	}
	logging.Audit().Log(logging.AuditEvent{
		EventType: logging.AuditCommandExtracted,
		Category:  string(logging.CategoryDispatch),
		Action:    cmd.Action,
		Success:   true,
	})

	return Reply{
		Text:      fmt.Sprintf("GENESIS EXECUTION PROTOCOL: Initiating %s...", cmd.Action),
		Model:     model,
		Command:   cmd,
		Grounding: grounding,
	}
}

// ensureSchedule backfills a standard install schedule on ADD_PROJECT
// payloads that arrive without one.
func ensureSchedule(data json.RawMessage) json.RawMessage {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return data
	}
	if sched, ok := payload["schedule"]; ok {
		var tasks []types.ScheduleTask
		if err := json.Unmarshal(sched, &tasks); err == nil && len(tasks) > 0 {
			return data
		}
	}
	schedJSON, err := json.Marshal(ops.StandardSchedule())
	if err != nil {
		return data
	}
	payload["schedule"] = schedJSON
	merged, err := json.Marshal(payload)
	if err != nil {
		return data
	}
	return merged
}

// extractGrounding lifts web and map citations out of the first candidate's
// grounding metadata, nil when the response carried none.
func extractGrounding(resp *genai.GenerateContentResponse) *types.GroundingMetadata {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	gm := resp.Candidates[0].GroundingMetadata

	out := &types.GroundingMetadata{}
	for _, chunk := range gm.GroundingChunks {
		if chunk.Web != nil {
			out.WebSources = append(out.WebSources, types.WebSource{
				Title: chunk.Web.Title,
				URL:   chunk.Web.URI,
			})
		}
		if chunk.Maps != nil {
			out.MapSources = append(out.MapSources, types.MapSource{
				Title: chunk.Maps.Title,
				URL:   chunk.Maps.URI,
			})
		}
	}
	if gm.SearchEntryPoint != nil {
		out.SearchQuery = gm.SearchEntryPoint.RenderedContent
	}
	if len(out.WebSources) == 0 && len(out.MapSources) == 0 && out.SearchQuery == "" {
		return nil
	}
	return out
}

// ChatReply packages a dispatch round as a stored chat message.
func ChatReply(r Reply) types.ChatMessage {
	return types.ChatMessage{
		Sender:    "GENESIS",
		Text:      r.Text,
		Timestamp: time.Now(),
		ModelUsed: r.Model,
		Grounding: r.Grounding,
	}
}
