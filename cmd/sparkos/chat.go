// Interactive GENESIS console using bubbletea.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sparkos/internal/ops"
	"sparkos/internal/types"
	"sparkos/internal/uplink"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive GENESIS console",
	Long: `Full-screen chat with GENESIS. The assistant sees the live business
state (pipeline, crew, warehouse, recent moves) on every turn and can mutate
it through commands.

Slash commands:
  /think    toggle deep reasoning (Gemini 3 Pro, 32k thinking budget)
  /search   toggle Google Search grounding
  /maps     toggle Google Maps grounding
  /lite     toggle fast low-cost replies
  /report   generate the weekly SITREP
  /quit     exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// Styles for the chat console.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	aiStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	noteStyle   = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	toggleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("118"))
	inputStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type chatMessage struct {
	sender string
	text   string
	note   string
}

type (
	replyMsg  uplink.Reply
	reportMsg string
	errorMsg  error
)

type chatModel struct {
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer

	history   []chatMessage
	options   uplink.Options
	isLoading bool
	err       error
	ready     bool
	width     int

	engine     *ops.Engine
	dispatcher *uplink.Dispatcher
	advisor    *uplink.Advisor
	applier    *uplink.Applier
	timeout    time.Duration
}

func newChatModel(engine *ops.Engine, gen uplink.Generator, timeout time.Duration) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Perintah untuk GENESIS... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(80, 20)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return chatModel{
		textinput:  ti,
		viewport:   vp,
		spinner:    sp,
		renderer:   renderer,
		engine:     engine,
		dispatcher: uplink.NewDispatcher(gen),
		advisor:    uplink.NewAdvisor(gen),
		applier:    uplink.NewApplier(engine),
		timeout:    timeout,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
		}
		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		headerHeight := 3
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-inputHeight-2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - inputHeight - 2
		}
		m.textinput.Width = msg.Width - 6
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(msg.Width-8),
		)
		m.refreshViewport()

	case spinner.TickMsg:
		if m.isLoading {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case replyMsg:
		m.isLoading = false
		reply := uplink.Reply(msg)
		note := ""
		if reply.Command != nil {
			if err := m.applier.Apply(reply.Command); err != nil {
				note = "command failed: " + err.Error()
			} else {
				note = "command applied: " + reply.Command.Action
			}
		}
		if reply.Grounding != nil {
			for _, src := range reply.Grounding.WebSources {
				note += fmt.Sprintf("\nsource: %s <%s>", src.Title, src.URL)
			}
		}
		m.history = append(m.history, chatMessage{sender: "GENESIS", text: reply.Text, note: note})
		_, _ = m.engine.AppendChat(uplink.ChatReply(reply))
		m.refreshViewport()

	case reportMsg:
		m.isLoading = false
		m.history = append(m.history, chatMessage{sender: "GENESIS", text: string(msg)})
		m.refreshViewport()

	case errorMsg:
		m.isLoading = false
		m.err = msg
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}
	m.textinput.Reset()
	m.err = nil

	if strings.HasPrefix(input, "/") {
		return m.handleSlashCommand(input)
	}

	m.history = append(m.history, chatMessage{sender: "CEO", text: input})
	m.refreshViewport()
	m.isLoading = true

	_, _ = m.engine.AppendChat(types.ChatMessage{Sender: "CEO", Text: input, Timestamp: time.Now()})

	snap := m.snapshot()
	opts := m.options
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		return replyMsg(m.dispatcher.Process(ctx, input, snap, nil, opts))
	})
}

func (m chatModel) handleSlashCommand(input string) (tea.Model, tea.Cmd) {
	toggle := func(name string, v bool) {
		state := "OFF"
		if v {
			state = "ON"
		}
		m.history = append(m.history, chatMessage{sender: "system", text: toggleStyle.Render(name + " " + state)})
	}

	switch input {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/think":
		m.options.UseThinking = !m.options.UseThinking
		toggle("deep reasoning", m.options.UseThinking)
	case "/search":
		m.options.UseSearch = !m.options.UseSearch
		toggle("search grounding", m.options.UseSearch)
	case "/maps":
		m.options.UseMaps = !m.options.UseMaps
		toggle("maps grounding", m.options.UseMaps)
	case "/lite":
		m.options.UseLite = !m.options.UseLite
		toggle("lite mode", m.options.UseLite)
	case "/report":
		m.isLoading = true
		snap := m.snapshot()
		m.refreshViewport()
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
			defer cancel()
			return reportMsg(m.advisor.SitrepReport(ctx, snap.Projects, snap.Manpower, snap.Transactions))
		})
	default:
		m.history = append(m.history, chatMessage{sender: "system", text: noteStyle.Render("unknown command: " + input)})
	}
	m.refreshViewport()
	return m, nil
}

func (m chatModel) snapshot() uplink.Snapshot {
	st := m.engine.Store()
	return uplink.Snapshot{
		Projects:     st.Projects(),
		Manpower:     st.Manpower(),
		Inventory:    st.Inventory(),
		Transactions: st.Transactions(),
		Chat:         st.Chat(),
		Settings:     st.Settings(),
	}
}

func (m *chatModel) refreshViewport() {
	var b strings.Builder
	for _, msg := range m.history {
		switch msg.sender {
		case "CEO":
			b.WriteString(userStyle.Render("CEO") + "\n" + msg.text + "\n\n")
		case "GENESIS":
			rendered := msg.text
			if m.renderer != nil {
				if out, err := m.renderer.Render(msg.text); err == nil {
					rendered = out
				}
			}
			b.WriteString(aiStyle.Render("GENESIS") + "\n" + rendered)
			if msg.note != "" {
				b.WriteString(noteStyle.Render(msg.note) + "\n")
			}
			b.WriteString("\n")
		default:
			b.WriteString(msg.text + "\n\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := titleStyle.Render("SPARKO CORP OS // GENESIS UPLINK")
	flags := fmt.Sprintf("think=%t search=%t maps=%t lite=%t", m.options.UseThinking, m.options.UseSearch, m.options.UseMaps, m.options.UseLite)
	header += "  " + noteStyle.Render(flags)

	chatView := m.viewport.View()
	if m.isLoading {
		chatView += "\n" + m.spinner.View() + " GENESIS processing..."
	}
	if m.err != nil {
		chatView += "\n" + errStyle.Render("Error: "+m.err.Error())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputStyle.Render(m.textinput.View()),
	)
}

func runChat() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine, st, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	gemini, err := uplink.NewGeminiClient(cfg)
	if err != nil {
		return err
	}
	defer gemini.Close()

	model := newChatModel(engine, gemini, cfg.GetGeminiTimeout())
	model.dispatcher.SetModels(uplink.ModelsFromConfig(cfg))
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
