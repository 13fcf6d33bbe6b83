package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"sparkos/internal/ops"
	"sparkos/internal/store"
	"sparkos/internal/uplink"
)

type fakeGenerator struct {
	reply string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}}},
		},
	}, nil
}

func newTestChatModel(t *testing.T) chatModel {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "sparkos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return newChatModel(ops.NewEngine(st), &fakeGenerator{reply: "Siap."}, 5*time.Second)
}

func TestSlashCommandsToggleOptions(t *testing.T) {
	m := newTestChatModel(t)

	next, _ := m.handleSlashCommand("/think")
	m = next.(chatModel)
	assert.True(t, m.options.UseThinking)

	next, _ = m.handleSlashCommand("/search")
	m = next.(chatModel)
	assert.True(t, m.options.UseSearch)

	// Second toggle turns it back off
	next, _ = m.handleSlashCommand("/think")
	m = next.(chatModel)
	assert.False(t, m.options.UseThinking)
	assert.True(t, m.options.UseSearch)
}

func TestSlashQuitReturnsQuit(t *testing.T) {
	m := newTestChatModel(t)
	_, cmd := m.handleSlashCommand("/quit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUnknownSlashCommandNoted(t *testing.T) {
	m := newTestChatModel(t)
	next, cmd := m.handleSlashCommand("/warp")
	m = next.(chatModel)
	assert.Nil(t, cmd)
	require.NotEmpty(t, m.history)
	assert.Contains(t, m.history[len(m.history)-1].text, "/warp")
}

func TestSubmitRecordsDirectiveAndDispatches(t *testing.T) {
	m := newTestChatModel(t)
	m.textinput.SetValue("status pipeline?")

	next, cmd := m.handleSubmit()
	m = next.(chatModel)
	require.NotNil(t, cmd)
	assert.True(t, m.isLoading)
	require.NotEmpty(t, m.history)
	assert.Equal(t, "CEO", m.history[len(m.history)-1].sender)

	// Directive is persisted immediately, before the reply arrives
	chat := m.engine.Store().Chat()
	require.Len(t, chat, 1)
	assert.Equal(t, "status pipeline?", chat[0].Text)
}

func TestReplyAppliesCommand(t *testing.T) {
	m := newTestChatModel(t)

	reply := uplink.Reply{
		Text:    "GENESIS EXECUTION PROTOCOL: Initiating HIRE_MANPOWER...",
		Model:   uplink.ModelFlash,
		Command: &uplink.Command{Action: uplink.ActionHireManpower, Data: []byte(`{"name": "Budi"}`)},
	}
	next, _ := m.Update(replyMsg(reply))
	m = next.(chatModel)

	assert.False(t, m.isLoading)
	_, ok := m.engine.FindWorkerByName("Budi")
	assert.True(t, ok)
	assert.Contains(t, m.history[len(m.history)-1].note, "command applied")
}
