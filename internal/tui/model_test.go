package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/gemchat/internal/chat"
	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/session"
)

// fakeController records calls and serves canned sessions.
type fakeController struct {
	sessions []*session.ChatSession
	active   string
	settings config.Settings

	sent        []string
	selected    []string
	deleted     []string
	newChats    int
	updatedWith []config.Settings
}

func (f *fakeController) Sessions() []*session.ChatSession { return f.sessions }

func (f *fakeController) Session(id string) (*session.ChatSession, bool) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

func (f *fakeController) ActiveID() string { return f.active }

func (f *fakeController) Select(id string) error {
	f.selected = append(f.selected, id)
	f.active = id
	return nil
}

func (f *fakeController) NewChat() *session.ChatSession {
	f.newChats++
	sess := &session.ChatSession{ID: "new", Title: models.DefaultTitle}
	f.sessions = append(f.sessions, sess)
	f.active = sess.ID
	return sess
}

func (f *fakeController) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	for i, s := range f.sessions {
		if s.ID == id {
			f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeController) Settings() config.Settings { return f.settings }

func (f *fakeController) UpdateSettings(s config.Settings) {
	f.updatedWith = append(f.updatedWith, s)
	f.settings = s
}

func (f *fakeController) Send(sessionID, text string, notify func(chat.StreamEvent)) (string, error) {
	f.sent = append(f.sent, text)
	if f.active == "" {
		f.NewChat()
	}
	return f.active, nil
}

func seedController() *fakeController {
	return &fakeController{
		sessions: []*session.ChatSession{
			{ID: "s1", Title: "Go questions", UpdatedAt: time.Now()},
			{ID: "s2", Title: "Dinner ideas", UpdatedAt: time.Now()},
		},
		active:   "s1",
		settings: config.DefaultSettings(),
	}
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestSendFlow(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))

	m.textarea.SetValue("hello there")
	updated, cmd := m.Update(key(tea.KeyEnter))
	m = updated.(Model)

	if len(fc.sent) != 1 || fc.sent[0] != "hello there" {
		t.Fatalf("sent = %v, want [hello there]", fc.sent)
	}
	if !m.streaming {
		t.Error("model should be streaming after send")
	}
	if cmd == nil {
		t.Error("send should schedule the event pump")
	}
	if m.textarea.Value() != "" {
		t.Error("input should be cleared after send")
	}
}

func TestEmptyInputNotSent(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))

	m.textarea.SetValue("   ")
	updated, _ := m.Update(key(tea.KeyEnter))
	m = updated.(Model)

	if len(fc.sent) != 0 {
		t.Errorf("blank input must not be sent, got %v", fc.sent)
	}
	if m.streaming {
		t.Error("model should not be streaming")
	}
}

func TestSendDisabledWhileStreaming(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))
	m.streaming = true

	m.textarea.SetValue("second message")
	updated, _ := m.Update(key(tea.KeyEnter))
	m = updated.(Model)

	if len(fc.sent) != 0 {
		t.Errorf("send must be disabled while streaming, got %v", fc.sent)
	}
}

func TestStreamEventsDriveState(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))
	m.streaming = true
	m.events = make(chan chat.StreamEvent, 1)

	updated, _ := m.Update(streamEventMsg{SessionID: "s1", MessageID: "m1", Content: "Hel"})
	m = updated.(Model)
	if !m.streaming {
		t.Error("model should keep streaming until the done event")
	}
	if m.streamMsgID != "m1" {
		t.Errorf("streamMsgID = %q, want m1", m.streamMsgID)
	}

	updated, _ = m.Update(streamEventMsg{SessionID: "s1", MessageID: "m1", Content: "Hello", Done: true})
	m = updated.(Model)
	if m.streaming {
		t.Error("done event should end streaming")
	}
	if m.streamMsgID != "" {
		t.Error("done event should clear the streaming message id")
	}
}

func TestStreamEventsHandledWhileOverlayOpen(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))
	m.streaming = true
	m.events = make(chan chat.StreamEvent, 1)

	updated, _ := m.Update(key(tea.KeyCtrlH))
	m = updated.(Model)
	if m.mode != modePicker {
		t.Fatal("ctrl+h should open the session picker")
	}

	// A non-final event must re-arm the pump even with the picker open
	updated, cmd := m.Update(streamEventMsg{SessionID: "s1", MessageID: "m1", Content: "Hel"})
	m = updated.(Model)
	if cmd == nil {
		t.Error("non-final event should re-arm the event pump")
	}
	if !m.streaming {
		t.Error("model should keep streaming until the done event")
	}

	// The done event must end streaming even with the picker open
	updated, _ = m.Update(streamEventMsg{SessionID: "s1", MessageID: "m1", Content: "Hello", Done: true})
	m = updated.(Model)
	if m.streaming {
		t.Error("done event arriving during an overlay must end streaming")
	}
	if m.mode != modePicker {
		t.Error("stream events must not close the overlay")
	}
}

func TestStreamEventsHandledInSettings(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))
	m.streaming = true
	m.events = make(chan chat.StreamEvent, 1)

	updated, _ := m.Update(key(tea.KeyCtrlE))
	m = updated.(Model)

	updated, _ = m.Update(streamEventMsg{SessionID: "s1", MessageID: "m1", Content: "Hi", Done: true})
	m = updated.(Model)
	if m.streaming {
		t.Error("done event arriving during settings must end streaming")
	}
}

func TestNewChatKey(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))

	updated, _ := m.Update(key(tea.KeyCtrlN))
	_ = updated.(Model)

	if fc.newChats != 1 {
		t.Errorf("newChats = %d, want 1", fc.newChats)
	}
}

func TestPickerSelect(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))

	updated, _ := m.Update(key(tea.KeyCtrlH))
	m = updated.(Model)
	if m.mode != modePicker {
		t.Fatal("ctrl+h should open the session picker")
	}

	// Move past "New Chat" to the first session, then select it
	updated, _ = m.Update(key(tea.KeyDown))
	m = updated.(Model)
	updated, _ = m.Update(key(tea.KeyEnter))
	m = updated.(Model)

	if m.mode != modeChat {
		t.Error("selection should return to the chat view")
	}
	if len(fc.selected) != 1 || fc.selected[0] != "s1" {
		t.Errorf("selected = %v, want [s1]", fc.selected)
	}
}

func TestPickerNewChat(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))

	updated, _ := m.Update(key(tea.KeyCtrlH))
	m = updated.(Model)
	updated, _ = m.Update(key(tea.KeyEnter))
	m = updated.(Model)

	if fc.newChats != 1 {
		t.Errorf("newChats = %d, want 1", fc.newChats)
	}
	if m.mode != modeChat {
		t.Error("new chat should return to the chat view")
	}
}

func TestPickerDelete(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))

	updated, _ := m.Update(key(tea.KeyCtrlH))
	m = updated.(Model)
	updated, _ = m.Update(key(tea.KeyDown))
	m = updated.(Model)
	updated, _ = m.Update(runeKey('d'))
	m = updated.(Model)

	if len(fc.deleted) != 1 || fc.deleted[0] != "s1" {
		t.Errorf("deleted = %v, want [s1]", fc.deleted)
	}
	if len(m.picker.sessions) != 1 {
		t.Errorf("picker should refresh after delete, has %d sessions", len(m.picker.sessions))
	}
}

func TestSettingsSaveApplied(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))

	updated, _ := m.Update(key(tea.KeyCtrlE))
	m = updated.(Model)
	if m.mode != modeSettings {
		t.Fatal("ctrl+e should open settings")
	}

	// Cycle the model on the first row
	updated, _ = m.Update(key(tea.KeyRight))
	m = updated.(Model)
	if m.settings.draft.Model == fc.settings.Model {
		t.Fatal("cycling should change the draft model")
	}
	draftModel := m.settings.draft.Model

	// Nothing applied until save
	if len(fc.updatedWith) != 0 {
		t.Fatal("draft edits must not apply before save")
	}

	for m.settings.cursor != rowSave {
		updated, _ = m.Update(key(tea.KeyDown))
		m = updated.(Model)
	}
	updated, _ = m.Update(key(tea.KeyEnter))
	m = updated.(Model)

	if len(fc.updatedWith) != 1 || fc.updatedWith[0].Model != draftModel {
		t.Errorf("updatedWith = %+v, want model %s", fc.updatedWith, draftModel)
	}
	if m.mode != modeChat {
		t.Error("save should return to the chat view")
	}
}

func TestSettingsEscapeDiscards(t *testing.T) {
	fc := seedController()
	m := sized(New(fc))

	updated, _ := m.Update(key(tea.KeyCtrlE))
	m = updated.(Model)
	updated, _ = m.Update(key(tea.KeyRight))
	m = updated.(Model)
	updated, _ = m.Update(key(tea.KeyEsc))
	m = updated.(Model)

	if len(fc.updatedWith) != 0 {
		t.Errorf("escape must discard the draft, got %v", fc.updatedWith)
	}
	if m.mode != modeChat {
		t.Error("escape should return to the chat view")
	}
}
