// Package chat coordinates sessions, settings, and the streaming API
// client behind a single controller the presentation layers drive.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/diogo/gemchat/internal/api"
	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/session"
)

// Streamer is a live conversation handle bound to one model and system
// instruction. It carries the conversational memory for messages sent
// through it.
type Streamer interface {
	SendMessageStream(ctx context.Context, prompt string) (<-chan api.Fragment, error)
}

// Generator is the slice of the API client the controller depends on.
type Generator interface {
	StartChat(model, systemInstruction string) Streamer
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// apiGenerator adapts *api.GeminiClient to the Generator interface.
type apiGenerator struct {
	client *api.GeminiClient
}

func (g apiGenerator) StartChat(model, systemInstruction string) Streamer {
	return g.client.StartChat(model, systemInstruction)
}

func (g apiGenerator) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	return g.client.GenerateText(ctx, model, prompt)
}

// StreamEvent reports progress of an in-flight reply. Content always
// carries the cumulative text so far, so consumers can render it
// directly without concatenating. The final event has Done set; when
// the stream failed, the final Content is the fallback apology.
type StreamEvent struct {
	SessionID string
	MessageID string
	Content   string
	Done      bool
}

// Controller owns the active-session pointer and the lifecycle of the
// conversation handle. A handle is lazily created on send and stays
// bound until the settings change, the active session changes, or its
// session is deleted. There is never a bound-to-bound transition: the
// old handle is discarded and a fresh one created on the next send.
type Controller struct {
	mu        sync.Mutex
	sessions  *session.Store
	settings  *config.Store
	gen       Generator
	activeID  string
	handle    Streamer
	handleKey string
}

// NewController wires the controller to its stores and the API client.
func NewController(sessions *session.Store, settings *config.Store, client *api.GeminiClient) *Controller {
	return newController(sessions, settings, apiGenerator{client: client})
}

func newController(sessions *session.Store, settings *config.Store, gen Generator) *Controller {
	return &Controller{
		sessions: sessions,
		settings: settings,
		gen:      gen,
	}
}

// Sessions returns all sessions, most recently updated first.
func (c *Controller) Sessions() []*session.ChatSession {
	return c.sessions.List()
}

// Session returns a snapshot of one session.
func (c *Controller) Session(id string) (*session.ChatSession, bool) {
	return c.sessions.Get(id)
}

// ActiveID returns the id of the active session, or "" when none is
// selected.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Select makes the given session active and discards the handle.
func (c *Controller) Select(id string) error {
	if _, ok := c.sessions.Get(id); !ok {
		return fmt.Errorf("session %s not found", id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = id
	c.invalidateLocked()
	return nil
}

// NewChat creates a fresh session, makes it active, and discards the
// handle.
func (c *Controller) NewChat() *session.ChatSession {
	sess := c.sessions.Create()
	c.mu.Lock()
	c.activeID = sess.ID
	c.invalidateLocked()
	c.mu.Unlock()
	return sess
}

// Delete removes a session. Deleting the active session clears the
// active pointer and discards the handle; an in-flight stream for it
// keeps running but its writes land on nothing.
func (c *Controller) Delete(id string) error {
	if err := c.sessions.Delete(id); err != nil {
		return err
	}
	c.mu.Lock()
	if c.activeID == id {
		c.activeID = ""
		c.invalidateLocked()
	}
	c.mu.Unlock()
	return nil
}

// Settings returns the current settings.
func (c *Controller) Settings() config.Settings {
	return c.settings.Get()
}

// UpdateSettings persists new settings and discards the handle so the
// next send binds to them.
func (c *Controller) UpdateSettings(settings config.Settings) {
	c.settings.Set(settings)
	c.mu.Lock()
	c.invalidateLocked()
	c.mu.Unlock()
}

func (c *Controller) invalidateLocked() {
	c.handle = nil
	c.handleKey = ""
}

// ensureHandleLocked returns a handle bound to the current settings and
// session, creating one only when the binding changed.
func (c *Controller) ensureHandleLocked(sessionID string) Streamer {
	s := c.settings.Get()
	key := s.Model + "\x00" + s.SystemInstruction + "\x00" + sessionID
	if c.handle == nil || c.handleKey != key {
		c.handle = c.gen.StartChat(s.Model, s.SystemInstruction)
		c.handleKey = key
	}
	return c.handle
}

// Send submits a user message and streams the reply into the session in
// the background. The user message is appended immediately; the reply
// arrives through notify as cumulative StreamEvents and is mirrored
// into the session store as it grows. Stream failures are absorbed: the
// reply message becomes the fallback apology and the error is only
// logged. An empty sessionID targets the active session, creating one
// when none exists. Returns the id of the session the send bound to.
func (c *Controller) Send(sessionID, text string, notify func(StreamEvent)) (string, error) {
	c.mu.Lock()
	if sessionID == "" {
		sessionID = c.activeID
	}
	if sessionID == "" {
		sessionID = c.sessions.Create().ID
	}
	if sessionID != c.activeID {
		c.activeID = sessionID
		c.invalidateLocked()
	}

	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		c.mu.Unlock()
		return "", fmt.Errorf("session %s not found", sessionID)
	}
	firstExchange := len(sess.Messages) == 0

	if _, err := c.sessions.Append(sessionID, models.RoleUser, text); err != nil {
		c.mu.Unlock()
		return "", err
	}

	handle := c.ensureHandleLocked(sessionID)
	c.mu.Unlock()

	go c.stream(handle, sessionID, text, firstExchange, notify)
	return sessionID, nil
}

// stream consumes the reply fragments, folding the cumulative text into
// a placeholder message appended on the first fragment. It is never
// cancelled: a user navigating away leaves the stream updating its
// original session.
func (c *Controller) stream(handle Streamer, sessionID, prompt string, firstExchange bool, notify func(StreamEvent)) {
	fragments, err := handle.SendMessageStream(context.Background(), prompt)
	if err != nil {
		log.Printf("Failed to start stream: %v", err)
		c.fail(sessionID, "", notify)
		return
	}

	var msgID string
	var reply strings.Builder

	for f := range fragments {
		if f.Err != nil {
			log.Printf("Stream failed: %v", f.Err)
			c.fail(sessionID, msgID, notify)
			return
		}

		reply.WriteString(f.Text)

		if msgID == "" {
			msg, err := c.sessions.Append(sessionID, models.RoleModel, "")
			if err != nil {
				// Session was deleted out from under the stream. The
				// reply is dropped, but listeners still need to learn
				// the stream is over.
				log.Printf("Dropping reply: %v", err)
				if notify != nil {
					notify(StreamEvent{SessionID: sessionID, Done: true})
				}
				return
			}
			msgID = msg.ID
		}

		c.sessions.UpdateContent(sessionID, msgID, reply.String())
		if notify != nil {
			notify(StreamEvent{SessionID: sessionID, MessageID: msgID, Content: reply.String()})
		}
	}

	if reply.Len() == 0 {
		log.Printf("Stream produced no content")
		c.fail(sessionID, msgID, notify)
		return
	}

	if notify != nil {
		notify(StreamEvent{SessionID: sessionID, MessageID: msgID, Content: reply.String(), Done: true})
	}

	if firstExchange {
		go c.autoTitle(sessionID, prompt, reply.String())
	}
}

// fail replaces the reply with the fixed apology. With no placeholder
// yet, the apology is appended as a fresh message.
func (c *Controller) fail(sessionID, msgID string, notify func(StreamEvent)) {
	if msgID == "" {
		msg, err := c.sessions.Append(sessionID, models.RoleModel, models.FallbackReply)
		if err != nil {
			log.Printf("Dropping failure notice: %v", err)
			if notify != nil {
				notify(StreamEvent{SessionID: sessionID, Done: true})
			}
			return
		}
		msgID = msg.ID
	} else {
		c.sessions.UpdateContent(sessionID, msgID, models.FallbackReply)
	}

	if notify != nil {
		notify(StreamEvent{SessionID: sessionID, MessageID: msgID, Content: models.FallbackReply, Done: true})
	}
}
