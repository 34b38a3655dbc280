package api

import (
	"context"
	"strings"
	"sync"

	"github.com/diogo/gemchat/internal/models"
)

// Chat is a live conversation handle bound to one (model, system
// instruction) pair. It accumulates its own request/reply turns, so
// conversational memory exists only for messages sent through this same
// handle. A Chat is never retargeted; callers replace it instead.
type Chat struct {
	client            *GeminiClient
	mu                sync.Mutex
	model             string
	systemInstruction string
	contents          []Content
}

// StartChat creates a chat handle bound to the given model and system
// instruction.
func (c *GeminiClient) StartChat(model, systemInstruction string) *Chat {
	if model == "" {
		model = c.model.Name
	}
	return &Chat{
		client:            c,
		model:             model,
		systemInstruction: systemInstruction,
	}
}

// Model returns the model this handle is bound to
func (ch *Chat) Model() string {
	return ch.model
}

// SystemInstruction returns the instruction this handle is bound to
func (ch *Chat) SystemInstruction() string {
	return ch.systemInstruction
}

// Len returns the number of turns accumulated in the handle
func (ch *Chat) Len() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.contents)
}

// SendMessageStream submits prompt in this conversation's context and
// streams the reply. The user turn and the accumulated reply are folded
// into the handle's context only after the stream completes cleanly; a
// failed stream leaves the context as it was.
func (ch *Chat) SendMessageStream(ctx context.Context, prompt string) (<-chan Fragment, error) {
	ch.mu.Lock()
	userTurn := TextContent(models.RoleUser, prompt)
	contents := make([]Content, len(ch.contents), len(ch.contents)+1)
	copy(contents, ch.contents)
	contents = append(contents, userTurn)

	req := &GenerateRequest{
		Model:             ch.model,
		SystemInstruction: ch.systemInstruction,
		Contents:          contents,
	}
	ch.mu.Unlock()

	upstream, err := ch.client.GenerateStream(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan Fragment, fragmentBuffer)
	go func() {
		defer close(out)

		var reply strings.Builder
		failed := false

		for f := range upstream {
			if f.Err != nil {
				failed = true
			} else {
				reply.WriteString(f.Text)
			}

			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}

		if failed || reply.Len() == 0 {
			return
		}

		ch.mu.Lock()
		ch.contents = append(ch.contents, userTurn, TextContent(models.RoleModel, reply.String()))
		ch.mu.Unlock()
	}()

	return out, nil
}
