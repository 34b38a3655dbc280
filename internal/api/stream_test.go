package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	apierrors "github.com/diogo/gemchat/internal/errors"
)

func sseChunk(text string) string {
	return fmt.Sprintf("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\n\n", text)
}

func collect(t *testing.T, fragments <-chan Fragment) (string, error) {
	t.Helper()
	var sb strings.Builder
	for f := range fragments {
		if f.Err != nil {
			return sb.String(), f.Err
		}
		sb.WriteString(f.Text)
	}
	return sb.String(), nil
}

func TestGenerateStream_FoldsInOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("alt=sse missing from query")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{"Hel", "lo", " world"} {
			w.Write([]byte(sseChunk(chunk)))
		}
	})

	fragments, err := client.GenerateStream(context.Background(), &GenerateRequest{
		Contents: []Content{TextContent("user", "greet me")},
	})
	if err != nil {
		t.Fatalf("GenerateStream failed: %v", err)
	}

	got, err := collect(t, fragments)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("folded text = %q, want %q", got, "Hello world")
	}
}

func TestGenerateStream_SkipsNonDataLines(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(": comment\n"))
		w.Write([]byte("event: ping\n\n"))
		w.Write([]byte(sseChunk("ok")))
		w.Write([]byte("data: \n\n"))
	})

	fragments, err := client.GenerateStream(context.Background(), &GenerateRequest{
		Contents: []Content{TextContent("user", "hi")},
	})
	if err != nil {
		t.Fatalf("GenerateStream failed: %v", err)
	}

	got, err := collect(t, fragments)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if got != "ok" {
		t.Errorf("folded text = %q, want ok", got)
	}
}

func TestGenerateStream_MidStreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sseChunk("partial")))
		w.Write([]byte(`data: {"error":{"code":500,"message":"internal failure"}}` + "\n\n"))
	})

	fragments, err := client.GenerateStream(context.Background(), &GenerateRequest{
		Contents: []Content{TextContent("user", "hi")},
	})
	if err != nil {
		t.Fatalf("GenerateStream failed: %v", err)
	}

	got, streamErr := collect(t, fragments)
	if streamErr == nil {
		t.Fatal("expected mid-stream error")
	}
	if got != "partial" {
		t.Errorf("fragments before error = %q, want partial", got)
	}

	// The channel must be closed after the error fragment
	if _, open := <-fragments; open {
		t.Error("channel should be closed after error")
	}
}

func TestGenerateStream_UpfrontError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"permission denied"}}`))
	})

	_, err := client.GenerateStream(context.Background(), &GenerateRequest{
		Contents: []Content{TextContent("user", "hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apierrors.IsAuthError(err) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestGenerateStream_AbandonedOnCancel(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sseChunk("first")))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	fragments, err := client.GenerateStream(ctx, &GenerateRequest{
		Contents: []Content{TextContent("user", "hi")},
	})
	if err != nil {
		t.Fatalf("GenerateStream failed: %v", err)
	}

	<-fragments // Consume the first fragment, then walk away
	cancel()

	// The reader goroutine must wind down and close the channel
	for range fragments {
	}
}
