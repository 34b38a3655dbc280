package api

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/gemchat/internal/errors"
)

// Fragment is one incremental unit of generated text. A Fragment carries
// either Text or Err, never both.
type Fragment struct {
	Text string
	Err  error
}

// fragmentBuffer sizes the stream channel so a slow consumer does not
// immediately stall the reader goroutine.
const fragmentBuffer = 64

// GenerateStream sends a streaming generation request and returns a
// channel of fragments. The channel is closed when the stream is
// exhausted; a mid-stream failure is delivered as a final Fragment with
// Err set. The sequence is lazy, finite, and non-restartable: once the
// consumer stops reading and cancels ctx, remaining fragments are
// abandoned.
func (c *GeminiClient) GenerateStream(ctx context.Context, req *GenerateRequest) (<-chan Fragment, error) {
	if len(req.Contents) == 0 {
		return nil, fmt.Errorf("request has no contents")
	}

	model := req.Model
	if model == "" {
		model = c.model.Name
	}
	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, model)

	body, err := buildPayload(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamingClient.Do(httpReq)
	if err != nil {
		return nil, apierrors.NewNetworkError("stream generate", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readError(resp, endpoint)
	}

	fragments := make(chan Fragment, fragmentBuffer)
	go c.readStream(ctx, resp.Body, fragments)

	return fragments, nil
}

// readStream parses SSE events off the response body and delivers text
// fragments in arrival order.
func (c *GeminiClient) readStream(ctx context.Context, body io.ReadCloser, fragments chan<- Fragment) {
	defer close(fragments)
	defer body.Close()

	reader := bufio.NewReader(body)
	for {
		select {
		case <-ctx.Done():
			c.deliver(ctx, fragments, Fragment{Err: ctx.Err()})
			return
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return
			}
			c.deliver(ctx, fragments, Fragment{Err: fmt.Errorf("stream read: %w", err)})
			return
		}

		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}

		data := bytes.TrimSpace(line[len("data:"):])
		if len(data) == 0 {
			continue
		}

		payload := gjson.ParseBytes(data)

		// The API reports mid-stream failures as an error object event
		if errMsg := payload.Get(PathErrorMessage); errMsg.Exists() {
			c.deliver(ctx, fragments, Fragment{Err: apierrors.NewAPIError(
				int(payload.Get("error.code").Int()), "stream", errMsg.String())})
			return
		}

		text := extractText(payload)
		if text == "" {
			continue
		}

		if !c.deliver(ctx, fragments, Fragment{Text: text}) {
			return
		}
	}
}

// deliver sends a fragment unless the consumer is gone
func (c *GeminiClient) deliver(ctx context.Context, fragments chan<- Fragment, f Fragment) bool {
	select {
	case fragments <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
