package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/gemchat/internal/errors"
)

// Part is one piece of a content turn
type Part struct {
	Text string `json:"text"`
}

// Content is one conversation turn on the wire
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerateRequest describes a generation call
type GenerateRequest struct {
	Model             string
	SystemInstruction string
	Contents          []Content
}

// TextContent builds a single-part content turn
func TextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

// wirePayload is the JSON body for generateContent requests
type wirePayload struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

func buildPayload(req *GenerateRequest) ([]byte, error) {
	payload := wirePayload{Contents: req.Contents}
	if req.SystemInstruction != "" {
		payload.SystemInstruction = &Content{Parts: []Part{{Text: req.SystemInstruction}}}
	}
	return json.Marshal(payload)
}

// Generate sends a non-streaming generation request and returns the full
// reply text.
func (c *GeminiClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	if len(req.Contents) == 0 {
		return "", fmt.Errorf("request has no contents")
	}

	model := req.Model
	if model == "" {
		model = c.model.Name
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)

	body, err := buildPayload(req)
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apierrors.NewNetworkError("generate content", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readError(resp, endpoint)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierrors.NewNetworkError("read response", endpoint, err)
	}

	text := extractText(gjson.ParseBytes(data))
	if text == "" {
		return "", apierrors.NewParseError("no content in response", PathCandidateParts)
	}

	return text, nil
}

// GenerateText is a convenience wrapper for one-shot prompts such as
// title generation.
func (c *GeminiClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	return c.Generate(ctx, &GenerateRequest{
		Model:    model,
		Contents: []Content{TextContent("user", prompt)},
	})
}

// gjson paths into GenerateContentResponse payloads
const (
	PathCandidateParts = "candidates.0.content.parts"
	PathErrorMessage   = "error.message"
	PathErrorStatus    = "error.status"
)

// extractText concatenates the text parts of the first candidate
func extractText(payload gjson.Result) string {
	var sb strings.Builder
	payload.Get(PathCandidateParts).ForEach(func(_, part gjson.Result) bool {
		sb.WriteString(part.Get("text").String())
		return true
	})
	return sb.String()
}

// readError turns a non-200 response into a typed error
func readError(resp *http.Response, endpoint string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := gjson.GetBytes(body, PathErrorMessage).String()
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = resp.Status
	}

	return apierrors.FromStatusCode(resp.StatusCode, endpoint, message)
}
