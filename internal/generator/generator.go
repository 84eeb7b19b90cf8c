// Package generator drafts workshop copy with an OpenAI-compatible responses endpoint.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"clubapi/internal/model"
)

var (
	ErrUnavailable = errors.New("text generation not configured")
	ErrBadResponse = errors.New("text generation returned an unusable draft")
)

type Prompt struct {
	Topic           string
	Audience        string
	DurationMinutes int
}

type Generator interface {
	Draft(ctx context.Context, p Prompt) (model.WorkshopDraft, error)
}

type Client struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
}

func New(url, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		model:  model,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type responsesRequest struct {
	Model        string         `json:"model"`
	Instructions string         `json:"instructions"`
	Input        string         `json:"input"`
	Text         map[string]any `json:"text"`
}

type responsesReply struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (r responsesReply) text() string {
	if r.OutputText != "" {
		return r.OutputText
	}
	var b strings.Builder
	for _, o := range r.Output {
		for _, c := range o.Content {
			if c.Type == "output_text" {
				b.WriteString(c.Text)
			}
		}
	}
	return b.String()
}

const instructions = "You write short, friendly descriptions of hands-on club workshops. " +
	`Reply with a JSON object {"title": string, "description": string} and nothing else. ` +
	"Keep the title under 80 characters."

func (c *Client) Draft(ctx context.Context, p Prompt) (model.WorkshopDraft, error) {
	if c.apiKey == "" {
		return model.WorkshopDraft{}, ErrUnavailable
	}

	input := fmt.Sprintf("Topic: %s\nAudience: %s\nDuration: %d minutes", p.Topic, p.Audience, p.DurationMinutes)
	body, err := json.Marshal(responsesRequest{
		Model:        c.model,
		Instructions: instructions,
		Input:        input,
		Text:         map[string]any{"format": map[string]string{"type": "json_object"}},
	})
	if err != nil {
		return model.WorkshopDraft{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return model.WorkshopDraft{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.WorkshopDraft{}, fmt.Errorf("call generator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.WorkshopDraft{}, fmt.Errorf("read generator reply: %w", err)
	}

	var reply responsesReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return model.WorkshopDraft{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if resp.StatusCode >= 300 {
		msg := resp.Status
		if reply.Error != nil && reply.Error.Message != "" {
			msg = reply.Error.Message
		}
		return model.WorkshopDraft{}, fmt.Errorf("generator responded %d: %s", resp.StatusCode, msg)
	}

	var draft model.WorkshopDraft
	if err := json.Unmarshal([]byte(reply.text()), &draft); err != nil {
		return model.WorkshopDraft{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)
	if draft.Title == "" || draft.Description == "" {
		return model.WorkshopDraft{}, ErrBadResponse
	}
	return draft, nil
}
