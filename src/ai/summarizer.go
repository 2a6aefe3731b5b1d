package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harborview-partners/panel/src/webclient"
)

const systemPrompt = "You summarize edits to marketing-site pages for reviewers. " +
	"Given the current and the proposed version of a page, describe what changed " +
	"in two or three plain sentences. Do not quote large blocks of either version."

// Summarizer produces a natural-language description of a content diff via
// an OpenAI-compatible chat API. It is advisory: every caller must tolerate
// an error and carry on without a summary.
type Summarizer struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewSummarizer(apiKey string) *Summarizer {
	return &Summarizer{
		apiKey:     apiKey,
		model:      "gpt-4o-mini",
		httpClient: webclient.NewDefault(60 * time.Second),
	}
}

// Enabled reports whether an API key was configured.
func (s *Summarizer) Enabled() bool { return s != nil && s.apiKey != "" }

func (s *Summarizer) Summarize(ctx context.Context, oldContent, newContent string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("summarizer disabled")
	}

	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": fmt.Sprintf("Current version:\n%s\n\nProposed version:\n%s", oldContent, newContent)},
	}
	reqBody := map[string]interface{}{
		"model":    s.model,
		"messages": messages,
	}
	b, _ := json.Marshal(reqBody)

	status, body, err := webclient.DoWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewBuffer(b))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		out, err := io.ReadAll(resp.Body)
		return resp.StatusCode, out, err
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("summarizer API error: %s", string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty summarizer response")
	}
	return result.Choices[0].Message.Content, nil
}
