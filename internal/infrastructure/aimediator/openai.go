package aimediator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mediahub/mediahub/internal/domain/mediation"
)

const defaultResponsesURL = "https://api.openai.com/v1/responses"

// OpenAIConfig configures the OpenAI responses endpoint and HTTP behavior.
type OpenAIConfig struct {
	ResponsesURL string
	APIKey       string
	Model        string
	HTTPClient   *http.Client
}

type openAIProvider struct {
	cfg OpenAIConfig
}

// NewOpenAIProvider builds a mediation adapter backed by the OpenAI
// responses API.
func NewOpenAIProvider(cfg OpenAIConfig) mediation.Adapter {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.ResponsesURL) == "" {
		cfg.ResponsesURL = defaultResponsesURL
	}
	return &openAIProvider{cfg: cfg}
}

func (p *openAIProvider) GenerateReply(ctx context.Context, in mediation.ReplyInput) (mediation.ReplyResult, error) {
	prompt := replyPrompt(in)
	text, err := p.invoke(ctx, prompt)
	if err != nil {
		return mediation.ReplyResult{}, err
	}

	// The model is asked for JSON but may answer in prose; treat undecodable
	// output as the reply itself.
	var payload struct {
		Reply     string `json:"reply"`
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil || strings.TrimSpace(payload.Reply) == "" {
		return mediation.ReplyResult{Text: text}, nil
	}
	return mediation.ReplyResult{
		Text:      strings.TrimSpace(payload.Reply),
		Sentiment: strings.ToUpper(strings.TrimSpace(payload.Sentiment)),
	}, nil
}

func (p *openAIProvider) Summarize(ctx context.Context, in mediation.SummaryInput) (mediation.SummaryResult, error) {
	prompt := summaryPrompt(in)
	text, err := p.invoke(ctx, prompt)
	if err != nil {
		return mediation.SummaryResult{}, err
	}

	var payload struct {
		Summary         string `json:"summary"`
		Recommendations string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil || strings.TrimSpace(payload.Summary) == "" {
		return mediation.SummaryResult{Summary: text}, nil
	}
	return mediation.SummaryResult{
		Summary:         strings.TrimSpace(payload.Summary),
		Recommendations: strings.TrimSpace(payload.Recommendations),
	}, nil
}

func (p *openAIProvider) invoke(ctx context.Context, prompt string) (string, error) {
	apiKey := strings.TrimSpace(p.cfg.APIKey)
	model := strings.TrimSpace(p.cfg.Model)
	if apiKey == "" {
		return "", fmt.Errorf("api key is required")
	}
	if model == "" {
		return "", fmt.Errorf("model is required")
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": model,
		"input": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal invoke request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ResponsesURL, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("build invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The key travels only as an Authorization header and is never echoed in
	// errors or logs.
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := p.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("invoke request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return "", fmt.Errorf("read invoke error body: %w", err)
		}
		return "", fmt.Errorf("invoke request status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode invoke response: %w", err)
	}
	outputText := strings.TrimSpace(payload.OutputText)
	if outputText == "" {
		for _, item := range payload.Output {
			for _, content := range item.Content {
				if strings.TrimSpace(content.Text) != "" {
					outputText = strings.TrimSpace(content.Text)
					break
				}
			}
			if outputText != "" {
				break
			}
		}
	}
	if outputText == "" {
		return "", fmt.Errorf("invoke response missing output text")
	}
	return outputText, nil
}

func replyPrompt(in mediation.ReplyInput) string {
	var b strings.Builder
	b.WriteString("You are a neutral dispute mediator assisting the parties below. ")
	b.WriteString("Respond to the latest message impartially and help the parties move toward agreement. ")
	b.WriteString(`Answer as JSON: {"reply": "...", "sentiment": "POSITIVE|NEUTRAL|NEGATIVE"}.`)
	b.WriteString("\n\n")
	writeDisputeContext(&b, in.Dispute)
	writeTranscript(&b, in.History)
	b.WriteString("Latest message: ")
	b.WriteString(in.NewMessage)
	b.WriteString("\n")
	return b.String()
}

func summaryPrompt(in mediation.SummaryInput) string {
	var b strings.Builder
	b.WriteString("You are a neutral dispute mediator closing a mediation session. ")
	b.WriteString("Summarize the discussion and recommend concrete next steps. ")
	b.WriteString(`Answer as JSON: {"summary": "...", "recommendations": "..."}.`)
	b.WriteString("\n\n")
	writeDisputeContext(&b, in.Dispute)
	writeTranscript(&b, in.History)
	return b.String()
}

func writeDisputeContext(b *strings.Builder, d mediation.DisputeContext) {
	fmt.Fprintf(b, "Dispute: %s (%s)\n", d.Title, d.DisputeType)
	if d.Description != "" {
		fmt.Fprintf(b, "Description: %s\n", d.Description)
	}
	if d.PartiesDescription != "" {
		fmt.Fprintf(b, "Parties: %s\n", d.PartiesDescription)
	}
	b.WriteString("\n")
}

func writeTranscript(b *strings.Builder, history []*mediation.Message) {
	if len(history) == 0 {
		return
	}
	b.WriteString("Transcript so far:\n")
	for _, m := range history {
		fmt.Fprintf(b, "[%s] %s\n", m.Role, m.Content)
	}
	b.WriteString("\n")
}
