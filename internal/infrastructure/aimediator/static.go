package aimediator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mediahub/mediahub/internal/domain/mediation"
)

// StaticProvider is a deterministic local adapter used when no external
// provider is configured. It keeps mediation usable in development and in
// deployments that opt out of external AI calls.
type StaticProvider struct{}

// NewStaticProvider builds the local fallback adapter.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

func (p *StaticProvider) GenerateReply(_ context.Context, in mediation.ReplyInput) (mediation.ReplyResult, error) {
	reply := fmt.Sprintf(
		"Thank you for sharing that. To keep the discussion on %q productive, could each party state what outcome they would accept?",
		in.Dispute.Title,
	)
	return mediation.ReplyResult{Text: reply, Sentiment: "NEUTRAL"}, nil
}

func (p *StaticProvider) Summarize(_ context.Context, in mediation.SummaryInput) (mediation.SummaryResult, error) {
	var points []string
	for _, m := range in.History {
		if m.Role == mediation.MessageRoleAI {
			continue
		}
		points = append(points, m.Content)
	}
	summary := fmt.Sprintf("Mediation session on %q concluded after %d message(s).", in.Dispute.Title, len(in.History))
	if len(points) > 0 {
		last := points[len(points)-1]
		if len(last) > 200 {
			last = last[:200]
		}
		summary += " Last party statement: " + strings.TrimSpace(last)
	}
	return mediation.SummaryResult{
		Summary:         summary,
		Recommendations: "Review the message history and consider drafting a settlement proposal reflecting the points of agreement.",
	}, nil
}
