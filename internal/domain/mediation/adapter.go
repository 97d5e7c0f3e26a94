package mediation

import "context"

// DisputeContext carries the dispute framing handed to the AI mediator.
type DisputeContext struct {
	Title              string
	Description        string
	PartiesDescription string
	DisputeType        string
}

// ReplyInput asks the adapter to draft a mediator response to a new message
// given the full ordered history.
type ReplyInput struct {
	Dispute    DisputeContext
	History    []*Message
	NewMessage string
}

// ReplyResult is the adapter's drafted response. Fields are validated and
// defaulted at the adapter boundary, never in the coordinator.
type ReplyResult struct {
	Text      string
	Sentiment string
}

// SummaryInput asks the adapter to close out a session.
type SummaryInput struct {
	Dispute DisputeContext
	History []*Message
}

// SummaryResult is the adapter's session wrap-up.
type SummaryResult struct {
	Summary         string
	Recommendations string
}

// Adapter drafts mediator replies and session summaries. Implementations must
// honor ctx cancellation and return an error rather than panic; the
// coordinator converts failures into fallback behavior.
type Adapter interface {
	GenerateReply(ctx context.Context, in ReplyInput) (ReplyResult, error)
	Summarize(ctx context.Context, in SummaryInput) (SummaryResult, error)
}
