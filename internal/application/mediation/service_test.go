package mediation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAccess "github.com/mediahub/mediahub/internal/application/access"
	appActivity "github.com/mediahub/mediahub/internal/application/activity"
	appDispute "github.com/mediahub/mediahub/internal/application/dispute"
	"github.com/mediahub/mediahub/internal/domain/activity"
	activitymocks "github.com/mediahub/mediahub/internal/domain/activity/mocks"
	"github.com/mediahub/mediahub/internal/domain/apperr"
	"github.com/mediahub/mediahub/internal/domain/dispute"
	disputemocks "github.com/mediahub/mediahub/internal/domain/dispute/mocks"
	"github.com/mediahub/mediahub/internal/domain/mediation"
	mediationmocks "github.com/mediahub/mediahub/internal/domain/mediation/mocks"
	"github.com/mediahub/mediahub/internal/domain/party"
	partymocks "github.com/mediahub/mediahub/internal/domain/party/mocks"
)

// stubAdapter lets each test script the AI mediator's behavior.
type stubAdapter struct {
	reply   func(mediation.ReplyInput) (mediation.ReplyResult, error)
	summary func(mediation.SummaryInput) (mediation.SummaryResult, error)
}

func (a *stubAdapter) GenerateReply(_ context.Context, in mediation.ReplyInput) (mediation.ReplyResult, error) {
	if a.reply == nil {
		return mediation.ReplyResult{Text: "stub reply", Sentiment: "NEUTRAL"}, nil
	}
	return a.reply(in)
}

func (a *stubAdapter) Summarize(_ context.Context, in mediation.SummaryInput) (mediation.SummaryResult, error) {
	if a.summary == nil {
		return mediation.SummaryResult{Summary: "stub summary", Recommendations: "stub recommendations"}, nil
	}
	return a.summary(in)
}

type fixture struct {
	svc          *Service
	repo         *mediationmocks.MemoryRepository
	disputeRepo  *disputemocks.MemoryRepository
	partyRepo    *partymocks.MemoryRepository
	activityRepo *activitymocks.MemoryRepository
	adapter      *stubAdapter

	owner  uuid.UUID
	member uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:         mediationmocks.NewMemoryRepository(),
		disputeRepo:  disputemocks.NewMemoryRepository(),
		partyRepo:    partymocks.NewMemoryRepository(),
		activityRepo: activitymocks.NewMemoryRepository(),
		adapter:      &stubAdapter{},
		owner:        uuid.New(),
		member:       uuid.New(),
	}
	logger := zerolog.Nop()
	activitySvc := appActivity.NewService(f.activityRepo, logger)
	accessSvc := appAccess.NewService(f.disputeRepo, f.partyRepo, f.repo, logger)
	disputeSvc := appDispute.NewService(f.disputeRepo, f.partyRepo, accessSvc, activitySvc, logger)
	f.svc = NewService(f.repo, f.disputeRepo, disputeSvc, accessSvc, activitySvc, f.adapter, time.Second, logger)
	return f
}

func (f *fixture) addDispute(t *testing.T, status dispute.Status) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	d := &dispute.Dispute{
		DisputeID: uuid.New(),
		OwnerID:   f.owner,
		Title:     "warranty claim",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.disputeRepo.Create(context.Background(), d); err != nil {
		t.Fatalf("create dispute: %v", err)
	}
	memberID := f.member
	if err := f.partyRepo.Create(context.Background(), &party.Party{
		PartyID:   uuid.New(),
		DisputeID: d.DisputeID,
		UserID:    &memberID,
		Email:     "member@example.com",
		Status:    party.StatusActive,
	}); err != nil {
		t.Fatalf("create party: %v", err)
	}
	return d.DisputeID
}

func (f *fixture) createSession(t *testing.T, disputeID uuid.UUID, mediatorID *uuid.UUID, ai bool) *mediation.Session {
	t.Helper()
	sess, err := f.svc.CreateSession(context.Background(), CreateSessionInput{
		DisputeID:    disputeID,
		ActorID:      f.owner,
		MediatorID:   mediatorID,
		AIAssistance: ai,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return sess
}

func TestCreateSessionMovesDisputeToMediation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)

	sess := f.createSession(t, disputeID, nil, true)
	if sess.Status != mediation.SessionStatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", sess.Status)
	}
	if len(sess.Code) != 16 {
		t.Fatalf("code = %q, want 16-char code", sess.Code)
	}

	d, err := f.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if d.Status != dispute.StatusMediation {
		t.Fatalf("dispute status = %s, want MEDIATION", d.Status)
	}
	if d.ActiveSessionID == nil || *d.ActiveSessionID != sess.SessionID {
		t.Fatal("dispute does not reference the session")
	}
}

func TestCreateSessionRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("owner only", func(t *testing.T) {
		disputeID := f.addDispute(t, dispute.StatusActive)
		_, err := f.svc.CreateSession(ctx, CreateSessionInput{DisputeID: disputeID, ActorID: f.member})
		if !apperr.IsKind(err, apperr.KindForbidden) {
			t.Fatalf("err = %v, want FORBIDDEN", err)
		}
	})

	t.Run("terminal dispute", func(t *testing.T) {
		disputeID := f.addDispute(t, dispute.StatusResolved)
		_, err := f.svc.CreateSession(ctx, CreateSessionInput{DisputeID: disputeID, ActorID: f.owner})
		if !apperr.IsKind(err, apperr.KindInvalidTransition) {
			t.Fatalf("err = %v, want INVALID_TRANSITION", err)
		}
	})

	t.Run("single open session", func(t *testing.T) {
		disputeID := f.addDispute(t, dispute.StatusActive)
		f.createSession(t, disputeID, nil, false)
		_, err := f.svc.CreateSession(ctx, CreateSessionInput{DisputeID: disputeID, ActorID: f.owner})
		if !apperr.IsKind(err, apperr.KindConflict) {
			t.Fatalf("err = %v, want CONFLICT", err)
		}
	})
}

func TestPostMessageStartsSessionAndGeneratesReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	sess := f.createSession(t, disputeID, nil, true)

	f.adapter.reply = func(in mediation.ReplyInput) (mediation.ReplyResult, error) {
		if in.NewMessage != "the product arrived broken" {
			t.Errorf("NewMessage = %q", in.NewMessage)
		}
		if in.Dispute.Title != "warranty claim" {
			t.Errorf("dispute title = %q", in.Dispute.Title)
		}
		return mediation.ReplyResult{Text: "let us review the warranty terms", Sentiment: "CALM"}, nil
	}

	res, err := f.svc.PostMessage(ctx, PostMessageInput{
		SessionID: sess.SessionID,
		ActorID:   f.member,
		Content:   "the product arrived broken",
	})
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if res.Message.Role != mediation.MessageRoleUser {
		t.Fatalf("role = %s, want USER", res.Message.Role)
	}
	if res.AIMessage == nil {
		t.Fatal("expected an AI reply")
	}
	if res.AIMessage.Content != "let us review the warranty terms" {
		t.Fatalf("ai content = %q", res.AIMessage.Content)
	}
	if res.AIMessage.Sentiment == nil || *res.AIMessage.Sentiment != "CALM" {
		t.Fatal("sentiment not stored")
	}

	stored, err := f.repo.GetSessionByID(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("GetSessionByID: %v", err)
	}
	if stored.Status != mediation.SessionStatusInProgress {
		t.Fatalf("session status = %s, want IN_PROGRESS", stored.Status)
	}

	msgs, err := f.svc.ListMessages(ctx, sess.SessionID, f.owner, 0, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2 (turn then AI reply)", len(msgs))
	}
	if msgs[1].Role != mediation.MessageRoleAI {
		t.Fatalf("second message role = %s, want AI", msgs[1].Role)
	}
}

func TestGenerateReplyHistoryExcludesTriggeringMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	sess := f.createSession(t, disputeID, nil, true)

	var histories [][]*mediation.Message
	f.adapter.reply = func(in mediation.ReplyInput) (mediation.ReplyResult, error) {
		hist := make([]*mediation.Message, len(in.History))
		copy(hist, in.History)
		histories = append(histories, hist)
		for _, m := range in.History {
			if m.Content == in.NewMessage {
				t.Errorf("history repeats the triggering message %q", in.NewMessage)
			}
		}
		return mediation.ReplyResult{Text: "noted"}, nil
	}

	if _, err := f.svc.PostMessage(ctx, PostMessageInput{SessionID: sess.SessionID, ActorID: f.member, Content: "first turn"}); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if _, err := f.svc.PostMessage(ctx, PostMessageInput{SessionID: sess.SessionID, ActorID: f.member, Content: "second turn"}); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}

	if len(histories) != 2 {
		t.Fatalf("adapter called %d times, want 2", len(histories))
	}
	if len(histories[0]) != 0 {
		t.Fatalf("first call history has %d messages, want 0", len(histories[0]))
	}
	// Second call sees the first turn and its AI reply, nothing newer.
	if len(histories[1]) != 2 {
		t.Fatalf("second call history has %d messages, want 2", len(histories[1]))
	}
	if histories[1][0].Content != "first turn" || histories[1][1].Role != mediation.MessageRoleAI {
		t.Fatalf("unexpected history: %q then role %s", histories[1][0].Content, histories[1][1].Role)
	}
}

func TestPostMessageMediatorRoleSkipsAI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	mediatorID := uuid.New()
	sess := f.createSession(t, disputeID, &mediatorID, true)

	f.adapter.reply = func(mediation.ReplyInput) (mediation.ReplyResult, error) {
		t.Error("adapter called for a mediator turn")
		return mediation.ReplyResult{}, nil
	}

	res, err := f.svc.PostMessage(ctx, PostMessageInput{
		SessionID: sess.SessionID,
		ActorID:   mediatorID,
		Content:   "please state your positions",
	})
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if res.Message.Role != mediation.MessageRoleMediator {
		t.Fatalf("role = %s, want MEDIATOR", res.Message.Role)
	}
	if res.AIMessage != nil {
		t.Fatal("mediator turn must not trigger an AI reply")
	}
}

func TestPostMessageAdapterFailureStoresFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	sess := f.createSession(t, disputeID, nil, true)

	f.adapter.reply = func(mediation.ReplyInput) (mediation.ReplyResult, error) {
		return mediation.ReplyResult{}, fmt.Errorf("provider down")
	}

	res, err := f.svc.PostMessage(ctx, PostMessageInput{
		SessionID: sess.SessionID,
		ActorID:   f.member,
		Content:   "hello",
	})
	if err != nil {
		t.Fatalf("PostMessage must not fail on adapter error: %v", err)
	}
	if res.AIMessage == nil || res.AIMessage.Content != FallbackReply {
		t.Fatalf("ai message = %+v, want fallback text", res.AIMessage)
	}
}

func TestPostMessageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	sess := f.createSession(t, disputeID, nil, false)

	if _, err := f.svc.PostMessage(ctx, PostMessageInput{SessionID: sess.SessionID, ActorID: f.member, Content: "  "}); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("blank content err = %v, want INVALID_PARAM", err)
	}
	if _, err := f.svc.PostMessage(ctx, PostMessageInput{SessionID: sess.SessionID, ActorID: uuid.New(), Content: "hi"}); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("stranger err = %v, want FORBIDDEN", err)
	}

	if _, err := f.svc.Summarize(ctx, sess.SessionID, f.owner); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if _, err := f.svc.PostMessage(ctx, PostMessageInput{SessionID: sess.SessionID, ActorID: f.member, Content: "too late"}); !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("completed session err = %v, want INVALID_TRANSITION", err)
	}
}

func TestSummarizeCompletesSessionAndResolvesDispute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	sess := f.createSession(t, disputeID, nil, false)

	f.adapter.summary = func(in mediation.SummaryInput) (mediation.SummaryResult, error) {
		return mediation.SummaryResult{Summary: "both sides agreed", Recommendations: "sign the settlement"}, nil
	}

	done, err := f.svc.Summarize(ctx, sess.SessionID, f.owner)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !done.IsCompleted() {
		t.Fatal("session not completed")
	}
	if done.Summary == nil || *done.Summary != "both sides agreed" {
		t.Fatalf("summary = %v", done.Summary)
	}
	if done.Recommendations == nil || *done.Recommendations != "sign the settlement" {
		t.Fatalf("recommendations = %v", done.Recommendations)
	}

	d, err := f.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if d.Status != dispute.StatusResolved {
		t.Fatalf("dispute status = %s, want RESOLVED", d.Status)
	}
}

func TestSummarizeReplayReturnsStoredSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	sess := f.createSession(t, disputeID, nil, false)

	calls := 0
	f.adapter.summary = func(mediation.SummaryInput) (mediation.SummaryResult, error) {
		calls++
		return mediation.SummaryResult{Summary: "first summary"}, nil
	}

	if _, err := f.svc.Summarize(ctx, sess.SessionID, f.owner); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	again, err := f.svc.Summarize(ctx, sess.SessionID, f.owner)
	if err != nil {
		t.Fatalf("Summarize replay: %v", err)
	}
	if again.Summary == nil || *again.Summary != "first summary" {
		t.Fatalf("replay summary = %v, want stored summary", again.Summary)
	}
	if calls != 1 {
		t.Fatalf("adapter called %d times, want 1", calls)
	}
}

func TestSummarizeAdapterFailureUsesFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	sess := f.createSession(t, disputeID, nil, false)

	f.adapter.summary = func(mediation.SummaryInput) (mediation.SummaryResult, error) {
		return mediation.SummaryResult{}, fmt.Errorf("provider down")
	}

	done, err := f.svc.Summarize(ctx, sess.SessionID, f.owner)
	if err != nil {
		t.Fatalf("Summarize must not fail on adapter error: %v", err)
	}
	if done.Summary == nil || *done.Summary != FallbackSummary {
		t.Fatalf("summary = %v, want fallback", done.Summary)
	}
	if !done.IsCompleted() {
		t.Fatal("session not completed despite fallback")
	}
}

func TestSummarizeAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	mediatorID := uuid.New()
	sess := f.createSession(t, disputeID, &mediatorID, false)

	// A party may post but not summarize.
	if _, err := f.svc.Summarize(ctx, sess.SessionID, f.member); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("party summarize err = %v, want FORBIDDEN", err)
	}
	if _, err := f.svc.Summarize(ctx, sess.SessionID, mediatorID); err != nil {
		t.Fatalf("mediator summarize: %v", err)
	}
}

func TestSessionActivityTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	disputeID := f.addDispute(t, dispute.StatusActive)
	sess := f.createSession(t, disputeID, nil, true)

	if _, err := f.svc.PostMessage(ctx, PostMessageInput{SessionID: sess.SessionID, ActorID: f.member, Content: "hello"}); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if _, err := f.svc.Summarize(ctx, sess.SessionID, f.owner); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	var types []activity.Type
	for _, a := range f.activityRepo.All() {
		types = append(types, a.Type)
	}
	want := []activity.Type{
		activity.TypeSessionCreated,
		activity.TypeMessagePosted,
		activity.TypeAIResponseGenerated,
		activity.TypeDisputeResolved,
		activity.TypeSessionCompleted,
	}
	if len(types) != len(want) {
		t.Fatalf("activity types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("activity[%d] = %s, want %s", i, types[i], want[i])
		}
	}
}
