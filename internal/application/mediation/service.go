package mediation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAccess "github.com/mediahub/mediahub/internal/application/access"
	appActivity "github.com/mediahub/mediahub/internal/application/activity"
	appDispute "github.com/mediahub/mediahub/internal/application/dispute"
	"github.com/mediahub/mediahub/internal/domain/activity"
	"github.com/mediahub/mediahub/internal/domain/apperr"
	"github.com/mediahub/mediahub/internal/domain/dispute"
	"github.com/mediahub/mediahub/internal/domain/mediation"
)

// FallbackReply is stored in place of an AI response when every configured
// provider fails or times out. Posting a message never fails because the
// optional AI assist did.
const FallbackReply = "The AI mediator is temporarily unavailable. Please continue the discussion; a mediator response will follow."

// FallbackSummary closes out a session when summarization providers are down.
const FallbackSummary = "The mediation session has concluded. An automated summary could not be generated; please review the message history."

const defaultAdapterTimeout = 30 * time.Second

// Service coordinates mediation sessions: session lifecycle, message
// turn-taking, AI mediator invocation, and session summaries. The
// "persist message, generate AI reply, persist AI reply" sequence is a
// critical section per session so concurrent posts cannot interleave their
// AI replies.
type Service struct {
	repo           mediation.Repository
	disputeRepo    dispute.Repository
	disputeSvc     *appDispute.Service
	accessSvc      *appAccess.Service
	activitySvc    *appActivity.Service
	adapter        mediation.Adapter
	adapterTimeout time.Duration
	logger         zerolog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewService creates a mediation coordinator. adapterTimeout bounds every AI
// call; zero selects the default.
func NewService(
	repo mediation.Repository,
	disputeRepo dispute.Repository,
	disputeSvc *appDispute.Service,
	accessSvc *appAccess.Service,
	activitySvc *appActivity.Service,
	adapter mediation.Adapter,
	adapterTimeout time.Duration,
	logger zerolog.Logger,
) *Service {
	if adapterTimeout <= 0 {
		adapterTimeout = defaultAdapterTimeout
	}
	return &Service{
		repo:           repo,
		disputeRepo:    disputeRepo,
		disputeSvc:     disputeSvc,
		accessSvc:      accessSvc,
		activitySvc:    activitySvc,
		adapter:        adapter,
		adapterTimeout: adapterTimeout,
		logger:         logger.With().Str("service", "mediation").Logger(),
		locks:          make(map[uuid.UUID]*sync.Mutex),
	}
}

// CreateSessionInput schedules a mediation session for a dispute.
type CreateSessionInput struct {
	DisputeID    uuid.UUID
	ActorID      uuid.UUID
	MediatorID   *uuid.UUID
	AIAssistance bool
}

// CreateSession schedules a session and moves the dispute into MEDIATION.
// Only the dispute owner may start mediation, a terminal dispute cannot
// re-enter it, and a dispute holds at most one non-completed session.
func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (*mediation.Session, error) {
	d, err := s.disputeRepo.GetByID(ctx, in.DisputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", in.DisputeID)
	}
	if !s.accessSvc.IsOwner(ctx, in.ActorID, in.DisputeID) {
		return nil, apperr.Forbidden("only the owner may start mediation on dispute %s", in.DisputeID)
	}
	if d.IsTerminal() {
		return nil, apperr.InvalidTransition("cannot start mediation on a %s dispute", d.Status)
	}

	open, err := s.repo.GetOpenSessionByDispute(ctx, in.DisputeID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, apperr.Conflict("dispute %s already has an open mediation session", in.DisputeID)
	}

	code, err := mediation.NewSessionCode()
	if err != nil {
		return nil, err
	}
	sess := &mediation.Session{
		SessionID:    uuid.New(),
		DisputeID:    in.DisputeID,
		Code:         code,
		MediatorID:   in.MediatorID,
		AIAssistance: in.AIAssistance,
		Status:       mediation.SessionStatusScheduled,
		ScheduledAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	if _, err := s.disputeSvc.StartMediation(ctx, in.DisputeID, sess.SessionID); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, in.DisputeID, &in.ActorID, activity.TypeSessionCreated, map[string]interface{}{
		"sessionId":    sess.SessionID,
		"aiAssistance": sess.AIAssistance,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("session_id", sess.SessionID.String()).Str("dispute_id", in.DisputeID.String()).Msg("mediation session created")
	return sess, nil
}

// PostMessageInput appends one human turn to a session.
type PostMessageInput struct {
	SessionID uuid.UUID
	ActorID   uuid.UUID
	Content   string
}

// PostResult carries the stored message and, when AI assistance produced one,
// the AI reply that immediately follows it.
type PostResult struct {
	Message   *mediation.Message `json:"message"`
	AIMessage *mediation.Message `json:"aiMessage,omitempty"`
}

// PostMessage persists a message turn. The poster must be the dispute owner,
// an active party, or the assigned mediator; the role is MEDIATOR exactly
// when the actor is the session's mediator. When AI assistance is on and the
// poster is not the mediator, an AI reply is generated and stored directly
// after the triggering message.
func (s *Service) PostMessage(ctx context.Context, in PostMessageInput) (*PostResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.Invalid("content is required")
	}

	sess, err := s.repo.GetSessionByID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.NotFound("session not found: %s", in.SessionID)
	}
	if sess.IsCompleted() {
		return nil, apperr.InvalidTransition("session %s is completed", in.SessionID)
	}

	d, err := s.disputeRepo.GetByID(ctx, sess.DisputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", sess.DisputeID)
	}
	if !s.accessSvc.CanAct(ctx, in.ActorID, sess.DisputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", sess.DisputeID)
	}

	role := mediation.MessageRoleUser
	if sess.MediatorID != nil && *sess.MediatorID == in.ActorID {
		role = mediation.MessageRoleMediator
	}

	lock := s.sessionLock(sess.SessionID)
	lock.Lock()
	defer lock.Unlock()

	// Snapshot the transcript before the new turn lands so the adapter
	// prompt does not repeat it in both the history and the latest message.
	var history []*mediation.Message
	if sess.AIAssistance && role != mediation.MessageRoleMediator {
		history, err = s.repo.ListMessages(ctx, sess.SessionID, 0, 0)
		if err != nil {
			return nil, err
		}
	}

	actorID := in.ActorID
	msg := &mediation.Message{
		MessageID: uuid.New(),
		SessionID: sess.SessionID,
		UserID:    &actorID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if sess.Status == mediation.SessionStatusScheduled {
		if err := s.repo.UpdateSessionStatus(ctx, sess.SessionID, mediation.SessionStatusInProgress); err != nil {
			return nil, err
		}
		sess.Status = mediation.SessionStatusInProgress
	}

	if err := s.activitySvc.Record(ctx, sess.DisputeID, &actorID, activity.TypeMessagePosted, map[string]interface{}{
		"sessionId": sess.SessionID,
		"messageId": msg.MessageID,
		"role":      msg.Role,
	}); err != nil {
		return nil, err
	}

	result := &PostResult{Message: msg}
	if sess.AIAssistance && role != mediation.MessageRoleMediator {
		aiMsg, err := s.generateReply(ctx, d, sess, history, content)
		if err != nil {
			return nil, err
		}
		result.AIMessage = aiMsg
	}
	return result, nil
}

// generateReply runs under the session lock. history is the transcript up to
// but not including the triggering message. Adapter failure degrades to the
// fixed fallback text; only store failures propagate.
func (s *Service) generateReply(ctx context.Context, d *dispute.Dispute, sess *mediation.Session, history []*mediation.Message, newMessage string) (*mediation.Message, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()
	reply, err := s.adapter.GenerateReply(callCtx, mediation.ReplyInput{
		Dispute:    disputeContext(d),
		History:    history,
		NewMessage: newMessage,
	})

	aiMsg := &mediation.Message{
		MessageID: uuid.New(),
		SessionID: sess.SessionID,
		Role:      mediation.MessageRoleAI,
		CreatedAt: time.Now().UTC(),
	}
	payload := map[string]interface{}{"sessionId": sess.SessionID}
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.SessionID.String()).Msg("ai reply failed, storing fallback")
		aiMsg.Content = FallbackReply
		payload["fallback"] = true
	} else {
		aiMsg.Content = reply.Text
		if reply.Sentiment != "" {
			sentiment := reply.Sentiment
			aiMsg.Sentiment = &sentiment
		}
	}

	if err := s.repo.CreateMessage(ctx, aiMsg); err != nil {
		return nil, err
	}
	payload["messageId"] = aiMsg.MessageID
	if err := s.activitySvc.Record(ctx, sess.DisputeID, nil, activity.TypeAIResponseGenerated, payload); err != nil {
		return nil, err
	}
	return aiMsg, nil
}

// ListMessages returns a session's messages in canonical turn order.
func (s *Service) ListMessages(ctx context.Context, sessionID, actorID uuid.UUID, limit, offset int) ([]*mediation.Message, error) {
	sess, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.NotFound("session not found: %s", sessionID)
	}
	if !s.accessSvc.CanAct(ctx, actorID, sess.DisputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", sess.DisputeID)
	}
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMessages(ctx, sessionID, limit, offset)
}

// Summarize closes out a session: it asks the adapter for a summary and
// recommendations, marks the session COMPLETED, and resolves the dispute if
// it is still in mediation. Calling it on a completed session is a no-op that
// returns the stored summary. Requires owner or mediator access.
func (s *Service) Summarize(ctx context.Context, sessionID, actorID uuid.UUID) (*mediation.Session, error) {
	sess, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.NotFound("session not found: %s", sessionID)
	}

	isMediator := sess.MediatorID != nil && *sess.MediatorID == actorID
	if !isMediator && !s.accessSvc.IsOwner(ctx, actorID, sess.DisputeID) {
		return nil, apperr.Forbidden("only the owner or mediator may summarize session %s", sessionID)
	}

	lock := s.sessionLock(sess.SessionID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: a concurrent Summarize may have completed it.
	sess, err = s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.NotFound("session not found: %s", sessionID)
	}
	if sess.IsCompleted() {
		return sess, nil
	}

	d, err := s.disputeRepo.GetByID(ctx, sess.DisputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", sess.DisputeID)
	}

	history, err := s.repo.ListMessages(ctx, sessionID, 0, 0)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()
	result, err := s.adapter.Summarize(callCtx, mediation.SummaryInput{
		Dispute: disputeContext(d),
		History: history,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("ai summary failed, storing fallback")
		result = mediation.SummaryResult{Summary: FallbackSummary}
	}

	now := time.Now().UTC()
	if err := s.repo.CompleteSession(ctx, sessionID, result.Summary, result.Recommendations, now); err != nil {
		return nil, err
	}
	sess.Status = mediation.SessionStatusCompleted
	sess.Summary = &result.Summary
	if result.Recommendations != "" {
		recs := result.Recommendations
		sess.Recommendations = &recs
	}
	sess.CompletedAt = &now

	// Session completion and dispute resolution are one logical unit; a
	// retry after partial failure re-runs CompleteMediation, which is
	// idempotent on already-resolved disputes.
	if _, err := s.disputeSvc.CompleteMediation(ctx, sess.DisputeID); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, sess.DisputeID, &actorID, activity.TypeSessionCompleted, map[string]interface{}{
		"sessionId": sess.SessionID,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("session_id", sessionID.String()).Msg("mediation session completed")
	return sess, nil
}

// GetSession returns one session after an access check.
func (s *Service) GetSession(ctx context.Context, sessionID, actorID uuid.UUID) (*mediation.Session, error) {
	sess, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.NotFound("session not found: %s", sessionID)
	}
	if !s.accessSvc.CanAct(ctx, actorID, sess.DisputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", sess.DisputeID)
	}
	return sess, nil
}

// ListSessionsByDispute returns all sessions of a dispute.
func (s *Service) ListSessionsByDispute(ctx context.Context, disputeID, actorID uuid.UUID) ([]*mediation.Session, error) {
	if !s.accessSvc.CanAct(ctx, actorID, disputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", disputeID)
	}
	return s.repo.ListSessionsByDispute(ctx, disputeID)
}

func (s *Service) sessionLock(sessionID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

func disputeContext(d *dispute.Dispute) mediation.DisputeContext {
	return mediation.DisputeContext{
		Title:              d.Title,
		Description:        d.Description,
		PartiesDescription: d.PartiesDescription,
		DisputeType:        string(d.Type),
	}
}
