package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	appMediation "github.com/mediahub/mediahub/internal/application/mediation"
)

type sessionCreateRequest struct {
	MediatorID   *uuid.UUID `json:"mediatorId,omitempty"`
	AIAssistance bool       `json:"aiAssistance"`
}

type messagePostRequest struct {
	Content string `json:"content"`
}

func (s *Server) createMediationSession(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	var req sessionCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	sess, err := s.mediationSvc.CreateSession(r.Context(), appMediation.CreateSessionInput{
		DisputeID:    disputeID,
		ActorID:      auth.UserID,
		MediatorID:   req.MediatorID,
		AIAssistance: req.AIAssistance,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) listMediationSessions(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	sessions, err := s.mediationSvc.ListSessionsByDispute(r.Context(), disputeID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (s *Server) getMediationSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseUUIDParam(r, "sessionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid session id")
		return
	}
	auth := authUserFromContext(r.Context())
	sess, err := s.mediationSvc.GetSession(r.Context(), sessionID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseUUIDParam(r, "sessionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid session id")
		return
	}
	var req messagePostRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	result, err := s.mediationSvc.PostMessage(r.Context(), appMediation.PostMessageInput{
		SessionID: sessionID,
		ActorID:   auth.UserID,
		Content:   req.Content,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseUUIDParam(r, "sessionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid session id")
		return
	}
	auth := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 100, 500)
	messages, err := s.mediationSvc.ListMessages(r.Context(), sessionID, auth.UserID, limit, offset)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

func (s *Server) summarizeSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseUUIDParam(r, "sessionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid session id")
		return
	}
	auth := authUserFromContext(r.Context())
	sess, err := s.mediationSvc.Summarize(r.Context(), sessionID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}
