package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appParty "github.com/mediahub/mediahub/internal/application/party"
	"github.com/mediahub/mediahub/internal/domain/party"
)

type partyInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// partyInviteResponse surfaces the invitation code exactly once, in the
// creation response. List and get responses keep it hidden.
type partyInviteResponse struct {
	*party.Party
	InviteCode string `json:"inviteCode"`
}

func (s *Server) inviteParty(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	var req partyInviteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.partySvc.Invite(r.Context(), appParty.InviteInput{
		DisputeID: disputeID,
		ActorID:   auth.UserID,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, partyInviteResponse{Party: p, InviteCode: p.InviteCode})
}

func (s *Server) listParties(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	parties, err := s.partySvc.ListByDispute(r.Context(), disputeID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"parties": parties})
}

// invitePreviewResponse shows an invitee what they were invited to before
// they authenticate. It never echoes the code back.
type invitePreviewResponse struct {
	DisputeID uuid.UUID    `json:"disputeId"`
	Email     string       `json:"email"`
	Role      party.Role   `json:"role"`
	Status    party.Status `json:"status"`
}

func (s *Server) previewInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	p, err := s.partySvc.GetByCode(r.Context(), code)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invitePreviewResponse{
		DisputeID: p.DisputeID,
		Email:     p.Email,
		Role:      p.Role,
		Status:    p.Status,
	})
}

func (s *Server) acceptInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	auth := authUserFromContext(r.Context())
	p, err := s.partySvc.AcceptInvite(r.Context(), code, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) removeParty(w http.ResponseWriter, r *http.Request) {
	partyID, err := parseUUIDParam(r, "partyId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid party id")
		return
	}
	auth := authUserFromContext(r.Context())
	if err := s.partySvc.Remove(r.Context(), partyID, auth.UserID); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}
