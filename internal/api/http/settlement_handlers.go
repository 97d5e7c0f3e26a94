package httpapi

import (
	"net/http"

	"github.com/mediahub/mediahub/internal/domain/settlement"
)

type proposalCreateRequest struct {
	Terms string `json:"terms"`
}

// signatureCreateResponse surfaces the verification code exactly once, in
// the creation response. List and get responses keep it hidden.
type signatureCreateResponse struct {
	*settlement.Signature
	VerificationCode string `json:"verificationCode"`
}

type proposalRespondRequest struct {
	Accept bool `json:"accept"`
}

type signatureVerifyRequest struct {
	Code string `json:"code"`
}

func (s *Server) createProposal(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	var req proposalCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.settlementSvc.CreateProposal(r.Context(), disputeID, auth.UserID, req.Terms)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) listProposals(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	proposals, err := s.settlementSvc.ListByDispute(r.Context(), disputeID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"proposals": proposals})
}

func (s *Server) getProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposal id")
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.settlementSvc.Get(r.Context(), proposalID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) updateProposalTerms(w http.ResponseWriter, r *http.Request) {
	proposalID, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposal id")
		return
	}
	var req proposalCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.settlementSvc.UpdateTerms(r.Context(), proposalID, auth.UserID, req.Terms)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) submitProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposal id")
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.settlementSvc.Submit(r.Context(), proposalID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) respondProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposal id")
		return
	}
	var req proposalRespondRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.settlementSvc.Respond(r.Context(), proposalID, auth.UserID, req.Accept)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) withdrawProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposal id")
		return
	}
	auth := authUserFromContext(r.Context())
	p, err := s.settlementSvc.Withdraw(r.Context(), proposalID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) createSignature(w http.ResponseWriter, r *http.Request) {
	proposalID, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposal id")
		return
	}
	auth := authUserFromContext(r.Context())
	sig, err := s.settlementSvc.CreateSignature(r.Context(), proposalID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, signatureCreateResponse{Signature: sig, VerificationCode: sig.VerificationCode})
}

func (s *Server) listSignatures(w http.ResponseWriter, r *http.Request) {
	proposalID, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposal id")
		return
	}
	auth := authUserFromContext(r.Context())
	signatures, err := s.settlementSvc.ListSignatures(r.Context(), proposalID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"signatures": signatures})
}

func (s *Server) verifySignature(w http.ResponseWriter, r *http.Request) {
	signatureID, err := parseUUIDParam(r, "signatureId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid signature id")
		return
	}
	var req signatureVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	sig, err := s.settlementSvc.VerifySignature(r.Context(), signatureID, auth.UserID, req.Code)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sig)
}
