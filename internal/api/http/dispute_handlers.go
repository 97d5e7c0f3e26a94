package httpapi

import (
	"encoding/json"
	"net/http"

	appDispute "github.com/mediahub/mediahub/internal/application/dispute"
)

type disputeCreateRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	PartiesDescription string   `json:"partiesDescription,omitempty"`
	Type               string   `json:"type,omitempty"`
	Documents          []string `json:"documents,omitempty"`
}

type disputeUpdateRequest struct {
	Title              *string         `json:"title,omitempty"`
	Description        *string         `json:"description,omitempty"`
	PartiesDescription *string         `json:"partiesDescription,omitempty"`
	Documents          []string        `json:"documents,omitempty"`
	AIAnalysis         json.RawMessage `json:"aiAnalysis,omitempty"`
	Status             *string         `json:"status,omitempty"`
}

func (s *Server) createDispute(w http.ResponseWriter, r *http.Request) {
	var req disputeCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	d, err := s.disputeSvc.Create(r.Context(), appDispute.CreateInput{
		OwnerID:            auth.UserID,
		Title:              req.Title,
		Description:        req.Description,
		PartiesDescription: req.PartiesDescription,
		Type:               req.Type,
		Documents:          req.Documents,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (s *Server) listDisputes(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 50, 200)
	disputes, err := s.disputeSvc.ListForUser(r.Context(), auth.UserID, limit, offset)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"disputes": disputes})
}

func (s *Server) getDispute(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	d, err := s.disputeSvc.Get(r.Context(), disputeID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) updateDispute(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	var req disputeUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	d, err := s.disputeSvc.Update(r.Context(), appDispute.UpdateInput{
		DisputeID:          disputeID,
		ActorID:            auth.UserID,
		Title:              req.Title,
		Description:        req.Description,
		PartiesDescription: req.PartiesDescription,
		Documents:          req.Documents,
		AIAnalysis:         req.AIAnalysis,
		Status:             req.Status,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) closeDispute(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	d, err := s.disputeSvc.Close(r.Context(), disputeID, auth.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	// Access is enforced by the dispute lookup.
	if _, err := s.disputeSvc.Get(r.Context(), disputeID, auth.UserID); err != nil {
		respondAppError(w, err)
		return
	}
	limit, offset := parseLimitOffset(r, 50, 200)
	activities, err := s.activitySvc.List(r.Context(), disputeID, limit, offset)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"activities": activities})
}

func (s *Server) activityReport(w http.ResponseWriter, r *http.Request) {
	disputeID, err := parseUUIDParam(r, "disputeId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid dispute id")
		return
	}
	auth := authUserFromContext(r.Context())
	if _, err := s.disputeSvc.Get(r.Context(), disputeID, auth.UserID); err != nil {
		respondAppError(w, err)
		return
	}
	report, err := s.activitySvc.Report(r.Context(), disputeID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
