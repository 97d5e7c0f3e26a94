package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appActivity "github.com/mediahub/mediahub/internal/application/activity"
	appAuth "github.com/mediahub/mediahub/internal/application/auth"
	appDispute "github.com/mediahub/mediahub/internal/application/dispute"
	appMediation "github.com/mediahub/mediahub/internal/application/mediation"
	appParty "github.com/mediahub/mediahub/internal/application/party"
	appSettlement "github.com/mediahub/mediahub/internal/application/settlement"
	appUser "github.com/mediahub/mediahub/internal/application/user"
	"github.com/mediahub/mediahub/internal/domain/apperr"
	domainUser "github.com/mediahub/mediahub/internal/domain/user"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	disputeSvc          *appDispute.Service
	partySvc            *appParty.Service
	mediationSvc        *appMediation.Service
	settlementSvc       *appSettlement.Service
	activitySvc         *appActivity.Service
	authSvc             *appAuth.Service
	userSvc             *appUser.Service
	sessionCookieName   string
	sessionCookieSecure bool
}

func NewServer(
	disputeSvc *appDispute.Service,
	partySvc *appParty.Service,
	mediationSvc *appMediation.Service,
	settlementSvc *appSettlement.Service,
	activitySvc *appActivity.Service,
	authSvc *appAuth.Service,
	userSvc *appUser.Service,
	sessionCookieName string,
	sessionCookieSecure bool,
) *Server {
	return &Server{
		disputeSvc:          disputeSvc,
		partySvc:            partySvc,
		mediationSvc:        mediationSvc,
		settlementSvc:       settlementSvc,
		activitySvc:         activitySvc,
		authSvc:             authSvc,
		userSvc:             userSvc,
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Post("/bootstrap", s.bootstrapAdmin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
			})
		})

		// Invitees may not have an account yet; the code itself is the
		// credential for the preview.
		r.Get("/invitations/{code}", s.previewInvite)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/disputes", func(r chi.Router) {
				r.Post("/", s.createDispute)
				r.Get("/", s.listDisputes)
				r.Get("/{disputeId}", s.getDispute)
				r.Patch("/{disputeId}", s.updateDispute)
				r.Post("/{disputeId}/close", s.closeDispute)

				r.Post("/{disputeId}/parties", s.inviteParty)
				r.Get("/{disputeId}/parties", s.listParties)

				r.Post("/{disputeId}/sessions", s.createMediationSession)
				r.Get("/{disputeId}/sessions", s.listMediationSessions)

				r.Post("/{disputeId}/proposals", s.createProposal)
				r.Get("/{disputeId}/proposals", s.listProposals)

				r.Get("/{disputeId}/activities", s.listActivities)
				r.Get("/{disputeId}/activities/report", s.activityReport)
			})

			r.Post("/invitations/{code}/accept", s.acceptInvite)

			r.Route("/parties", func(r chi.Router) {
				r.Delete("/{partyId}", s.removeParty)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/{sessionId}", s.getMediationSession)
				r.Post("/{sessionId}/messages", s.postMessage)
				r.Get("/{sessionId}/messages", s.listMessages)
				r.Post("/{sessionId}/summarize", s.summarizeSession)
			})

			r.Route("/proposals", func(r chi.Router) {
				r.Get("/{proposalId}", s.getProposal)
				r.Patch("/{proposalId}", s.updateProposalTerms)
				r.Post("/{proposalId}/submit", s.submitProposal)
				r.Post("/{proposalId}/respond", s.respondProposal)
				r.Post("/{proposalId}/withdraw", s.withdrawProposal)
				r.Post("/{proposalId}/signatures", s.createSignature)
				r.Get("/{proposalId}/signatures", s.listSignatures)
			})

			r.Route("/signatures", func(r chi.Router) {
				r.Post("/{signatureId}/verify", s.verifySignature)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/", s.createUser)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/", s.listUsers)
				r.Get("/{userId}", s.getUser)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Patch("/{userId}", s.updateUser)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Put("/{userId}/password", s.setUserPassword)
			})
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondAppError maps classified domain errors to status codes; anything
// unclassified is a 500.
func respondAppError(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case apperr.KindNotFound:
			respondError(w, http.StatusNotFound, string(e.Kind), e.Message)
			return
		case apperr.KindForbidden:
			respondError(w, http.StatusForbidden, string(e.Kind), e.Message)
			return
		case apperr.KindInvalidTransition:
			respondError(w, http.StatusUnprocessableEntity, string(e.Kind), e.Message)
			return
		case apperr.KindConflict:
			respondError(w, http.StatusConflict, string(e.Kind), e.Message)
			return
		case apperr.KindInvalid:
			respondError(w, http.StatusBadRequest, string(e.Kind), e.Message)
			return
		}
	}
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
