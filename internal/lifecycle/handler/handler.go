// Package handler exposes the lifecycle operations as the admin JSON API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/service"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/httputil"
	"caregate/pkg/requestcontext"
)

// Service defines the lifecycle operations the admin API calls.
type Service interface {
	RegisterCandidate(ctx context.Context, req service.RegisterCandidateRequest) (*models.Outcome, error)
	ApproveCandidate(ctx context.Context, candidateID id.CandidateID) (*models.Outcome, error)
	RejectCandidate(ctx context.Context, candidateID id.CandidateID, reason string) (*models.Outcome, error)
	RejectionCount(ctx context.Context, email string) (int, error)

	GetProvider(ctx context.Context, providerID id.ProviderID) (*models.Provider, error)
	ListSuspensions(ctx context.Context, providerID id.ProviderID) ([]*models.SuspensionRecord, error)
	Suspend(ctx context.Context, providerID id.ProviderID, details models.SuspensionDetails) (*models.Outcome, error)
	Unsuspend(ctx context.Context, providerID id.ProviderID) (*models.Outcome, error)
	DeleteProvider(ctx context.Context, providerID id.ProviderID, reason string) (*models.Outcome, error)

	CheckBlacklist(ctx context.Context, creds models.CredentialSet) (bool, *models.BlacklistEntry, error)
	ListBlacklist(ctx context.Context, includeInactive bool) ([]*models.BlacklistEntry, error)
	GetBlacklistEntry(ctx context.Context, entryID id.BlacklistEntryID) (*models.BlacklistEntry, error)
	AddBlacklistEntry(ctx context.Context, req service.AddBlacklistEntryRequest) (*models.Outcome, error)
	DeactivateBlacklistEntry(ctx context.Context, entryID id.BlacklistEntryID, permanent bool) (*models.Outcome, error)
}

// Handler wires the admin endpoints to the lifecycle service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a lifecycle handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin endpoints on r. Callers mount r under /admin
// behind the admin authentication middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/candidates", h.HandleRegisterCandidate)
	r.Post("/candidates/{id}/approve", h.HandleApproveCandidate)
	r.Post("/candidates/{id}/reject", h.HandleRejectCandidate)
	r.Get("/rejections", h.HandleRejectionCount)

	r.Get("/providers/{id}", h.HandleGetProvider)
	r.Get("/providers/{id}/suspensions", h.HandleListSuspensions)
	r.Post("/providers/{id}/suspend", h.HandleSuspend)
	r.Post("/providers/{id}/unsuspend", h.HandleUnsuspend)
	r.Delete("/providers/{id}", h.HandleDeleteProvider)

	r.Post("/blacklist/check", h.HandleCheckBlacklist)
	r.Get("/blacklist", h.HandleListBlacklist)
	r.Post("/blacklist", h.HandleAddBlacklistEntry)
	r.Get("/blacklist/{id}", h.HandleGetBlacklistEntry)
	r.Delete("/blacklist/{id}", h.HandleDeactivateBlacklistEntry)
}

// HandleRegisterCandidate handles POST /admin/candidates.
func (h *Handler) HandleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterCandidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	outcome, err := h.service.RegisterCandidate(ctx, req.toService())
	if err != nil {
		h.logBlocked(ctx, "candidate registration blocked", err, "email", req.Email)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, outcome)
}

// HandleApproveCandidate handles POST /admin/candidates/{id}/approve.
func (h *Handler) HandleApproveCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	outcome, err := h.service.ApproveCandidate(ctx, candidateID)
	if err != nil {
		h.logBlocked(ctx, "candidate approval failed", err, "candidate_id", candidateID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleRejectCandidate handles POST /admin/candidates/{id}/reject.
func (h *Handler) HandleRejectCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectCandidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	outcome, err := h.service.RejectCandidate(ctx, candidateID, req.Reason)
	if err != nil {
		h.logBlocked(ctx, "candidate rejection failed", err, "candidate_id", candidateID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleRejectionCount handles GET /admin/rejections?email=.
func (h *Handler) HandleRejectionCount(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	count, err := h.service.RejectionCount(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &RejectionCountResponse{Email: models.NormalizeEmail(email), Count: count})
}

// HandleGetProvider handles GET /admin/providers/{id}.
func (h *Handler) HandleGetProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.providerID(w, r)
	if !ok {
		return
	}
	provider, err := h.service.GetProvider(r.Context(), providerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, provider)
}

// HandleListSuspensions handles GET /admin/providers/{id}/suspensions.
func (h *Handler) HandleListSuspensions(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.providerID(w, r)
	if !ok {
		return
	}
	records, err := h.service.ListSuspensions(r.Context(), providerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newSuspensionList(providerID, records))
}

// HandleSuspend handles POST /admin/providers/{id}/suspend.
func (h *Handler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	providerID, ok := h.providerID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SuspendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	outcome, err := h.service.Suspend(ctx, providerID, req.toDetails())
	if err != nil {
		h.logBlocked(ctx, "suspension failed", err, "provider_id", providerID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleUnsuspend handles POST /admin/providers/{id}/unsuspend.
func (h *Handler) HandleUnsuspend(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.providerID(w, r)
	if !ok {
		return
	}
	outcome, err := h.service.Unsuspend(r.Context(), providerID)
	if err != nil {
		h.logBlocked(r.Context(), "unsuspension failed", err, "provider_id", providerID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleDeleteProvider handles DELETE /admin/providers/{id}?reason=...
func (h *Handler) HandleDeleteProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.providerID(w, r)
	if !ok {
		return
	}
	reason := strings.TrimSpace(r.URL.Query().Get("reason"))
	if err := checkLengths(reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	outcome, err := h.service.DeleteProvider(r.Context(), providerID, reason)
	if err != nil {
		h.logBlocked(r.Context(), "provider deletion failed", err, "provider_id", providerID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleCheckBlacklist handles POST /admin/blacklist/check.
func (h *Handler) HandleCheckBlacklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CredentialsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	blacklisted, entry, err := h.service.CheckBlacklist(ctx, req.credentials())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &BlacklistCheckResponse{Blacklisted: blacklisted, Entry: entry})
}

// HandleListBlacklist handles GET /admin/blacklist?include_inactive=true.
func (h *Handler) HandleListBlacklist(w http.ResponseWriter, r *http.Request) {
	includeInactive, err := boolQuery(r, "include_inactive")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.service.ListBlacklist(r.Context(), includeInactive)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newBlacklistList(entries))
}

// HandleGetBlacklistEntry handles GET /admin/blacklist/{id}.
func (h *Handler) HandleGetBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := id.ParseBlacklistEntryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.service.GetBlacklistEntry(r.Context(), entryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

// HandleAddBlacklistEntry handles POST /admin/blacklist.
func (h *Handler) HandleAddBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AddBlacklistEntryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	outcome, err := h.service.AddBlacklistEntry(ctx, req.toService())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, outcome)
}

// HandleDeactivateBlacklistEntry handles DELETE /admin/blacklist/{id}?permanent=true.
func (h *Handler) HandleDeactivateBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := id.ParseBlacklistEntryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	permanent, err := boolQuery(r, "permanent")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	outcome, err := h.service.DeactivateBlacklistEntry(r.Context(), entryID, permanent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (h *Handler) providerID(w http.ResponseWriter, r *http.Request) (id.ProviderID, bool) {
	providerID, err := id.ParseProviderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProviderID{}, false
	}
	return providerID, true
}

// logBlocked logs policy refusals at info and everything else at error.
func (h *Handler) logBlocked(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs,
		"request_id", requestcontext.RequestID(ctx),
		"actor_id", requestcontext.ActorID(ctx),
		"code", string(dErrors.CodeOf(err)),
		"error", err,
	)
	if dErrors.CodeOf(err).Retryable() {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.InfoContext(ctx, msg, attrs...)
}

func boolQuery(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, dErrors.New(dErrors.CodeBadRequest, key+" must be true or false")
	}
	return v, nil
}
