package quote

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/openagora/shipping-engine/internal/common"
)

// Refresher reloads the configuration snapshot and notifies other replicas.
type Refresher interface {
	Refresh(ctx context.Context) error
	Invalidate(ctx context.Context) error
}

// Handler exposes the shipping quote HTTP endpoints.
type Handler struct {
	Svc       *Service
	Refresher Refresher
	Log       zerolog.Logger
}

// Quote handles POST /api/v1/shipping/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid request body", nil)
		return
	}
	resp, err := h.Svc.Quote(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": resp})
}

// Options handles POST /api/v1/shipping/options.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	var req OptionsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid request body", nil)
		return
	}
	resp, err := h.Svc.Options(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": resp})
}

// ResolveZone handles GET /api/v1/shipping/zones/{postalCode}.
func (h *Handler) ResolveZone(w http.ResponseWriter, r *http.Request) {
	postalCode := chi.URLParam(r, "postalCode")
	if postalCode == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "postal code is required", nil)
		return
	}
	resp, err := h.Svc.ResolveZone(r.Context(), postalCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": resp})
}

// AdminRefresh handles POST /api/v1/admin/shipping/refresh. It reloads this
// replica's snapshot synchronously, then tells the others.
func (h *Handler) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	if h.Refresher == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "refresh not configured", nil)
		return
	}
	if err := h.Refresher.Refresh(r.Context()); err != nil {
		h.Log.Error().Err(err).Msg("admin snapshot refresh failed")
		common.JSONError(w, http.StatusServiceUnavailable, CodeSnapshotStale, "configuration reload failed", nil)
		return
	}
	if err := h.Refresher.Invalidate(r.Context()); err != nil {
		h.Log.Warn().Err(err).Msg("snapshot invalidation broadcast failed")
	}
	snapshot, err := h.Svc.Provider.Current()
	if err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, CodeSnapshotStale, "configuration not loaded", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"snapshotVersion": snapshot.Version(),
			"loadedAt":        snapshot.LoadedAt(),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	h.Log.Error().Err(err).Msg("unhandled quote error")
	common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "internal error", nil)
}
