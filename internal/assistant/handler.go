package assistant

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

// Handler exposes assistant payloads over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the assistant handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers assistant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/digest", h.handleDigest)
	r.Post("/context", h.handleContext)
}

type digestResponse struct {
	Digest DayDigest `json:"digest"`
	Prompt string    `json:"prompt"`
}

type contextRequest struct {
	Question string `json:"question" validate:"required,max=500"`
}

type contextResponse struct {
	Context QueryContext `json:"context"`
	Prompt  string       `json:"prompt"`
}

func (h *Handler) handleDigest(w http.ResponseWriter, r *http.Request) {
	digest, err := h.service.Digest(r.Context())
	if err != nil {
		h.fail(w, "build digest", err)
		return
	}
	httpx.JSON(w, http.StatusOK, digestResponse{Digest: digest, Prompt: digest.Prompt()})
}

func (h *Handler) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			httpx.RespondError(w, ErrEmptyQuestion)
			return
		}
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	qc, err := h.service.Context(r.Context(), req.Question)
	if err != nil {
		h.fail(w, "build query context", err)
		return
	}
	httpx.JSON(w, http.StatusOK, contextResponse{Context: qc, Prompt: qc.Prompt()})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError && h.logger != nil {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
