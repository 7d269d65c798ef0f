package auth

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/upsign/service/internal/response"
)

// Handler holds HTTP handlers for the auth endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetParameters godoc
//
//	@Summary		Get upload authentication parameters
//	@Description	Mint a short-lived token, its expiry and signature for a single client-side upload. The private key never leaves the server.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	Parameters
//	@Failure		500	{object}	response.Envelope
//	@Router			/auth [get]
func (h *Handler) GetParameters(w http.ResponseWriter, r *http.Request) {
	params, err := h.svc.Parameters(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("generate authentication parameters")
		response.Error(w, http.StatusInternalServerError, "failed to generate authentication parameters")
		return
	}

	// Returned bare, not enveloped: upload clients read the three fields directly.
	w.Header().Set("Cache-Control", "no-store")
	response.JSON(w, http.StatusOK, params)
}
