package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitnest/splitnest/pkg/response"
)

// Handler handles HTTP requests for the netted balance views
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints. All read-only.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Overview)
	r.Get("/participants/{id}", h.ForParticipant)

	return r
}

// Overview handles GET /balances
// @Summary      Netted ledger overview
// @Description  Open shares grouped per expense after pairwise auto-settlement, plus the pair adjustments that were cancelled
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=Overview}
// @Router       /balances [get]
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, overview)
}

// ForParticipant handles GET /balances/participants/{id}
// @Summary      Netted view for one participant
// @Description  What the participant owes and is owed per expense after auto-settlement, with top-level totals
// @Tags         balances
// @Produce      json
// @Param        id path string true "Participant ID"
// @Success      200 {object} response.APIResponse{data=Summary}
// @Router       /balances/participants/{id} [get]
func (h *Handler) ForParticipant(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ForParticipant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}
