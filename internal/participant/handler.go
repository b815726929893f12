package participant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitnest/splitnest/pkg/response"
)

// Handler handles HTTP requests for participant operations
type Handler struct {
	service *Service
}

// NewHandler creates a new participant handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for participant endpoints. Mutating routes
// are wrapped with the given admin middleware.
func (h *Handler) Routes(admin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/", h.Create)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// Create handles POST /participants
// @Summary      Add participants
// @Description  Create one or more participants from a list of names
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        request body CreateParticipantsRequest true "Participant names"
// @Success      201 {object} response.APIResponse{data=[]ParticipantResponse}
// @Failure      400 {object} response.APIResponse
// @Security     AdminToken
// @Router       /participants [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateParticipantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	participants, err := h.service.CreateBatch(r.Context(), req.Names)
	if err != nil {
		if errors.Is(err, ErrNoNames) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create participants")
		return
	}

	resp := make([]*ParticipantResponse, len(participants))
	for i, p := range participants {
		resp[i] = p.ToResponse()
	}

	response.JSON(w, http.StatusCreated, resp)
}

// List handles GET /participants
// @Summary      List participants
// @Tags         participants
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]ParticipantResponse}
// @Router       /participants [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	participants, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list participants")
		return
	}

	resp := make([]*ParticipantResponse, len(participants))
	for i, p := range participants {
		resp[i] = p.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /participants/{id}
// @Summary      Get participant by ID
// @Tags         participants
// @Produce      json
// @Param        id path string true "Participant ID"
// @Success      200 {object} response.APIResponse{data=ParticipantResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /participants/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrParticipantNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get participant")
		return
	}

	response.JSON(w, http.StatusOK, p.ToResponse())
}

// Delete handles DELETE /participants/{id}
// @Summary      Delete a participant
// @Description  Remove a participant; their shares and payments are removed by the store's cascade rules
// @Tags         participants
// @Produce      json
// @Param        id path string true "Participant ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     AdminToken
// @Router       /participants/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrParticipantNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete participant")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Participant deleted successfully"})
}
