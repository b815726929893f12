package expense

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitnest/splitnest/internal/expense/split"
	"github.com/splitnest/splitnest/pkg/response"
)

// Handler handles HTTP requests for expense and payment operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints. Mutating routes are
// wrapped with the given admin middleware.
func (h *Handler) Routes(admin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/shares/{shareId}/payments", h.RecordPayment)
	})

	return r
}

func isValidationError(err error) bool {
	return errors.Is(err, split.ErrNoDebtors) ||
		errors.Is(err, split.ErrPayerIsDebtor) ||
		errors.Is(err, split.ErrNonPositiveAmount)
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Create an expense and split it into per-debtor shares with exact-cent accounting
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Security     AdminToken
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Title == "" {
		response.BadRequest(w, "Title is required")
		return
	}

	e, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// List handles GET /expenses
// @Summary      List all expenses
// @Description  Full ledger snapshot: every expense with its shares and their payments, newest first
// @Tags         expenses
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	resp := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = e.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with all its shares and payments
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Update handles PUT /expenses/{id}
// @Summary      Update an expense
// @Description  Title and note are always editable; amount, payer and debtors are locked once any payment is recorded
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Expense update request"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Security     AdminToken
// @Router       /expenses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Title == "" {
		response.BadRequest(w, "Title is required")
		return
	}

	e, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrSplitLocked) {
			response.Conflict(w, err.Error())
			return
		}
		if isValidationError(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update expense")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Delete an expense; its shares and payments are removed by the store's cascade rules
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     AdminToken
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// RecordPayment handles POST /expenses/shares/{shareId}/payments
// @Summary      Record a payment against a share
// @Description  Applies the payment up to the share's remaining balance; any excess becomes a reverse share owed back to the payer
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        shareId path string true "Share ID"
// @Param        request body RecordPaymentRequest true "Payment request"
// @Success      201 {object} response.APIResponse{data=RecordPaymentResult}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     AdminToken
// @Router       /expenses/shares/{shareId}/payments [post]
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	payment, spill, err := h.service.RecordPayment(r.Context(), chi.URLParam(r, "shareId"), &req)
	if err != nil {
		if errors.Is(err, ErrShareNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNonPositivePayment) || errors.Is(err, ErrPaymentMismatch) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to record payment")
		return
	}

	result := &RecordPaymentResult{}
	if payment != nil {
		result.Payment = payment.ToResponse()
	}
	if spill != nil {
		result.ReturnShare = spill.ToResponse()
	}

	response.JSON(w, http.StatusCreated, result)
}

// RecordPaymentResult is the response for a recorded payment. Payment is
// absent when the whole amount spilled; ReturnShare is absent when
// nothing spilled.
type RecordPaymentResult struct {
	Payment     *PaymentResponse `json:"payment,omitempty"`
	ReturnShare *ShareResponse   `json:"return_share,omitempty"`
}
