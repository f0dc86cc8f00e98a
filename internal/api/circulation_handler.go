package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/weilandt/circ-api/internal/api/shared"
	"github.com/weilandt/circ-api/internal/service"
)

// CirculationHandler handles borrow, return, overdue, fine and reminder
// requests for the authenticated member.
type CirculationHandler struct {
	circulation service.CirculationService
	membership  service.MembershipService
	validator   *validator.Validate
}

// NewCirculationHandler creates a new CirculationHandler with the given
// dependencies.
func NewCirculationHandler(
	circulation service.CirculationService,
	membership service.MembershipService,
) *CirculationHandler {
	return &CirculationHandler{
		circulation: circulation,
		membership:  membership,
		validator:   validator.New(),
	}
}

// Borrow handles POST /loans.
func (h *CirculationHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	var req BorrowRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	loan, err := h.circulation.Borrow(r.Context(), username, req.MediaID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewLoanResponse(loan, time.Now()))
}

// Return handles POST /loans/{id}/return.
func (h *CirculationHandler) Return(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUsername(w, r); !ok {
		return
	}

	loanID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	if err := h.circulation.Return(r.Context(), loanID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Overdue handles GET /me/overdue. The scan posts newly accrued fines
// before reporting.
func (h *CirculationHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	overdue, err := h.circulation.CheckOverdue(r.Context(), username)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.membership.GetUser(r.Context(), username)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	now := time.Now()
	loans := make([]LoanResponse, 0, len(overdue))
	for _, loan := range overdue {
		loans = append(loans, NewLoanResponse(loan, now))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, OverdueResponse{
		Overdue:     loans,
		FineBalance: user.FineBalance.String(),
		Blocked:     user.IsBlocked(),
	})
}

// PayFine handles POST /me/fines/pay.
func (h *CirculationHandler) PayFine(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	var req PayFineRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.Amount.Sign() <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Amount must be positive")
		return
	}

	if err := h.circulation.PayFine(r.Context(), username, req.Amount); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.membership.GetUser(r.Context(), username)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BalanceResponse{
		FineBalance: user.FineBalance.String(),
		Blocked:     user.IsBlocked(),
	})
}

// Reminder handles POST /me/reminder, asking for an overdue notice to be
// sent to the member's address.
func (h *CirculationHandler) Reminder(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	if err := h.circulation.SendReminder(r.Context(), username); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.membership.GetUser(r.Context(), username)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	count := len(user.OverdueLoans(time.Now()))
	shared.RespondWithJSON(w, r, http.StatusOK, ReminderResponse{
		OverdueCount: count,
		Sent:         count > 0,
	})
}
