package handler

import (
	"net/http"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

type LoanHandler struct {
	loans ports.LoanService
	now   func() time.Time
}

func NewLoanHandler(loans ports.LoanService) *LoanHandler {
	return &LoanHandler{loans: loans, now: time.Now}
}

type CreateLoanRequest struct {
	UserID string `json:"userId"`
	BookID string `json:"bookId"`
}

type EligibilityResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

type ReturnResponse struct {
	Message  string               `json:"message"`
	Fine     *FineResponse        `json:"fine"`
	Promoted *ReservationResponse `json:"notifiedReservation,omitempty"`
}

type RenewResponse struct {
	Message    string    `json:"message"`
	NewDueDate time.Time `json:"newDueDate"`
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, ok := ownerScope(caller(r), q.Get("userId"))
	if !ok {
		forbidden(w)
		return
	}

	loans, err := h.loans.ListLoans(r.Context(), domain.LoanFilter{
		UserID: userID,
		BookID: q.Get("bookId"),
		Status: q.Get("status"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := h.now()
	writeJSON(w, http.StatusOK, mapSlice(loans, func(d domain.LoanDetails) LoanResponse {
		return toLoanDetailsResponse(d, now)
	}))
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	loan, err := h.loans.GetLoan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !mayActFor(caller(r), loan.UserID) {
		forbidden(w)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(*loan, h.now()))
}

// Eligibility runs the loan rules without changing anything.
func (h *LoanHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("userId")
	p := caller(r)
	if userID == "" {
		userID = p.UserID
	}
	if !mayActFor(p, userID) {
		forbidden(w)
		return
	}

	decision, err := h.loans.CheckEligibility(r.Context(), userID, q.Get("bookId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := EligibilityResponse{Allowed: decision.Allowed}
	if decision.Denial != nil {
		resp.Reason = string(decision.Denial.Reason)
		resp.Message = decision.Denial.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p := caller(r)
	if req.UserID == "" {
		req.UserID = p.UserID
	}
	if !mayActFor(p, req.UserID) {
		forbidden(w)
		return
	}

	loan, err := h.loans.CreateLoan(r.Context(), req.UserID, req.BookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanResponse(*loan, h.now()))
}

func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.loans.ReturnLoan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ReturnResponse{Message: "book returned"}
	if outcome.Fine != nil {
		fine := toFineResponse(*outcome.Fine)
		resp.Fine = &fine
		resp.Message = "book returned late, a fine was assessed"
	}
	if outcome.Promoted != nil {
		res := toReservationResponse(*outcome.Promoted)
		resp.Promoted = &res
	}
	writeJSON(w, http.StatusOK, resp)
}

// Renew is open to the borrower and to librarians.
func (h *LoanHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := h.loans.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !mayActFor(caller(r), current.UserID) {
		forbidden(w)
		return
	}

	loan, err := h.loans.RenewLoan(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RenewResponse{Message: "loan renewed", NewDueDate: loan.DueDate})
}
