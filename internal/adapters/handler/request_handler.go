package handler

import (
	"net/http"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

// RequestHandler serves the staff-reviewed loan and renewal requests.
type RequestHandler struct {
	requests ports.RequestService
	now      func() time.Time
}

func NewRequestHandler(requests ports.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests, now: time.Now}
}

type SubmitLoanRequest struct {
	BookID string  `json:"bookId"`
	Notes  *string `json:"notes"`
}

type SubmitRenewalRequest struct {
	LoanID string  `json:"loanId"`
	Notes  *string `json:"notes"`
}

type ReviewRequest struct {
	Notes *string `json:"notes"`
}

func (h *RequestHandler) filter(w http.ResponseWriter, r *http.Request) (domain.RequestFilter, bool) {
	q := r.URL.Query()
	userID, ok := ownerScope(caller(r), q.Get("userId"))
	if !ok {
		forbidden(w)
		return domain.RequestFilter{}, false
	}
	return domain.RequestFilter{UserID: userID, Status: domain.RequestStatus(q.Get("status"))}, true
}

// reviewNotes reads the optional review body. An empty body is allowed.
func reviewNotes(r *http.Request) (*string, error) {
	if r.ContentLength == 0 {
		return nil, nil
	}
	var req ReviewRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return req.Notes, nil
}

func (h *RequestHandler) ListLoanRequests(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	requests, err := h.requests.ListLoanRequests(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(requests, toLoanRequestResponse))
}

func (h *RequestHandler) SubmitLoanRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitLoanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.requests.SubmitLoanRequest(r.Context(), caller(r).UserID, req.BookID, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanRequestResponse(*created))
}

func (h *RequestHandler) ApproveLoanRequest(w http.ResponseWriter, r *http.Request) {
	notes, err := reviewNotes(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	loan, err := h.requests.ApproveLoanRequest(r.Context(), r.PathValue("id"), caller(r).UserID, notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(*loan, h.now()))
}

func (h *RequestHandler) RejectLoanRequest(w http.ResponseWriter, r *http.Request) {
	notes, err := reviewNotes(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.requests.RejectLoanRequest(r.Context(), r.PathValue("id"), caller(r).UserID, notes); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "loan request rejected"})
}

func (h *RequestHandler) ListRenewalRequests(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	requests, err := h.requests.ListRenewalRequests(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(requests, toRenewalRequestResponse))
}

func (h *RequestHandler) SubmitRenewalRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRenewalRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.requests.SubmitRenewalRequest(r.Context(), caller(r).UserID, req.LoanID, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRenewalRequestResponse(*created))
}

func (h *RequestHandler) ApproveRenewalRequest(w http.ResponseWriter, r *http.Request) {
	notes, err := reviewNotes(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	loan, err := h.requests.ApproveRenewalRequest(r.Context(), r.PathValue("id"), caller(r).UserID, notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RenewResponse{Message: "loan renewed", NewDueDate: loan.DueDate})
}

func (h *RequestHandler) RejectRenewalRequest(w http.ResponseWriter, r *http.Request) {
	notes, err := reviewNotes(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.requests.RejectRenewalRequest(r.Context(), r.PathValue("id"), caller(r).UserID, notes); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "renewal request rejected"})
}
