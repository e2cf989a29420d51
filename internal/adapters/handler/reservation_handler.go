package handler

import (
	"net/http"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

type ReservationHandler struct {
	reservations ports.ReservationService
}

func NewReservationHandler(reservations ports.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

type CreateReservationRequest struct {
	UserID string `json:"userId"`
	BookID string `json:"bookId"`
}

type UpdateReservationRequest struct {
	Status domain.ReservationStatus `json:"status"`
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, ok := ownerScope(caller(r), q.Get("userId"))
	if !ok {
		forbidden(w)
		return
	}

	reservations, err := h.reservations.ListReservations(r.Context(), domain.ReservationFilter{
		UserID: userID,
		BookID: q.Get("bookId"),
		Status: domain.ReservationStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(reservations, func(d domain.ReservationDetails) ReservationResponse {
		resp := toReservationResponse(d.Reservation)
		resp.UserName = d.UserName
		resp.BookTitle = d.BookTitle
		return resp
	}))
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
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

	reservation, err := h.reservations.CreateReservation(r.Context(), req.UserID, req.BookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(*reservation))
}

// Update lets a holder cancel their own reservation; every other
// transition is reserved to librarians.
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateReservationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	p := caller(r)
	if !p.Role.IsLibrarian() {
		current, err := h.reservations.GetReservation(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if current.UserID != p.UserID || req.Status != domain.ReservationCancelled {
			forbidden(w)
			return
		}
	}

	reservation, err := h.reservations.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(*reservation))
}
