package handler

import (
	"net/http"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

type FineHandler struct {
	fines ports.FineService
}

func NewFineHandler(fines ports.FineService) *FineHandler {
	return &FineHandler{fines: fines}
}

func (h *FineHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerScope(caller(r), r.URL.Query().Get("userId"))
	if !ok {
		forbidden(w)
		return
	}

	fines, err := h.fines.ListFines(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(fines, func(d domain.FineDetails) FineResponse {
		resp := toFineResponse(d.Fine)
		resp.UserName = d.UserName
		resp.BookTitle = d.BookTitle
		return resp
	}))
}

func (h *FineHandler) Pay(w http.ResponseWriter, r *http.Request) {
	fine, err := h.fines.PayFine(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFineResponse(*fine))
}
