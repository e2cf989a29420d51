package handler

import (
	"net/http"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

type ReportHandler struct {
	reports ports.ReportService
}

func NewReportHandler(reports ports.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.DashboardStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) PopularBooks(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.reports.PopularBooks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(ranking, func(b domain.BookRanking) BookRankingResponse {
		return BookRankingResponse{BookID: b.BookID, Title: b.Title, Author: b.Author, LoanCount: b.LoanCount}
	}))
}

func (h *ReportHandler) ActiveUsers(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.reports.ActiveUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(ranking, func(u domain.UserRanking) UserRankingResponse {
		return UserRankingResponse{UserID: u.UserID, Name: u.Name, Role: u.Role, LoanCount: u.LoanCount}
	}))
}
