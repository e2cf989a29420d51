package handler

import (
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/shopspring/decimal"
)

type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type BookResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Author          string            `json:"author"`
	ISBN            *string           `json:"isbn,omitempty"`
	Publisher       *string           `json:"publisher,omitempty"`
	YearPublished   *int              `json:"yearPublished,omitempty"`
	CategoryID      *string           `json:"categoryId,omitempty"`
	Department      domain.Department `json:"department"`
	Tag             domain.Tag        `json:"tag"`
	TotalCopies     int               `json:"totalCopies"`
	AvailableCopies int               `json:"availableCopies"`
	Description     *string           `json:"description,omitempty"`
	CoverImage      *string           `json:"coverImage,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func toBookResponse(b domain.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Publisher:       b.Publisher,
		YearPublished:   b.YearPublished,
		CategoryID:      b.CategoryID,
		Department:      b.Department,
		Tag:             b.Tag,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Description:     b.Description,
		CoverImage:      b.CoverImage,
		CreatedAt:       b.CreatedAt,
	}
}

type LoanResponse struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	BookID       string            `json:"bookId"`
	LoanDate     time.Time         `json:"loanDate"`
	DueDate      time.Time         `json:"dueDate"`
	ReturnDate   *time.Time        `json:"returnDate,omitempty"`
	Status       domain.LoanStatus `json:"status"`
	Overdue      bool              `json:"overdue"`
	RenewalCount int               `json:"renewalCount"`
	UserName     string            `json:"userName,omitempty"`
	BookTitle    string            `json:"bookTitle,omitempty"`
	BookAuthor   string            `json:"bookAuthor,omitempty"`
}

func toLoanResponse(l domain.Loan, now time.Time) LoanResponse {
	return LoanResponse{
		ID:           l.ID,
		UserID:       l.UserID,
		BookID:       l.BookID,
		LoanDate:     l.LoanDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		Status:       l.Status,
		Overdue:      l.IsOverdue(now),
		RenewalCount: l.RenewalCount,
	}
}

func toLoanDetailsResponse(d domain.LoanDetails, now time.Time) LoanResponse {
	resp := toLoanResponse(d.Loan, now)
	resp.UserName = d.UserName
	resp.BookTitle = d.BookTitle
	resp.BookAuthor = d.BookAuthor
	return resp
}

type ReservationResponse struct {
	ID               string                   `json:"id"`
	UserID           string                   `json:"userId"`
	BookID           string                   `json:"bookId"`
	Status           domain.ReservationStatus `json:"status"`
	ReservationDate  time.Time                `json:"reservationDate"`
	NotificationDate *time.Time               `json:"notificationDate,omitempty"`
	ExpirationDate   *time.Time               `json:"expirationDate,omitempty"`
	UserName         string                   `json:"userName,omitempty"`
	BookTitle        string                   `json:"bookTitle,omitempty"`
}

func toReservationResponse(r domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		BookID:           r.BookID,
		Status:           r.Status,
		ReservationDate:  r.ReservationDate,
		NotificationDate: r.NotificationDate,
		ExpirationDate:   r.ExpirationDate,
	}
}

type FineResponse struct {
	ID          string            `json:"id"`
	LoanID      string            `json:"loanId"`
	UserID      string            `json:"userId"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      domain.FineStatus `json:"status"`
	DaysOverdue int               `json:"daysOverdue"`
	PaymentDate *time.Time        `json:"paymentDate,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UserName    string            `json:"userName,omitempty"`
	BookTitle   string            `json:"bookTitle,omitempty"`
}

func toFineResponse(f domain.Fine) FineResponse {
	return FineResponse{
		ID:          f.ID,
		LoanID:      f.LoanID,
		UserID:      f.UserID,
		Amount:      f.Amount,
		Status:      f.Status,
		DaysOverdue: f.DaysOverdue,
		PaymentDate: f.PaymentDate,
		CreatedAt:   f.CreatedAt,
	}
}

// RequestResponse serves both loan and renewal requests; exactly one of
// BookID and LoanID is set.
type RequestResponse struct {
	ID          string               `json:"id"`
	UserID      string               `json:"userId"`
	BookID      string               `json:"bookId,omitempty"`
	LoanID      string               `json:"loanId,omitempty"`
	Status      domain.RequestStatus `json:"status"`
	RequestDate time.Time            `json:"requestDate"`
	ReviewedBy  *string              `json:"reviewedBy,omitempty"`
	ReviewDate  *time.Time           `json:"reviewDate,omitempty"`
	Notes       *string              `json:"notes,omitempty"`
	ReviewNotes *string              `json:"reviewNotes,omitempty"`
}

func toLoanRequestResponse(r domain.LoanRequest) RequestResponse {
	return RequestResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		BookID:      r.BookID,
		Status:      r.Status,
		RequestDate: r.RequestDate,
		ReviewedBy:  r.ReviewedBy,
		ReviewDate:  r.ReviewDate,
		Notes:       r.Notes,
		ReviewNotes: r.ReviewNotes,
	}
}

func toRenewalRequestResponse(r domain.RenewalRequest) RequestResponse {
	return RequestResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		LoanID:      r.LoanID,
		Status:      r.Status,
		RequestDate: r.RequestDate,
		ReviewedBy:  r.ReviewedBy,
		ReviewDate:  r.ReviewDate,
		Notes:       r.Notes,
		ReviewNotes: r.ReviewNotes,
	}
}

type BookRankingResponse struct {
	BookID    string `json:"bookId"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	LoanCount int    `json:"loanCount"`
}

type UserRankingResponse struct {
	UserID    string      `json:"userId"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	LoanCount int         `json:"loanCount"`
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
