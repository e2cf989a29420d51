package domain

import "github.com/shopspring/decimal"

type DashboardStats struct {
	TotalBooks       int             `db:"total_books" json:"totalBooks"`
	AvailableBooks   int             `db:"available_books" json:"availableBooks"`
	TotalUsers       int             `db:"total_users" json:"totalUsers"`
	ActiveLoans      int             `db:"active_loans" json:"activeLoans"`
	OverdueLoans     int             `db:"overdue_loans" json:"overdueLoans"`
	PendingFines     int             `db:"pending_fines" json:"pendingFines"`
	TotalFinesAmount decimal.Decimal `db:"total_fines_amount" json:"totalFinesAmount"`
}

type BookRanking struct {
	BookID    string `db:"book_id"`
	Title     string `db:"title"`
	Author    string `db:"author"`
	LoanCount int    `db:"loan_count"`
}

type UserRanking struct {
	UserID    string `db:"user_id"`
	Name      string `db:"name"`
	Role      Role   `db:"role"`
	LoanCount int    `db:"loan_count"`
}
