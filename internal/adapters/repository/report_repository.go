package repository

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
)

func (r *SQLRepository) DashboardStats(ctx context.Context, now time.Time) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM books)                                              AS total_books,
			(SELECT COALESCE(SUM(available_copies), 0) FROM books)                    AS available_books,
			(SELECT COUNT(*) FROM users)                                              AS total_users,
			(SELECT COUNT(*) FROM loans WHERE status = 'active')                      AS active_loans,
			(SELECT COUNT(*) FROM loans WHERE status = 'active' AND due_date < $1)    AS overdue_loans,
			(SELECT COUNT(*) FROM fines WHERE status = 'pending')                     AS pending_fines,
			(SELECT COALESCE(SUM(amount), 0) FROM fines WHERE status = 'pending')     AS total_fines_amount`, now)
	if err != nil {
		return nil, storageError("dashboard stats", err)
	}
	return &stats, nil
}

func (r *SQLRepository) PopularBooks(ctx context.Context, limit int) ([]domain.BookRanking, error) {
	ranking := make([]domain.BookRanking, 0)
	err := r.db.SelectContext(ctx, &ranking, `
		SELECT b.id AS book_id, b.title, b.author, COUNT(l.id) AS loan_count
		FROM loans l JOIN books b ON b.id = l.book_id
		GROUP BY b.id, b.title, b.author
		ORDER BY loan_count DESC, b.title
		LIMIT $1`, limit)
	if err != nil {
		return nil, storageError("popular books", err)
	}
	return ranking, nil
}

func (r *SQLRepository) ActiveUsers(ctx context.Context, limit int) ([]domain.UserRanking, error) {
	ranking := make([]domain.UserRanking, 0)
	err := r.db.SelectContext(ctx, &ranking, `
		SELECT u.id AS user_id, u.name, u.role, COUNT(l.id) AS loan_count
		FROM loans l JOIN users u ON u.id = l.user_id
		GROUP BY u.id, u.name, u.role
		ORDER BY loan_count DESC, u.name
		LIMIT $1`, limit)
	if err != nil {
		return nil, storageError("active users", err)
	}
	return ranking, nil
}
