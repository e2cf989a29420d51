package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/services"
	"github.com/AchilleasB/campus-library/library-service/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateBook_Defaults(t *testing.T) {
	catalog := services.NewCatalogService(mocks.NewMockLibraryRepository())

	book, err := catalog.CreateBook(context.Background(), domain.Book{Title: " Calculus ", Author: "Stewart", AvailableCopies: -1})

	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "Calculus", book.Title)
	assert.Equal(t, domain.TagWhite, book.Tag)
	assert.Equal(t, domain.DepartmentOther, book.Department)
	assert.Equal(t, 1, book.TotalCopies)
	assert.Equal(t, 1, book.AvailableCopies)
}

func Test_CreateBook_Validation(t *testing.T) {
	missing := "missing"
	tests := []struct {
		name string
		book domain.Book
	}{
		{"no title", domain.Book{Author: "A", AvailableCopies: -1}},
		{"unknown tag", domain.Book{Title: "T", Author: "A", Tag: "green", AvailableCopies: -1}},
		{"more available than total", domain.Book{Title: "T", Author: "A", TotalCopies: 2, AvailableCopies: 3}},
		{"unknown category", domain.Book{Title: "T", Author: "A", CategoryID: &missing, AvailableCopies: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := services.NewCatalogService(mocks.NewMockLibraryRepository())

			_, err := catalog.CreateBook(context.Background(), tt.book)

			assert.Equal(t, domain.KindValidationError, domain.KindOf(err))
		})
	}
}

func Test_UpdateBook_TotalCopiesKeepsLoansOut(t *testing.T) {
	repo := mocks.NewMockLibraryRepository()
	book := mocks.NewTestBook("b", "Copies", domain.TagWhite, 3)
	book.AvailableCopies = 1
	repo.SeedBook(book)
	catalog := services.NewCatalogService(repo)
	ctx := context.Background()

	five := 5
	updated, err := catalog.UpdateBook(ctx, "b", domain.BookPatch{TotalCopies: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalCopies)
	assert.Equal(t, 3, updated.AvailableCopies)
	assert.Equal(t, 3, repo.Book("b").AvailableCopies)

	one := 1
	_, err = catalog.UpdateBook(ctx, "b", domain.BookPatch{TotalCopies: &one})
	assert.Equal(t, domain.KindValidationError, domain.KindOf(err))
}

func Test_DeleteBook_WithLoanHistory(t *testing.T) {
	repo := mocks.NewMockLibraryRepository()
	repo.SeedBook(mocks.NewTestBook("b", "Kept", domain.TagWhite, 1))
	repo.SeedLoan(domain.Loan{ID: "l", UserID: "u", BookID: "b", Status: domain.LoanReturned})
	catalog := services.NewCatalogService(repo)

	err := catalog.DeleteBook(context.Background(), "b")

	assert.ErrorIs(t, err, domain.ErrBookHasLoans)
}

func Test_CreateCategory(t *testing.T) {
	catalog := services.NewCatalogService(mocks.NewMockLibraryRepository())

	_, err := catalog.CreateCategory(context.Background(), "  ", nil)
	assert.Equal(t, domain.KindValidationError, domain.KindOf(err))

	category, err := catalog.CreateCategory(context.Background(), "Mathematics", nil)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", category.Name)
}

type fakeStatsCache struct {
	stats   *domain.DashboardStats
	getErr  error
	setCall int
}

func (c *fakeStatsCache) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	return c.stats, c.getErr
}

func (c *fakeStatsCache) SetStats(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error {
	c.setCall++
	c.stats = stats
	return nil
}

func Test_DashboardStats_UsesCache(t *testing.T) {
	repo := mocks.NewMockLibraryRepository()
	repo.SeedBook(mocks.NewTestBook("b", "Counted", domain.TagWhite, 4))
	repo.SeedFine(domain.Fine{ID: "f", UserID: "u", Amount: decimal.NewFromInt(500), Status: domain.FinePending})
	cache := &fakeStatsCache{}
	reports := services.NewReportService(repo, cache)
	ctx := context.Background()

	stats, err := reports.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalBooks)
	assert.Equal(t, 4, stats.AvailableBooks)
	assert.Equal(t, 1, stats.PendingFines)
	assert.True(t, stats.TotalFinesAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 1, cache.setCall)

	repo.DashboardStatsError = errors.New("database down")
	cached, err := reports.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats, cached)
}

func Test_DashboardStats_CacheFailureFallsThrough(t *testing.T) {
	repo := mocks.NewMockLibraryRepository()
	cache := &fakeStatsCache{getErr: errors.New("redis unavailable")}
	reports := services.NewReportService(repo, cache)

	stats, err := reports.DashboardStats(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, stats)
}

func Test_PopularBooks(t *testing.T) {
	repo := mocks.NewMockLibraryRepository()
	repo.SeedBook(mocks.NewTestBook("a", "Often", domain.TagWhite, 1))
	repo.SeedBook(mocks.NewTestBook("b", "Rarely", domain.TagWhite, 1))
	repo.SeedLoan(domain.Loan{ID: "1", UserID: "u", BookID: "a", Status: domain.LoanReturned})
	repo.SeedLoan(domain.Loan{ID: "2", UserID: "v", BookID: "a", Status: domain.LoanReturned})
	repo.SeedLoan(domain.Loan{ID: "3", UserID: "u", BookID: "b", Status: domain.LoanReturned})

	ranking, err := services.NewReportService(repo, nil).PopularBooks(context.Background())

	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "a", ranking[0].BookID)
	assert.Equal(t, 2, ranking[0].LoanCount)
}
