package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/google/uuid"
)

type CatalogService struct {
	repo ports.CatalogRepository
	now  func() time.Time
}

var _ ports.CatalogService = (*CatalogService)(nil)

func NewCatalogService(repo ports.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo, now: time.Now}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, description *string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("category name is required")
	}
	category := domain.Category{ID: uuid.NewString(), Name: name, Description: description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CatalogService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	if filter.Department != "" && !filter.Department.Valid() {
		return nil, domain.Invalid(fmt.Sprintf("unknown department %q", filter.Department))
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListBooks(ctx, filter)
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.repo.FindBook(ctx, id)
}

// CreateBook adds a title to the catalog. Negative availability means every
// copy is on the shelf.
func (s *CatalogService) CreateBook(ctx context.Context, book domain.Book) (*domain.Book, error) {
	book.ID = uuid.NewString()
	book.CreatedAt = s.now()
	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	if book.Tag == "" {
		book.Tag = domain.TagWhite
	}
	if book.Department == "" {
		book.Department = domain.DepartmentOther
	}
	if book.TotalCopies == 0 {
		book.TotalCopies = 1
	}
	if book.AvailableCopies < 0 {
		book.AvailableCopies = book.TotalCopies
	}

	if err := validateBook(book); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, book.CategoryID); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook applies a partial update. Changing the number of copies keeps
// the number currently on loan constant.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error) {
	book, err := s.repo.FindBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		book.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Author != nil {
		book.Author = strings.TrimSpace(*patch.Author)
	}
	if patch.ISBN != nil {
		book.ISBN = patch.ISBN
	}
	if patch.Publisher != nil {
		book.Publisher = patch.Publisher
	}
	if patch.YearPublished != nil {
		book.YearPublished = patch.YearPublished
	}
	if patch.CategoryID != nil {
		book.CategoryID = patch.CategoryID
		if *patch.CategoryID == "" {
			book.CategoryID = nil
		}
	}
	if patch.Department != nil {
		book.Department = *patch.Department
	}
	if patch.Tag != nil {
		book.Tag = *patch.Tag
	}
	if patch.Description != nil {
		book.Description = patch.Description
	}
	if patch.CoverImage != nil {
		book.CoverImage = patch.CoverImage
	}
	if patch.TotalCopies != nil {
		onLoan := book.OnLoan()
		if *patch.TotalCopies < onLoan {
			return nil, domain.Invalid(fmt.Sprintf("%d copies are on loan; total cannot drop below that", onLoan))
		}
		book.TotalCopies = *patch.TotalCopies
		book.AvailableCopies = *patch.TotalCopies - onLoan
	}

	if err := validateBook(*book); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, book.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateBook(ctx, *book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *CatalogService) checkCategory(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.FindCategory(ctx, *id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return domain.Invalid("category does not exist")
		}
		return err
	}
	return nil
}

func validateBook(b domain.Book) error {
	switch {
	case b.Title == "":
		return domain.Invalid("title is required")
	case b.Author == "":
		return domain.Invalid("author is required")
	case !b.Tag.Valid():
		return domain.Invalid(fmt.Sprintf("unknown tag %q", b.Tag))
	case !b.Department.Valid():
		return domain.Invalid(fmt.Sprintf("unknown department %q", b.Department))
	case b.TotalCopies < 1:
		return domain.Invalid("totalCopies must be at least 1")
	case b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies:
		return domain.Invalid("availableCopies must be between 0 and totalCopies")
	}
	return nil
}
