package repository

import (
	"context"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/doug-martin/goqu/v9"
)

var bookColumns = []any{
	"id", "title", "author", "isbn", "publisher", "year_published", "category_id",
	"department", "tag", "total_copies", "available_copies", "description", "cover_image", "created_at",
}

func (r *SQLRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)
	if err := r.db.SelectContext(ctx, &categories, "SELECT id, name, description FROM categories ORDER BY name"); err != nil {
		return nil, storageError("list categories", err)
	}
	return categories, nil
}

func (r *SQLRepository) FindCategory(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	if err := get(ctx, r.db, &category, domain.ErrCategoryNotFound,
		"SELECT id, name, description FROM categories WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *SQLRepository) CreateCategory(ctx context.Context, category domain.Category) error {
	_, err := r.db.NamedExecContext(ctx,
		"INSERT INTO categories (id, name, description) VALUES (:id, :name, :description)", category)
	if err != nil {
		return storageError("create category", err)
	}
	return nil
}

func (r *SQLRepository) FindBook(ctx context.Context, id string) (*domain.Book, error) {
	query, args, err := r.builder.From("books").Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, domain.Storage("find book", err)
	}
	var book domain.Book
	if err := get(ctx, r.db, &book, domain.ErrBookNotFound, query, args...); err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks matches search against title, author and ISBN.
func (r *SQLRepository) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	ds := r.builder.From("books").Select(bookColumns...).Order(goqu.C("title").Asc())

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
			goqu.C("isbn").ILike(pattern),
		))
	}
	if filter.Department != "" {
		ds = ds.Where(goqu.C("department").Eq(string(filter.Department)))
	}
	if filter.CategoryID != "" {
		ds = ds.Where(goqu.C("category_id").Eq(filter.CategoryID))
	}

	books := make([]domain.Book, 0)
	if err := r.selectAll(ctx, "list books", &books, ds); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *SQLRepository) CreateBook(ctx context.Context, book domain.Book) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO books (id, title, author, isbn, publisher, year_published, category_id,
			department, tag, total_copies, available_copies, description, cover_image, created_at)
		VALUES (:id, :title, :author, :isbn, :publisher, :year_published, :category_id,
			:department, :tag, :total_copies, :available_copies, :description, :cover_image, :created_at)`, book)
	if err != nil {
		return storageError("create book", err)
	}
	return nil
}

// UpdateBook moves available_copies by the change in total_copies inside
// the statement, so loans taken since the book was read are kept.
func (r *SQLRepository) UpdateBook(ctx context.Context, book domain.Book) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE books SET
			title = :title, author = :author, isbn = :isbn, publisher = :publisher,
			year_published = :year_published, category_id = :category_id,
			department = :department, tag = :tag, description = :description, cover_image = :cover_image,
			available_copies = available_copies + (:total_copies - total_copies),
			total_copies = :total_copies
		WHERE id = :id`, book)
	n, err := affected("update book", res, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// DeleteBook refuses books with loan history. Reservations and requests go
// with the book.
func (r *SQLRepository) DeleteBook(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id = $1", id)
	if pqCode(err) == codeForeignKeyViolation {
		return domain.ErrBookHasLoans
	}
	n, err := affected("delete book", res, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}
