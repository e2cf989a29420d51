package domain

import "time"

// Tag is the loan-duration class printed on a physical book.
type Tag string

const (
	TagRed    Tag = "red"
	TagYellow Tag = "yellow"
	TagWhite  Tag = "white"
)

func (t Tag) Valid() bool {
	return t == TagRed || t == TagYellow || t == TagWhite
}

type Department string

const (
	DepartmentEngineering   Department = "engenharia"
	DepartmentSocialScience Department = "ciencias-sociais"
	DepartmentOther         Department = "outros"
)

func (d Department) Valid() bool {
	return d == DepartmentEngineering || d == DepartmentSocialScience || d == DepartmentOther
}

type Category struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
}

type Book struct {
	ID              string     `db:"id"`
	Title           string     `db:"title"`
	Author          string     `db:"author"`
	ISBN            *string    `db:"isbn"`
	Publisher       *string    `db:"publisher"`
	YearPublished   *int       `db:"year_published"`
	CategoryID      *string    `db:"category_id"`
	Department      Department `db:"department"`
	Tag             Tag        `db:"tag"`
	TotalCopies     int        `db:"total_copies"`
	AvailableCopies int        `db:"available_copies"`
	Description     *string    `db:"description"`
	CoverImage      *string    `db:"cover_image"`
	CreatedAt       time.Time  `db:"created_at"`
}

// OnLoan is the number of copies currently lent out.
func (b Book) OnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// BookFilter narrows catalog listings. Empty fields are ignored.
type BookFilter struct {
	Search     string
	Department Department
	CategoryID string
}

type BookPatch struct {
	Title         *string
	Author        *string
	ISBN          *string
	Publisher     *string
	YearPublished *int
	CategoryID    *string
	Department    *Department
	Tag           *Tag
	TotalCopies   *int
	Description   *string
	CoverImage    *string
}
