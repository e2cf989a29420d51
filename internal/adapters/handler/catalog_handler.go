package handler

import (
	"net/http"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type BookRequest struct {
	Title           string            `json:"title"`
	Author          string            `json:"author"`
	ISBN            *string           `json:"isbn"`
	Publisher       *string           `json:"publisher"`
	YearPublished   *int              `json:"yearPublished"`
	CategoryID      *string           `json:"categoryId"`
	Department      domain.Department `json:"department"`
	Tag             domain.Tag        `json:"tag"`
	TotalCopies     int               `json:"totalCopies"`
	AvailableCopies *int              `json:"availableCopies"`
	Description     *string           `json:"description"`
	CoverImage      *string           `json:"coverImage"`
}

type UpdateBookRequest struct {
	Title         *string            `json:"title"`
	Author        *string            `json:"author"`
	ISBN          *string            `json:"isbn"`
	Publisher     *string            `json:"publisher"`
	YearPublished *int               `json:"yearPublished"`
	CategoryID    *string            `json:"categoryId"`
	Department    *domain.Department `json:"department"`
	Tag           *domain.Tag        `json:"tag"`
	TotalCopies   *int               `json:"totalCopies"`
	Description   *string            `json:"description"`
	CoverImage    *string            `json:"coverImage"`
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(categories, func(c domain.Category) CategoryResponse {
		return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
	}))
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.catalog.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description})
}

func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	books, err := h.catalog.ListBooks(r.Context(), domain.BookFilter{
		Search:     q.Get("search"),
		Department: domain.Department(q.Get("department")),
		CategoryID: q.Get("categoryId"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(books, toBookResponse))
}

func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.GetBook(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(*book))
}

func (h *CatalogHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	available := -1
	if req.AvailableCopies != nil {
		available = *req.AvailableCopies
	}
	book, err := h.catalog.CreateBook(r.Context(), domain.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		YearPublished:   req.YearPublished,
		CategoryID:      req.CategoryID,
		Department:      req.Department,
		Tag:             req.Tag,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: available,
		Description:     req.Description,
		CoverImage:      req.CoverImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookResponse(*book))
}

func (h *CatalogHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.catalog.UpdateBook(r.Context(), r.PathValue("id"), domain.BookPatch{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		Publisher:     req.Publisher,
		YearPublished: req.YearPublished,
		CategoryID:    req.CategoryID,
		Department:    req.Department,
		Tag:           req.Tag,
		TotalCopies:   req.TotalCopies,
		Description:   req.Description,
		CoverImage:    req.CoverImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(*book))
}

func (h *CatalogHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteBook(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
