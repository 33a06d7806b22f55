package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	booksvc "github.com/Mehedi-programming/floating-library/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := h.Svc.Create(c.Request().Context(), uid, booksvc.CreateInput{
		Title:         req.Title,
		Author:        req.Author,
		CategoryID:    req.CategoryID,
		Language:      req.Language,
		ImageURL:      req.ImageURL,
		Description:   req.Description,
		PublishedDate: req.PublishedDate,
	})
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		case booksvc.ErrCategoryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
		default:
			h.Log.Error("book create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Book created successfully", "data": b})
}

// PATCH /v1/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := h.Svc.Update(c.Request().Context(), uid, id, booksvc.UpdateInput{
		Title:         req.Title,
		Author:        req.Author,
		CategoryID:    req.CategoryID,
		Language:      req.Language,
		ImageURL:      req.ImageURL,
		Description:   req.Description,
		PublishedDate: req.PublishedDate,
	})
	if err != nil {
		return h.mapErr(c, "book update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book updated successfully", "data": b})
}

// DELETE /v1/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return h.mapErr(c, "book delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book deleted successfully"})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/search?q=
func (h *Controller) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Please provide a search query."})
	}
	rows, err := h.Svc.Search(c.Request().Context(), q)
	if err != nil {
		return h.mapErr(c, "book search", err)
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No books found."})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/top-rated
func (h *Controller) TopRated(c echo.Context) error {
	rows, err := h.Svc.TopRated(c.Request().Context())
	if err != nil {
		h.Log.Error("top rated", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/recent
func (h *Controller) RecentlyUpdated(c echo.Context) error {
	rows, err := h.Svc.RecentlyUpdated(c.Request().Context())
	if err != nil {
		h.Log.Error("recent books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/me/books
func (h *Controller) MyBooks(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyBooks(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/me/books/count
func (h *Controller) MyBookCount(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	n, err := h.Svc.MyBookCount(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my book count", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"total_books": n})
}

// GET /v1/categories
func (h *Controller) Categories(c echo.Context) error {
	rows, err := h.Svc.Categories(c.Request().Context())
	if err != nil {
		h.Log.Error("categories", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/categories/:id/books
func (h *Controller) ByCategory(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.ByCategory(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "books by category", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/books/:id/review
func (h *Controller) ToggleReview(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	res, err := h.Svc.ToggleReview(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapErr(c, "toggle review", err)
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"rating": res.Rating})
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch booksvc.Code(err) {
	case booksvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case booksvc.ErrCategoryNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
	case booksvc.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "This is not your book"})
	case booksvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func bookID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
