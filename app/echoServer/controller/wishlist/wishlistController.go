package wishlist

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	wishlistsvc "github.com/Mehedi-programming/floating-library/service/wishlist"
)

type Controller struct {
	Svc wishlistsvc.Service
	Log *slog.Logger
}

// POST /v1/books/:id/wishlist
func (h *Controller) Add(c echo.Context) error {
	bookID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	entry, err := h.Svc.Add(c.Request().Context(), uid, bookID)
	if err != nil {
		return h.mapErr(c, "wishlist add", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Book added to wishlist.", "data": entry})
}

// GET /v1/wishlist
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("wishlist list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// DELETE /v1/books/:id/wishlist
func (h *Controller) Remove(c echo.Context) error {
	bookID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Remove(c.Request().Context(), uid, bookID); err != nil {
		return h.mapErr(c, "wishlist remove", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book removed from wishlist."})
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch wishlistsvc.Code(err) {
	case wishlistsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case wishlistsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "This book is not in your wishlist."})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
