package borrow

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Mehedi-programming/floating-library/model"
	borrowsvc "github.com/Mehedi-programming/floating-library/service/borrow"
)

type Controller struct {
	Svc borrowsvc.Service
	Log *slog.Logger
}

// POST /v1/books/:id/borrow-requests
func (h *Controller) Create(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, _ := c.Get("principal").(*model.User)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	br, err := h.Svc.Create(c.Request().Context(), u.ID, u.Email, bookID)
	if err != nil {
		return h.mapErr(c, "borrow create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Borrow request sent successfully.",
		"data":    br,
	})
}

// PATCH /v1/borrow-requests/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	return h.transition(c, "borrow cancel", "Borrow request cancelled.", h.Svc.Cancel)
}

// POST /v1/borrow-requests/:id/accept
func (h *Controller) Accept(c echo.Context) error {
	return h.transition(c, "borrow accept", "Borrow request accepted.", h.Svc.Accept)
}

// POST /v1/borrow-requests/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	return h.transition(c, "borrow reject", "Borrow request rejected.", h.Svc.Reject)
}

// POST /v1/borrow-requests/:id/return
func (h *Controller) Return(c echo.Context) error {
	return h.transition(c, "borrow return", "Book returned.", h.Svc.Return)
}

// GET /v1/borrow-requests/sent
func (h *Controller) Sent(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.BorrowHistory(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("borrow history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrow-requests/received
func (h *Controller) Received(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.LendHistory(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("lend history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrow-requests/counts
func (h *Controller) Counts(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	counts, err := h.Svc.MyCounts(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("borrow counts", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, counts)
}

type transitionFn func(ctx context.Context, actorID, requestID int64) (*model.BorrowRequest, error)

func (h *Controller) transition(c echo.Context, op, msg string, fn transitionFn) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	br, err := fn(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapErr(c, op, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "data": br})
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch borrowsvc.Code(err) {
	case borrowsvc.ErrBookNotFound, borrowsvc.ErrRequestNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case borrowsvc.ErrSelfBorrow:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "You cannot borrow your own book."})
	case borrowsvc.ErrBorrowLimit:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "You have reached the maximum number of borrowed books."})
	case borrowsvc.ErrUnavailable:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "This book is not available right now."})
	case borrowsvc.ErrDuplicate:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "You already have a pending request for this book."})
	case borrowsvc.ErrNotPending, borrowsvc.ErrNotAccepted:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "This request is no longer open."})
	case borrowsvc.ErrNotOwner, borrowsvc.ErrNotRequester:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You are not allowed to act on this request."})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
