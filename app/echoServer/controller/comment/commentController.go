package comment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Mehedi-programming/floating-library/model"
	commentsvc "github.com/Mehedi-programming/floating-library/service/comment"
)

type Controller struct {
	Svc commentsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books/:id/comments
func (h *Controller) Add(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req AddCommentReq
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

	cm, err := h.Svc.Add(c.Request().Context(), uid, bookID, req.ParentID, req.Content)
	if err != nil {
		return h.mapErr(c, "comment add", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Comment added.", "data": cm})
}

// PATCH /v1/comments/:id
func (h *Controller) Edit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req EditCommentReq
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

	cm, err := h.Svc.Edit(c.Request().Context(), uid, id, req.Content)
	if err != nil {
		return h.mapErr(c, "comment edit", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment updated.", "data": cm})
}

// DELETE /v1/comments/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return h.mapErr(c, "comment delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted."})
}

// GET /v1/books/:id/comments
func (h *Controller) ListByBook(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.ListByBook(c.Request().Context(), bookID)
	if err != nil {
		h.Log.Error("comment list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/comments/:id/vote
func (h *Controller) Vote(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req VoteReq
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

	res, err := h.Svc.Vote(c.Request().Context(), uid, id, model.VoteChoice(req.Vote))
	if err != nil {
		return h.mapErr(c, "comment vote", err)
	}
	msg := "Vote recorded."
	if res.Removed {
		msg = "Vote removed."
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   msg,
		"upvotes":   res.Upvotes,
		"downvotes": res.Downvotes,
	})
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch commentsvc.Code(err) {
	case commentsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "comment not found"})
	case commentsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case commentsvc.ErrNotAuthor:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "This is not your comment"})
	case commentsvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
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
