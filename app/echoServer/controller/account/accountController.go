package account

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	accountsvc "github.com/Mehedi-programming/floating-library/service/account"
)

type Controller struct {
	Svc accountsvc.Service
	Log *slog.Logger
}

// GET /v1/users/me
func (h *Controller) Me(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	u, err := h.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("me", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}

// PATCH /v1/admin/users/:id/promote  (superadmin)
func (h *Controller) PromoteAdmin(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.PromoteAdmin(c.Request().Context(), id); err != nil {
		return h.mapErr(c, "promote", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User promoted to admin."})
}

// POST /v1/admin/users/:id/activate  (admin)
func (h *Controller) Activate(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Activate(c.Request().Context(), id); err != nil {
		return h.mapErr(c, "activate", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User account activated."})
}

// PATCH /v1/admin/users/:id/deactivate  (admin)
func (h *Controller) Deactivate(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Deactivate(c.Request().Context(), id); err != nil {
		return h.mapErr(c, "deactivate", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "This users account has been deactivated."})
}

// GET /v1/admin/users?status=active|inactive  (superadmin)
func (h *Controller) ListUsers(c echo.Context) error {
	f := accountsvc.FilterAll
	switch c.QueryParam("status") {
	case "active":
		f = accountsvc.FilterActive
	case "inactive":
		f = accountsvc.FilterInactive
	}
	users, err := h.Svc.ListUsers(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("list users", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": users})
}

// GET /v1/admin/dashboard  (superadmin)
func (h *Controller) Dashboard(c echo.Context) error {
	stats, err := h.Svc.DashboardStats(c.Request().Context())
	if err != nil {
		h.Log.Error("dashboard", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	if accountsvc.Code(err) == accountsvc.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}
	h.Log.Error(op, "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

func userID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
