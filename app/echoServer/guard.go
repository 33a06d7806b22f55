package echoServer

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Mehedi-programming/floating-library/app/echoServer/jwtx"
	"github.com/Mehedi-programming/floating-library/model"
	userrepo "github.com/Mehedi-programming/floating-library/repository/user"
)

// LoadPrincipal resolves the JWT subject to a full user row and stores it
// under "principal". Role and activation flags are read from the database on
// every request so deactivation takes effect immediately, not at token
// expiry.
func LoadPrincipal(ur userrepo.Repo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, err := jwtx.UserIDFromContext(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			u, err := ur.ByID(c.Request().Context(), uid)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			c.Set("principal", u)
			c.Set("user_id", u.ID)
			return next(c)
		}
	}
}

func Principal(c echo.Context) *model.User {
	u, _ := c.Get("principal").(*model.User)
	return u
}

// Guards are composable predicate checks over the loaded principal.

func requireGuard(check func(*model.User) bool, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := Principal(c)
			if u == nil || !check(u) {
				return c.JSON(http.StatusForbidden, echo.Map{"message": message})
			}
			return next(c)
		}
	}
}

func RequireActive() echo.MiddlewareFunc {
	return requireGuard(func(u *model.User) bool { return u.IsActive },
		"Your account is inactive. Please wait for admin approval")
}

func RequireAdmin() echo.MiddlewareFunc {
	return requireGuard(func(u *model.User) bool { return u.Role == model.RoleAdmin },
		"Only admin users can perform this action.")
}

func RequireSuperAdmin() echo.MiddlewareFunc {
	return requireGuard(func(u *model.User) bool { return u.IsSuperuser },
		"Only super admin can perform this action.")
}
