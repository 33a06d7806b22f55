// app/echoServer/controller/auth/authController.go
package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Mehedi-programming/floating-library/model"
	authsvc "github.com/Mehedi-programming/floating-library/service/auth"
	passwordsvc "github.com/Mehedi-programming/floating-library/service/password"
)

type Controller struct {
	Svc authsvc.Service
	Pwd passwordsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// SignUp registers a new user
// @Summary      Sign up
// @Description  Register a new account; it stays inactive until an admin approves it
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.SignUpReq  true  "Sign up payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Router       /v1/users/signup [post]
func (ct *Controller) SignUp(c echo.Context) error {
	var req model.SignUpReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, err := ct.Svc.SignUp(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			ct.logErr(c, "signup failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "signup failed")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User successfully registered.",
		"user":    u,
	})
}

// SignIn
// @Summary      Sign in
// @Description  Login with email + password, returns JWT
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.SignInReq  true  "Sign in payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any "account not active"
// @Router       /v1/users/signin [post]
func (ct *Controller) SignIn(c echo.Context) error {
	var req model.SignInReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, token, err := ct.Svc.SignIn(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds:
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		case authsvc.ErrInactive:
			return echo.NewHTTPError(http.StatusForbidden,
				"Your account is not active. Please verify your email or wait for admin approval.")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			ct.logErr(c, "signin failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "signin failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access": token,
		"user":   u,
	})
}

// PATCH /v1/users/me
func (ct *Controller) EditProfile(c echo.Context) error {
	var req model.UpdateProfileReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	uid, _ := c.Get("user_id").(int64)

	if err := ct.Svc.EditProfile(c.Request().Context(), uid, req); err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		case authsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		default:
			ct.logErr(c, "edit profile failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully."})
}

// POST /v1/users/change-password
func (ct *Controller) ChangePassword(c echo.Context) error {
	var req model.ChangePasswordReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}
	uid, _ := c.Get("user_id").(int64)

	if err := ct.Svc.ChangePassword(c.Request().Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrWrongPassword:
			return echo.NewHTTPError(http.StatusBadRequest, "Old password is incorrect.")
		case authsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		default:
			ct.logErr(c, "change password failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Password changed successfully. Please login again.",
	})
}

// POST /v1/users/forgot-password
func (ct *Controller) ForgotPassword(c echo.Context) error {
	var req model.ForgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	if err := ct.Pwd.RequestReset(c.Request().Context(), req.Email); err != nil {
		switch passwordsvc.Code(err) {
		case passwordsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "no account with that email")
		default:
			ct.logErr(c, "forgot password failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "request failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent successfully."})
}

// POST /v1/users/verify-otp
func (ct *Controller) VerifyOtp(c echo.Context) error {
	var req model.VerifyOtpReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	if err := ct.Pwd.Verify(c.Request().Context(), req.Email, req.Otp); err != nil {
		switch passwordsvc.Code(err) {
		case passwordsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "User or OTP doesn't exist.")
		case passwordsvc.ErrExpired:
			return echo.NewHTTPError(http.StatusBadRequest, "OTP expired.")
		case passwordsvc.ErrInvalid:
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid OTP.")
		default:
			ct.logErr(c, "verify otp failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "verify failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Your OTP is valid."})
}

// POST /v1/users/reset-password
func (ct *Controller) ResetPassword(c echo.Context) error {
	var req model.ResetPasswordReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	if err := ct.Pwd.Reset(c.Request().Context(), req.Email, req.Otp, req.Password); err != nil {
		switch passwordsvc.Code(err) {
		case passwordsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "User or OTP doesn't exist.")
		case passwordsvc.ErrExpired:
			return echo.NewHTTPError(http.StatusBadRequest, "OTP expired.")
		case passwordsvc.ErrInvalid:
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid OTP.")
		default:
			ct.logErr(c, "reset password failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "reset failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully."})
}

func (ct *Controller) logErr(c echo.Context, msg string, err error) {
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	ct.Log.Error(msg,
		"err", err,
		"req_id", rid,
		"path", c.Path(),
		"method", c.Request().Method,
	)
}
