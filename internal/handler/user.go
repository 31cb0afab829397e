package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/service"
)

// UserHandler serves the end-user dashboard, profile, wallet and booking
// endpoints.  JWTAuth and RequireRole("user") run before every method.
type UserHandler struct {
	Accounts Accounts
	Bookings Bookings
	Wallet   Wallet
	Reports  Reports
	Log      logrus.FieldLogger
}

func NewUserHandler(a Accounts, b Bookings, w Wallet, r Reports, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{Accounts: a, Bookings: b, Wallet: w, Reports: r, Log: log}
}

// Dashboard handles GET /user/dashboard: lots with free spot counts, the
// caller's active and recent reservations, total spent and hours parked.
func (h *UserHandler) Dashboard(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Reports.UserDashboard(ctx, uid)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Profile handles GET /user/profile (and GET /user/edit_profile).
func (h *UserHandler) Profile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Profile(ctx, uid)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

type profileReq struct {
	Username      string `json:"username" form:"username"`
	Email         string `json:"email" form:"email"`
	FullName      string `json:"full_name" form:"full_name"`
	Phone         string `json:"phone" form:"phone"`
	VehicleNumber string `json:"vehicle_number" form:"vehicle_number"`
	VehicleType   string `json:"vehicle_type" form:"vehicle_type"`
}

// EditProfile handles POST /user/edit_profile.  An empty username or email
// keeps the current value.
func (h *UserHandler) EditProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.EditProfile(ctx, uid, service.ProfileInput{
		Username:      req.Username,
		Email:         req.Email,
		FullName:      req.FullName,
		Phone:         req.Phone,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK, "Profile updated successfully!", "/user/profile", echo.Map{"user": u})
}

type passwordReq struct {
	OldPassword        string `json:"old_password" form:"old_password"`
	NewPassword        string `json:"new_password" form:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password" form:"confirm_new_password"`
}

// PasswordForm handles GET /user/change_password by describing the
// expected fields.
func (h *UserHandler) PasswordForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"fields": []string{"old_password", "new_password", "confirm_new_password"},
	})
}

// ChangePassword handles POST /user/change_password.  All sessions of the
// user are signed out on success.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	err = h.Accounts.ChangePassword(ctx, uid, req.OldPassword, req.NewPassword, req.ConfirmNewPassword)
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		return badRequest(c, "New passwords do not match.")
	case err != nil:
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK, "Password changed successfully!", "/user/profile", nil)
}
