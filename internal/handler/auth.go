package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// AuthHandler serves login, registration and token endpoints.
type AuthHandler struct {
	Accounts Accounts
	Log      logrus.FieldLogger
}

func NewAuthHandler(a Accounts, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Accounts: a, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	FullName        string `json:"full_name" form:"full_name"`
	Phone           string `json:"phone" form:"phone"`
	VehicleNumber   string `json:"vehicle_number" form:"vehicle_number"`
	VehicleType     string `json:"vehicle_type" form:"vehicle_type"`
}

type loginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Message  string      `json:"message"`
	Redirect string      `json:"redirect"`
	User     *model.User `json:"user"`
	Access   tokenPart   `json:"access"`
	Refresh  tokenPart   `json:"refresh"`
}

func sessionResp(msg string, s *service.Session) authResp {
	return authResp{
		Message:  msg,
		Redirect: dashboardFor(s.User.Role),
		User:     s.User,
		Access:   tokenPart{Token: s.AccessToken, Expires: s.AccessExpires},
		Refresh:  tokenPart{Token: s.RefreshToken, Expires: s.RefreshExpires},
	}
}

// Home handles GET /.  Anonymous callers go to /login, authenticated ones
// to the dashboard of their role.
func (h *AuthHandler) Home(c echo.Context) error {
	if _, ok := middleware.UserID(c); !ok {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Redirect(http.StatusFound, dashboardFor(middleware.Role(c)))
}

// Register handles POST /register.  New accounts always get the user role;
// administrators are created with the create-admin command.
func (h *AuthHandler) Register(c echo.Context) error {
	if _, ok := middleware.UserID(c); ok {
		return done(c, http.StatusOK, "You are already registered and logged in!", dashboardFor(middleware.Role(c)), nil)
	}
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Register(ctx, service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FullName:        req.FullName,
		Phone:           req.Phone,
		VehicleNumber:   req.VehicleNumber,
		VehicleType:     req.VehicleType,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusCreated, "Registration successful! You can now log in.", "/login", echo.Map{"user": u})
}

// Login handles POST /login and returns an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	if _, ok := middleware.UserID(c); ok {
		return done(c, http.StatusOK, "You are already logged in!", dashboardFor(middleware.Role(c)), nil)
	}
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sessionResp(fmt.Sprintf("Welcome back, %s!", sess.User.Username), sess))
}

// Refresh handles POST /refresh.  The presented refresh token is revoked
// and a new pair is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Accounts.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sessionResp("token refreshed", sess))
}

// Logout handles GET /logout by revoking all refresh tokens of the caller.
// Access tokens stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.Logout(ctx, uid); err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK, "You have been logged out.", "/login", nil)
}
