package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// requestTimeout bounds every database round trip started by a handler.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID returns the authenticated user id or an error if JWTAuth did
// not run.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errors.New("no user in context")
	}
	return id, nil
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// isForm reports whether the request body is an HTML form post.
func isForm(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm)
}

// checkbox reads an HTML checkbox: present means true.  JSON bodies carry
// a plain boolean instead.
func checkbox(c echo.Context, name string, jsonValue bool) bool {
	if !isForm(c) {
		return jsonValue
	}
	params, err := c.FormParams()
	if err != nil {
		return false
	}
	_, ok := params[name]
	return ok
}

type statusRule struct {
	status  int
	targets []error
}

// statusRules maps domain errors to HTTP statuses; the first match wins.
var statusRules = []statusRule{
	{http.StatusBadRequest, []error{
		service.ErrInvalidInput, service.ErrInvalidLayout, service.ErrBelowMinimum, service.ErrAboveMaximum,
		service.ErrMissingMethod, service.ErrMissingDestination, service.ErrInvalidAmount,
		service.ErrPasswordMismatch, service.ErrIncorrectPassword,
	}},
	{http.StatusUnauthorized, []error{service.ErrInvalidCredentials, service.ErrInvalidRefreshToken}},
	{http.StatusForbidden, []error{service.ErrNotFoundOrForbidden}},
	{http.StatusNotFound, []error{service.ErrUserNotFound, service.ErrLotNotFound, service.ErrSpotNotFound}},
	{http.StatusPaymentRequired, []error{service.ErrInsufficientFunds, service.ErrInsufficientHoldBalance}},
	{http.StatusConflict, []error{
		service.ErrLimitExceeded, service.ErrSpotsInUse, service.ErrActiveReservationExists,
		service.ErrOutstandingPayment, service.ErrNoAvailableSpot, service.ErrNotPending,
		service.ErrUsernameTaken, service.ErrEmailTaken,
	}},
}

// classify returns the HTTP status for err and the message safe to show
// to the client.  Unknown errors are 500 with a generic message.
func classify(err error) (int, string) {
	for _, rule := range statusRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return rule.status, userMessage(err, target)
			}
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// userMessage strips the sentinel prefix of errors wrapped as
// "sentinel: message".
func userMessage(err, target error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, target.Error()+": "); ok {
		return rest
	}
	if strings.HasSuffix(msg, ": "+target.Error()) {
		return target.Error()
	}
	return msg
}

// fail writes the JSON error for err.  Unexpected errors are logged with
// the request-scoped logger.
func fail(c echo.Context, log logrus.FieldLogger, err error) error {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		middleware.Logger(c, log).WithError(err).Error("request failed")
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// done answers a successful mutation with its message, the page a browser
// front-end would show next and any extra fields.
func done(c echo.Context, status int, msg, redirect string, data echo.Map) error {
	out := echo.Map{"message": msg, "redirect": redirect}
	for k, v := range data {
		out[k] = v
	}
	return c.JSON(status, out)
}

// dashboardFor is the landing page of a role.
func dashboardFor(role string) string {
	if role == model.RoleAdmin {
		return "/admin/dashboard"
	}
	return "/user/dashboard"
}
