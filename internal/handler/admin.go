package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// AdminHandler serves the administrator dashboard and lot management.
// JWTAuth and RequireRole("admin") run before every method.
type AdminHandler struct {
	Lots    Lots
	Reports Reports
	Log     logrus.FieldLogger
}

func NewAdminHandler(lots Lots, reports Reports, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{Lots: lots, Reports: reports, Log: log}
}

// lotReq is the create/update lot form.  Checkboxes are read with
// checkbox() so HTML forms and JSON bodies behave the same.
type lotReq struct {
	LotID             uint64      `json:"lot_id" form:"lot_id"`
	PrimeLocationName string      `json:"prime_location_name" form:"prime_location_name"`
	Address           string      `json:"address" form:"address"`
	PinCode           string      `json:"pin_code" form:"pin_code"`
	PricePerHour      json.Number `json:"price_per_hour" form:"price_per_hour"`
	LayoutRows        json.Number `json:"layout_rows" form:"layout_rows"`
	LayoutCols        json.Number `json:"layout_cols" form:"layout_cols"`
	MaxParkingLimit   json.Number `json:"max_parking_limit" form:"max_parking_limit"`
	HasSecurity       bool        `json:"has_security" form:"-"`
	HasLighting       bool        `json:"has_lighting" form:"-"`
	IsCovered         bool        `json:"is_covered" form:"-"`
}

const (
	badNumbers = "Invalid input format for numbers!"
	adminHome  = "/admin/dashboard"
)

func (h *AdminHandler) bindLot(c echo.Context) (lotReq, service.LotInput, error) {
	var req lotReq
	if err := c.Bind(&req); err != nil {
		return req, service.LotInput{}, err
	}
	in := service.LotInput{
		PrimeLocationName: req.PrimeLocationName,
		Address:           req.Address,
		PinCode:           req.PinCode,
		HasSecurity:       checkbox(c, "has_security", req.HasSecurity),
		HasLighting:       checkbox(c, "has_lighting", req.HasLighting),
		IsCovered:         checkbox(c, "is_covered", req.IsCovered),
	}
	if raw := strings.TrimSpace(req.PricePerHour.String()); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return req, in, err
		}
		in.PricePerHour = price
	}
	for _, f := range []struct {
		raw json.Number
		dst **int
	}{
		{req.LayoutRows, &in.LayoutRows},
		{req.LayoutCols, &in.LayoutCols},
		{req.MaxParkingLimit, &in.MaxParkingLimit},
	} {
		n, err := optionalInt(f.raw)
		if err != nil {
			return req, in, err
		}
		*f.dst = n
	}
	return req, in, nil
}

// optionalInt returns nil for an omitted field.
func optionalInt(raw json.Number) (*int, error) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Dashboard handles GET /admin/dashboard: every lot with its spot grid and
// occupants, all users, revenue and booking totals.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Reports.AdminDashboard(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Analytics handles GET /admin/analytics.
func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Reports.Analytics(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, a)
}

// CreateLot handles POST /admin/create_lot.  Layout fields default to a
// 4x5 grid with a limit of 100 spots.
func (h *AdminHandler) CreateLot(c echo.Context) error {
	_, in, err := h.bindLot(c)
	if err != nil {
		return badRequest(c, badNumbers)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	lot, err := h.Lots.CreateLot(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusCreated,
		fmt.Sprintf("Parking lot '%s' created successfully with %d spots (Max limit: %d)!",
			lot.PrimeLocationName, lot.MaxSpots, lot.MaxParkingLimit),
		adminHome, echo.Map{"lot": lot})
}

// UpdateLot handles POST /admin/update_lot.  The lot id travels in the
// body as lot_id; omitted layout fields keep their current values.
func (h *AdminHandler) UpdateLot(c echo.Context) error {
	req, in, err := h.bindLot(c)
	if err != nil {
		return badRequest(c, badNumbers)
	}
	if req.LotID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": service.ErrLotNotFound.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	lot, err := h.Lots.UpdateLot(ctx, req.LotID, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK,
		fmt.Sprintf("Parking lot updated successfully! Current: %d spots, Max limit: %d",
			lot.MaxSpots, lot.MaxParkingLimit),
		adminHome, echo.Map{"lot": lot})
}

// DeleteLot handles POST /admin/delete_lot/:lot_id.  Lots with occupied
// spots cannot be deleted.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
	lotID, ok := parseID(c, "lot_id")
	if !ok {
		return badRequest(c, "invalid lot id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Lots.DeleteLot(ctx, lotID); err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK, "Parking lot and its spots deleted successfully!", adminHome, nil)
}

type spotStatusReq struct {
	Status string `json:"status" form:"status"`
}

// SetSpotStatus handles POST /admin/spot/:spot_id/status.  Only A
// (available) and M (maintenance) can be set by hand.
func (h *AdminHandler) SetSpotStatus(c echo.Context) error {
	spotID, ok := parseID(c, "spot_id")
	if !ok {
		return badRequest(c, "invalid spot id")
	}
	var req spotStatusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	status := model.SpotStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	spot, err := h.Lots.SetSpotStatus(ctx, spotID, status)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK, fmt.Sprintf("Spot %s status set to %s", spot.SpotNumber, spot.Status),
		adminHome, echo.Map{"spot": spot})
}

// PublicHandler serves endpoints that need no authentication.
type PublicHandler struct {
	Reports Reports
	Log     logrus.FieldLogger
}

func NewPublicHandler(reports Reports, log logrus.FieldLogger) *PublicHandler {
	return &PublicHandler{Reports: reports, Log: log}
}

// LotLayout handles GET /api/lot/:lot_id/layout: the lot grid with a
// null cell where no spot exists, plus the occupancy rate.
func (h *PublicHandler) LotLayout(c echo.Context) error {
	lotID, ok := parseID(c, "lot_id")
	if !ok {
		return badRequest(c, "invalid lot id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	l, err := h.Reports.Layout(ctx, lotID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"lot_id":         l.LotID,
		"name":           l.Name,
		"rows":           l.Rows,
		"cols":           l.Cols,
		"layout":         l.Grid,
		"occupancy_rate": l.OccupancyRate,
	})
}
