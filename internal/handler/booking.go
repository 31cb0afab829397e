package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

const userHome = "/user/dashboard"

// Book handles POST /book/:lot_id.  The lowest free spot of the lot is
// claimed for the caller.
func (h *UserHandler) Book(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	lotID, ok := parseID(c, "lot_id")
	if !ok {
		return badRequest(c, "invalid lot id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Bookings.Book(ctx, uid, lotID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusCreated,
		fmt.Sprintf("Spot %s booked successfully at %s! Initial hold of ₹%s applied.",
			res.Spot.SpotNumber, res.Lot.PrimeLocationName, res.Hold.StringFixed(2)),
		userHome, echo.Map{"reservation": res.Reservation, "spot": res.Spot})
}

// Release handles POST /release/:reservation_id.  The spot is freed and
// the cost charged to the wallet.  When the balance is short the
// reservation stays pending_payment with a pending payment to settle
// through /user/pay.  Releasing a closed reservation changes nothing.
func (h *UserHandler) Release(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	resID, ok := parseID(c, "reservation_id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Bookings.Release(ctx, uid, resID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if res.AlreadyClosed {
		return done(c, http.StatusOK, "This reservation was already completed!", userHome,
			echo.Map{"reservation": res.Reservation})
	}
	msg := fmt.Sprintf("Spot released! Duration: %.1fh, Total Cost: ₹%s.", res.DurationHours, res.Cost.StringFixed(2))
	if !res.Paid {
		msg = fmt.Sprintf("Insufficient balance for payment (₹%s)! Please add funds immediately to avoid penalties.",
			res.Cost.StringFixed(2))
	}
	return done(c, http.StatusOK, msg, userHome, echo.Map{
		"reservation": res.Reservation,
		"cost":        res.Cost,
		"paid":        res.Paid,
		"balance":     res.Balance,
	})
}

// Pay handles POST /user/pay/:reservation_id, settling the pending payment
// left by a release the wallet could not cover.
func (h *UserHandler) Pay(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	resID, ok := parseID(c, "reservation_id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Bookings.SettlePending(ctx, uid, resID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK,
		fmt.Sprintf("Payment of ₹%s completed for reservation %d.", res.Cost.StringFixed(2), res.Reservation.ID),
		userHome, echo.Map{"reservation": res.Reservation, "balance": res.Balance})
}
