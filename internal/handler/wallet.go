package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-reservation/internal/service"
)

const walletPage = "/user/wallet"

type addMoneyReq struct {
	Amount        json.Number `json:"amount" form:"amount"`
	PaymentMethod string      `json:"payment_method" form:"payment_method"`
}

type withdrawReq struct {
	Amount      json.Number `json:"amount" form:"amount"`
	BankAccount string      `json:"bank_account" form:"bank_account"`
}

// WalletPage handles GET /user/wallet: balance, ledger and totals.
func (h *UserHandler) WalletPage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Wallet.Summary(ctx, uid)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Balance handles GET /api/wallet/balance.
func (h *UserHandler) Balance(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Wallet.Balance(ctx, uid)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": b})
}

// AddMoney handles POST /add_money.  Amounts between ₹10 and ₹10,000 are
// accepted and a payment method is required.
func (h *UserHandler) AddMoney(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req addMoneyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.ErrInvalidAmount.Error())
	}
	amount, err := service.ParseAmount(req.Amount.String())
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, balance, err := h.Wallet.Credit(ctx, uid, amount, req.PaymentMethod)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK, fmt.Sprintf("₹%s successfully added to your wallet!", amount.StringFixed(2)),
		walletPage, echo.Map{"transaction": tx, "balance": balance})
}

// WithdrawMoney handles POST /withdraw_money.  The amount leaves the
// wallet at once; the bank transfer stays pending.
func (h *UserHandler) WithdrawMoney(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req withdrawReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.ErrInvalidAmount.Error())
	}
	amount, err := service.ParseAmount(req.Amount.String())
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, balance, err := h.Wallet.Withdraw(ctx, uid, amount, req.BankAccount)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return done(c, http.StatusOK, fmt.Sprintf("₹%s withdrawal request submitted successfully!", amount.StringFixed(2)),
		walletPage, echo.Map{"transaction": tx, "balance": balance})
}
