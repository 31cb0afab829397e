package service

import (
	"errors"

	"github.com/iliyamo/parking-reservation/internal/allocator"
)

// ErrInvalidInput is wrapped with a human readable reason for every
// request that fails validation.
var ErrInvalidInput = errors.New("invalid input")

// Not found.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrLotNotFound         = errors.New("Parking lot not found!")
	ErrSpotNotFound        = errors.New("parking spot not found")
	ErrNotFoundOrForbidden = errors.New("Reservation not found or unauthorized!")
)

// Lot layout.
var (
	ErrLimitExceeded = allocator.ErrLimitExceeded
	ErrSpotsInUse    = allocator.ErrSpotsInUse
	ErrInvalidLayout = allocator.ErrInvalidLayout
)

// Booking.
var (
	ErrActiveReservationExists = errors.New("You already have an active reservation! Please release it before booking a new spot.")
	ErrOutstandingPayment      = errors.New("You have an unpaid parking reservation. Please settle it before booking a new spot.")
	ErrNoAvailableSpot         = errors.New("No available spots in this lot!")
	ErrInsufficientHoldBalance = errors.New("Insufficient balance for initial hold. Please add money to your wallet.")
	ErrNotPending              = errors.New("reservation has no outstanding payment")
)

// Wallet.
var (
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrBelowMinimum       = errors.New("amount is below the minimum")
	ErrAboveMaximum       = errors.New("amount is above the maximum")
	ErrMissingMethod      = errors.New("Please select a payment method")
	ErrMissingDestination = errors.New("Please provide bank account details.")
	ErrInvalidAmount      = errors.New("Invalid amount entered")
)

// Accounts.
var (
	ErrPasswordMismatch    = errors.New("Passwords do not match!")
	ErrIncorrectPassword   = errors.New("Incorrect old password.")
	ErrUsernameTaken       = errors.New("Username already taken. Please choose another.")
	ErrEmailTaken          = errors.New("Email already registered. Please use another.")
	ErrInvalidCredentials  = errors.New("Invalid username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
