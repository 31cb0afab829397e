package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/repository"
	"github.com/iliyamo/parking-reservation/internal/utils"
)

// ParkingCost is the price of parking between start and end:
// hours * pricePerHour rounded half away from zero to two places.
func ParkingCost(start, end time.Time, pricePerHour decimal.Decimal) decimal.Decimal {
	d := end.Sub(start)
	if d < 0 {
		d = 0
	}
	hours := decimal.NewFromInt(int64(d)).Div(decimal.NewFromInt(int64(time.Hour)))
	return hours.Mul(pricePerHour).Round(2)
}

// BookResult describes a successful booking.
type BookResult struct {
	Reservation *model.Reservation
	Lot         *model.ParkingLot
	Spot        *model.ParkingSpot
	// Hold is the one hour price the balance was checked against.
	Hold decimal.Decimal
}

// ReleaseResult describes the outcome of a release.  When AlreadyClosed is
// set nothing was changed.
type ReleaseResult struct {
	Reservation   *model.Reservation
	Cost          decimal.Decimal
	DurationHours float64
	Paid          bool
	AlreadyClosed bool
	Balance       decimal.Decimal
}

// BookingService implements the reservation lifecycle.
type BookingService struct {
	base
}

func NewBookingService(d Deps) *BookingService {
	return &BookingService{base: newBase(d)}
}

// Book claims the lowest-id available spot of a lot for the user.
func (s *BookingService) Book(ctx context.Context, userID, lotID uint64) (*BookResult, error) {
	res, err := s.book(ctx, userID, lotID)
	record("book", err)
	if err != nil {
		s.log.WithFields(logrus.Fields{"user_id": userID, "lot_id": lotID}).WithError(err).Debug("booking refused")
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"lot_id":         lotID,
		"spot_id":        res.Spot.ID,
		"reservation_id": res.Reservation.ID,
	}).Info("spot booked")
	s.publish(ctx, queue.Event{
		Type:          queue.EventReservationBooked,
		UserID:        userID,
		LotID:         lotID,
		LotName:       res.Lot.PrimeLocationName,
		SpotID:        res.Spot.ID,
		SpotNumber:    res.Spot.SpotNumber,
		ReservationID: res.Reservation.ID,
		Amount:        res.Hold.StringFixed(2),
	})
	return res, nil
}

func (s *BookingService) book(ctx context.Context, userID, lotID uint64) (*BookResult, error) {
	var res BookResult
	err := s.store.InTx(ctx, func(r Repo) error {
		user, err := r.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		lot, err := r.GetLot(ctx, lotID)
		if err != nil {
			return notFound(err, ErrLotNotFound)
		}
		if _, err := r.GetOpenReservation(ctx, userID); err == nil {
			return ErrActiveReservationExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		pending, err := r.CountPendingPayments(ctx, userID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrOutstandingPayment
		}
		spot, err := r.FindAvailableSpot(ctx, lotID)
		if err != nil {
			return notFound(err, ErrNoAvailableSpot)
		}
		if user.Balance.LessThan(lot.PricePerHour) {
			return ErrInsufficientHoldBalance
		}
		if err := r.TransitionSpot(ctx, spot.ID, model.SpotAvailable, model.SpotOccupied); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrNoAvailableSpot
			}
			return err
		}
		spot.Status = model.SpotOccupied

		resv := &model.Reservation{
			UserID:        userID,
			LotID:         lot.ID,
			SpotID:        spot.ID,
			StartTime:     s.now(),
			Status:        model.ReservationActive,
			VehicleNumber: user.VehicleNumber,
			LotName:       lot.PrimeLocationName,
			SpotNumber:    spot.SpotNumber,
		}
		switch err := r.CreateReservation(ctx, resv); {
		case errors.Is(err, repository.ErrOpenReservationExists):
			return ErrActiveReservationExists
		case errors.Is(err, repository.ErrSpotTaken):
			return ErrNoAvailableSpot
		case err != nil:
			return err
		}
		res = BookResult{Reservation: resv, Lot: lot, Spot: spot, Hold: lot.PricePerHour}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Release closes an open reservation, frees its spot and charges the
// parking cost to the wallet.  When the balance does not cover the cost
// the reservation is left in pending_payment with a pending payment row.
func (s *BookingService) Release(ctx context.Context, userID, reservationID uint64) (*ReleaseResult, error) {
	var (
		res  ReleaseResult
		lot  *model.ParkingLot
		spot string
	)
	err := s.store.InTx(ctx, func(r Repo) error {
		resv, err := r.LockReservation(ctx, reservationID)
		if err != nil {
			return notFound(err, ErrNotFoundOrForbidden)
		}
		if resv.UserID != userID {
			return ErrNotFoundOrForbidden
		}
		res.Reservation = resv
		if !resv.Open() {
			res.AlreadyClosed = true
			return nil
		}
		user, err := r.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		lot, err = r.GetLot(ctx, resv.LotID)
		if err != nil {
			return notFound(err, ErrLotNotFound)
		}

		end := s.now()
		cost := ParkingCost(resv.StartTime, end, lot.PricePerHour)
		resv.EndTime = &end
		resv.Cost = decimal.NullDecimal{Decimal: cost, Valid: true}
		res.Cost = cost
		res.DurationHours = resv.DurationHours(end)
		res.Balance = user.Balance

		if resv.SpotID != 0 {
			sp, err := r.GetSpot(ctx, resv.SpotID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if sp != nil {
				spot = sp.SpotNumber
				if err := r.SetSpotStatus(ctx, sp.ID, model.SpotAvailable); err != nil {
					return err
				}
			}
		}

		payment := &model.Payment{
			UserID:        userID,
			ReservationID: resv.ID,
			Amount:        cost,
			PaymentMethod: model.MethodWallet,
			PaymentDate:   end,
		}
		if user.Balance.GreaterThanOrEqual(cost) {
			resv.Status = model.ReservationCompleted
			payment.Status = model.PaymentCompleted
			payment.CompletedAt = &end
			res.Paid = true
		} else {
			resv.Status = model.ReservationPendingPayment
			payment.Status = model.PaymentPending
		}
		if err := r.CloseReservation(ctx, resv); err != nil {
			return err
		}
		if err := r.CreatePayment(ctx, payment); err != nil {
			return err
		}
		if !res.Paid {
			return nil
		}
		res.Balance, err = s.debit(ctx, r, user, cost, end,
			fmt.Sprintf("Payment for reservation %d at %s", resv.ID, lot.PrimeLocationName))
		return err
	})
	record("release", err)
	if err != nil {
		return nil, err
	}
	if res.AlreadyClosed {
		return &res, nil
	}

	resv := res.Reservation
	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"reservation_id": resv.ID,
		"cost":           res.Cost.StringFixed(2),
		"paid":           res.Paid,
	}).Info("spot released")
	ev := queue.Event{
		Type:          queue.EventReservationReleased,
		UserID:        userID,
		LotID:         resv.LotID,
		LotName:       lot.PrimeLocationName,
		SpotID:        resv.SpotID,
		SpotNumber:    spot,
		ReservationID: resv.ID,
		Amount:        res.Cost.StringFixed(2),
	}
	s.publish(ctx, ev)
	if !res.Paid {
		ev.Type = queue.EventPaymentPending
		s.publish(ctx, ev)
	}
	return &res, nil
}

// SettlePending collects the outstanding payment of a pending_payment
// reservation from the wallet.
func (s *BookingService) SettlePending(ctx context.Context, userID, reservationID uint64) (*ReleaseResult, error) {
	var res ReleaseResult
	err := s.store.InTx(ctx, func(r Repo) error {
		resv, err := r.LockReservation(ctx, reservationID)
		if err != nil {
			return notFound(err, ErrNotFoundOrForbidden)
		}
		if resv.UserID != userID {
			return ErrNotFoundOrForbidden
		}
		if resv.Status != model.ReservationPendingPayment {
			return ErrNotPending
		}
		user, err := r.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		payment, err := r.GetPendingPayment(ctx, resv.ID)
		if err != nil {
			return notFound(err, ErrNotPending)
		}
		if user.Balance.LessThan(payment.Amount) {
			return fmt.Errorf("%w: Insufficient balance for payment (₹%s)! Please add funds immediately to avoid penalties.",
				ErrInsufficientFunds, payment.Amount.StringFixed(2))
		}
		now := s.now()
		if err := r.CompletePayment(ctx, payment.ID, now); err != nil {
			return err
		}
		if err := r.SetReservationStatus(ctx, resv.ID, model.ReservationCompleted); err != nil {
			return err
		}
		desc := fmt.Sprintf("Payment for reservation %d", resv.ID)
		if resv.LotID != 0 {
			if lot, err := r.GetLot(ctx, resv.LotID); err == nil {
				desc += " at " + lot.PrimeLocationName
			}
		}
		res.Balance, err = s.debit(ctx, r, user, payment.Amount, now, desc)
		if err != nil {
			return err
		}
		resv.Status = model.ReservationCompleted
		res.Reservation = resv
		res.Cost = payment.Amount
		res.Paid = true
		if resv.EndTime != nil {
			res.DurationHours = resv.DurationHours(*resv.EndTime)
		}
		return nil
	})
	record("settle_pending", err)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "reservation_id": reservationID}).Info("pending payment settled")
	s.publish(ctx, queue.Event{
		Type:          queue.EventPaymentSettled,
		UserID:        userID,
		LotID:         res.Reservation.LotID,
		ReservationID: reservationID,
		Amount:        res.Cost.StringFixed(2),
	})
	return &res, nil
}

// debit takes amount from a locked user and appends the ledger row.  It
// returns the new balance.
func (s *BookingService) debit(ctx context.Context, r Repo, user *model.User, amount decimal.Decimal, at time.Time, desc string) (decimal.Decimal, error) {
	balance := user.Balance.Sub(amount)
	if err := r.UpdateUserBalance(ctx, user.ID, balance); err != nil {
		return decimal.Zero, err
	}
	err := r.CreateTransaction(ctx, &model.Transaction{
		UserID:        user.ID,
		Amount:        amount,
		Type:          model.TransactionDebit,
		Description:   desc,
		ReferenceID:   utils.NewReferenceID(string(model.TransactionDebit), at),
		PaymentMethod: model.MethodWallet,
		Status:        model.PaymentCompleted,
		CreatedAt:     at,
	})
	if err != nil {
		return decimal.Zero, err
	}
	user.Balance = balance
	return balance, nil
}
