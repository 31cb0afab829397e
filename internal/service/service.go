// Package service implements the parking workflows: accounts, lot
// administration, booking and release, the wallet ledger and reporting.
// Every mutating operation runs as one transaction through Store.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/metrics"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

// EventPublisher receives events after their transaction committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// Deps are the collaborators shared by every service.  Events, Log and
// Now are optional.
type Deps struct {
	Store  Store
	Events EventPublisher
	Log    logrus.FieldLogger
	Now    func() time.Time
}

type base struct {
	store  Store
	events EventPublisher
	log    logrus.FieldLogger
	now    func() time.Time
}

func newBase(d Deps) base {
	b := base{store: d.Store, events: d.Events, log: d.Log, now: d.Now}
	if b.events == nil {
		b.events = queue.NopPublisher{}
	}
	if b.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		b.log = l
	}
	if b.now == nil {
		b.now = utcNow
	}
	return b
}

// utcNow matches the microsecond precision of the DATETIME(6) columns.
func utcNow() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// publish sends ev and only logs failures.
func (b base) publish(ctx context.Context, ev queue.Event) {
	if ev.OccurredAt == "" {
		ev.OccurredAt = b.now().Format(time.RFC3339)
	}
	if err := b.events.Publish(ctx, ev); err != nil {
		b.log.WithError(err).WithField("event", ev.Type).Warn("publish event failed")
	}
}

// record counts the outcome of a domain operation.
func record(operation string, err error) {
	switch {
	case err == nil:
		metrics.RecordOperation(operation, "ok")
	case isDomainError(err):
		metrics.RecordOperation(operation, "rejected")
	default:
		metrics.RecordOperation(operation, "error")
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrUserNotFound, ErrLotNotFound, ErrSpotNotFound, ErrNotFoundOrForbidden,
		ErrLimitExceeded, ErrSpotsInUse, ErrInvalidLayout,
		ErrActiveReservationExists, ErrOutstandingPayment, ErrNoAvailableSpot, ErrInsufficientHoldBalance, ErrNotPending,
		ErrInsufficientFunds, ErrBelowMinimum, ErrAboveMaximum, ErrMissingMethod, ErrMissingDestination, ErrInvalidAmount,
		ErrPasswordMismatch, ErrIncorrectPassword, ErrUsernameTaken, ErrEmailTaken, ErrInvalidCredentials, ErrInvalidRefreshToken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// notFound replaces repository.ErrNotFound with a domain error.
func notFound(err, domain error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain
	}
	return err
}
