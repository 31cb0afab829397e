package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/allocator"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// LotInput is the admin form for creating or updating a lot.  Nil layout
// fields fall back to the defaults on create and keep the current value on
// update.
type LotInput struct {
	PrimeLocationName string
	Address           string
	PinCode           string
	PricePerHour      decimal.Decimal
	LayoutRows        *int
	LayoutCols        *int
	MaxParkingLimit   *int
	HasSecurity       bool
	HasLighting       bool
	IsCovered         bool
}

func (in *LotInput) normalize() error {
	in.PrimeLocationName = strings.TrimSpace(in.PrimeLocationName)
	in.Address = strings.TrimSpace(in.Address)
	in.PinCode = strings.TrimSpace(in.PinCode)
	if in.PrimeLocationName == "" || in.Address == "" || in.PinCode == "" {
		return fmt.Errorf("%w: All required fields must be filled!", ErrInvalidInput)
	}
	if !in.PricePerHour.IsPositive() {
		return fmt.Errorf("%w: price per hour must be greater than zero", ErrInvalidInput)
	}
	for _, v := range []*int{in.LayoutRows, in.LayoutCols} {
		if v != nil && *v < 0 {
			return ErrInvalidLayout
		}
	}
	if in.MaxParkingLimit != nil && *in.MaxParkingLimit < 1 {
		return fmt.Errorf("%w: maximum parking limit must be at least 1", ErrInvalidInput)
	}
	return nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// LotService implements lot administration.
type LotService struct {
	base
}

func NewLotService(d Deps) *LotService {
	return &LotService{base: newBase(d)}
}

// CreateLot inserts a lot together with its full grid of Available spots.
func (s *LotService) CreateLot(ctx context.Context, in LotInput) (*model.ParkingLot, error) {
	lot, err := s.createLot(ctx, in)
	record("create_lot", err)
	return lot, err
}

func (s *LotService) createLot(ctx context.Context, in LotInput) (*model.ParkingLot, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	lot := &model.ParkingLot{
		PrimeLocationName: in.PrimeLocationName,
		Address:           in.Address,
		PinCode:           in.PinCode,
		PricePerHour:      in.PricePerHour.Round(2),
		LayoutRows:        intOr(in.LayoutRows, model.DefaultLayoutRows),
		LayoutCols:        intOr(in.LayoutCols, model.DefaultLayoutCols),
		MaxParkingLimit:   intOr(in.MaxParkingLimit, model.DefaultMaxParkingLimit),
		HasSecurity:       in.HasSecurity,
		HasLighting:       in.HasLighting,
		IsCovered:         in.IsCovered,
	}
	lot.MaxSpots = lot.LayoutRows * lot.LayoutCols
	if lot.MaxSpots > lot.MaxParkingLimit {
		return nil, fmt.Errorf("%w: Current layout (%d spots) exceeds maximum parking limit (%d)!",
			ErrLimitExceeded, lot.MaxSpots, lot.MaxParkingLimit)
	}

	err := s.store.InTx(ctx, func(r Repo) error {
		if err := r.CreateLot(ctx, lot); err != nil {
			return err
		}
		spots, err := allocator.InitialSpots(lot.ID, lot.LayoutRows, lot.LayoutCols, lot.MaxParkingLimit)
		if err != nil {
			return err
		}
		return r.CreateSpots(ctx, spots)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"lot_id": lot.ID, "spots": lot.MaxSpots}).Info("parking lot created")
	return lot, nil
}

// UpdateLot replaces the descriptive fields of a lot and resizes its grid.
func (s *LotService) UpdateLot(ctx context.Context, lotID uint64, in LotInput) (*model.ParkingLot, error) {
	lot, err := s.updateLot(ctx, lotID, in)
	record("update_lot", err)
	return lot, err
}

func (s *LotService) updateLot(ctx context.Context, lotID uint64, in LotInput) (*model.ParkingLot, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	var lot *model.ParkingLot
	var plan allocator.Plan
	err := s.store.InTx(ctx, func(r Repo) error {
		var err error
		lot, err = r.LockLot(ctx, lotID)
		if err != nil {
			return notFound(err, ErrLotNotFound)
		}
		rows := intOr(in.LayoutRows, lot.LayoutRows)
		cols := intOr(in.LayoutCols, lot.LayoutCols)
		limit := intOr(in.MaxParkingLimit, lot.MaxParkingLimit)

		existing, err := r.ListSpotsByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		plan, err = allocator.PlanResize(lot.ID, existing, rows, cols, limit)
		switch {
		case errors.Is(err, allocator.ErrLimitExceeded):
			return fmt.Errorf("%w: Cannot set %d spots as it exceeds maximum parking limit (%d)!",
				ErrLimitExceeded, rows*cols, limit)
		case errors.Is(err, allocator.ErrSpotsInUse):
			return fmt.Errorf("%w: Cannot reduce spots while some are occupied!", ErrSpotsInUse)
		case err != nil:
			return err
		}

		if err := r.DeleteSpots(ctx, plan.Remove); err != nil {
			return err
		}
		for _, m := range plan.Move {
			if err := r.MoveSpot(ctx, m.SpotID, m.Row, m.Col, m.Label); err != nil {
				return err
			}
		}
		if err := r.CreateSpots(ctx, plan.Add); err != nil {
			return err
		}

		lot.PrimeLocationName = in.PrimeLocationName
		lot.Address = in.Address
		lot.PinCode = in.PinCode
		lot.PricePerHour = in.PricePerHour.Round(2)
		lot.HasSecurity = in.HasSecurity
		lot.HasLighting = in.HasLighting
		lot.IsCovered = in.IsCovered
		lot.LayoutRows, lot.LayoutCols = rows, cols
		lot.MaxSpots = rows * cols
		lot.MaxParkingLimit = limit
		return r.UpdateLot(ctx, lot)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"lot_id":  lot.ID,
		"removed": len(plan.Remove),
		"moved":   len(plan.Move),
		"added":   len(plan.Add),
	}).Info("parking lot updated")
	return lot, nil
}

// DeleteLot removes a lot and its spots.  A lot with an occupied spot
// cannot be deleted.
func (s *LotService) DeleteLot(ctx context.Context, lotID uint64) error {
	err := s.store.InTx(ctx, func(r Repo) error {
		if _, err := r.LockLot(ctx, lotID); err != nil {
			return notFound(err, ErrLotNotFound)
		}
		spots, err := r.ListSpotsByLot(ctx, lotID)
		if err != nil {
			return err
		}
		for _, sp := range spots {
			if sp.Status == model.SpotOccupied {
				return fmt.Errorf("%w: Cannot delete a lot with occupied spots!", ErrSpotsInUse)
			}
		}
		return notFound(r.DeleteLot(ctx, lotID), ErrLotNotFound)
	})
	record("delete_lot", err)
	if err == nil {
		s.log.WithField("lot_id", lotID).Info("parking lot deleted")
	}
	return err
}

// SetSpotStatus puts a spot into or out of maintenance.  Occupied spots
// are changed only by booking and release.
func (s *LotService) SetSpotStatus(ctx context.Context, spotID uint64, status model.SpotStatus) (*model.ParkingSpot, error) {
	if status != model.SpotAvailable && status != model.SpotMaintenance {
		return nil, fmt.Errorf("%w: status must be A or M", ErrInvalidInput)
	}
	var spot *model.ParkingSpot
	err := s.store.InTx(ctx, func(r Repo) error {
		var err error
		spot, err = r.LockSpot(ctx, spotID)
		if err != nil {
			return notFound(err, ErrSpotNotFound)
		}
		if spot.Status == model.SpotOccupied {
			return fmt.Errorf("%w: spot %s is occupied", ErrSpotsInUse, spot.SpotNumber)
		}
		if err := r.SetSpotStatus(ctx, spot.ID, status); err != nil {
			return err
		}
		spot.Status = status
		return nil
	})
	record("set_spot_status", err)
	if err != nil {
		return nil, err
	}
	return spot, nil
}
