package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// OccupancyRate is occupied/maxSpots as a percentage in [0, 100].  A lot
// without spots has a rate of 0.
func OccupancyRate(occupied, maxSpots int) float64 {
	if maxSpots <= 0 {
		return 0
	}
	rate := float64(occupied) / float64(maxSpots) * 100
	switch {
	case rate < 0:
		return 0
	case rate > 100:
		return 100
	}
	return rate
}

// SpotCell is one cell of the public lot layout.
type SpotCell struct {
	ID     uint64           `json:"id"`
	Number string           `json:"number"`
	Status model.SpotStatus `json:"status"`
}

// LotLayout is the public grid of a lot.  Empty cells are nil.
type LotLayout struct {
	LotID         uint64        `json:"lot_id"`
	Name          string        `json:"name"`
	Rows          int           `json:"rows"`
	Cols          int           `json:"cols"`
	Grid          [][]*SpotCell `json:"grid"`
	OccupancyRate float64       `json:"occupancy_rate"`
}

// AdminSpot is a grid cell of the admin dashboard.  Occupant fields are set
// for occupied spots only.
type AdminSpot struct {
	model.ParkingSpot
	ReservationID uint64     `json:"reservation_id,omitempty"`
	UserID        uint64     `json:"user_id,omitempty"`
	Username      string     `json:"username,omitempty"`
	VehicleNumber string     `json:"vehicle_number,omitempty"`
	VehicleType   string     `json:"vehicle_type,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	DurationHours float64    `json:"duration_hours,omitempty"`
}

// AdminLot is a lot with its spot grid.
type AdminLot struct {
	Lot           model.ParkingLot `json:"lot"`
	Grid          [][]*AdminSpot   `json:"grid"`
	Available     int              `json:"available"`
	Occupied      int              `json:"occupied"`
	OccupancyRate float64          `json:"occupancy_rate"`
}

// AdminDashboard is the admin landing page.
type AdminDashboard struct {
	Lots          []AdminLot      `json:"lots"`
	Users         []model.User    `json:"users"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalBookings int             `json:"total_bookings"`
}

// HourCount is the number of bookings started in one hour of the day.
type HourCount struct {
	Hour     int `json:"hour"`
	Bookings int `json:"bookings"`
}

// LotOccupancy is a per-lot occupancy snapshot.
type LotOccupancy struct {
	LotID         uint64  `json:"lot_id"`
	Name          string  `json:"name"`
	Occupied      int     `json:"occupied"`
	MaxSpots      int     `json:"max_spots"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// Analytics is the admin analytics page.
type Analytics struct {
	DailyRevenue []model.DailyRevenue `json:"daily_revenue"`
	PeakHours    []HourCount          `json:"peak_hours"`
	Occupancy    []LotOccupancy       `json:"occupancy"`
	RecentStats  []model.SystemStats  `json:"recent_stats"`
}

// UserLot is a lot as listed on the user dashboard.
type UserLot struct {
	model.ParkingLot
	Available int `json:"available"`
}

// UserDashboard is the user landing page.  Totals cover Past only.
type UserDashboard struct {
	User       *model.User         `json:"user"`
	Lots       []UserLot           `json:"lots"`
	Active     []model.Reservation `json:"active_reservations"`
	Past       []model.Reservation `json:"past_reservations"`
	TotalSpent decimal.Decimal     `json:"total_spent"`
	TotalHours float64             `json:"total_hours"`
}

const (
	analyticsWindow  = 30 * 24 * time.Hour
	recentStatsDays  = 14
	pastReservations = 10
)

// ReportService builds dashboards, analytics and layouts.  It only reads.
type ReportService struct {
	base
}

func NewReportService(d Deps) *ReportService {
	return &ReportService{base: newBase(d)}
}

// Layout returns the public grid of a lot.
func (s *ReportService) Layout(ctx context.Context, lotID uint64) (*LotLayout, error) {
	lot, err := s.store.GetLot(ctx, lotID)
	if err != nil {
		return nil, notFound(err, ErrLotNotFound)
	}
	spots, err := s.store.ListSpotsByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	out := &LotLayout{
		LotID: lot.ID,
		Name:  lot.PrimeLocationName,
		Rows:  lot.LayoutRows,
		Cols:  lot.LayoutCols,
		Grid:  make([][]*SpotCell, lot.LayoutRows),
	}
	for r := range out.Grid {
		out.Grid[r] = make([]*SpotCell, lot.LayoutCols)
	}
	occupied := 0
	for _, sp := range spots {
		if sp.Status == model.SpotOccupied {
			occupied++
		}
		if sp.RowPosition < lot.LayoutRows && sp.ColPosition < lot.LayoutCols {
			out.Grid[sp.RowPosition][sp.ColPosition] = &SpotCell{ID: sp.ID, Number: sp.SpotNumber, Status: sp.Status}
		}
	}
	out.OccupancyRate = OccupancyRate(occupied, lot.MaxSpots)
	return out, nil
}

// AdminDashboard returns every lot with its occupants, the regular users and
// the revenue and booking totals.
func (s *ReportService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	lots, err := s.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := &AdminDashboard{Lots: make([]AdminLot, 0, len(lots))}
	for _, lot := range lots {
		al, err := s.adminLot(ctx, lot, now)
		if err != nil {
			return nil, err
		}
		out.Lots = append(out.Lots, al)
	}
	if out.Users, err = s.store.ListUsersByRole(ctx, model.RoleUser); err != nil {
		return nil, err
	}
	if out.Users == nil {
		out.Users = []model.User{}
	}
	if out.TotalRevenue, err = s.store.TotalRevenue(ctx); err != nil {
		return nil, err
	}
	if out.TotalBookings, err = s.store.CountReservations(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReportService) adminLot(ctx context.Context, lot model.ParkingLot, now time.Time) (AdminLot, error) {
	spots, err := s.store.ListSpotsByLot(ctx, lot.ID)
	if err != nil {
		return AdminLot{}, err
	}
	occupants, err := s.store.OpenOccupants(ctx, lot.ID)
	if err != nil {
		return AdminLot{}, err
	}
	bySpot := make(map[uint64]model.Occupant, len(occupants))
	for _, o := range occupants {
		bySpot[o.SpotID] = o
	}

	al := AdminLot{Lot: lot, Grid: make([][]*AdminSpot, lot.LayoutRows)}
	for r := range al.Grid {
		al.Grid[r] = make([]*AdminSpot, lot.LayoutCols)
	}
	for _, sp := range spots {
		cell := &AdminSpot{ParkingSpot: sp}
		switch sp.Status {
		case model.SpotAvailable:
			al.Available++
		case model.SpotOccupied:
			al.Occupied++
			if o, ok := bySpot[sp.ID]; ok {
				start := o.StartTime
				cell.ReservationID = o.ReservationID
				cell.UserID = o.UserID
				cell.Username = o.Username
				cell.VehicleNumber = o.VehicleNumber
				cell.VehicleType = o.VehicleType
				cell.StartTime = &start
				cell.DurationHours = now.Sub(start).Hours()
			}
		}
		if sp.RowPosition < lot.LayoutRows && sp.ColPosition < lot.LayoutCols {
			al.Grid[sp.RowPosition][sp.ColPosition] = cell
		}
	}
	al.OccupancyRate = OccupancyRate(al.Occupied, lot.MaxSpots)
	return al, nil
}

// Analytics returns revenue of the last 30 days, bookings per start hour
// and the current occupancy of each lot.
func (s *ReportService) Analytics(ctx context.Context) (*Analytics, error) {
	since := s.now().Add(-analyticsWindow)
	daily, err := s.store.DailyRevenue(ctx, since)
	if err != nil {
		return nil, err
	}
	byHour, err := s.store.BookingsByHour(ctx)
	if err != nil {
		return nil, err
	}
	lots, err := s.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	occupied, err := s.store.OccupiedCounts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.RecentSystemStats(ctx, recentStatsDays)
	if err != nil {
		return nil, err
	}

	out := &Analytics{
		DailyRevenue: daily,
		PeakHours:    make([]HourCount, 24),
		Occupancy:    make([]LotOccupancy, 0, len(lots)),
		RecentStats:  recent,
	}
	if out.DailyRevenue == nil {
		out.DailyRevenue = []model.DailyRevenue{}
	}
	if out.RecentStats == nil {
		out.RecentStats = []model.SystemStats{}
	}
	for h := range out.PeakHours {
		out.PeakHours[h] = HourCount{Hour: h, Bookings: byHour[h]}
	}
	for _, lot := range lots {
		n := occupied[lot.ID]
		out.Occupancy = append(out.Occupancy, LotOccupancy{
			LotID:         lot.ID,
			Name:          lot.PrimeLocationName,
			Occupied:      n,
			MaxSpots:      lot.MaxSpots,
			OccupancyRate: OccupancyRate(n, lot.MaxSpots),
		})
	}
	return out, nil
}

// UserDashboard returns the lots with free spots counted, the user's open
// reservations and the ten most recent closed ones.
func (s *ReportService) UserDashboard(ctx context.Context, userID uint64) (*UserDashboard, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	lots, err := s.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	resvs, err := s.store.ListReservationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &UserDashboard{
		User:       u,
		Lots:       make([]UserLot, 0, len(lots)),
		Active:     []model.Reservation{},
		Past:       []model.Reservation{},
		TotalSpent: decimal.Zero,
	}
	for _, lot := range lots {
		spots, err := s.store.ListSpotsByLot(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		free := 0
		for _, sp := range spots {
			if sp.Status == model.SpotAvailable {
				free++
			}
		}
		out.Lots = append(out.Lots, UserLot{ParkingLot: lot, Available: free})
	}
	for _, r := range resvs {
		if r.Open() {
			out.Active = append(out.Active, r)
			continue
		}
		if len(out.Past) < pastReservations {
			out.Past = append(out.Past, r)
		}
	}
	for _, r := range out.Past {
		if r.Cost.Valid {
			out.TotalSpent = out.TotalSpent.Add(r.Cost.Decimal)
		}
		out.TotalHours += r.DurationHours(*r.EndTime)
	}
	return out, nil
}
