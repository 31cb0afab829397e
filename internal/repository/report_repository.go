package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// TotalRevenue sums every completed payment.
func (q *Queries) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE payment_status = 'completed'").Scan(&total)
	return total, err
}

// RevenueBetween sums completed payments with completed_at in [from, to).
func (q *Queries) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments
		 WHERE payment_status = 'completed' AND completed_at >= ? AND completed_at < ?`, from, to).Scan(&total)
	return total, err
}

// DailyRevenue groups completed payments since the given time by the UTC
// date of completion, oldest day first.
func (q *Queries) DailyRevenue(ctx context.Context, since time.Time) ([]model.DailyRevenue, error) {
	const qSelect = `SELECT DATE(completed_at) AS day, SUM(amount)
	                 FROM payments
	                 WHERE payment_status = 'completed' AND completed_at >= ?
	                 GROUP BY day
	                 ORDER BY day`
	rows, err := q.db.QueryContext(ctx, qSelect, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DailyRevenue
	for rows.Next() {
		var (
			day time.Time
			rev decimal.Decimal
		)
		if err := rows.Scan(&day, &rev); err != nil {
			return nil, err
		}
		out = append(out, model.DailyRevenue{Date: day.Format(time.DateOnly), Revenue: rev})
	}
	return out, rows.Err()
}

// BookingsByHour counts reservations by the hour of their start time.
// Hours without bookings are absent from the map.
func (q *Queries) BookingsByHour(ctx context.Context) (map[int]int, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT HOUR(start_time) AS h, COUNT(*) FROM reservations GROUP BY h")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]int, 24)
	for rows.Next() {
		var h, n int
		if err := rows.Scan(&h, &n); err != nil {
			return nil, err
		}
		out[h] = n
	}
	return out, rows.Err()
}

// ReservationsStartedBetween counts reservations with start_time in [from, to).
func (q *Queries) ReservationsStartedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE start_time >= ? AND start_time < ?", from, to).Scan(&n)
	return n, err
}

// OccupiedCounts returns the number of occupied spots per lot id.
func (q *Queries) OccupiedCounts(ctx context.Context) (map[uint64]int, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT lot_id, COUNT(*) FROM parking_spots WHERE status = 'O' GROUP BY lot_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uint64]int{}
	for rows.Next() {
		var (
			lotID uint64
			n     int
		)
		if err := rows.Scan(&lotID, &n); err != nil {
			return nil, err
		}
		out[lotID] = n
	}
	return out, rows.Err()
}

// OpenOccupants lists who currently holds each occupied spot of a lot.
func (q *Queries) OpenOccupants(ctx context.Context, lotID uint64) ([]model.Occupant, error) {
	const qSelect = `SELECT r.id, r.spot_id, r.user_id, u.username, r.vehicle_number, u.vehicle_type, r.start_time
	                 FROM reservations r
	                 JOIN users u ON u.id = r.user_id
	                 WHERE r.lot_id = ? AND r.end_time IS NULL AND r.spot_id IS NOT NULL
	                 ORDER BY r.spot_id`
	rows, err := q.db.QueryContext(ctx, qSelect, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Occupant
	for rows.Next() {
		var o model.Occupant
		if err := rows.Scan(&o.ReservationID, &o.SpotID, &o.UserID, &o.Username, &o.VehicleNumber,
			&o.VehicleType, &o.StartTime); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpsertSystemStats writes the rollup row of one day.
func (q *Queries) UpsertSystemStats(ctx context.Context, s *model.SystemStats) error {
	const qUpsert = `INSERT INTO system_stats (stat_date, total_revenue, total_reservations, average_occupancy_rate)
	                 VALUES (?, ?, ?, ?)
	                 ON DUPLICATE KEY UPDATE total_revenue = VALUES(total_revenue),
	                     total_reservations = VALUES(total_reservations),
	                     average_occupancy_rate = VALUES(average_occupancy_rate)`
	_, err := q.db.ExecContext(ctx, qUpsert, s.Date.Format(time.DateOnly), s.TotalRevenue,
		s.TotalReservations, s.AverageOccupancyRate)
	return err
}

// RecentSystemStats returns up to limit rollup rows, newest first.
func (q *Queries) RecentSystemStats(ctx context.Context, limit int) ([]model.SystemStats, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT stat_date, total_revenue, total_reservations, average_occupancy_rate
		 FROM system_stats ORDER BY stat_date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SystemStats
	for rows.Next() {
		var s model.SystemStats
		if err := rows.Scan(&s.Date, &s.TotalRevenue, &s.TotalReservations, &s.AverageOccupancyRate); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
