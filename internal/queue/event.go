// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumer that move them.
package queue

// EventsQueue is the durable queue all parking events are published to.
const EventsQueue = "parking.events"

// Event types.
const (
	EventReservationBooked   = "reservation.booked"
	EventReservationReleased = "reservation.released"
	EventPaymentPending      = "reservation.payment_pending"
	EventPaymentSettled      = "reservation.payment_settled"
	EventWalletCredited      = "wallet.credited"
	EventWithdrawalRequested = "wallet.withdrawal_requested"
)

// Event is published after a reservation or wallet change has been
// committed.  It carries enough information for downstream consumers to
// log or notify without querying the primary database.  Amount is a
// decimal string with two places.
type Event struct {
	Type          string `json:"type"`
	UserID        uint64 `json:"user_id"`
	LotID         uint64 `json:"lot_id,omitempty"`
	LotName       string `json:"lot_name,omitempty"`
	SpotID        uint64 `json:"spot_id,omitempty"`
	SpotNumber    string `json:"spot_number,omitempty"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	Amount        string `json:"amount,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	OccurredAt    string `json:"occurred_at"` // RFC3339
}
