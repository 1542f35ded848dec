package models

import "time"

// TicketScannedEvent is streamed to Kafka after each terminal verdict.
type TicketScannedEvent struct {
	EventID       string    `json:"event_id"`
	ReservationID int64     `json:"reservation_id"`
	SpectacleID   int64     `json:"spectacle_id"`
	Verdict       string    `json:"verdict"`
	ScannedAt     time.Time `json:"scanned_at"`
}
