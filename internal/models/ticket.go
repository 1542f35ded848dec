package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TicketClaims is the payload carried by the signed token embedded in a
// ticket QR code. The three ids together identify one reservation row.
type TicketClaims struct {
	ReservationID int64 `json:"reservationId"`
	UserID        int64 `json:"userId"`
	SpectacleID   int64 `json:"spectacleId"`
	jwt.RegisteredClaims
}

// TicketInfo holds the display fields returned with every verdict.
type TicketInfo struct {
	ReservationID  int64      `json:"reservationId"`
	SpectacleTitle string     `json:"spectacleTitle"`
	DateSpectacle  time.Time  `json:"dateSpectacle"`
	HeureSpectacle string     `json:"heureSpectacle"`
	Lieu           string     `json:"lieu"`
	Nom            string     `json:"nom"`
	Prenom         string     `json:"prenom"`
	NbPlaces       int        `json:"nbPlaces"`
	UsedAt         *time.Time `json:"usedAt,omitempty"`
}

// TicketInfoFromReservation flattens a reservation and its joined
// spectacle/user rows into the wire DTO.
func TicketInfoFromReservation(r *Reservation) TicketInfo {
	info := TicketInfo{
		ReservationID: r.ID,
		NbPlaces:      r.NbPlaces,
		UsedAt:        r.UsedAt,
	}
	if r.Spectacle != nil {
		info.SpectacleTitle = r.Spectacle.Title
		info.DateSpectacle = r.Spectacle.DateSpectacle
		info.HeureSpectacle = r.Spectacle.HeureSpectacle
		info.Lieu = r.Spectacle.Lieu
	}
	if r.User != nil {
		info.Nom = r.User.Nom
		info.Prenom = r.User.Prenom
	}
	return info
}
