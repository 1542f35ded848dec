package qrgen

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/skip2/go-qrcode"

	"ms-scanning/internal/models"
)

// Generator produces signed ticket tokens and their QR images. Used by the
// fixture tool; the verification core only ever consumes tokens.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

// SignToken issues a signed ticket token for one reservation.
func (g *Generator) SignToken(reservationID, userID, spectacleID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.TicketClaims{
		ReservationID: reservationID,
		UserID:        userID,
		SpectacleID:   spectacleID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// GenerateTicketQR signs a token and renders it as a PNG QR code.
func (g *Generator) GenerateTicketQR(reservationID, userID, spectacleID int64, ttl time.Duration) ([]byte, error) {
	token, err := g.SignToken(reservationID, userID, spectacleID, ttl)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, 256)
}
