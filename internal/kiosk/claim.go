package kiosk

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"ms-scanning/internal/models"
)

// ParseClaim decodes the claim payload of a scanned token without checking
// the signature. The kiosk never holds the signing secret; it only needs the
// identity fields for session-level duplicate detection. The server remains
// the authority on signature validity.
func ParseClaim(token string) (*models.TicketClaims, error) {
	claims := &models.TicketClaims{}
	_, _, err := new(jwt.Parser).ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.ReservationID == 0 || claims.UserID == 0 || claims.SpectacleID == 0 {
		return nil, errors.New("token is missing reservation identity")
	}
	return claims, nil
}

// Fingerprint is the composite key used for same-session duplicate
// detection. It is distinct from the server's persisted used flag.
func Fingerprint(claims *models.TicketClaims) string {
	return fmt.Sprintf("%d|%d|%d", claims.ReservationID, claims.UserID, claims.SpectacleID)
}
