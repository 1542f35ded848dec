package qrgen_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"ms-scanning/internal/models"
	"ms-scanning/internal/qrgen"
)

func TestSignTokenVerifiableWithSecret(t *testing.T) {
	generator := qrgen.NewGenerator("qrgen-test-secret")

	token, err := generator.SignToken(12, 4, 2, time.Hour)
	assert.NoError(t, err)

	claims := &models.TicketClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("qrgen-test-secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, int64(12), claims.ReservationID)
	assert.Equal(t, int64(4), claims.UserID)
	assert.Equal(t, int64(2), claims.SpectacleID)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestSignTokenRejectedWithWrongSecret(t *testing.T) {
	token, err := qrgen.NewGenerator("qrgen-test-secret").SignToken(12, 4, 2, time.Hour)
	assert.NoError(t, err)

	_, err = jwt.ParseWithClaims(token, &models.TicketClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("some-other-secret"), nil
	})
	assert.Error(t, err)
}

func TestGenerateTicketQRProducesPNG(t *testing.T) {
	png, err := qrgen.NewGenerator("qrgen-test-secret").GenerateTicketQR(12, 4, 2, time.Hour)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG magic bytes")
}
