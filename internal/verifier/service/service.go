package verifier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ms-scanning/internal/models"
)

// Verification failure taxonomy. AlreadyUsed is deliberately absent: a used
// ticket is a verdict, not an error.
var (
	ErrInvalidClaim = errors.New("invalid ticket claim")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotFound     = errors.New("reservation not found")
)

type Status string

const (
	StatusAccepted    Status = "accepted"
	StatusAlreadyUsed Status = "already_used"
)

// Result is the terminal verdict for one verification attempt.
type Result struct {
	Status Status
	Info   models.TicketInfo
}

type ReservationDBLayer interface {
	GetReservation(ctx context.Context, reservationID, userID, spectacleID int64) (*models.Reservation, error)
	MarkUsed(ctx context.Context, reservationID int64, usedAt time.Time) (bool, error)
	TodayStats(ctx context.Context, now time.Time) (*models.TodayStats, error)
	GeneralStats(ctx context.Context) (*models.GeneralStats, error)
}

type ScanEventPublisher interface {
	PublishTicketScanned(event models.TicketScannedEvent) error
}

type Service struct {
	DB        ReservationDBLayer
	Publisher ScanEventPublisher

	secret []byte
	now    func() time.Time
}

func NewService(db ReservationDBLayer, secret string) *Service {
	return &Service{
		DB:     db,
		secret: []byte(secret),
		now:    time.Now,
	}
}

// ParseToken validates the token signature and claim shape without touching
// the store. The kiosk uses the same claim struct with an unverified parse.
func (s *Service) ParseToken(token string) (*models.TicketClaims, error) {
	claims := &models.TicketClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ReservationID == 0 || claims.UserID == 0 || claims.SpectacleID == 0 {
		return nil, fmt.Errorf("%w: missing reservation identity", ErrInvalidClaim)
	}
	return claims, nil
}

// VerifyTicket applies the one-directional unused -> used transition for the
// reservation a token points at. The conditional update in MarkUsed is the
// sole duplicate guard: a race loser re-reads and reports already_used with
// the winner's timestamp, never a second accepted.
func (s *Service) VerifyTicket(ctx context.Context, token string) (*Result, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	reservation, err := s.DB.GetReservation(ctx, claims.ReservationID, claims.UserID, claims.SpectacleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: reservation %d", ErrNotFound, claims.ReservationID)
		}
		return nil, fmt.Errorf("reservation lookup failed: %w", err)
	}

	if reservation.Used {
		return s.verdict(StatusAlreadyUsed, reservation), nil
	}

	usedAt := s.now()
	won, err := s.DB.MarkUsed(ctx, reservation.ID, usedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mark reservation %d used: %w", reservation.ID, err)
	}

	if !won {
		// Lost the race against a concurrent scan. Re-read for the
		// actual used_at instead of trusting our local clock.
		reservation, err = s.DB.GetReservation(ctx, claims.ReservationID, claims.UserID, claims.SpectacleID)
		if err != nil {
			return nil, fmt.Errorf("re-read after race loss failed: %w", err)
		}
		return s.verdict(StatusAlreadyUsed, reservation), nil
	}

	reservation.Used = true
	reservation.UsedAt = &usedAt
	return s.verdict(StatusAccepted, reservation), nil
}

func (s *Service) verdict(status Status, reservation *models.Reservation) *Result {
	result := &Result{
		Status: status,
		Info:   models.TicketInfoFromReservation(reservation),
	}
	s.publish(status, reservation)
	return result
}

// publish streams the verdict to Kafka, best effort. A broker hiccup must
// never turn a valid scan into an error at the gate.
func (s *Service) publish(status Status, reservation *models.Reservation) {
	if s.Publisher == nil {
		return
	}
	event := models.TicketScannedEvent{
		EventID:       uuid.NewString(),
		ReservationID: reservation.ID,
		SpectacleID:   reservation.SpectacleID,
		Verdict:       string(status),
		ScannedAt:     s.now(),
	}
	if err := s.Publisher.PublishTicketScanned(event); err != nil {
		fmt.Printf("failed to publish scan event for reservation %d: %v\n", reservation.ID, err)
	}
}

// Stats returns the aggregate scan counters served by /scan-stats.
func (s *Service) Stats(ctx context.Context) (*models.ScanStats, error) {
	today, err := s.DB.TodayStats(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load today stats: %w", err)
	}
	general, err := s.DB.GeneralStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load general stats: %w", err)
	}
	return &models.ScanStats{Today: *today, General: *general}, nil
}
