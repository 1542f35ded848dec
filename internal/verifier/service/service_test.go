package verifier_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"ms-scanning/internal/models"
	"ms-scanning/internal/qrgen"
	verifier "ms-scanning/internal/verifier/service"
)

const testSecret = "test-ticket-secret"

// MockReservationDB is a mock implementation of the ReservationDBLayer interface
type MockReservationDB struct {
	reservations  map[int64]*models.Reservation
	markUsedCalls int
	loseRace      bool
	raceWinnerAt  time.Time
	shouldFailOn  string
	errorToReturn error
}

func NewMockReservationDB() *MockReservationDB {
	return &MockReservationDB{reservations: make(map[int64]*models.Reservation)}
}

func (m *MockReservationDB) GetReservation(ctx context.Context, reservationID, userID, spectacleID int64) (*models.Reservation, error) {
	if m.shouldFailOn == "GetReservation" {
		return nil, m.errorToReturn
	}
	reservation, exists := m.reservations[reservationID]
	if !exists || reservation.UserID != userID || reservation.SpectacleID != spectacleID {
		return nil, sql.ErrNoRows
	}
	return reservation, nil
}

func (m *MockReservationDB) MarkUsed(ctx context.Context, reservationID int64, usedAt time.Time) (bool, error) {
	m.markUsedCalls++
	if m.shouldFailOn == "MarkUsed" {
		return false, m.errorToReturn
	}
	reservation, exists := m.reservations[reservationID]
	if !exists {
		return false, nil
	}
	if m.loseRace {
		// A concurrent scan won the conditional update first.
		reservation.Used = true
		reservation.UsedAt = &m.raceWinnerAt
		return false, nil
	}
	if reservation.Used {
		return false, nil
	}
	reservation.Used = true
	reservation.UsedAt = &usedAt
	return true, nil
}

func (m *MockReservationDB) TodayStats(ctx context.Context, now time.Time) (*models.TodayStats, error) {
	if m.shouldFailOn == "TodayStats" {
		return nil, m.errorToReturn
	}
	return &models.TodayStats{TotalScannedToday: 15, UsedToday: 8, UnusedToday: 7}, nil
}

func (m *MockReservationDB) GeneralStats(ctx context.Context) (*models.GeneralStats, error) {
	if m.shouldFailOn == "GeneralStats" {
		return nil, m.errorToReturn
	}
	return &models.GeneralStats{TotalReservations: 150, TotalUsed: 89, TotalUnused: 61}, nil
}

// recordingPublisher captures scan events instead of writing to Kafka.
type recordingPublisher struct {
	events []models.TicketScannedEvent
}

func (p *recordingPublisher) PublishTicketScanned(event models.TicketScannedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func setupMockDB() *MockReservationDB {
	mockDB := NewMockReservationDB()
	mockDB.reservations[1] = &models.Reservation{
		ID:          1,
		UserID:      1,
		SpectacleID: 1,
		NbPlaces:    2,
		Spectacle: &models.Spectacle{
			ID:             1,
			Title:          "D'ailleurs",
			DateSpectacle:  time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
			HeureSpectacle: "20:30",
			Lieu:           "Espace Comédie",
		},
		User: &models.User{ID: 1, Nom: "Dupont", Prenom: "Marie"},
	}
	return mockDB
}

func signTestToken(t *testing.T, reservationID, userID, spectacleID int64) string {
	t.Helper()
	token, err := qrgen.NewGenerator(testSecret).SignToken(reservationID, userID, spectacleID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return token
}

func TestVerifyTicketAccepted(t *testing.T) {
	mockDB := setupMockDB()
	service := verifier.NewService(mockDB, testSecret)

	result, err := service.VerifyTicket(context.Background(), signTestToken(t, 1, 1, 1))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Status != verifier.StatusAccepted {
		t.Errorf("Expected status %s, got %s", verifier.StatusAccepted, result.Status)
	}
	if result.Info.SpectacleTitle != "D'ailleurs" {
		t.Errorf("Expected spectacle title D'ailleurs, got %s", result.Info.SpectacleTitle)
	}
	if result.Info.UsedAt == nil {
		t.Error("Expected usedAt to be set on acceptance")
	}
	if !mockDB.reservations[1].Used {
		t.Error("Expected reservation to be marked used")
	}
	if mockDB.markUsedCalls != 1 {
		t.Errorf("Expected exactly one MarkUsed call, got %d", mockDB.markUsedCalls)
	}
}

func TestVerifyTicketAlreadyUsed(t *testing.T) {
	mockDB := setupMockDB()
	usedAt := time.Date(2025, 11, 15, 20, 0, 0, 0, time.UTC)
	mockDB.reservations[1].Used = true
	mockDB.reservations[1].UsedAt = &usedAt

	service := verifier.NewService(mockDB, testSecret)

	result, err := service.VerifyTicket(context.Background(), signTestToken(t, 1, 1, 1))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Status != verifier.StatusAlreadyUsed {
		t.Errorf("Expected status %s, got %s", verifier.StatusAlreadyUsed, result.Status)
	}
	if result.Info.UsedAt == nil || !result.Info.UsedAt.Equal(usedAt) {
		t.Errorf("Expected original usedAt %v, got %v", usedAt, result.Info.UsedAt)
	}
	// Replays must never touch the write path.
	if mockDB.markUsedCalls != 0 {
		t.Errorf("Expected no MarkUsed calls for a used ticket, got %d", mockDB.markUsedCalls)
	}
}

func TestVerifyTicketRaceLoss(t *testing.T) {
	mockDB := setupMockDB()
	mockDB.loseRace = true
	mockDB.raceWinnerAt = time.Date(2025, 11, 15, 20, 5, 0, 0, time.UTC)

	service := verifier.NewService(mockDB, testSecret)

	result, err := service.VerifyTicket(context.Background(), signTestToken(t, 1, 1, 1))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Status != verifier.StatusAlreadyUsed {
		t.Errorf("Expected race loser to see %s, got %s", verifier.StatusAlreadyUsed, result.Status)
	}
	if result.Info.UsedAt == nil || !result.Info.UsedAt.Equal(mockDB.raceWinnerAt) {
		t.Errorf("Expected winner's usedAt %v, got %v", mockDB.raceWinnerAt, result.Info.UsedAt)
	}
}

func TestVerifyTicketNotFound(t *testing.T) {
	service := verifier.NewService(setupMockDB(), testSecret)

	_, err := service.VerifyTicket(context.Background(), signTestToken(t, 99, 1, 1))
	if !errors.Is(err, verifier.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestVerifyTicketIdentityMismatch(t *testing.T) {
	service := verifier.NewService(setupMockDB(), testSecret)

	// Valid signature, but the embedded user does not own the reservation.
	_, err := service.VerifyTicket(context.Background(), signTestToken(t, 1, 2, 1))
	if !errors.Is(err, verifier.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for identity mismatch, got %v", err)
	}
}

func TestVerifyTicketTamperedSignature(t *testing.T) {
	service := verifier.NewService(setupMockDB(), testSecret)

	forged, err := qrgen.NewGenerator("some-other-secret").SignToken(1, 1, 1, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign forged token: %v", err)
	}

	_, err = service.VerifyTicket(context.Background(), forged)
	if !errors.Is(err, verifier.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTicketGarbagePayload(t *testing.T) {
	service := verifier.NewService(setupMockDB(), testSecret)

	_, err := service.VerifyTicket(context.Background(), "not-a-token")
	if !errors.Is(err, verifier.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTicketMissingIdentity(t *testing.T) {
	service := verifier.NewService(setupMockDB(), testSecret)

	zeroed, err := qrgen.NewGenerator(testSecret).SignToken(0, 1, 1, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	_, err = service.VerifyTicket(context.Background(), zeroed)
	if !errors.Is(err, verifier.ErrInvalidClaim) {
		t.Errorf("Expected ErrInvalidClaim, got %v", err)
	}
}

func TestVerifyTicketPublishesScanEvent(t *testing.T) {
	mockDB := setupMockDB()
	service := verifier.NewService(mockDB, testSecret)
	publisher := &recordingPublisher{}
	service.Publisher = publisher

	if _, err := service.VerifyTicket(context.Background(), signTestToken(t, 1, 1, 1)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("Expected one scan event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.ReservationID != 1 || event.Verdict != string(verifier.StatusAccepted) {
		t.Errorf("Unexpected scan event: %+v", event)
	}
}

func TestStats(t *testing.T) {
	service := verifier.NewService(setupMockDB(), testSecret)

	stats, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.Today.TotalScannedToday != 15 {
		t.Errorf("Expected 15 scanned today, got %d", stats.Today.TotalScannedToday)
	}
	if stats.General.TotalReservations != 150 {
		t.Errorf("Expected 150 reservations, got %d", stats.General.TotalReservations)
	}
}

func TestStatsStoreFailure(t *testing.T) {
	mockDB := setupMockDB()
	mockDB.shouldFailOn = "TodayStats"
	mockDB.errorToReturn = errors.New("connection lost")
	service := verifier.NewService(mockDB, testSecret)

	if _, err := service.Stats(context.Background()); err == nil {
		t.Error("Expected error when the store fails")
	}
}
