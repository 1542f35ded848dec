package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-scanning/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetReservation resolves a reservation by the identity carried in a ticket
// claim. The user and spectacle ids are part of the key so a token whose
// embedded ids do not match the row comes back as not found.
func (d *DB) GetReservation(ctx context.Context, reservationID, userID, spectacleID int64) (*models.Reservation, error) {
	var reservation models.Reservation
	err := d.Bun.NewSelect().
		Model(&reservation).
		Relation("Spectacle").
		Relation("User").
		Where("reservation.id = ?", reservationID).
		Where("reservation.user_id = ?", userID).
		Where("reservation.spectacle_id = ?", spectacleID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// MarkUsed flips the used flag with a conditional update. The used = false
// predicate is the only duplicate guard on the write path: of two
// simultaneous attempts, exactly one sees a non-zero row count.
func (d *DB) MarkUsed(ctx context.Context, reservationID int64, usedAt time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Reservation)(nil)).
		Set("used = ?", true).
		Set("used_at = ?", usedAt).
		Where("id = ?", reservationID).
		Where("used = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// TodayStats counts reservations scanned during the day containing now.
func (d *DB) TodayStats(ctx context.Context, now time.Time) (*models.TodayStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var stats models.TodayStats
	err := d.Bun.NewRaw(`
		SELECT
			COUNT(*) AS total_scanned_today,
			COUNT(CASE WHEN used THEN 1 END) AS used_today,
			COUNT(CASE WHEN NOT used THEN 1 END) AS unused_today
		FROM reservation
		WHERE used_at >= ? AND used_at < ?
	`, dayStart, dayEnd).Scan(ctx, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GeneralStats counts the whole reservation table.
func (d *DB) GeneralStats(ctx context.Context) (*models.GeneralStats, error) {
	var stats models.GeneralStats
	err := d.Bun.NewRaw(`
		SELECT
			COUNT(*) AS total_reservations,
			COUNT(CASE WHEN used THEN 1 END) AS total_used,
			COUNT(CASE WHEN NOT used THEN 1 END) AS total_unused
		FROM reservation
	`).Scan(ctx, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
