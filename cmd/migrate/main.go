package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"ms-scanning/internal/config"
	"ms-scanning/internal/models"
)

// Drops and recreates the reservation schema, then seeds a couple of shows
// and unused reservations so freshly generated QR fixtures verify.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sqldb, err := sql.Open("mysql", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to open MySQL: %v", err)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, mysqldialect.New())
	ctx := context.Background()

	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Spectacle)(nil),
		(*models.Reservation)(nil),
	} {
		if err := db.ResetModel(ctx, model); err != nil {
			log.Fatalf("failed to reset model %T: %v", model, err)
		}
	}
	log.Println("✅ Schema created")

	users := []models.User{
		{ID: 1, Nom: "Dupont", Prenom: "Marie", Email: "marie.dupont@example.com"},
		{ID: 2, Nom: "Martin", Prenom: "Luc", Email: "luc.martin@example.com"},
	}
	spectacles := []models.Spectacle{
		{ID: 1, Title: "D'ailleurs", DateSpectacle: time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC), HeureSpectacle: "20:30", Lieu: "Espace Comédie"},
		{ID: 2, Title: "L'autre, c'est moi", DateSpectacle: time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC), HeureSpectacle: "19:00", Lieu: "Espace Comédie"},
	}
	reservations := []models.Reservation{
		{ID: 1, UserID: 1, SpectacleID: 1, NbPlaces: 2, Date: time.Now()},
		{ID: 2, UserID: 1, SpectacleID: 2, NbPlaces: 1, Date: time.Now()},
		{ID: 3, UserID: 2, SpectacleID: 1, NbPlaces: 4, Date: time.Now()},
	}

	if _, err := db.NewInsert().Model(&users).Exec(ctx); err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
	if _, err := db.NewInsert().Model(&spectacles).Exec(ctx); err != nil {
		log.Fatalf("failed to seed spectacles: %v", err)
	}
	if _, err := db.NewInsert().Model(&reservations).Exec(ctx); err != nil {
		log.Fatalf("failed to seed reservations: %v", err)
	}

	log.Println("✅ Seed data inserted")
}
