package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"ms-scanning/internal/config"
	"ms-scanning/internal/qrgen"
)

// Generates signed test QR codes for seeded reservations. Tooling only; the
// verification core never issues tickets.
func main() {
	reservationID := flag.Int64("reservation", 1, "reservation id")
	userID := flag.Int64("user", 1, "user id")
	spectacleID := flag.Int64("spectacle", 1, "spectacle id")
	ttl := flag.Duration("ttl", 24*time.Hour, "token validity")
	outDir := flag.String("out", "test-qr-codes", "output directory")
	tokenOnly := flag.Bool("token-only", false, "print the signed token instead of writing a PNG")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.Auth.TicketTokenSecret == "" {
		log.Fatal("TICKET_TOKEN_SECRET not set")
	}

	generator := qrgen.NewGenerator(cfg.Auth.TicketTokenSecret)

	if *tokenOnly {
		token, err := generator.SignToken(*reservationID, *userID, *spectacleID, *ttl)
		if err != nil {
			log.Fatalf("failed to sign token: %v", err)
		}
		fmt.Println(token)
		return
	}

	png, err := generator.GenerateTicketQR(*reservationID, *userID, *spectacleID, *ttl)
	if err != nil {
		log.Fatalf("failed to generate QR code: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	name := filepath.Join(*outDir, fmt.Sprintf("reservation-%d.png", *reservationID))
	if err := os.WriteFile(name, png, 0644); err != nil {
		log.Fatalf("failed to write QR code: %v", err)
	}
	fmt.Printf("✅ QR code généré: %s\n", name)
}
