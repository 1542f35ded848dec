package kiosk_test

import (
	"testing"
	"time"

	"ms-scanning/internal/kiosk"
	"ms-scanning/internal/qrgen"
)

func TestParseClaimExtractsIdentity(t *testing.T) {
	token := testToken(t, 42, 7, 3)

	claims, err := kiosk.ParseClaim(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.ReservationID != 42 || claims.UserID != 7 || claims.SpectacleID != 3 {
		t.Fatalf("unexpected identity: %+v", claims)
	}
}

func TestParseClaimRejectsNonToken(t *testing.T) {
	for _, payload := range []string{
		"",
		"https://example.com/promo",
		"not.a.jwt",
	} {
		if _, err := kiosk.ParseClaim(payload); err == nil {
			t.Fatalf("expected error for payload %q", payload)
		}
	}
}

func TestParseClaimRejectsMissingIdentity(t *testing.T) {
	token, err := qrgen.NewGenerator("session-test-secret").SignToken(0, 7, 3, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := kiosk.ParseClaim(token); err == nil {
		t.Fatal("expected error for zero reservation id")
	}
}

func TestFingerprintStableAcrossEncodings(t *testing.T) {
	first := testToken(t, 9, 4, 2)
	second, err := qrgen.NewGenerator("other-secret").SignToken(9, 4, 2, 2*time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	a, err := kiosk.ParseClaim(first)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	b, err := kiosk.ParseClaim(second)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if kiosk.Fingerprint(a) != kiosk.Fingerprint(b) {
		t.Fatal("same identity must produce the same fingerprint")
	}
}
