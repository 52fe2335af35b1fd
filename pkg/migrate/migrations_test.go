package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestInitMigrationCoversEscrowTables(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	var initSQL string
	for _, e := range entries {
		if strings.Contains(e.Name(), "init_booking_escrow") {
			b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
			if err != nil {
				t.Fatalf("read init migration: %v", err)
			}
			initSQL = string(b)
		}
	}
	if initSQL == "" {
		t.Fatal("init_booking_escrow migration not found")
	}

	for _, table := range []string{
		"bookings", "quotations", "wallets",
		"payment_transactions", "wallet_transactions",
		"booking_time_slots", "booking_trackers", "settings",
	} {
		if !strings.Contains(initSQL, "CREATE TABLE "+table) {
			t.Fatalf("init migration missing table %s", table)
		}
	}

	if !strings.Contains(initSQL, "CHECK (balance >= 0)") {
		t.Fatal("wallets table must enforce non-negative balance")
	}
}
