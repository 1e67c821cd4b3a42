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

func TestOrdersMigrationCoversSettlementColumns(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var combined strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		combined.Write(b)
	}
	sql := combined.String()

	for _, required := range []string{
		"order_number bigint NOT NULL UNIQUE",
		"products jsonb NOT NULL",
		"payment_status text NOT NULL DEFAULT 'pending'",
		"wallet_balance numeric(18,2) NOT NULL DEFAULT 0",
		"idx_wallet_entries_order_type",
		"invoice_number text NOT NULL UNIQUE",
	} {
		if !strings.Contains(sql, required) {
			t.Fatalf("migrations missing %q", required)
		}
	}
}
