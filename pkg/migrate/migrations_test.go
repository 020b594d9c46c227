package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationDirValidates(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir failed validation: %v", err)
	}
}

func TestObatMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_obat.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS obat",
		"CHECK (stok_awal >= 0)",
		"CHECK (stok_tersedia >= 0)",
		"UNIQUE (kode_obat)",
		"DROP TABLE IF EXISTS obat",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPenggunaanMigrationReferencesObat(t *testing.T) {
	content := readMigration(t, "*_create_penggunaan_obat.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS penggunaan_obat",
		"CHECK (jumlah_dipakai > 0)",
		"FOREIGN KEY (id_obat) REFERENCES obat(id)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
