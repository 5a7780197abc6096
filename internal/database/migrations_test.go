package database

import (
	"testing"

	"github.com/lib/pq"
)

func TestMigrationConnectionUsesLibPQ(t *testing.T) {
	sqlDB, err := openMigrationDB("host=localhost port=5432 user=postgres dbname=findhome sslmode=disable")
	if err != nil {
		t.Fatalf("openMigrationDB failed: %v", err)
	}
	defer sqlDB.Close()

	if _, ok := sqlDB.Driver().(*pq.Driver); !ok {
		t.Errorf("expected *pq.Driver, got %T", sqlDB.Driver())
	}
}
