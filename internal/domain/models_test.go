package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (Exchange{}).TableName() != "exchanges" {
		t.Fatalf("Exchange.TableName() = %q", (Exchange{}).TableName())
	}
	if (GeocodeEntry{}).TableName() != "geocode_entries" {
		t.Fatalf("GeocodeEntry.TableName() = %q", (GeocodeEntry{}).TableName())
	}
}

func TestMigrations_IndexesAndKindCheck(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Exchange{}, &GeocodeEntry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	if !m.HasTable(&Exchange{}) || !m.HasTable(&GeocodeEntry{}) {
		t.Fatalf("expected both tables to exist")
	}
	if !m.HasIndex(&Exchange{}, "idx_user_exchanges") {
		t.Fatalf("expected index idx_user_exchanges on exchanges")
	}

	now := time.Now().UTC()
	ok := &Exchange{ID: "e1", UserID: 7, Kind: ActionJoin, Text: "Ann", Reply: "hi", CreatedAt: now}
	if err := db.Create(ok).Error; err != nil {
		t.Fatalf("insert exchange: %v", err)
	}
	bad := &Exchange{ID: "e2", UserID: 7, Kind: "shout", Text: "x", Reply: "y", CreatedAt: now}
	if err := db.Create(bad).Error; err == nil {
		t.Fatalf("expected check constraint violation for kind=shout")
	}

	g := &GeocodeEntry{Query: "Boston ", Lat: 42.36, Lng: -71.06}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("insert geocode: %v", err)
	}
	var got GeocodeEntry
	if err := db.First(&got, "query = ?", "Boston ").Error; err != nil {
		t.Fatalf("load geocode: %v", err)
	}
	if c := got.Coordinate(); c.Lat != 42.36 || c.Lng != -71.06 {
		t.Fatalf("coordinate = %+v", c)
	}
}
