package db

import (
	"testing"

	"github.com/grimfell/muster/internal/config"
	"github.com/grimfell/muster/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect(config.DatabaseConfig{Driver: "postgres"}); err == nil {
		t.Error("Connect() with unknown driver succeeded")
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		User: "muster", Host: "db.local", Port: 3306, Database: "muster",
	})
	want := "muster@tcp(db.local:3306)/muster?parseTime=true"
	if dsn != want {
		t.Errorf("DSN() = %q, want %q", dsn, want)
	}
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	gdb := openTestDB(t)
	for _, model := range AllModels() {
		if !gdb.Migrator().HasTable(model) {
			t.Errorf("missing table for %T", model)
		}
	}
}

func TestSeedContentUpserts(t *testing.T) {
	gdb := openTestDB(t)

	pack := ContentPack{
		Equipment: []models.Equipment{
			{ID: "eq-knife", Name: "Knife", Category: "melee", Cost: 20},
		},
		WeaponProfiles: []models.WeaponProfile{
			{ID: "wp-poison", EquipmentID: "eq-knife", Name: "Poisoned", Cost: 10},
		},
		FighterTypes: []models.FighterType{
			{ID: "ft-ganger", Name: "Ganger", BaseCost: 50},
		},
		EquipmentLists: []models.EquipmentListItem{
			{FighterTypeID: "ft-ganger", EquipmentID: "eq-knife", Cost: 15},
		},
	}
	if err := SeedContent(gdb, pack); err != nil {
		t.Fatalf("SeedContent() error: %v", err)
	}

	// Re-seeding with changed costs updates in place instead of failing on
	// duplicate keys.
	pack.Equipment[0].Cost = 25
	pack.EquipmentLists[0].Cost = 18
	if err := SeedContent(gdb, pack); err != nil {
		t.Fatalf("re-seed error: %v", err)
	}

	var eq models.Equipment
	if err := gdb.First(&eq, "id = ?", "eq-knife").Error; err != nil {
		t.Fatalf("load equipment: %v", err)
	}
	if eq.Cost != 25 {
		t.Errorf("equipment cost = %d, want 25", eq.Cost)
	}

	var count int64
	if err := gdb.Model(&models.Equipment{}).Count(&count).Error; err != nil {
		t.Fatalf("count equipment: %v", err)
	}
	if count != 1 {
		t.Errorf("equipment rows = %d, want 1", count)
	}

	var eli models.EquipmentListItem
	if err := gdb.Where("fighter_type_id = ? AND equipment_id = ?", "ft-ganger", "eq-knife").
		First(&eli).Error; err != nil {
		t.Fatalf("load equipment list item: %v", err)
	}
	if eli.Cost != 18 {
		t.Errorf("equipment list cost = %d, want 18", eli.Cost)
	}
}
