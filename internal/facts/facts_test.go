package facts

import (
	"testing"

	"github.com/grimfell/muster/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.List{},
		&models.Fighter{},
		&models.Assignment{},
		&models.AssignmentProfile{},
		&models.Equipment{},
		&models.WeaponProfile{},
		&models.FighterType{},
		&models.EquipmentListItem{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

// seedBasic creates a list with one fighter (base cost 50) holding one
// assignment (equipment cost 20), everything dirty until recomputed.
func seedBasic(t *testing.T, db *gorm.DB) (listID, fighterID, assignmentID string) {
	t.Helper()
	mustCreate(t, db, &models.FighterType{ID: "ft-ganger", Name: "Ganger", BaseCost: 50})
	mustCreate(t, db, &models.Equipment{ID: "eq-knife", Name: "Knife", Cost: 20})
	mustCreate(t, db, &models.List{ID: "lst-1", Name: "Sump Rats", Owner: "alice", Dirty: true})
	mustCreate(t, db, &models.Fighter{ID: "ftr-1", ListID: "lst-1", FighterTypeID: "ft-ganger", Name: "Scrag", Dirty: true})
	mustCreate(t, db, &models.Assignment{ID: "asn-1", FighterID: "ftr-1", EquipmentID: "eq-knife", Dirty: true})
	return "lst-1", "ftr-1", "asn-1"
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func TestList_StaleReturnsNil(t *testing.T) {
	db := openTestDB(t)
	listID, _, _ := seedBasic(t, db)

	f, err := List(db, listID)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if f != nil {
		t.Errorf("List() on dirty row = %+v, want nil (stale)", f)
	}
}

func TestListFromDB_FreshList(t *testing.T) {
	db := openTestDB(t)
	listID, _, _ := seedBasic(t, db)

	f, err := ListFromDB(db, listID)
	if err != nil {
		t.Fatalf("ListFromDB() error: %v", err)
	}
	if f.Rating != 70 {
		t.Errorf("rating = %d, want 70 (base 50 + knife 20)", f.Rating)
	}
	if f.Stash != 0 {
		t.Errorf("stash = %d, want 0", f.Stash)
	}

	// Every tier should now read clean.
	for _, check := range []struct {
		name string
		read func() (*Facts, error)
		want int
	}{
		{"assignment", func() (*Facts, error) { return Assignment(db, "asn-1") }, 20},
		{"fighter", func() (*Facts, error) { return Fighter(db, "ftr-1") }, 70},
		{"list", func() (*Facts, error) { return List(db, listID) }, 70},
	} {
		got, err := check.read()
		if err != nil {
			t.Fatalf("%s read error: %v", check.name, err)
		}
		if got == nil {
			t.Fatalf("%s still stale after recompute", check.name)
		}
		if got.Rating != check.want {
			t.Errorf("%s rating = %d, want %d", check.name, got.Rating, check.want)
		}
	}
}

func TestListFromDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	listID, _, _ := seedBasic(t, db)

	first, err := ListFromDB(db, listID)
	if err != nil {
		t.Fatalf("first ListFromDB() error: %v", err)
	}
	second, err := ListFromDB(db, listID)
	if err != nil {
		t.Fatalf("second ListFromDB() error: %v", err)
	}
	if first.Rating != second.Rating || first.Stash != second.Stash {
		t.Errorf("recompute not idempotent: first %+v, second %+v", first, second)
	}

	var l models.List
	if err := db.First(&l, "id = ?", listID).Error; err != nil {
		t.Fatalf("reload list: %v", err)
	}
	if l.Dirty {
		t.Error("list dirty after recompute, want clean")
	}
}

func TestAssignmentCost_Profiles(t *testing.T) {
	db := openTestDB(t)
	_, _, assignmentID := seedBasic(t, db)
	mustCreate(t, db, &models.WeaponProfile{ID: "wp-1", EquipmentID: "eq-knife", Name: "Poisoned", Cost: 10})
	mustCreate(t, db, &models.AssignmentProfile{AssignmentID: assignmentID, WeaponProfileID: "wp-1"})

	f, err := AssignmentFromDB(db, assignmentID)
	if err != nil {
		t.Fatalf("AssignmentFromDB() error: %v", err)
	}
	if f.Rating != 30 {
		t.Errorf("rating = %d, want 30 (knife 20 + profile 10)", f.Rating)
	}
}

func TestAssignmentCost_EquipmentListOverride(t *testing.T) {
	db := openTestDB(t)
	_, _, assignmentID := seedBasic(t, db)
	mustCreate(t, db, &models.EquipmentListItem{FighterTypeID: "ft-ganger", EquipmentID: "eq-knife", Cost: 5})

	f, err := AssignmentFromDB(db, assignmentID)
	if err != nil {
		t.Fatalf("AssignmentFromDB() error: %v", err)
	}
	if f.Rating != 5 {
		t.Errorf("rating = %d, want 5 (equipment list override)", f.Rating)
	}
}

func TestAssignmentCost_OverrideShortCircuits(t *testing.T) {
	db := openTestDB(t)
	_, _, assignmentID := seedBasic(t, db)
	override := 99
	if err := db.Model(&models.Assignment{}).Where("id = ?", assignmentID).
		Update("cost_override", override).Error; err != nil {
		t.Fatalf("set override: %v", err)
	}
	mustCreate(t, db, &models.WeaponProfile{ID: "wp-1", EquipmentID: "eq-knife", Name: "Poisoned", Cost: 10})
	mustCreate(t, db, &models.AssignmentProfile{AssignmentID: assignmentID, WeaponProfileID: "wp-1"})

	f, err := AssignmentFromDB(db, assignmentID)
	if err != nil {
		t.Fatalf("AssignmentFromDB() error: %v", err)
	}
	if f.Rating != 99 {
		t.Errorf("rating = %d, want 99 (override is authoritative)", f.Rating)
	}
}

func TestFighterFromDB_Override(t *testing.T) {
	db := openTestDB(t)
	_, fighterID, _ := seedBasic(t, db)
	override := 200
	if err := db.Model(&models.Fighter{}).Where("id = ?", fighterID).
		Update("cost_override", override).Error; err != nil {
		t.Fatalf("set override: %v", err)
	}

	f, err := FighterFromDB(db, fighterID)
	if err != nil {
		t.Fatalf("FighterFromDB() error: %v", err)
	}
	if f.Rating != 200 {
		t.Errorf("rating = %d, want 200 (override skips summation)", f.Rating)
	}
}

func TestListFromDB_StashRouting(t *testing.T) {
	db := openTestDB(t)
	listID, _, _ := seedBasic(t, db)
	mustCreate(t, db, &models.Fighter{ID: "ftr-stash", ListID: listID, Name: "Stash", IsStash: true, FighterTypeID: "ft-ganger", Dirty: true})

	f, err := ListFromDB(db, listID)
	if err != nil {
		t.Fatalf("ListFromDB() error: %v", err)
	}
	if f.Rating != 70 {
		t.Errorf("rating = %d, want 70 (stash excluded)", f.Rating)
	}
	if f.Stash != 50 {
		t.Errorf("stash = %d, want 50 (stash fighter base cost)", f.Stash)
	}
}

func TestListFromDB_ChildAnchoredToStash(t *testing.T) {
	db := openTestDB(t)
	listID, _, _ := seedBasic(t, db)
	mustCreate(t, db, &models.Fighter{ID: "ftr-stash", ListID: listID, Name: "Stash", IsStash: true, Dirty: true})
	parent := "ftr-stash"
	mustCreate(t, db, &models.Fighter{ID: "ftr-beast", ListID: listID, Name: "Rat", FighterTypeID: "ft-ganger", ParentFighterID: &parent, Dirty: true})

	f, err := ListFromDB(db, listID)
	if err != nil {
		t.Fatalf("ListFromDB() error: %v", err)
	}
	if f.Rating != 70 {
		t.Errorf("rating = %d, want 70", f.Rating)
	}
	if f.Stash != 50 {
		t.Errorf("stash = %d, want 50 (beast routes through stash parent)", f.Stash)
	}
}

func TestFighterFromDB_NegativeOverrideClamps(t *testing.T) {
	db := openTestDB(t)
	_, fighterID, _ := seedBasic(t, db)
	override := -30
	if err := db.Model(&models.Fighter{}).Where("id = ?", fighterID).
		Update("cost_override", override).Error; err != nil {
		t.Fatalf("set override: %v", err)
	}

	f, err := FighterFromDB(db, fighterID)
	if err != nil {
		t.Fatalf("FighterFromDB() error: %v", err)
	}
	if f.Rating != 0 {
		t.Errorf("rating = %d, want 0 (clamped)", f.Rating)
	}
}

func TestList_NotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := List(db, "lst-missing"); err == nil {
		t.Error("List() on missing row succeeded, want error")
	}
	if _, err := ListFromDB(db, "lst-missing"); err == nil {
		t.Error("ListFromDB() on missing row succeeded, want error")
	}
}
