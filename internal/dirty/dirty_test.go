package dirty

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
		&models.RefChange{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

// seedTwoLists builds two clean lists. Only the first references eq-knife;
// the second is entirely unrelated and must never be marked.
func seedTwoLists(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, v := range []interface{}{
		&models.FighterType{ID: "ft-ganger", Name: "Ganger", BaseCost: 50},
		&models.FighterType{ID: "ft-brute", Name: "Brute", BaseCost: 90},
		&models.Equipment{ID: "eq-knife", Name: "Knife", Cost: 20},
		&models.Equipment{ID: "eq-club", Name: "Club", Cost: 15},
		&models.WeaponProfile{ID: "wp-poison", EquipmentID: "eq-knife", Name: "Poisoned", Cost: 10},
		&models.List{ID: "lst-1", Name: "Sump Rats", Dirty: false},
		&models.List{ID: "lst-2", Name: "Iron Crows", Dirty: false},
		&models.Fighter{ID: "ftr-1", ListID: "lst-1", FighterTypeID: "ft-ganger", Name: "Scrag", Dirty: false},
		&models.Fighter{ID: "ftr-2", ListID: "lst-2", FighterTypeID: "ft-brute", Name: "Krag", Dirty: false},
		&models.Assignment{ID: "asn-1", FighterID: "ftr-1", EquipmentID: "eq-knife", Dirty: false},
		&models.Assignment{ID: "asn-2", FighterID: "ftr-2", EquipmentID: "eq-club", Dirty: false},
		&models.AssignmentProfile{AssignmentID: "asn-1", WeaponProfileID: "wp-poison"},
	} {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("create %T: %v", v, err)
		}
	}
}

func assertDirty(t *testing.T, db *gorm.DB, model interface{}, id string, want bool) {
	t.Helper()
	var dirty bool
	if err := db.Model(model).Where("id = ?", id).Pluck("dirty", &dirty).Error; err != nil {
		t.Fatalf("pluck dirty of %s: %v", id, err)
	}
	if dirty != want {
		t.Errorf("%T %s dirty = %v, want %v", model, id, dirty, want)
	}
}

func TestMark_EquipmentTransitive(t *testing.T) {
	db := openTestDB(t)
	seedTwoLists(t, db)

	marked, err := Mark(db, KindEquipment, "eq-knife")
	if err != nil {
		t.Fatalf("Mark() error: %v", err)
	}
	if marked.Assignments != 1 || marked.Fighters != 1 || marked.Lists != 1 {
		t.Errorf("marked = %+v, want 1/1/1", marked)
	}

	// Exactly the dependent chain — no more, no less.
	assertDirty(t, db, &models.Assignment{}, "asn-1", true)
	assertDirty(t, db, &models.Fighter{}, "ftr-1", true)
	assertDirty(t, db, &models.List{}, "lst-1", true)
	assertDirty(t, db, &models.Assignment{}, "asn-2", false)
	assertDirty(t, db, &models.Fighter{}, "ftr-2", false)
	assertDirty(t, db, &models.List{}, "lst-2", false)
}

func TestMark_WeaponProfile(t *testing.T) {
	db := openTestDB(t)
	seedTwoLists(t, db)

	marked, err := Mark(db, KindWeaponProfile, "wp-poison")
	if err != nil {
		t.Fatalf("Mark() error: %v", err)
	}
	if marked.Assignments != 1 {
		t.Errorf("marked.Assignments = %d, want 1", marked.Assignments)
	}
	assertDirty(t, db, &models.Assignment{}, "asn-1", true)
	assertDirty(t, db, &models.List{}, "lst-1", true)
	assertDirty(t, db, &models.List{}, "lst-2", false)
}

func TestMark_FighterTypeSkipsAssignments(t *testing.T) {
	db := openTestDB(t)
	seedTwoLists(t, db)

	marked, err := Mark(db, KindFighterType, "ft-brute")
	if err != nil {
		t.Fatalf("Mark() error: %v", err)
	}
	if marked.Assignments != 0 {
		t.Errorf("marked.Assignments = %d, want 0 (base cost change)", marked.Assignments)
	}
	assertDirty(t, db, &models.Assignment{}, "asn-2", false)
	assertDirty(t, db, &models.Fighter{}, "ftr-2", true)
	assertDirty(t, db, &models.List{}, "lst-2", true)
	assertDirty(t, db, &models.List{}, "lst-1", false)
}

func TestMark_EquipmentListItem(t *testing.T) {
	db := openTestDB(t)
	seedTwoLists(t, db)

	// Override scoped to ganger + knife: only asn-1 matches.
	marked, err := Mark(db, KindEquipmentListItem, EquipmentListRef("ft-ganger", "eq-knife"))
	if err != nil {
		t.Fatalf("Mark() error: %v", err)
	}
	if marked.Assignments != 1 {
		t.Errorf("marked.Assignments = %d, want 1", marked.Assignments)
	}
	assertDirty(t, db, &models.Assignment{}, "asn-1", true)
	assertDirty(t, db, &models.Assignment{}, "asn-2", false)
}

func TestMark_NoDependents(t *testing.T) {
	db := openTestDB(t)
	seedTwoLists(t, db)

	marked, err := Mark(db, KindEquipment, "eq-unused")
	if err != nil {
		t.Fatalf("Mark() error: %v", err)
	}
	if marked != (Marked{}) {
		t.Errorf("marked = %+v, want zero", marked)
	}
}

func TestMark_UnknownKind(t *testing.T) {
	db := openTestDB(t)
	if _, err := Mark(db, Kind("vehicle"), "v-1"); err == nil {
		t.Error("Mark() with unknown kind succeeded, want error")
	}
}

func TestMark_Idempotent(t *testing.T) {
	db := openTestDB(t)
	seedTwoLists(t, db)

	if _, err := Mark(db, KindEquipment, "eq-knife"); err != nil {
		t.Fatalf("first Mark() error: %v", err)
	}
	if _, err := Mark(db, KindEquipment, "eq-knife"); err != nil {
		t.Fatalf("second Mark() error: %v", err)
	}
	assertDirty(t, db, &models.List{}, "lst-1", true)
}

func TestEnqueue_EqualCostNoOp(t *testing.T) {
	db := openTestDB(t)
	if err := Enqueue(db, KindEquipment, "eq-knife", 20, 20); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	var count int64
	if err := db.Model(&models.RefChange{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("queued %d changes for equal costs, want 0", count)
	}
}

func TestDrain(t *testing.T) {
	db := openTestDB(t)
	seedTwoLists(t, db)

	if err := Enqueue(db, KindEquipment, "eq-knife", 20, 30); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if err := Enqueue(db, KindFighterType, "ft-brute", 90, 100); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	n, err := Drain(db)
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Drain() = %d, want 2", n)
	}

	assertDirty(t, db, &models.List{}, "lst-1", true)
	assertDirty(t, db, &models.List{}, "lst-2", true)

	var pending int64
	if err := db.Model(&models.RefChange{}).Where("processed_at IS NULL").Count(&pending).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 0 {
		t.Errorf("%d changes still pending after drain", pending)
	}

	// A second drain finds nothing.
	n, err = Drain(db)
	if err != nil {
		t.Fatalf("second Drain() error: %v", err)
	}
	if n != 0 {
		t.Errorf("second Drain() = %d, want 0", n)
	}
}
