package facts

import (
	"testing"

	"github.com/grimfell/muster/internal/models"
)

func TestStashRouted(t *testing.T) {
	db := openTestDB(t)
	mustCreate(t, db, &models.List{ID: "lst-1", Name: "Sump Rats", Dirty: false})
	mustCreate(t, db, &models.Fighter{ID: "ftr-stash", ListID: "lst-1", Name: "Stash", IsStash: true})
	stash := "ftr-stash"
	mustCreate(t, db, &models.Fighter{ID: "ftr-beast", ListID: "lst-1", Name: "Rat", ParentFighterID: &stash})
	beast := "ftr-beast"
	mustCreate(t, db, &models.Fighter{ID: "ftr-pup", ListID: "lst-1", Name: "Pup", ParentFighterID: &beast})
	mustCreate(t, db, &models.Fighter{ID: "ftr-plain", ListID: "lst-1", Name: "Ganger"})

	tests := []struct {
		id   string
		want bool
	}{
		{"ftr-stash", true},
		{"ftr-beast", true},
		{"ftr-pup", true}, // two hops up to the stash
		{"ftr-plain", false},
	}
	for _, tt := range tests {
		var f models.Fighter
		if err := db.First(&f, "id = ?", tt.id).Error; err != nil {
			t.Fatalf("load %s: %v", tt.id, err)
		}
		got, err := StashRouted(db, &f)
		if err != nil {
			t.Fatalf("StashRouted(%s) error: %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("StashRouted(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestStashRouted_CycleBounded(t *testing.T) {
	db := openTestDB(t)
	mustCreate(t, db, &models.List{ID: "lst-1", Name: "Sump Rats"})
	b := "ftr-b"
	mustCreate(t, db, &models.Fighter{ID: "ftr-a", ListID: "lst-1", Name: "A", ParentFighterID: &b})
	a := "ftr-a"
	mustCreate(t, db, &models.Fighter{ID: "ftr-b", ListID: "lst-1", Name: "B", ParentFighterID: &a})

	var f models.Fighter
	if err := db.First(&f, "id = ?", "ftr-a").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := StashRouted(db, &f); err == nil {
		t.Error("StashRouted() on cyclic chain succeeded, want depth error")
	}
}
