package catalog

import (
	"testing"

	"modecoach-backend/internal/models"
)

func TestMerge_FetchedWinsOverBuiltin(t *testing.T) {
	builtins := []models.Coach{{ID: "marcus", Description: "builtin"}}
	public := []models.Coach{{ID: "marcus", Description: "updated"}}

	merged := Merge(builtins, public, nil)

	if len(merged) != 1 {
		t.Fatalf("expected 1 coach after merge, got %d", len(merged))
	}
	if merged[0].Description != "updated" {
		t.Fatalf("expected fetched version to win, got %q", merged[0].Description)
	}
}

func TestMerge_MineWinsOverPublic(t *testing.T) {
	public := []models.Coach{{ID: "x", Name: "Public X"}}
	mine := []models.Coach{{ID: "x", Name: "My X"}}

	merged := Merge(nil, public, mine)
	if len(merged) != 1 || merged[0].Name != "My X" {
		t.Fatalf("expected the user's copy to win, got %+v", merged)
	}
}

func TestMerge_PreservesFirstSeenOrder(t *testing.T) {
	builtins := []models.Coach{{ID: "a"}, {ID: "b"}}
	public := []models.Coach{{ID: "c"}, {ID: "a", Name: "A2"}}
	mine := []models.Coach{{ID: "d"}}

	merged := Merge(builtins, public, mine)

	wantOrder := []string{"a", "b", "c", "d"}
	if len(merged) != len(wantOrder) {
		t.Fatalf("expected %d coaches, got %d", len(wantOrder), len(merged))
	}
	for i, id := range wantOrder {
		if merged[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, merged[i].ID)
		}
	}
	if merged[0].Name != "A2" {
		t.Errorf("expected the overridden entry to keep first-seen position with the later value")
	}
}

func TestMerge_StableForEqualInputs(t *testing.T) {
	builtins := Builtins()
	first := Merge(builtins, nil, nil)
	second := Merge(builtins, nil, nil)

	if len(first) != len(second) {
		t.Fatalf("merge is not stable: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("merge order differs at %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}
