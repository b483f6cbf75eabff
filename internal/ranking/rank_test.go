package ranking

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRankSortsDescending(t *testing.T) {
	dist := map[int]float64{1: 0.1, 2: 0.7, 3: 0.2}

	ranked, err := Rank(dist, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []CandidateScore{{2, 0.7}, {3, 0.2}}
	if len(ranked) != len(want) {
		t.Fatalf("got %d results, want %d", len(ranked), len(want))
	}
	for i := range want {
		if ranked[i] != want[i] {
			t.Errorf("ranked[%d] = %+v, want %+v", i, ranked[i], want[i])
		}
	}
}

func TestRankTieBreakAscendingID(t *testing.T) {
	// Near-uniform distributions produce exactly equal floats; order must
	// still be reproducible.
	dist := map[int]float64{7: 0.25, 3: 0.25, 5: 0.25, 1: 0.25}

	ranked, err := Rank(dist, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []int{1, 3, 5, 7}
	for i, id := range wantIDs {
		if ranked[i].CandidateID != id {
			t.Errorf("ranked[%d].CandidateID = %d, want %d", i, ranked[i].CandidateID, id)
		}
	}
}

func TestRankTruncates(t *testing.T) {
	dist := map[int]float64{1: 0.5, 2: 0.3, 3: 0.2}

	ranked, err := Rank(dist, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Errorf("n larger than universe: got %d results, want 3", len(ranked))
	}
}

func TestRankInvalidInput(t *testing.T) {
	if _, err := Rank(nil, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty distribution: err = %v, want ErrInvalidInput", err)
	}
	if _, err := Rank(map[int]float64{1: 1}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("n = 0: err = %v, want ErrInvalidInput", err)
	}
	if _, err := Rank(map[int]float64{1: 1}, -2); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("n < 0: err = %v, want ErrInvalidInput", err)
	}
}

// Ranking an already ranked result must not change it.
func TestRankIdempotent(t *testing.T) {
	dist := map[int]float64{4: 0.4, 9: 0.1, 2: 0.4, 6: 0.1}

	first, err := Rank(dist, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	redist := make(map[int]float64, len(first))
	for _, cs := range first {
		redist[cs.CandidateID] = cs.Probability
	}
	second, err := Rank(redist, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("re-ranking changed position %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRankDoesNotRound(t *testing.T) {
	// Two probabilities that would collide after 4-decimal rounding must
	// keep their true order.
	dist := map[int]float64{1: 0.123449, 2: 0.123451}

	ranked, err := Rank(dist, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranked[0].CandidateID != 2 {
		t.Errorf("ranked[0].CandidateID = %d, want 2 (rounding leaked into sort)", ranked[0].CandidateID)
	}
}

func TestRoundProbability(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.123456, 0.1235},
		{0.7, 0.7},
		{0.00004, 0},
	}
	for _, c := range cases {
		if got := RoundProbability(c.in); got != c.want {
			t.Errorf("RoundProbability(%g) = %g, want %g", c.in, got, c.want)
		}
	}
}

func TestDefaultRoster(t *testing.T) {
	roster := DefaultRoster()
	if len(roster) != 20 {
		t.Fatalf("roster has %d providers, want 20", len(roster))
	}
	if id, ok := roster.ProviderID(1); !ok || id != "3f8a5c12-8f3e-44a1-bfdc-347c0d0c102d" {
		t.Errorf("ProviderID(1) = %q, %v", id, ok)
	}
	if _, ok := roster.ProviderID(21); ok {
		t.Error("ProviderID(21) should not resolve")
	}
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	content := `{"1": "provider-a", "2": "provider-b"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, _ := roster.ProviderID(2); id != "provider-b" {
		t.Errorf("ProviderID(2) = %q, want provider-b", id)
	}
}

func TestLoadRosterBadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	if err := os.WriteFile(path, []byte(`{"one": "x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRoster(path); err == nil {
		t.Error("non-numeric roster key must fail")
	}
}
