package proteo

import "testing"

func TestNewSpaceRejectsBadSiteCount(t *testing.T) {
	for _, r := range []int{0, -1, -10, MaxSites + 1} {
		if _, err := NewSpace(r); err == nil {
			t.Errorf("r=%d: expected error, got nil", r)
		}
	}
}

func TestSpaceCardinality(t *testing.T) {
	for r := 1; r <= 10; r++ {
		s, err := NewSpace(r)
		if err != nil {
			t.Fatalf("r=%d: %v", r, err)
		}
		want := 1 << r
		if s.Size() != want {
			t.Errorf("r=%d: expected %d proteoforms, got %d", r, want, s.Size())
		}

		seen := make(map[string]bool)
		for _, p := range s.Forms() {
			if p.K < 0 || p.K > r {
				t.Errorf("r=%d id=%d: oxidation level %d out of [0,%d]", r, p.ID, p.K, r)
			}
			if seen[p.Label] {
				t.Errorf("r=%d: duplicate label %s", r, p.Label)
			}
			seen[p.Label] = true
		}
	}
}

func TestEnumerationOrder(t *testing.T) {
	s, _ := NewSpace(3)
	for id, p := range s.Forms() {
		if p.ID != id {
			t.Errorf("form at index %d has ID %d", id, p.ID)
		}
	}
	if s.Label(0) != "000" || s.Label(5) != "101" || s.Label(7) != "111" {
		t.Errorf("unexpected labels: %s %s %s", s.Label(0), s.Label(5), s.Label(7))
	}
}

func TestLabelRoundTrip(t *testing.T) {
	for r := 1; r <= 10; r++ {
		s, _ := NewSpace(r)
		for _, p := range s.Forms() {
			id, err := s.ParseLabel(p.Label)
			if err != nil {
				t.Fatalf("r=%d label=%s: %v", r, p.Label, err)
			}
			if id != p.ID {
				t.Errorf("r=%d: label %s parsed to %d, want %d", r, p.Label, id, p.ID)
			}
		}
	}
}

func TestParseLabelRejectsMalformed(t *testing.T) {
	s, _ := NewSpace(3)
	for _, label := range []string{"", "0", "0000", "01x", "2 1"} {
		if _, err := s.ParseLabel(label); err == nil {
			t.Errorf("label %q: expected error, got nil", label)
		}
	}
}

func TestOxidationHelpers(t *testing.T) {
	s, _ := NewSpace(4)
	if s.Oxidation(0) != 0 {
		t.Errorf("expected k=0 for 0000, got %d", s.Oxidation(0))
	}
	if s.Oxidation(15) != 4 {
		t.Errorf("expected k=4 for 1111, got %d", s.Oxidation(15))
	}
	if pct := s.PercentOxidation(5); pct != 50 {
		t.Errorf("expected 50%% for 0101, got %f", pct)
	}
	if got := s.Structure(5); got != "SH-SOH-SH-SOH" {
		t.Errorf("unexpected structure: %s", got)
	}
}
