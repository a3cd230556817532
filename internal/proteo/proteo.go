package proteo

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxSites caps the state-space size at 2^MaxSites entries.
const MaxSites = 20

// Proteoform is one oxidation state of an r-site protein. The ID is the
// integer value of the bit pattern and doubles as the arena index.
type Proteoform struct {
	ID    int
	Label string
	K     int
}

// Space is the immutable set of all 2^r proteoforms, enumerated in
// increasing integer order.
type Space struct {
	r     int
	forms []Proteoform
}

func NewSpace(r int) (*Space, error) {
	if r <= 0 {
		return nil, fmt.Errorf("proteo: site count must be positive, got %d", r)
	}
	if r > MaxSites {
		return nil, fmt.Errorf("proteo: site count %d exceeds maximum %d", r, MaxSites)
	}

	n := 1 << r
	s := &Space{
		r:     r,
		forms: make([]Proteoform, n),
	}
	for id := 0; id < n; id++ {
		s.forms[id] = Proteoform{
			ID:    id,
			Label: fmt.Sprintf("%0*b", r, id),
			K:     bits.OnesCount(uint(id)),
		}
	}
	return s, nil
}

func (s *Space) Sites() int { return s.r }

func (s *Space) Size() int { return len(s.forms) }

func (s *Space) Forms() []Proteoform { return s.forms }

// Oxidation returns k, the number of oxidized sites of proteoform id.
func (s *Space) Oxidation(id int) int { return s.forms[id].K }

func (s *Space) Label(id int) string { return s.forms[id].Label }

// PercentOxidation is k/r expressed as a percentage.
func (s *Space) PercentOxidation(id int) float64 {
	return 100 * float64(s.forms[id].K) / float64(s.r)
}

// Structure renders a proteoform as per-site residue states,
// e.g. "SH-SOH-SH" for "010".
func (s *Space) Structure(id int) string {
	label := s.forms[id].Label
	parts := make([]string, len(label))
	for i, c := range label {
		if c == '1' {
			parts[i] = "SOH"
		} else {
			parts[i] = "SH"
		}
	}
	return strings.Join(parts, "-")
}

// ParseLabel converts a bit-string label back to its proteoform ID.
func (s *Space) ParseLabel(label string) (int, error) {
	if len(label) != s.r {
		return 0, fmt.Errorf("proteo: label %q has %d sites, space has %d", label, len(label), s.r)
	}
	id := 0
	for _, c := range label {
		switch c {
		case '0':
			id <<= 1
		case '1':
			id = id<<1 | 1
		default:
			return 0, fmt.Errorf("proteo: label %q contains non-binary character %q", label, c)
		}
	}
	return id, nil
}

func (s *Space) Contains(id int) bool {
	return id >= 0 && id < len(s.forms)
}
