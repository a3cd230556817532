package topology

import (
	"github.com/aruna-lab/redoxsim/internal/proteo"
)

// Topology holds the legal-transition structure of a proteoform space:
// for every state, the single-site neighbors whose oxidation level moves
// by exactly one. Derived once per run and immutable afterwards; barred
// sets are computed on demand from the allowed sets.
type Topology struct {
	space     *proteo.Space
	selfLoops bool
	allowed   [][]int
	kMinus    []int
	kPlus     []int
}

// New resolves the full transition topology of space. When selfLoops is
// set, each state's own ID is appended to its allowed targets; the
// identity transition never counts toward the K⁻/K⁺ degrees.
func New(space *proteo.Space, selfLoops bool) *Topology {
	n := space.Size()
	r := space.Sites()

	t := &Topology{
		space:     space,
		selfLoops: selfLoops,
		allowed:   make([][]int, n),
		kMinus:    make([]int, n),
		kPlus:     make([]int, n),
	}

	for id := 0; id < n; id++ {
		k := space.Oxidation(id)
		allowed := make([]int, 0, r+1)

		for site := 0; site < r; site++ {
			neighbor := id ^ (1 << site)
			dk := space.Oxidation(neighbor) - k
			// Single-bit flips always shift k by one; the check is the
			// gate that would reject any future multi-bit candidate.
			if dk != 1 && dk != -1 {
				continue
			}
			allowed = append(allowed, neighbor)
			if dk < 0 {
				t.kMinus[id]++
			} else {
				t.kPlus[id]++
			}
		}

		if selfLoops {
			allowed = append(allowed, id)
		}

		t.allowed[id] = allowed
	}

	return t
}

func (t *Topology) Space() *proteo.Space { return t.space }

func (t *Topology) SelfLoops() bool { return t.selfLoops }

// Allowed returns the legal transition targets of id, in ascending site
// order (self last when self loops are enabled).
func (t *Topology) Allowed(id int) []int { return t.allowed[id] }

// Barred returns the complement of the allowed set for id, excluding id
// itself. Built on demand: the full barred table is quadratic in the
// state-space size, so it is never materialized.
func (t *Topology) Barred(id int) []int {
	allowed := t.allowed[id]
	inAllowed := make(map[int]bool, len(allowed))
	for _, j := range allowed {
		inAllowed[j] = true
	}

	n := t.space.Size()
	barred := make([]int, 0, n-len(allowed))
	for other := 0; other < n; other++ {
		if other == id || inAllowed[other] {
			continue
		}
		barred = append(barred, other)
	}
	return barred
}

// Degrees returns K⁻ and K⁺: the counts of allowed neighbors with lower
// and higher oxidation level. Their sum equals the neighbor count r.
func (t *Topology) Degrees(id int) (kMinus, kPlus int) {
	return t.kMinus[id], t.kPlus[id]
}

// Record is one exportable row of the transition table.
type Record struct {
	ID        int
	Label     string
	K         int
	PercentOx float64
	Structure string
	Allowed   []int
	Barred    []int
	KMinus    int
	KPlus     int
	Degree    int
}

// Records builds the per-state transition table consumed by the
// spreadsheet exports.
func (t *Topology) Records() []Record {
	records := make([]Record, t.space.Size())
	for id := range records {
		records[id] = Record{
			ID:        id,
			Label:     t.space.Label(id),
			K:         t.space.Oxidation(id),
			PercentOx: t.space.PercentOxidation(id),
			Structure: t.space.Structure(id),
			Allowed:   t.allowed[id],
			Barred:    t.Barred(id),
			KMinus:    t.kMinus[id],
			KPlus:     t.kPlus[id],
			Degree:    t.kMinus[id] + t.kPlus[id],
		}
	}
	return records
}
