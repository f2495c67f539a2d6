package correlation

import (
	"math"
	"sort"

	"github.com/Alias1177/Regimes/internal/calculate"
)

// Sign selects positively or negatively correlated pairs
type Sign int

const (
	Positive Sign = iota
	Negative
)

func (s Sign) String() string {
	if s == Negative {
		return "negative"
	}
	return "positive"
}

// Options bounds the correlation magnitude that links two columns
type Options struct {
	Min float64
	Max float64
	// Abs folds negative correlations into positive ones before grouping
	Abs bool
}

// DefaultOptions links columns correlated by at least 0.75
func DefaultOptions() Options {
	return Options{Min: 0.75, Max: 1}
}

// Validate checks 0 <= Min <= Max <= 1
func (o Options) Validate() error {
	if !(o.Min >= 0 && o.Min <= 1) {
		return calculate.NewConfigError("rate_min", o.Min, "must be in [0, 1]")
	}
	if !(o.Max >= o.Min && o.Max <= 1) {
		return calculate.NewConfigError("rate_max", o.Max, "must be in [rate_min, 1]")
	}
	return nil
}

func (o Options) links(v float64, sign Sign) bool {
	if sign == Negative {
		v = -v
	}
	return v >= o.Min && v <= o.Max
}

// Relation lists the later columns linked to Column
type Relation struct {
	Column   string   `json:"column"`
	Partners []string `json:"partners"`
}

// relations maps a column index to the higher indices it is linked to
type relations struct {
	keys     []int
	partners map[int][]int
	members  map[int]bool
}

func newRelations() *relations {
	return &relations{partners: make(map[int][]int), members: make(map[int]bool)}
}

func (r *relations) add(i, j int) {
	if _, ok := r.partners[i]; !ok {
		r.keys = append(r.keys, i)
	}
	r.partners[i] = append(r.partners[i], j)
	r.members[i] = true
	r.members[j] = true
}

// Grouping holds the linked column pairs of a correlation matrix
type Grouping struct {
	matrix *Matrix
	pos    *relations
	neg    *relations
}

// Fit collects every pair i < j whose correlation falls within the bounds
func Fit(m *Matrix, opts Options) (*Grouping, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	g := &Grouping{matrix: m, pos: newRelations(), neg: newRelations()}
	n := len(m.columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := m.at(i, j)
			if opts.Abs {
				v = math.Abs(v)
			}
			if opts.links(v, Positive) {
				g.pos.add(i, j)
			}
			if opts.links(v, Negative) {
				g.neg.add(i, j)
			}
		}
	}
	return g, nil
}

func (g *Grouping) relations(sign Sign) *relations {
	if sign == Negative {
		return g.neg
	}
	return g.pos
}

// Relations returns the linked pairs of the given sign, keyed by their lower column
func (g *Grouping) Relations(sign Sign) []Relation {
	rel := g.relations(sign)
	out := make([]Relation, 0, len(rel.keys))
	for _, key := range rel.keys {
		out = append(out, Relation{Column: g.matrix.columns[key], Partners: g.names(rel.partners[key])})
	}
	return out
}

// Columns returns every column that takes part in a link of the given sign
func (g *Grouping) Columns(sign Sign) []string {
	rel := g.relations(sign)
	idx := make([]int, 0, len(rel.members))
	for i := range rel.members {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return g.names(idx)
}

// Groups merges the linked pairs of the given sign into column groups.
// A column linked to two partners that are linked to each other joins them
// in one group; a candidate group is dropped when all of its columns
// already share an earlier group.
func (g *Grouping) Groups(sign Sign) [][]string {
	rel := g.relations(sign)
	b := &groupBuilder{member: make(map[int]map[int]bool)}

	for _, key := range rel.keys {
		partners := rel.partners[key]
		if len(partners) == 1 {
			b.check([]int{key, partners[0]})
			continue
		}

		full := []int{key}
		for idx, sub := range partners {
			rest := partners[idx+1:]
			shared := intersect(rest, rel.partners[sub])

			switch {
			case len(shared) == 0:
				b.check(with(full, sub))
			case len(shared) == len(rest):
				full = append(full, sub)
			default:
				for _, item := range shared {
					b.check(with(full, sub, item))
				}
			}
		}
		b.check(full)
	}

	out := make([][]string, 0, len(b.groups))
	for _, group := range b.groups {
		out = append(out, g.names(group))
	}
	return out
}

func (g *Grouping) names(idx []int) []string {
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = g.matrix.columns[v]
	}
	return out
}

type groupBuilder struct {
	groups [][]int
	member map[int]map[int]bool
}

// check keeps cluster unless all of its columns already share a group
func (b *groupBuilder) check(cluster []int) {
	var common map[int]bool
	for i, c := range cluster {
		groups := b.member[c]
		if i == 0 {
			common = make(map[int]bool, len(groups))
			for id := range groups {
				common[id] = true
			}
			continue
		}
		for id := range common {
			if !groups[id] {
				delete(common, id)
			}
		}
	}
	if len(common) > 0 {
		return
	}

	id := len(b.groups)
	b.groups = append(b.groups, cluster)
	for _, c := range cluster {
		if b.member[c] == nil {
			b.member[c] = make(map[int]bool)
		}
		b.member[c][id] = true
	}
}

// intersect returns the values of a also in b, in a's order
func intersect(a, b []int) []int {
	var out []int
	for _, v := range a {
		for _, w := range b {
			if v == w {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func with(base []int, extra ...int) []int {
	out := make([]int, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
