// Package filter implements order-preserving search and categorical filtering
// over in-memory lists.
//
// Each categorical criterion declares a Strategy. Local criteria are plain
// predicates over the loaded list. Remote criteria cannot be decided from the
// list alone (they depend on data only the store can compute or narrow) and
// are returned by Split so the caller can fold them into a fresh store query.
package filter

import "strings"

// All is the sentinel value that disables a categorical criterion.
const All = "all"

// Strategy tells where a criterion is decided.
type Strategy int

const (
	Local Strategy = iota
	Remote
)

// Criterion is one categorical filter over T.
type Criterion[T any] struct {
	Strategy Strategy
	// Match decides a Local criterion. Remote criteria leave it nil.
	Match func(item T, value string) bool
}

// Spec describes how a list of T can be searched and filtered.
type Spec[T any] struct {
	// SearchFields extract the text matched by the free-text search.
	SearchFields []func(T) string
	Criteria     map[string]Criterion[T]
}

// Query is a free-text search plus named categorical values.
type Query struct {
	Search  string
	Filters map[string]string
}

// Active reports whether value enables a criterion.
func Active(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, All)
}

// Split separates the active remote criteria of q from the rest. The
// returned map is nil when nothing needs the store.
func (s Spec[T]) Split(q Query) map[string]string {
	var remote map[string]string
	for name, value := range q.Filters {
		c, ok := s.Criteria[name]
		if !ok || c.Strategy != Remote || !Active(value) {
			continue
		}
		if remote == nil {
			remote = make(map[string]string)
		}
		remote[name] = strings.TrimSpace(value)
	}
	return remote
}

// Apply returns the items matching the search text and every active local
// criterion, in input order. Remote and unknown criteria are ignored here.
func (s Spec[T]) Apply(items []T, q Query) []T {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	type check struct {
		match func(T, string) bool
		value string
	}
	var checks []check
	for name, value := range q.Filters {
		c, ok := s.Criteria[name]
		if !ok || c.Strategy != Local || c.Match == nil || !Active(value) {
			continue
		}
		checks = append(checks, check{match: c.Match, value: strings.TrimSpace(value)})
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !s.matchesText(item, needle) {
			continue
		}
		keep := true
		for _, c := range checks {
			if !c.match(item, c.value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

func (s Spec[T]) matchesText(item T, needle string) bool {
	for _, field := range s.SearchFields {
		if strings.Contains(strings.ToLower(field(item)), needle) {
			return true
		}
	}
	return false
}

// Equals builds a Local criterion comparing one string field to the value.
func Equals[T any](field func(T) string) Criterion[T] {
	return Criterion[T]{
		Strategy: Local,
		Match: func(item T, value string) bool {
			return field(item) == value
		},
	}
}

// RemoteOnly builds a criterion that must be resolved by the store.
func RemoteOnly[T any]() Criterion[T] {
	return Criterion[T]{Strategy: Remote}
}
