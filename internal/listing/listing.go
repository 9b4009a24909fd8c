package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Desc)) {
		return Desc
	}
	return Asc
}

// Filter keeps the items where any field contains term, ignoring case. An
// empty term returns items unchanged.
func Filter[T any](items []T, term string, fields ...func(T) string) []T {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" || len(fields) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Column describes one sortable key. Exactly one of Number or Text is set.
type Column[T any] struct {
	Number func(T) float64
	Text   func(T) string
}

// Sorter tracks the active sort key and direction for one table.
type Sorter[T any] struct {
	columns   map[string]Column[T]
	key       string
	direction Direction
	collator  *collate.Collator
}

func NewSorter[T any](locale language.Tag, columns map[string]Column[T]) *Sorter[T] {
	return &Sorter[T]{
		columns:   columns,
		direction: Asc,
		collator:  collate.New(locale, collate.IgnoreCase),
	}
}

func (s *Sorter[T]) Key() string          { return s.key }
func (s *Sorter[T]) Direction() Direction { return s.direction }

// Toggle flips the direction when key is already active. A new key starts
// ascending.
func (s *Sorter[T]) Toggle(key string) {
	if key == s.key {
		if s.direction == Asc {
			s.direction = Desc
		} else {
			s.direction = Asc
		}
		return
	}
	s.key = key
	s.direction = Asc
}

// Set selects key and direction directly. Unknown keys clear the sort.
func (s *Sorter[T]) Set(key string, direction Direction) {
	if _, ok := s.columns[key]; !ok {
		s.key = ""
		s.direction = Asc
		return
	}
	s.key = key
	s.direction = direction
}

// Apply returns a sorted copy of items. The input slice is left untouched.
func (s *Sorter[T]) Apply(items []T) []T {
	column, ok := s.columns[s.key]
	if !ok {
		return items
	}
	out := make([]T, len(items))
	copy(out, items)

	less := func(i, j int) bool { return false }
	switch {
	case column.Number != nil:
		less = func(i, j int) bool { return column.Number(out[i]) < column.Number(out[j]) }
	case column.Text != nil:
		less = func(i, j int) bool {
			return s.collator.CompareString(column.Text(out[i]), column.Text(out[j])) < 0
		}
	}
	if s.direction == Desc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(out, less)
	return out
}

type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page returns the 1-based page of items. perPage <= 0 returns everything.
func Page[T any](items []T, page, perPage int) ([]T, PageInfo) {
	total := len(items)
	if perPage <= 0 {
		return items, PageInfo{Page: 1, PerPage: total, Total: total, TotalPages: 1}
	}
	if page < 1 {
		page = 1
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	info := PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: max(pages, 1)}
	// Compare page counts first so huge page or perPage values cannot overflow.
	if page-1 >= pages {
		return []T{}, info
	}
	start := (page - 1) * perPage
	end := total
	if total-start > perPage {
		end = start + perPage
	}
	return items[start:end], info
}

// Query bundles the table parameters accepted by every list endpoint.
type Query struct {
	Search    string
	SortKey   string
	Direction Direction
	Page      int
	PerPage   int
}

type Table[T any] struct {
	Locale  language.Tag
	Fields  []func(T) string
	Columns map[string]Column[T]
}

func (t Table[T]) Run(items []T, q Query) ([]T, PageInfo) {
	filtered := Filter(items, q.Search, t.Fields...)
	sorter := NewSorter(t.Locale, t.Columns)
	sorter.Set(q.SortKey, q.Direction)
	return Page(sorter.Apply(filtered), q.Page, q.PerPage)
}
