// Package query implements the in-memory note listing engine:
// search, sort, and paginate over an owner's full document set.
//
// Substring search lives here because the store contract is
// equality-filter only; this is a known scalability ceiling for large
// per-owner sets, isolated behind this package so it can be replaced by
// a real search index without touching the repository contract.
package query

import (
	"sort"
	"strings"

	"github.com/eralp/turbonote/internal/models"
)

// Sort keys accepted by the engine. Anything else must be rejected by
// the boundary before reaching List.
const (
	SortUpdatedAtDesc = "updated_at_desc"
	SortUpdatedAtAsc  = "updated_at_asc"
	SortPinnedDesc    = "pinned_desc"
)

// Pagination domain.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ValidSortKeys lists every accepted sort key.
var ValidSortKeys = []string{SortUpdatedAtDesc, SortUpdatedAtAsc, SortPinnedDesc}

// ValidSortKey reports whether key is an accepted sort key.
func ValidSortKey(key string) bool {
	for _, k := range ValidSortKeys {
		if key == k {
			return true
		}
	}
	return false
}

// Params describes one listing request. Documents must already be
// scoped to a single owner.
type Params struct {
	Search   string // empty means no search filter
	Pinned   *bool  // nil means no pinned filter
	Page     int    // 1-based
	PageSize int
	Sort     string // one of the Sort* constants
}

// List filters, sorts, and paginates documents. It returns the
// requested page and the total count of the filtered set before
// pagination. Pure function; the input slice is not modified.
func List(documents []models.Note, p Params) ([]models.Note, int) {
	items := make([]models.Note, 0, len(documents))
	for _, n := range documents {
		if p.Pinned != nil && n.Pinned != *p.Pinned {
			continue
		}
		if !matchesSearch(n, p.Search) {
			continue
		}
		items = append(items, n)
	}

	sortNotes(items, p.Sort)

	total := len(items)
	start := (p.Page - 1) * p.PageSize
	if start >= total {
		return []models.Note{}, total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return items[start:end], total
}

// matchesSearch reports whether the case-folded search term is a
// substring of the title or the content. An empty term matches all.
func matchesSearch(n models.Note, search string) bool {
	if search == "" {
		return true
	}
	term := strings.ToLower(search)
	return strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Content), term)
}

// sortNotes orders items in place. A zero UpdatedAt sorts as the oldest
// possible timestamp. Equal keys keep arrival order (stable sort).
func sortNotes(items []models.Note, key string) {
	switch key {
	case SortUpdatedAtAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UpdatedAt.Before(items[j].UpdatedAt)
		})
	case SortPinnedDesc:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Pinned != items[j].Pinned {
				return items[i].Pinned
			}
			return items[i].UpdatedAt.After(items[j].UpdatedAt)
		})
	default: // SortUpdatedAtDesc
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UpdatedAt.After(items[j].UpdatedAt)
		})
	}
}
