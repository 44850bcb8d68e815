package profiles

import (
	"sort"
	"strings"

	"preprint/internal/octoprint"
)

// DefaultPageSize is the number of profiles shown per page.
const DefaultPageSize = 5

// SortMode selects the ordering of a List.
type SortMode string

const (
	SortByID   SortMode = "id"
	SortByName SortMode = "name"
)

// ProfileSummary is the client-side view of one profile.
type ProfileSummary struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	IsDefault   bool   `json:"default"`
	ResourceURL string `json:"resource,omitempty"`
}

func summaryFromRecord(key string, rec octoprint.ProfileRecord) ProfileSummary {
	return ProfileSummary{
		Key:         key,
		DisplayName: rec.DisplayName,
		Description: rec.Description,
		IsDefault:   rec.Default,
		ResourceURL: rec.Resource,
	}
}

// List is a sorted, paginated collection of profiles, unique by key.
type List struct {
	items    []ProfileSummary
	sortMode SortMode
	page     int
	pageSize int
}

// NewList returns an empty list sorted by id.
func NewList(pageSize int) *List {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &List{sortMode: SortByID, pageSize: pageSize}
}

// Replace swaps the whole content of the list.
func (l *List) Replace(items []ProfileSummary) {
	l.items = l.items[:0]
	l.insert(items, true)
	l.sort()
	l.clampPage()
}

// Add inserts items whose key is not present yet.
func (l *List) Add(items ...ProfileSummary) {
	l.insert(items, false)
	l.sort()
	l.clampPage()
}

func (l *List) insert(items []ProfileSummary, overwrite bool) {
	index := make(map[string]int, len(l.items)+len(items))
	for i, it := range l.items {
		index[it.Key] = i
	}
	for _, it := range items {
		if i, ok := index[it.Key]; ok {
			if overwrite {
				l.items[i] = it
			}
			continue
		}
		index[it.Key] = len(l.items)
		l.items = append(l.items, it)
	}
}

// Remove deletes every item matching pred and returns the removed items.
func (l *List) Remove(pred func(ProfileSummary) bool) []ProfileSummary {
	var removed []ProfileSummary
	kept := l.items[:0]
	for _, it := range l.items {
		if pred(it) {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	l.clampPage()
	return removed
}

// Get returns the first item matching pred.
func (l *List) Get(pred func(ProfileSummary) bool) (ProfileSummary, bool) {
	for _, it := range l.items {
		if pred(it) {
			return it, true
		}
	}
	return ProfileSummary{}, false
}

// Update applies fn to every item in place.
func (l *List) Update(fn func(*ProfileSummary)) {
	for i := range l.items {
		fn(&l.items[i])
	}
}

// Items returns a copy of all items in sort order.
func (l *List) Items() []ProfileSummary {
	out := make([]ProfileSummary, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int { return len(l.items) }

func (l *List) SortMode() SortMode { return l.sortMode }

// SortBy changes the ordering and jumps back to the first page.
func (l *List) SortBy(mode SortMode) {
	if mode != SortByName {
		mode = SortByID
	}
	l.sortMode = mode
	l.page = 0
	l.sort()
}

func (l *List) sort() {
	key := func(it ProfileSummary) string { return strings.ToLower(it.Key) }
	if l.sortMode == SortByName {
		key = func(it ProfileSummary) string { return strings.ToLower(it.DisplayName) }
	}
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := key(l.items[i]), key(l.items[j])
		if a != b {
			return a < b
		}
		return l.items[i].Key < l.items[j].Key
	})
}

// PageCount is the number of pages; an empty list has none.
func (l *List) PageCount() int {
	return (len(l.items) + l.pageSize - 1) / l.pageSize
}

func (l *List) CurrentPage() int { return l.page }

func (l *List) PageSize() int { return l.pageSize }

// Page returns the items on the current page.
func (l *List) Page() []ProfileSummary {
	start := l.page * l.pageSize
	if start >= len(l.items) {
		return nil
	}
	end := start + l.pageSize
	if end > len(l.items) {
		end = len(l.items)
	}
	out := make([]ProfileSummary, end-start)
	copy(out, l.items[start:end])
	return out
}

func (l *List) SetPage(page int) {
	l.page = page
	l.clampPage()
}

func (l *List) NextPage() { l.SetPage(l.page + 1) }

func (l *List) PrevPage() { l.SetPage(l.page - 1) }

func (l *List) clampPage() {
	last := l.PageCount() - 1
	if l.page > last {
		l.page = last
	}
	if l.page < 0 {
		l.page = 0
	}
}
