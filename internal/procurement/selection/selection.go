// Package selection tracks which line items a reviewer has chosen to act
// on, keyed by category. A category is either fully selected or carries an
// explicit set of item ids; the two never mix within one category.
package selection

import (
	"sort"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
)

// CategorySelection is the per-category choice: everything in the category,
// or an explicit subset of item ids.
type CategorySelection struct {
	All     bool     `json:"all"`
	ItemIDs []string `json:"item_ids,omitempty"`
}

// Selection maps category name to its selection. Values are treated as
// immutable: every update returns a new Selection, never mutates in place.
type Selection map[string]CategorySelection

// New returns an empty selection.
func New() Selection {
	return Selection{}
}

// SelectCategory marks the whole category as selected, dropping any partial
// item list previously recorded for it.
func (s Selection) SelectCategory(category string) Selection {
	next := s.clone()
	next[category] = CategorySelection{All: true}
	return next
}

// SelectItems records an explicit subset for the category. Duplicate ids
// are collapsed; an empty id list removes the category entry.
func (s Selection) SelectItems(category string, itemIDs []string) Selection {
	next := s.clone()
	if len(itemIDs) == 0 {
		delete(next, category)
		return next
	}
	seen := make(map[string]bool, len(itemIDs))
	ids := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		delete(next, category)
		return next
	}
	next[category] = CategorySelection{ItemIDs: ids}
	return next
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s) == 0
}

// Categories returns the selected category names in sorted order, for
// deterministic logging and responses.
func (s Selection) Categories() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Resolve expands the selection against the batch's current items,
// preserving batch item order. An all-selected category expands to every
// item currently in that category; the all flag short-circuits any explicit
// ids, so an item is never returned twice.
func (s Selection) Resolve(batch *entity.SentBackBatch) []entity.SentBackItem {
	if len(s) == 0 || batch == nil {
		return nil
	}

	var out []entity.SentBackItem
	for _, item := range batch.Items {
		sel, ok := s[item.Category]
		if !ok {
			continue
		}
		if sel.All {
			out = append(out, item)
			continue
		}
		for _, id := range sel.ItemIDs {
			if id == item.ItemID {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func (s Selection) clone() Selection {
	next := make(Selection, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	return next
}
