// Package models defines core data structures for reference items, events, and score results.
package models

// ReferenceItem is one row of the reference corpus. Row order is significant:
// the reference matrix is built in the same order and ranking maps row indices
// back to item IDs positionally.
type ReferenceItem struct {
	ItemID string `json:"item_id"`
	Text   string `json:"text"`
}

// Event is a single record drawn from the event stream.
type Event struct {
	EventID string `json:"event_id"`
	Text    string `json:"text"`
}

// ReferenceTexts returns the texts of items in corpus order.
func ReferenceTexts(items []ReferenceItem) []string {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	return texts
}

// ReferenceIDs returns the item IDs of items in corpus order.
func ReferenceIDs(items []ReferenceItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ItemID
	}
	return ids
}
