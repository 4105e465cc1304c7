package board

import "github.com/simonjohansson/jobboard/internal/model"

// FindColumnContaining resolves a drop target id to a column id. The id may name a
// column directly or a card inside one.
func FindColumnContaining(b model.Board, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	if b.HasColumn(id) {
		return id, true
	}
	for _, col := range b {
		if indexOfCard(col.Items, id) >= 0 {
			return col.ID, true
		}
	}
	return "", false
}

func FindCard(b model.Board, cardID string) (model.Card, string, bool) {
	for _, col := range b {
		if idx := indexOfCard(col.Items, cardID); idx >= 0 {
			return col.Items[idx], col.ID, true
		}
	}
	return model.Card{}, "", false
}

func IndexOf(b model.Board, columnID, cardID string) int {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return -1
	}
	return indexOfCard(b[ci].Items, cardID)
}

func RemoveCard(b model.Board, columnID, cardID string) model.Board {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b
	}
	idx := indexOfCard(b[ci].Items, cardID)
	if idx < 0 {
		return b
	}
	items := make([]model.Card, 0, len(b[ci].Items)-1)
	items = append(items, b[ci].Items[:idx]...)
	items = append(items, b[ci].Items[idx+1:]...)
	return withItems(b, ci, items)
}

// InsertCard does not enforce uniqueness; callers remove the card from its previous
// column first.
func InsertCard(b model.Board, columnID string, card model.Card, index int) model.Board {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b
	}
	current := b[ci].Items
	index = clamp(index, 0, len(current))
	items := make([]model.Card, 0, len(current)+1)
	items = append(items, current[:index]...)
	items = append(items, card)
	items = append(items, current[index:]...)
	return withItems(b, ci, items)
}

func Relocate(b model.Board, cardID, fromColumnID, toColumnID string, index int) model.Board {
	if fromColumnID == toColumnID {
		return MoveWithin(b, fromColumnID, IndexOf(b, fromColumnID, cardID), index)
	}
	if !b.HasColumn(toColumnID) {
		return b
	}
	fi := b.ColumnIndex(fromColumnID)
	if fi < 0 {
		return b
	}
	idx := indexOfCard(b[fi].Items, cardID)
	if idx < 0 {
		return b
	}
	card := b[fi].Items[idx]
	return InsertCard(RemoveCard(b, fromColumnID, cardID), toColumnID, card, index)
}

func MoveWithin(b model.Board, columnID string, oldIndex, newIndex int) model.Board {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b
	}
	current := b[ci].Items
	if oldIndex < 0 || oldIndex >= len(current) {
		return b
	}
	newIndex = clamp(newIndex, 0, len(current)-1)
	if oldIndex == newIndex {
		return b
	}
	card := current[oldIndex]
	items := make([]model.Card, 0, len(current))
	items = append(items, current[:oldIndex]...)
	items = append(items, current[oldIndex+1:]...)
	items = append(items[:newIndex], append([]model.Card{card}, items[newIndex:]...)...)
	return withItems(b, ci, items)
}

// ReplaceCard swaps the stored card with the same id, keeping its position.
func ReplaceCard(b model.Board, columnID string, card model.Card) model.Board {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b
	}
	idx := indexOfCard(b[ci].Items, card.ID)
	if idx < 0 {
		return b
	}
	items := make([]model.Card, len(b[ci].Items))
	copy(items, b[ci].Items)
	items[idx] = card
	return withItems(b, ci, items)
}

func withItems(b model.Board, columnIndex int, items []model.Card) model.Board {
	out := make(model.Board, len(b))
	copy(out, b)
	out[columnIndex].Items = items
	return out
}

func indexOfCard(items []model.Card, cardID string) int {
	for i := range items {
		if items[i].ID == cardID {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
