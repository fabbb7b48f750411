package components

import (
	"strings"
)

// ItemState is passed to the header renderer of an ExpandableList.
type ItemState struct {
	Expanded bool
	Selected bool
}

// ExpandableList is a cursor-navigable list where at most one item shows its
// body at a time. It holds no styling of its own; callers supply renderers.
type ExpandableList[T any] struct {
	items    []T
	key      func(T) string
	header   func(item T, st ItemState, width int) string
	body     func(item T, width int) string
	cursor   int
	expanded int // index of the expanded item, -1 if none
}

// NewExpandableList builds a collapsed list. key identifies items across
// SetItems calls.
func NewExpandableList[T any](
	items []T,
	key func(T) string,
	header func(item T, st ItemState, width int) string,
	body func(item T, width int) string,
) ExpandableList[T] {
	return ExpandableList[T]{
		items:    items,
		key:      key,
		header:   header,
		body:     body,
		expanded: -1,
	}
}

// SetItems replaces the items. The expanded item stays expanded if an item
// with the same key is still present; the cursor is clamped.
func (l *ExpandableList[T]) SetItems(items []T) {
	prev := l.ExpandedKey()
	l.items = items
	l.expanded = -1
	if prev != "" {
		for i, it := range items {
			if l.key(it) == prev {
				l.expanded = i
				break
			}
		}
	}
	l.cursor = max(0, min(l.cursor, len(items)-1))
}

// Len returns the number of items.
func (l ExpandableList[T]) Len() int { return len(l.items) }

// Next moves the cursor down, stopping at the last item.
func (l *ExpandableList[T]) Next() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
	}
}

// Prev moves the cursor up, stopping at the first item.
func (l *ExpandableList[T]) Prev() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// Toggle expands item i, collapsing any other, or collapses it if it is
// already expanded. Out-of-range indexes are ignored.
func (l *ExpandableList[T]) Toggle(i int) {
	if i < 0 || i >= len(l.items) {
		return
	}
	if l.expanded == i {
		l.expanded = -1
		return
	}
	l.expanded = i
}

// ToggleSelected toggles the item under the cursor.
func (l *ExpandableList[T]) ToggleSelected() { l.Toggle(l.cursor) }

// IsExpanded reports whether item i is expanded.
func (l ExpandableList[T]) IsExpanded(i int) bool { return i >= 0 && i == l.expanded }

// ExpandedKey returns the key of the expanded item, or "" if none.
func (l ExpandableList[T]) ExpandedKey() string {
	if l.expanded < 0 || l.expanded >= len(l.items) {
		return ""
	}
	return l.key(l.items[l.expanded])
}

// Render draws every header, followed by the body of the expanded item.
// It also returns the line at which the selected header starts.
func (l ExpandableList[T]) Render(width int) (string, int) {
	var b strings.Builder
	line, selectedLine := 0, 0
	for i, it := range l.items {
		if i > 0 {
			b.WriteString("\n")
			line++
		}
		if i == l.cursor {
			selectedLine = line
		}
		st := ItemState{Expanded: l.IsExpanded(i), Selected: i == l.cursor}
		h := l.header(it, st, width)
		b.WriteString(h)
		line += strings.Count(h, "\n")
		if st.Expanded && l.body != nil {
			body := l.body(it, width)
			b.WriteString("\n")
			b.WriteString(body)
			line += 1 + strings.Count(body, "\n")
		}
	}
	return b.String(), selectedLine
}
