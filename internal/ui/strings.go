package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// truncate trims value and cuts it to limit terminal cells with a "..." tail.
// Wide runes count as two cells.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || ansi.StringWidth(value) <= limit {
		return value
	}
	if limit <= 3 {
		return ansi.Truncate(value, limit, "")
	}
	return ansi.Truncate(value, limit, "...")
}

// titleCase turns a collection name like "achievements" or "blog_posts"
// into a tab label.
func titleCase(value string) string {
	words := strings.FieldsFunc(value, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func padRight(s string, width int) string {
	if gap := width - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// cell fits s into a fixed-width list column.
func cell(s string, width int) string {
	return padRight(truncate(s, width), width)
}
