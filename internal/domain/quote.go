// Package domain contains core business entities and rules.
package domain

import "strings"

// attributionSeparator splits the quote body from its author ("text - Author").
const attributionSeparator = " - "

// Quote is a stored quotation together with its position in the store.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// Index is the zero-based position of the quote in the store.
	Index int

	// Text is the full quote as entered, attribution included.
	Text string
}

// Body returns the quote text without the trailing attribution.
func (q Quote) Body() string {
	body, _ := SplitAttribution(q.Text)
	return body
}

// Author returns the attribution, or an empty string when there is none.
func (q Quote) Author() string {
	_, author := SplitAttribution(q.Text)
	return author
}

// SplitAttribution splits "text - Author" at the last separator.
// Text without a separator, or with nothing on one side of it, is returned whole.
func SplitAttribution(text string) (body, author string) {
	i := strings.LastIndex(text, attributionSeparator)
	if i < 0 {
		return text, ""
	}

	body = strings.TrimSpace(text[:i])
	author = strings.TrimSpace(text[i+len(attributionSeparator):])
	if body == "" || author == "" {
		return text, ""
	}

	return body, author
}

// DefaultQuotes is the built-in set loaded on first boot and on clear.
func DefaultQuotes() []string {
	return []string{
		"The only way to do great work is to love what you do. - Steve Jobs",
		"Innovation distinguishes between a leader and a follower. - Steve Jobs",
		"Life is what happens to you while you're busy making other plans. - John Lennon",
		"The future belongs to those who believe in the beauty of their dreams. - Eleanor Roosevelt",
		"It is during our darkest moments that we must focus to see the light. - Aristotle",
	}
}
