// Copyright (c) 2026 Parcelia. All rights reserved.

// Package searchtext folds arbitrary Unicode strings into a plain-ASCII,
// lowercase search key.
//
// # Usage
//
// Client and company names, as well as status labels, are French text with
// accents ("Livré", "Société Générale"). List filters fold both the stored
// value and the query through this package so "livre" matches "Livré".
package searchtext

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold converts a Unicode string into its accent-free, lowercase search form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Collapses runs of whitespace into single spaces and trims the ends.
func Fold(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Collapse whitespace
	return strings.Join(strings.Fields(result), " ")
}

// Matches reports whether the folded form of value contains the folded form
// of query. An empty query matches everything.
func Matches(value, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	return strings.Contains(Fold(value), Fold(query))
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
