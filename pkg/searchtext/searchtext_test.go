// Copyright (c) 2026 Parcelia. All rights reserved.

package searchtext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parcelia/backoffice/pkg/searchtext"
)

/*
TestFold verifies accent removal, lowercasing, and whitespace collapsing.
*/
func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"status_label", "Livré", "livre"},
		{"mixed_case", "En Cours", "en cours"},
		{"company_name", "Société  Générale", "societe generale"},
		{"already_plain", "retour", "retour"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchtext.Fold(tt.input))
		})
	}
}

/*
TestMatches verifies diacritic-insensitive containment.
*/
func TestMatches(t *testing.T) {
	assert.True(t, searchtext.Matches("Livré", "livre"))
	assert.True(t, searchtext.Matches("Société Générale", "generale"))
	assert.True(t, searchtext.Matches("Dupont", ""))
	assert.False(t, searchtext.Matches("En cours", "livre"))
}
