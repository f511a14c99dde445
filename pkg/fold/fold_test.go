// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/biblio/pkg/fold"
)

/*
TestQuery covers accent stripping, lowercasing, and whitespace collapsing.
*/
func TestQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "solaris", "solaris"},
		{"uppercase", "SOLARIS", "solaris"},
		{"accents", "Émile Zolà", "emile zola"},
		{"mixed_accents", "GARCÍA  Márquez", "garcia marquez"},
		{"extra_whitespace", "  the   name of  the rose ", "the name of the rose"},
		{"tabs_and_newlines", "war\tand\npeace", "war and peace"},
		{"empty", "", ""},
		{"whitespace_only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fold.Query(tt.input))
		})
	}
}
