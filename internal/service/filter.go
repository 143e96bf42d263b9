package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tablette/catalog/internal/domain"
)

// TextFilter keeps the candidates whose display name or reference contains the
// search term, ignoring case and optionally accents.
type TextFilter struct {
	FoldAccents bool
}

// Apply returns the matching records in their original order. A blank term
// keeps every record.
func (f TextFilter) Apply(records []domain.Record, term string) []domain.Record {
	term = strings.TrimSpace(term)
	if term == "" {
		return records
	}

	fold := f.folder()
	needle := fold(term)

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(fold(r.DisplayName), needle) || strings.Contains(fold(r.Reference), needle) {
			out = append(out, r)
		}
	}
	return out
}

// folder builds a normalising function. Transformers keep state, so each call
// of Apply gets its own.
func (f TextFilter) folder() func(string) string {
	caser := cases.Fold()
	if !f.FoldAccents {
		return caser.String
	}

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	return func(s string) string {
		if stripped, _, err := transform.String(stripMarks, s); err == nil {
			s = stripped
		}
		return caser.String(s)
	}
}
