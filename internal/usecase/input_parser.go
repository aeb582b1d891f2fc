package usecase

import (
	"regexp"
	"strings"
)

// IdentifierKind classifies a user supplied identifier
type IdentifierKind string

const (
	KindASIN    IdentifierKind = "asin"
	KindJAN     IdentifierKind = "jan"
	KindInvalid IdentifierKind = "invalid"
)

// Identifier is one parsed input token
type Identifier struct {
	Value string
	Kind  IdentifierKind
}

// Compiled patterns for identifier parsing
var (
	asinPattern       = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	barcodePattern    = regexp.MustCompile(`^(\d{8}|\d{13})$`)
	separatorPattern  = regexp.MustCompile(`[\s,;]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ParseIdentifiers splits free-form input (one per line, or separated by
// commas, semicolons or spaces) into classified identifiers. Duplicates are
// dropped; order of first appearance is kept.
func ParseIdentifiers(text string) []Identifier {
	text = strings.ReplaceAll(text, "\u3000", " ")
	tokens := separatorPattern.Split(strings.TrimSpace(text), -1)

	seen := make(map[string]bool, len(tokens))
	out := make([]Identifier, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToUpper(strings.Trim(tok, `"'`))
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, Identifier{Value: tok, Kind: classifyIdentifier(tok)})
	}
	return out
}

func classifyIdentifier(tok string) IdentifierKind {
	switch {
	case barcodePattern.MatchString(tok):
		if validCheckDigit(tok) {
			return KindJAN
		}
		return KindInvalid
	case asinPattern.MatchString(tok):
		return KindASIN
	default:
		return KindInvalid
	}
}

// validCheckDigit verifies the GS1 check digit of an EAN-8 or EAN-13/JAN code.
func validCheckDigit(code string) bool {
	sum := 0
	n := len(code)
	for i := 0; i < n-1; i++ {
		d := int(code[i] - '0')
		// weights alternate 3,1 counting from the digit left of the check digit
		if (n-1-i)%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return check == int(code[n-1]-'0')
}

// NormalizeKeywords trims a search query and collapses whitespace, including
// full-width spaces.
func NormalizeKeywords(q string) string {
	q = strings.ReplaceAll(q, "\u3000", " ")
	q = whitespacePattern.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
