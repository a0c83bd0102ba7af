// Package ident converts between the naming conventions used for
// translation keys: delimiter separated snake_case, PascalCase and camelCase.
package ident

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Delimiter separates words in snake_case identifiers.
const Delimiter = "_"

// ToPascal converts "bills_title" to "BillsTitle". Each segment gets an
// upper-case first letter and a lower-case remainder; empty segments from
// repeated delimiters contribute nothing.
func ToPascal(s string) string {
	var b strings.Builder
	for _, segment := range strings.Split(s, Delimiter) {
		b.WriteString(capitalize(segment))
	}
	return b.String()
}

// ToCamel converts "bills_title" to "billsTitle".
func ToCamel(s string) string {
	segments := strings.Split(s, Delimiter)

	var b strings.Builder
	b.WriteString(strings.ToLower(segments[0]))
	for _, segment := range segments[1:] {
		b.WriteString(capitalize(segment))
	}
	return b.String()
}

// ToSnake converts "BillsTitle" or "billsTitle" to "bills_title".
//
// Every ASCII capital gets its own leading delimiter, so acronyms do not
// survive: ToSnake("HTTPCode") is "h_t_t_p_code".
func ToSnake(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteString(Delimiter)
		}
		b.WriteRune(r)
	}
	return strings.TrimPrefix(strings.ToLower(b.String()), Delimiter)
}

func capitalize(segment string) string {
	if segment == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(segment)
	return string(unicode.ToUpper(first)) + strings.ToLower(segment[size:])
}
