package ident

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPascal(t *testing.T) {
	tests := map[string]string{
		"bills_title":     "BillsTitle",
		"user_profile":    "UserProfile",
		"common":          "Common",
		"BILLS_TITLE":     "BillsTitle",
		"a__b":            "AB",
		"_leading":        "Leading",
		"":                "",
		"account_address": "AccountAddress",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToPascal(in), "ToPascal(%q)", in)
	}
}

func TestToCamel(t *testing.T) {
	tests := map[string]string{
		"bills_title":  "billsTitle",
		"user_profile": "userProfile",
		"Common":       "common",
		"BILLS_TITLE":  "billsTitle",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToCamel(in), "ToCamel(%q)", in)
	}
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"BillsTitle":   "bills_title",
		"billsTitle":   "bills_title",
		"bills_title":  "bills_title",
		"userProfile":  "user_profile",
		"HTTPCode":     "h_t_t_p_code",
		"common":       "common",
		"":             "",
		"Title2Detail": "title2_detail",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToSnake(in), "ToSnake(%q)", in)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const letters = "abcdefghijklmnopqrstuvwxyz"

	word := func() string {
		n := 1 + rng.Intn(8)
		b := make([]byte, n)
		for i := range b {
			b[i] = letters[rng.Intn(len(letters))]
		}
		return string(b)
	}

	for i := 0; i < 500; i++ {
		words := make([]string, 1+rng.Intn(4))
		for j := range words {
			words[j] = word()
		}
		s := strings.Join(words, Delimiter)

		assert.Equal(t, s, ToSnake(ToPascal(s)), "pascal round trip of %q", s)
		assert.Equal(t, s, ToSnake(ToCamel(s)), "camel round trip of %q", s)
	}
}
