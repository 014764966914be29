package nlp

import (
	"strings"
	"unicode"
)

// PunctuationMode is a way to deal with punctuation and
// other symbols when tokenizing strings.
type PunctuationMode int

const (
	// Treat punctuation as just another character.
	KeepPunctuation PunctuationMode = iota

	// Treat each piece of punctuation as its own token.
	SeparatePunctuation

	// Remove all punctuation.
	DropPunctuation
)

// A Tokenizer separates lines into word tokens.
//
// The zero value splits on whitespace and leaves every
// field untouched, which matches corpora that were
// tokenized ahead of time.
type Tokenizer struct {
	PunctuationMode PunctuationMode

	// Lowercase, if true, converts every field to
	// lowercase before it is split further.
	Lowercase bool
}

// Tokenize produces tokens for the string.
// Empty tokens are never produced.
func (t Tokenizer) Tokenize(s string) []string {
	fields := strings.Fields(s)
	if t.PunctuationMode == KeepPunctuation && !t.Lowercase {
		return fields
	}
	res := make([]string, 0, len(fields))
	for _, field := range fields {
		if t.Lowercase {
			field = strings.ToLower(field)
		}
		res = t.appendField(res, field)
	}
	return res
}

func (t Tokenizer) appendField(res []string, field string) []string {
	switch t.PunctuationMode {
	case KeepPunctuation:
		return append(res, field)
	case SeparatePunctuation:
		start := 0
		for i, ch := range field {
			if !unicode.IsPunct(ch) {
				continue
			}
			if i > start {
				res = append(res, field[start:i])
			}
			end := i + len(string(ch))
			res = append(res, field[i:end])
			start = end
		}
		if start < len(field) {
			res = append(res, field[start:])
		}
		return res
	case DropPunctuation:
		stripped := strings.Map(func(ch rune) rune {
			if unicode.IsPunct(ch) {
				return -1
			}
			return ch
		}, field)
		if stripped == "" {
			return res
		}
		return append(res, stripped)
	}
	panic("unknown punctuation mode")
}
