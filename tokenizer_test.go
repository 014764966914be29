package nlp

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	line := "  Hello, World!  it's\tfine ...\n"
	tests := []struct {
		tokenizer Tokenizer
		expected  []string
	}{
		{Tokenizer{}, []string{"Hello,", "World!", "it's", "fine", "..."}},
		{Tokenizer{Lowercase: true}, []string{"hello,", "world!", "it's", "fine", "..."}},
		{
			Tokenizer{PunctuationMode: SeparatePunctuation},
			[]string{"Hello", ",", "World", "!", "it", "'", "s", "fine", ".", ".", "."},
		},
		{
			Tokenizer{PunctuationMode: DropPunctuation, Lowercase: true},
			[]string{"hello", "world", "its", "fine"},
		},
	}
	for i, test := range tests {
		actual := test.tokenizer.Tokenize(line)
		if !reflect.DeepEqual(actual, test.expected) {
			t.Errorf("test %d: expected %q but got %q", i, test.expected, actual)
		}
	}
}
