package nlp

import "github.com/unixpickle/essentials"

// TokenCounts keeps track of how many times different
// tokens occur in some corpus.
//
// Tokens are remembered in the order they were first
// seen, so anything derived from a TokenCounts is
// deterministic for a given corpus.
type TokenCounts struct {
	order  []string
	counts map[string]int
	total  int
}

// NewTokenCounts creates an empty tally.
func NewTokenCounts() *TokenCounts {
	return &TokenCounts{counts: map[string]int{}}
}

// Add counts every token in the sentence.
func (t *TokenCounts) Add(tokens []string) {
	for _, tok := range tokens {
		n, ok := t.counts[tok]
		if !ok {
			t.order = append(t.order, tok)
		}
		t.counts[tok] = n + 1
	}
	t.total += len(tokens)
}

// Count returns the number of occurrences of a token.
func (t *TokenCounts) Count(token string) int {
	return t.counts[token]
}

// Len returns the number of distinct tokens.
func (t *TokenCounts) Len() int {
	return len(t.order)
}

// Total returns the number of tokens counted, including
// repeats.
func (t *TokenCounts) Total() int {
	return t.total
}

// MostCommon produces the n tokens with the most
// occurrences.
// If there are less than n total tokens, then all tokens
// are returned.
func (t *TokenCounts) MostCommon(n int) []string {
	tokens := append([]string{}, t.order...)
	counts := make([]int, len(tokens))
	for i, tok := range tokens {
		counts[i] = t.counts[tok]
	}
	return mostCommon(tokens, counts, n)
}

// Vocab creates a vocabulary from all the tokens which
// occurred at least minCount times.
// IDs follow the order in which tokens were first seen.
func (t *TokenCounts) Vocab(minCount int) *Vocab {
	res := &Vocab{RawTokens: t.total, ids: map[string]int{}}
	for _, tok := range t.order {
		if c := t.counts[tok]; c >= minCount {
			res.ids[tok] = len(res.Tokens)
			res.Tokens = append(res.Tokens, tok)
			res.Counts = append(res.Counts, c)
		}
	}
	return res
}

func mostCommon(tokens []string, counts []int, n int) []string {
	if len(tokens) <= n {
		return tokens
	}
	essentials.VoodooSort(counts, func(i, j int) bool {
		return counts[i] > counts[j]
	}, tokens)
	return tokens[:n]
}
