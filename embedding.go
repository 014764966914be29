package nlp

import "github.com/unixpickle/anyvec"

// Embedding is a trained word embedding over a Vocab.
type Embedding interface {
	// Dim returns the dimensionality of the embedding.
	Dim() int

	// Embed returns the embedding for the token, or nil if
	// the token is not in the vocabulary.
	Embed(token string) anyvec.Vector

	// EmbedID returns the embedding for the token ID.
	EmbedID(id int) anyvec.Vector

	// Lookup finds the n nearest token IDs.
	//
	// If n is greater than the total number of words,
	// there will be fewer than n results.
	Lookup(vec anyvec.Vector, n int) ([]int, []float64)

	// Token looks up the token for the token ID.
	Token(id int) string
}
