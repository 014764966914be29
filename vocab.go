package nlp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// ErrConfig is wrapped by errors caused by invalid
// caller-supplied settings.
var ErrConfig = errors.New("invalid configuration")

// DefaultMinCount is the usual minimum number of
// occurrences for a token to enter a vocabulary.
const DefaultMinCount = 5

func init() {
	serializer.RegisterTypedDeserializer((&Vocab{}).SerializerType(), DeserializeVocab)
}

// A Vocab maps tokens to contiguous IDs in [0, Len()) and
// stores the number of occurrences of each token.
//
// A Vocab should not be modified once it is built.
type Vocab struct {
	// Tokens maps each ID to its token.
	Tokens []string

	// Counts is the frequency table, indexed by ID.
	// Every entry is positive.
	Counts []int

	// RawTokens is the number of tokens seen while the
	// vocabulary was built, including filtered ones.
	RawTokens int

	ids map[string]int
}

// BuildVocab counts every token of the corpus in a single
// pass and keeps the tokens occurring at least minCount
// times.
func BuildVocab(c Corpus, minCount int) (*Vocab, error) {
	if minCount <= 0 {
		return nil, fmt.Errorf("build vocab: %w: min count must be positive (got %d)",
			ErrConfig, minCount)
	}
	counts, err := CountCorpus(c)
	if err != nil {
		return nil, essentials.AddCtx("build vocab", err)
	}
	return counts.Vocab(minCount), nil
}

// CountCorpus tallies every token of the corpus.
func CountCorpus(c Corpus) (*TokenCounts, error) {
	reader, err := c.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	counts := NewTokenCounts()
	for {
		sentence, err := reader.ReadSentence()
		if err == io.EOF {
			return counts, nil
		} else if err != nil {
			return nil, err
		}
		counts.Add(sentence)
	}
}

// NewVocab creates a Vocab from a token list and the
// corresponding counts.
func NewVocab(tokens []string, counts []int) (*Vocab, error) {
	if len(tokens) != len(counts) {
		return nil, fmt.Errorf("token count mismatch: %d tokens, %d counts",
			len(tokens), len(counts))
	}
	res := &Vocab{
		Tokens: append([]string{}, tokens...),
		Counts: append([]int{}, counts...),
		ids:    make(map[string]int, len(tokens)),
	}
	for i, tok := range tokens {
		if _, ok := res.ids[tok]; ok {
			return nil, fmt.Errorf("duplicate token: %q", tok)
		}
		if counts[i] <= 0 {
			return nil, fmt.Errorf("non-positive count for %q: %d", tok, counts[i])
		}
		res.ids[tok] = i
		res.RawTokens += counts[i]
	}
	return res, nil
}

// DeserializeVocab deserializes a Vocab.
func DeserializeVocab(d []byte) (*Vocab, error) {
	var tableData serializer.Bytes
	var raw int
	if err := serializer.DeserializeAny(d, &tableData, &raw); err != nil {
		return nil, essentials.AddCtx("deserialize Vocab", err)
	}
	var table vocabTable
	if err := json.Unmarshal(tableData, &table); err != nil {
		return nil, essentials.AddCtx("deserialize Vocab", err)
	}
	res, err := NewVocab(table.Tokens, table.Counts)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Vocab", err)
	}
	res.RawTokens = raw
	return res, nil
}

// Len returns the number of tokens in the vocabulary.
func (v *Vocab) Len() int {
	return len(v.Tokens)
}

// Total returns the sum of the frequency table.
func (v *Vocab) Total() int {
	var res int
	for _, c := range v.Counts {
		res += c
	}
	return res
}

// ID looks up the ID of a token.
func (v *Vocab) ID(token string) (int, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// IDs appends the ID of every in-vocabulary token to dst.
// Unknown tokens are skipped.
func (v *Vocab) IDs(tokens []string, dst []int) []int {
	for _, tok := range tokens {
		if id, ok := v.ids[tok]; ok {
			dst = append(dst, id)
		}
	}
	return dst
}

// Token gets the token for the given ID.
//
// If the ID is out of range, then "" is returned.
func (v *Vocab) Token(id int) string {
	if id < 0 || id >= len(v.Tokens) {
		return ""
	}
	return v.Tokens[id]
}

// MostCommon produces the n most frequent tokens.
func (v *Vocab) MostCommon(n int) []string {
	return mostCommon(append([]string{}, v.Tokens...), append([]int{}, v.Counts...), n)
}

// SerializerType returns the unique ID used to serialize
// a Vocab with the serializer package.
func (v *Vocab) SerializerType() string {
	return "github.com/tavro/nlp.Vocab"
}

// Serialize serializes the Vocab.
func (v *Vocab) Serialize() ([]byte, error) {
	tableData, err := json.Marshal(vocabTable{Tokens: v.Tokens, Counts: v.Counts})
	if err != nil {
		return nil, err
	}
	return serializer.SerializeAny(serializer.Bytes(tableData), v.RawTokens)
}

type vocabTable struct {
	Tokens []string `json:"tokens"`
	Counts []int    `json:"counts"`
}
