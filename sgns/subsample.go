package sgns

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/tavro/nlp"
	"github.com/unixpickle/essentials"
)

// A Subsampler randomly drops frequent tokens.
//
// A token with count c is dropped with probability
// max(0, 1-sqrt(t*N/c)), where N is the total count of
// the vocabulary and t is the threshold.
type Subsampler struct {
	Vocab *nlp.Vocab
	Rand  *rand.Rand

	dropProbs []float64
}

// NewSubsampler creates a Subsampler for the vocabulary.
func NewSubsampler(v *nlp.Vocab, threshold float64, r *rand.Rand) (*Subsampler, error) {
	if !(threshold > 0) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("%w: threshold must be positive (got %v)", ErrConfig, threshold)
	}
	if r == nil {
		panic("nil random generator")
	}
	total := float64(v.Total())
	res := &Subsampler{
		Vocab:     v,
		Rand:      r,
		dropProbs: make([]float64, v.Len()),
	}
	for i, c := range v.Counts {
		res.dropProbs[i] = math.Max(0, 1-math.Sqrt(threshold*total/float64(c)))
	}
	return res, nil
}

// DropProb returns the probability that a token ID is
// dropped.
func (s *Subsampler) DropProb(id int) float64 {
	return s.dropProbs[id]
}

// Sentence maps the tokens to IDs, skipping unknown
// tokens and subsampling the rest.
// The kept IDs are appended to dst.
//
// One uniform value is drawn for every known token.
func (s *Subsampler) Sentence(tokens []string, dst []int) []int {
	for _, tok := range tokens {
		id, ok := s.Vocab.ID(tok)
		if !ok {
			continue
		}
		if s.Rand.Float64() < s.dropProbs[id] {
			continue
		}
		dst = append(dst, id)
	}
	return dst
}

// PreprocessStats summarizes a preprocessing pass.
type PreprocessStats struct {
	// Sentences is the number of sentences read.
	Sentences int

	// Kept is the number of non-empty sentences produced.
	Kept int

	// Tokens is the number of tokens read, including
	// unknown ones.
	Tokens int

	// KeptTokens is the number of IDs produced.
	KeptTokens int
}

// Retention returns the fraction of tokens that survived
// preprocessing.
func (p PreprocessStats) Retention() float64 {
	if p.Tokens == 0 {
		return 0
	}
	return float64(p.KeptTokens) / float64(p.Tokens)
}

// A Preprocessor streams subsampled sentences of IDs.
type Preprocessor struct {
	subsampler *Subsampler
	reader     nlp.SentenceReader
	stats      PreprocessStats
}

// Preprocess opens the corpus and prepares to stream its
// subsampled sentences.
func Preprocess(v *nlp.Vocab, c nlp.Corpus, threshold float64,
	r *rand.Rand) (*Preprocessor, error) {
	s, err := NewSubsampler(v, threshold, r)
	if err != nil {
		return nil, err
	}
	reader, err := c.Open()
	if err != nil {
		return nil, essentials.AddCtx("preprocess", err)
	}
	return &Preprocessor{subsampler: s, reader: reader}, nil
}

// Next returns the next non-empty sentence of IDs,
// reusing the storage of buf.
//
// At the end of the corpus, io.EOF is returned.
func (p *Preprocessor) Next(buf []int) ([]int, error) {
	for {
		sentence, err := p.reader.ReadSentence()
		if err == io.EOF {
			return nil, io.EOF
		} else if err != nil {
			return nil, essentials.AddCtx("preprocess", err)
		}
		p.stats.Sentences++
		p.stats.Tokens += len(sentence)
		ids := p.subsampler.Sentence(sentence, buf[:0])
		if len(ids) == 0 {
			continue
		}
		p.stats.Kept++
		p.stats.KeptTokens += len(ids)
		return ids, nil
	}
}

// Stats returns the statistics so far.
func (p *Preprocessor) Stats() PreprocessStats {
	return p.stats
}

// Close closes the underlying corpus reader.
func (p *Preprocessor) Close() error {
	return p.reader.Close()
}
