package sgns

import (
	"io"
	"math/rand"

	"github.com/tavro/nlp"
	"github.com/unixpickle/essentials"
)

// A Batch is a group of training examples.
//
// Row i pairs Targets[i] with every column of row i of
// the context matrix.
// Column 0 holds the true context word; the remaining
// columns hold negative samples.
type Batch struct {
	Rows int
	Cols int

	// Targets has one target ID per row.
	Targets []int

	// Contexts is the row-major Rows-by-Cols context
	// matrix.
	Contexts []int
}

// Context returns the entry of the context matrix at the
// given row and column.
func (b *Batch) Context(row, col int) int {
	return b.Contexts[row*b.Cols+col]
}

// ContextRow returns a row of the context matrix.
func (b *Batch) ContextRow(row int) []int {
	return b.Contexts[row*b.Cols : (row+1)*b.Cols]
}

// Labels returns the label matrix for the batch.
func (b *Batch) Labels() []float64 {
	return Labels(b.Rows, b.Cols)
}

// Labels creates a row-major rows-by-cols label matrix
// with ones in the first column and zeros elsewhere.
func Labels(rows, cols int) []float64 {
	res := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		res[i*cols] = 1
	}
	return res
}

// BatchStats summarizes the examples produced so far.
type BatchStats struct {
	PreprocessStats

	// Positives is the number of positive examples.
	Positives int

	// Batches is the number of batches produced.
	Batches int
}

// PositiveRatio returns the number of positive examples
// per token of the original corpus.
func (b BatchStats) PositiveRatio() float64 {
	if b.Tokens == 0 {
		return 0
	}
	return float64(b.Positives) / float64(b.Tokens)
}

// A Batcher produces training batches from a corpus.
//
// Every call to NewBatcher reads the corpus once, so a
// new Batcher is needed for every epoch.
type Batcher struct {
	opts      Options
	rand      *rand.Rand
	sentences *Preprocessor
	negatives *NegativeSampler
	builder   batchBuilder

	// The sentence being windowed.
	sentence []int
	radius   int
	pos      int
	ctxPos   int
	ctxEnd   int

	stats BatchStats
	done  bool
}

// NewBatcher creates a Batcher that streams the corpus.
func NewBatcher(v *nlp.Vocab, c nlp.Corpus, opts Options) (*Batcher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := opts.Rand()
	negatives, err := NewNegativeSampler(v.Counts, opts.NSExponent, r)
	if err != nil {
		return nil, essentials.AddCtx("create batcher", err)
	}
	sentences, err := Preprocess(v, c, opts.Threshold, r)
	if err != nil {
		return nil, err
	}
	res := &Batcher{
		opts:      opts,
		rand:      r,
		sentences: sentences,
		negatives: negatives,
	}
	res.builder.init(opts.BatchSize, opts.NumNS)
	return res, nil
}

// Next produces the next batch.
//
// Every batch has Options.BatchSize rows, except the
// last one, which holds whatever examples remain.
// After the last batch, io.EOF is returned.
func (b *Batcher) Next() (*Batch, error) {
	if b.done {
		return nil, io.EOF
	}
	for !b.builder.full() {
		if b.pos >= len(b.sentence) {
			if err := b.nextSentence(); err == io.EOF {
				b.done = true
				if b.builder.len() == 0 {
					return nil, io.EOF
				}
				return b.emit(), nil
			} else if err != nil {
				return nil, err
			}
			continue
		}
		b.windowStep()
	}
	return b.emit(), nil
}

// Stats returns statistics about the examples produced
// so far.
func (b *Batcher) Stats() BatchStats {
	res := b.stats
	res.PreprocessStats = b.sentences.Stats()
	return res
}

// Close releases the underlying corpus reader.
func (b *Batcher) Close() error {
	return b.sentences.Close()
}

func (b *Batcher) nextSentence() error {
	sentence, err := b.sentences.Next(b.sentence)
	if err != nil {
		b.sentence = b.sentence[:0]
		b.pos = 0
		return err
	}
	b.sentence = sentence
	b.radius = 1 + b.rand.Intn(b.opts.Window)
	b.pos = 0
	b.resetContext()
	return nil
}

// windowStep emits pairs for the current target until the
// batch fills up or the target's window is exhausted.
func (b *Batcher) windowStep() {
	target := b.sentence[b.pos]
	for b.ctxPos < b.ctxEnd {
		ctx := b.sentence[b.ctxPos]
		b.ctxPos++
		if ctx == target {
			continue
		}
		if b.builder.len() == 0 {
			b.builder.refill(b.negatives)
		}
		b.builder.add(target, ctx)
		b.stats.Positives++
		if b.builder.full() {
			break
		}
	}
	if b.ctxPos >= b.ctxEnd {
		b.pos++
		b.resetContext()
	}
}

func (b *Batcher) resetContext() {
	if b.pos >= len(b.sentence) {
		return
	}
	b.ctxPos = b.pos - b.radius
	if b.ctxPos < 0 {
		b.ctxPos = 0
	}
	b.ctxEnd = b.pos + b.radius + 1
	if b.ctxEnd > len(b.sentence) {
		b.ctxEnd = len(b.sentence)
	}
}

func (b *Batcher) emit() *Batch {
	b.stats.Batches++
	return b.builder.emit()
}

// batchBuilder accumulates positive examples for a single
// batch.
//
// The negative block is drawn when the first example of a
// batch arrives and is shared by all rows of the batch.
type batchBuilder struct {
	size      int
	numNS     int
	targets   []int
	positives []int
	negatives *Block
}

func (b *batchBuilder) init(size, numNS int) {
	b.size = size
	b.numNS = numNS
}

func (b *batchBuilder) len() int {
	return len(b.targets)
}

func (b *batchBuilder) full() bool {
	return len(b.targets) >= b.size
}

func (b *batchBuilder) refill(n *NegativeSampler) {
	b.negatives = n.Block(b.size, b.numNS)
}

func (b *batchBuilder) add(target, ctx int) {
	b.targets = append(b.targets, target)
	b.positives = append(b.positives, ctx)
}

// emit builds a batch from the accumulated examples and
// resets the builder.
func (b *batchBuilder) emit() *Batch {
	rows := len(b.targets)
	cols := 1 + b.numNS
	res := &Batch{
		Rows:     rows,
		Cols:     cols,
		Targets:  b.targets,
		Contexts: make([]int, rows*cols),
	}
	for i, pos := range b.positives {
		row := res.Contexts[i*cols : (i+1)*cols]
		row[0] = pos
		copy(row[1:], b.negatives.Row(i))
	}
	b.targets = nil
	b.positives = nil
	b.negatives = nil
	return res
}
