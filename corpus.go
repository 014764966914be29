// Package nlp provides the corpus and vocabulary layer
// used to train skip-gram word embeddings.
package nlp

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/unixpickle/essentials"
)

// maxLineSize bounds the length of a single corpus line.
const maxLineSize = 16 << 20

// A SentenceReader yields tokenized sentences one at a
// time.
//
// ReadSentence returns io.EOF once there are no more
// sentences.
type SentenceReader interface {
	io.Closer
	ReadSentence() ([]string, error)
}

// A Corpus is a restartable source of sentences.
//
// Every call to Open starts reading from the beginning,
// so a Corpus may be traversed any number of times.
type Corpus interface {
	Open() (SentenceReader, error)
}

// SliceCorpus is a Corpus held entirely in memory.
type SliceCorpus [][]string

// Open returns a reader over the sentences.
func (s SliceCorpus) Open() (SentenceReader, error) {
	return &sliceReader{sentences: s}, nil
}

type sliceReader struct {
	sentences [][]string
	idx       int
}

func (s *sliceReader) ReadSentence() ([]string, error) {
	if s.idx >= len(s.sentences) {
		return nil, io.EOF
	}
	s.idx++
	return s.sentences[s.idx-1], nil
}

func (s *sliceReader) Close() error {
	return nil
}

// TextCorpus reads a text file with one sentence per
// line.
//
// Files ending in ".gz" are decompressed on the fly.
type TextCorpus struct {
	Path string

	// MaxSentences, if non-zero, truncates the corpus
	// after this many sentences.
	MaxSentences int

	// Tokenizer splits each line into tokens.
	// The zero value splits on whitespace.
	Tokenizer Tokenizer
}

// Open opens the file and prepares to read sentences.
func (t *TextCorpus) Open() (reader SentenceReader, err error) {
	defer essentials.AddCtxTo("open corpus "+t.Path, &err)
	f, err := os.Open(t.Path)
	if err != nil {
		return nil, err
	}
	res := &textReader{corpus: t, closers: []io.Closer{f}}
	var r io.Reader = f
	if strings.HasSuffix(t.Path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		res.closers = append([]io.Closer{gz}, res.closers...)
		r = gz
	}
	res.scanner = bufio.NewScanner(r)
	res.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return res, nil
}

type textReader struct {
	corpus  *TextCorpus
	scanner *bufio.Scanner
	closers []io.Closer
	count   int
}

func (t *textReader) ReadSentence() ([]string, error) {
	if t.corpus.MaxSentences > 0 && t.count >= t.corpus.MaxSentences {
		return nil, io.EOF
	}
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, essentials.AddCtx("read corpus "+t.corpus.Path, err)
		}
		return nil, io.EOF
	}
	t.count++
	return t.corpus.Tokenizer.Tokenize(t.scanner.Text()), nil
}

func (t *textReader) Close() error {
	var firstErr error
	for _, c := range t.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
