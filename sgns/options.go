// Package sgns turns a corpus into training batches for
// skip-gram with negative sampling.
//
// Sentences are subsampled, windowed into (target,
// context) pairs, and grouped into fixed-size batches
// whose extra context columns hold negative samples drawn
// from a smoothed unigram distribution.
package sgns

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tavro/nlp"
)

// ErrConfig is wrapped by errors caused by invalid
// caller-supplied settings.
var ErrConfig = nlp.ErrConfig

// Default settings, as in the word2vec paper.
const (
	DefaultThreshold  = 1e-3
	DefaultWindow     = 5
	DefaultNumNS      = 5
	DefaultBatchSize  = 524288
	DefaultNSExponent = 0.75
)

// Options configures the example pipeline.
type Options struct {
	// Threshold is the subsampling threshold t.
	Threshold float64

	// Window is the maximum context radius.
	// The radius for each sentence is drawn uniformly
	// from [1, Window].
	Window int

	// NumNS is the number of negative samples per
	// positive example.
	NumNS int

	// BatchSize is the number of positive examples in
	// each batch (except possibly the last one).
	BatchSize int

	// NSExponent is the power to which counts are raised
	// for the noise distribution.
	NSExponent float64

	// Seed, if non-zero, seeds the random generator so
	// that the pipeline is reproducible.
	Seed int64
}

// DefaultOptions returns the default settings.
func DefaultOptions() Options {
	return Options{
		Threshold:  DefaultThreshold,
		Window:     DefaultWindow,
		NumNS:      DefaultNumNS,
		BatchSize:  DefaultBatchSize,
		NSExponent: DefaultNSExponent,
	}
}

// Validate checks that every setting is usable.
func (o Options) Validate() error {
	switch {
	case !(o.Threshold > 0) || math.IsInf(o.Threshold, 0):
		return fmt.Errorf("%w: threshold must be positive (got %v)", ErrConfig, o.Threshold)
	case o.Window <= 0:
		return fmt.Errorf("%w: window must be positive (got %d)", ErrConfig, o.Window)
	case o.NumNS <= 0:
		return fmt.Errorf("%w: num_ns must be positive (got %d)", ErrConfig, o.NumNS)
	case o.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive (got %d)", ErrConfig, o.BatchSize)
	case !(o.NSExponent >= 0) || math.IsInf(o.NSExponent, 0):
		return fmt.Errorf("%w: ns exponent must be non-negative (got %v)", ErrConfig,
			o.NSExponent)
	}
	return nil
}

// Rand creates the random generator described by Seed.
func (o Options) Rand() *rand.Rand {
	if o.Seed != 0 {
		return rand.New(rand.NewSource(o.Seed))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}
