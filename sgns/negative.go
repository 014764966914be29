package sgns

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// minParallelSamples is the smallest request that is
// split across goroutines.
const minParallelSamples = 1 << 16

// A NegativeSampler draws token IDs with probability
// proportional to count^exponent.
//
// The cumulative table is built once; counts are assumed
// not to change afterwards.
type NegativeSampler struct {
	Rand *rand.Rand

	cum []float64
}

// NewNegativeSampler builds the cumulative noise table
// for the frequency table.
func NewNegativeSampler(counts []int, exponent float64, r *rand.Rand) (*NegativeSampler, error) {
	if !(exponent >= 0) || math.IsInf(exponent, 0) {
		return nil, fmt.Errorf("%w: ns exponent must be non-negative (got %v)", ErrConfig,
			exponent)
	}
	if r == nil {
		panic("nil random generator")
	}
	weights := make([]float64, len(counts))
	for i, c := range counts {
		if c <= 0 {
			return nil, fmt.Errorf("non-positive count at index %d: %d", i, c)
		}
		weights[i] = math.Pow(float64(c), exponent)
	}
	return &NegativeSampler{
		Rand: r,
		cum:  floats.CumSum(weights, weights),
	}, nil
}

// Len returns the number of token IDs in the table.
func (n *NegativeSampler) Len() int {
	return len(n.cum)
}

// Prob returns the probability of drawing an ID.
func (n *NegativeSampler) Prob(id int) float64 {
	w := n.cum[id]
	if id > 0 {
		w -= n.cum[id-1]
	}
	return w / n.cum[len(n.cum)-1]
}

// Sample draws a single ID.
func (n *NegativeSampler) Sample() int {
	n.checkNonEmpty()
	return n.search(n.Rand.Float64())
}

// Fill overwrites dst with independent samples.
//
// Large requests are split into chunks, each drawing from
// a generator seeded by n.Rand, so the result only
// depends on the state of n.Rand.
func (n *NegativeSampler) Fill(dst []int) {
	if len(dst) == 0 {
		return
	}
	n.checkNonEmpty()
	numChunks := runtime.GOMAXPROCS(0)
	if len(dst) < minParallelSamples || numChunks == 1 {
		n.fill(n.Rand, dst)
		return
	}
	chunkSize := (len(dst) + numChunks - 1) / numChunks
	var wg sync.WaitGroup
	for start := 0; start < len(dst); start += chunkSize {
		end := start + chunkSize
		if end > len(dst) {
			end = len(dst)
		}
		gen := rand.New(rand.NewSource(n.Rand.Int63()))
		wg.Add(1)
		go func(chunk []int) {
			defer wg.Done()
			n.fill(gen, chunk)
		}(dst[start:end])
	}
	wg.Wait()
}

// Block draws a rows-by-k matrix of samples.
func (n *NegativeSampler) Block(rows, k int) *Block {
	res := &Block{Rows: rows, Cols: k, IDs: make([]int, rows*k)}
	n.Fill(res.IDs)
	return res
}

func (n *NegativeSampler) fill(gen *rand.Rand, dst []int) {
	for i := range dst {
		dst[i] = n.search(gen.Float64())
	}
}

// search maps a uniform value in [0, 1) to the smallest
// index whose cumulative weight is at least u*total.
func (n *NegativeSampler) search(u float64) int {
	return sort.SearchFloat64s(n.cum, u*n.cum[len(n.cum)-1])
}

func (n *NegativeSampler) checkNonEmpty() {
	if len(n.cum) == 0 {
		panic("cannot sample from an empty vocabulary")
	}
}

// A Block is a row-major matrix of negative samples.
type Block struct {
	Rows int
	Cols int
	IDs  []int
}

// Row returns the samples in a row.
func (b *Block) Row(i int) []int {
	return b.IDs[i*b.Cols : (i+1)*b.Cols]
}
