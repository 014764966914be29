// Package word2vec trains skip-gram embeddings from
// batches of positive and negative examples.
package word2vec

import (
	"math"

	"github.com/tavro/nlp/sgns"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
)

// scoreChunkRows bounds the number of batch rows whose
// embeddings are gathered at once by Score.
const scoreChunkRows = 1 << 12

// A Model scores (target, context) pairs by the dot
// product of a target embedding and a context embedding.
//
// The two roles use separate tables.
type Model struct {
	Dim int

	// Targets has one row per token ID, used when the
	// token is the target of a pair.
	Targets *anyvec.Matrix

	// Contexts has one row per token ID, used when the
	// token is the context of a pair.
	Contexts *anyvec.Matrix
}

// NewModel creates a new, randomized model with the given
// dimensions.
func NewModel(c anyvec.Creator, vocabSize, dim int) *Model {
	res := &Model{
		Dim:      dim,
		Targets:  &anyvec.Matrix{Data: c.MakeVector(vocabSize * dim), Rows: vocabSize, Cols: dim},
		Contexts: &anyvec.Matrix{Data: c.MakeVector(vocabSize * dim), Rows: vocabSize, Cols: dim},
	}
	scaler := c.MakeNumeric(math.Sqrt(1 / float64(dim)))
	for _, mat := range []*anyvec.Matrix{res.Targets, res.Contexts} {
		anyvec.Rand(mat.Data, anyvec.Normal, nil)
		mat.Data.Scale(scaler)
	}
	return res
}

// Score computes the row-major Rows-by-Cols matrix of dot
// products between each target and its contexts.
//
// Rows are gathered from both tables in chunks and scored
// with one elementwise product per chunk.
func (m *Model) Score(b *sgns.Batch) anyvec.Vector {
	c := m.Targets.Data.Creator()
	if b.Rows == 0 {
		return c.MakeVector(0)
	}
	var chunks []anyvec.Vector
	for start := 0; start < b.Rows; start += scoreChunkRows {
		end := start + scoreChunkRows
		if end > b.Rows {
			end = b.Rows
		}
		chunks = append(chunks, m.scoreRows(b, start, end))
	}
	if len(chunks) == 1 {
		return chunks[0]
	}
	return c.Concat(chunks...)
}

// Step performs a step of gradient descent on the
// sigmoid cross-entropy between the scores and the labels
// of the batch.
//
// It returns the mean cost per row before the step was
// taken.
//
// For gradient descent, the provided step size should be
// negative.
func (m *Model) Step(b *sgns.Batch, stepSize float64) float64 {
	if b.Rows == 0 {
		panic("cannot step on an empty batch")
	}
	c := m.Targets.Data.Creator()
	actualRes := anydiff.NewVar(m.Score(b))
	desiredRes := anydiff.NewConst(makeConst(c, b.Labels()))

	cost := anynet.SigmoidCE{}.Cost(desiredRes, actualRes, b.Rows)
	grad := anydiff.NewGrad(actualRes)
	cost.Propagate(makeConst(c, ones(b.Rows)), grad)

	m.backward(b, grad[actualRes], c.MakeNumeric(stepSize))
	return numericFloat(anyvec.Sum(cost.Output())) / float64(b.Rows)
}

func (m *Model) scoreRows(b *sgns.Batch, start, end int) anyvec.Vector {
	c := m.Targets.Data.Creator()
	numPairs := (end - start) * b.Cols
	targetIdx := make([]int, 0, numPairs*m.Dim)
	contextIdx := make([]int, 0, numPairs*m.Dim)
	for row := start; row < end; row++ {
		targetOff := b.Targets[row] * m.Dim
		for _, id := range b.ContextRow(row) {
			contextOff := id * m.Dim
			for k := 0; k < m.Dim; k++ {
				targetIdx = append(targetIdx, targetOff+k)
				contextIdx = append(contextIdx, contextOff+k)
			}
		}
	}

	targets := c.MakeVector(len(targetIdx))
	c.MakeMapper(m.Targets.Data.Len(), targetIdx).Map(m.Targets.Data, targets)
	contexts := c.MakeVector(len(contextIdx))
	c.MakeMapper(m.Contexts.Data.Len(), contextIdx).Map(m.Contexts.Data, contexts)

	targets.Mul(contexts)
	return anyvec.SumCols(targets, numPairs)
}

func (m *Model) backward(b *sgns.Batch, outGrad anyvec.Vector, stepSize anyvec.Numeric) {
	c := m.Targets.Data.Creator()
	for row := 0; row < b.Rows; row++ {
		targetID := b.Targets[row]
		target := extractRow(m.Targets, targetID).Copy()
		targetGrad := c.MakeVector(m.Dim)

		for col, ctxID := range b.ContextRow(row) {
			idx := row*b.Cols + col
			upstreamComp := outGrad.Slice(idx, idx+1)
			ctxRow := extractRow(m.Contexts, ctxID).Copy()

			rc := ctxRow.Copy()
			anyvec.ScaleRepeated(rc, upstreamComp)
			targetGrad.Add(rc)

			ctxGrad := target.Copy()
			anyvec.ScaleRepeated(ctxGrad, upstreamComp)
			ctxGrad.Scale(stepSize)
			ctxRow.Add(ctxGrad)
			m.Contexts.Data.Slice(ctxID*m.Dim, (ctxID+1)*m.Dim).Set(ctxRow)
		}

		targetGrad.Scale(stepSize)
		target.Add(targetGrad)
		m.Targets.Data.Slice(targetID*m.Dim, (targetID+1)*m.Dim).Set(target)
	}
}
