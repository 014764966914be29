package word2vec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavro/nlp/sgns"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

func TestModelScore(t *testing.T) {
	m := NewModel(anyvec32.CurrentCreator(), 6, 4)
	b := testBatch()
	scores := vectorFloats(m.Score(b))
	require.Len(t, scores, b.Rows*b.Cols)

	targets := vectorFloats(m.Targets.Data)
	contexts := vectorFloats(m.Contexts.Data)
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			var expected float64
			tID, cID := b.Targets[row], b.Context(row, col)
			for k := 0; k < m.Dim; k++ {
				expected += targets[tID*m.Dim+k] * contexts[cID*m.Dim+k]
			}
			assert.InDelta(t, expected, scores[row*b.Cols+col], 1e-4)
		}
	}
}

func TestModelScoreChunks(t *testing.T) {
	m := NewModel(anyvec32.CurrentCreator(), 20, 3)
	gen := rand.New(rand.NewSource(1))
	b := &sgns.Batch{Rows: scoreChunkRows + 3, Cols: 4}
	b.Targets = make([]int, b.Rows)
	b.Contexts = make([]int, b.Rows*b.Cols)
	for i := range b.Targets {
		b.Targets[i] = gen.Intn(20)
	}
	for i := range b.Contexts {
		b.Contexts[i] = gen.Intn(20)
	}

	scores := vectorFloats(m.Score(b))
	require.Len(t, scores, b.Rows*b.Cols)
	for _, row := range []int{0, scoreChunkRows - 1, scoreChunkRows, b.Rows - 1} {
		target := extractRow(m.Targets, b.Targets[row])
		for col, id := range b.ContextRow(row) {
			expected := numericFloat(extractRow(m.Contexts, id).Dot(target))
			assert.InDelta(t, expected, scores[row*b.Cols+col], 1e-4)
		}
	}
	assert.Equal(t, 0, m.Score(&sgns.Batch{Cols: 4}).Len())
}

func TestModelGradient(t *testing.T) {
	res := &modelRes{
		Model: NewModel(anyvec32.CurrentCreator(), 10, 3),
		Batch: testBatch(),
	}
	res.Targets = anydiff.NewVar(res.Model.Targets.Data)
	res.Contexts = anydiff.NewVar(res.Model.Contexts.Data)
	checker := anydifftest.ResChecker{
		F: func() anydiff.Res {
			return res
		},
		V:     []*anydiff.Var{res.Targets, res.Contexts},
		Delta: 1e-2,
		Prec:  1e-3,
	}
	checker.FullCheck(t)
}

func TestModelStepReducesCost(t *testing.T) {
	m := NewModel(anyvec32.CurrentCreator(), 6, 8)
	b := testBatch()
	first := m.Step(b, -0.1)
	var last float64
	for i := 0; i < 50; i++ {
		last = m.Step(b, -0.1)
	}
	assert.Less(t, last, first)
	assert.False(t, math.IsNaN(last))
}

func TestModelStepEmpty(t *testing.T) {
	m := NewModel(anyvec32.CurrentCreator(), 6, 8)
	assert.Panics(t, func() {
		m.Step(&sgns.Batch{Cols: 3}, -0.1)
	})
}

// testBatch uses distinct IDs in each table so that one
// step of size 1 moves the parameters by exactly the
// gradient.
func testBatch() *sgns.Batch {
	return &sgns.Batch{
		Rows:     2,
		Cols:     3,
		Targets:  []int{0, 1},
		Contexts: []int{2, 3, 4, 5, 0, 1},
	}
}

type modelRes struct {
	Model    *Model
	Batch    *sgns.Batch
	Targets  *anydiff.Var
	Contexts *anydiff.Var
}

func (m *modelRes) Output() anyvec.Vector {
	cost := m.Model.Step(m.Batch, 0)
	return anyvec32.MakeVectorData([]float32{float32(cost)})
}

func (m *modelRes) Vars() anydiff.VarSet {
	res := anydiff.VarSet{}
	res.Add(m.Targets)
	res.Add(m.Contexts)
	return res
}

func (m *modelRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	modelCopy := &Model{
		Dim:      m.Model.Dim,
		Targets:  copyMatrix(m.Model.Targets),
		Contexts: copyMatrix(m.Model.Contexts),
	}
	modelCopy.Step(m.Batch, 1)
	modelCopy.Targets.Data.Sub(m.Model.Targets.Data)
	modelCopy.Contexts.Data.Sub(m.Model.Contexts.Data)

	scale := numericFloat(anyvec.Sum(u)) / float64(m.Batch.Rows)
	uScaler := u.Creator().MakeNumeric(scale)
	modelCopy.Targets.Data.Scale(uScaler)
	modelCopy.Contexts.Data.Scale(uScaler)

	if vec, ok := g[m.Targets]; ok {
		vec.Add(modelCopy.Targets.Data)
	}
	if vec, ok := g[m.Contexts]; ok {
		vec.Add(modelCopy.Contexts.Data)
	}
}

func copyMatrix(m *anyvec.Matrix) *anyvec.Matrix {
	return &anyvec.Matrix{Data: m.Data.Copy(), Rows: m.Rows, Cols: m.Cols}
}
