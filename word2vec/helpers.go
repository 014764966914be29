package word2vec

import (
	"fmt"

	"github.com/unixpickle/anyvec"
)

func extractRow(mat *anyvec.Matrix, row int) anyvec.Vector {
	idx := mat.Cols * row
	return mat.Data.Slice(idx, idx+mat.Cols)
}

func numericFloat(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	}
	panic(fmt.Sprintf("unsupported numeric type: %T", n))
}

func vectorFloats(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float64:
		return data
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	}
	panic("unsupported numeric type")
}

func makeConst(c anyvec.Creator, values []float64) anyvec.Vector {
	return c.MakeVectorData(c.MakeNumericList(values))
}

func ones(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = 1
	}
	return res
}
