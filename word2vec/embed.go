package word2vec

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/tavro/nlp"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var e Embed
	serializer.RegisterTypedDeserializer(e.SerializerType(), DeserializeEmbed)
}

// Embed is a trained embedding with one row per token of
// a vocabulary.
type Embed struct {
	Vocab *nlp.Vocab

	// Vectors contains one row per token ID.
	Vectors *anyvec.Matrix
}

// DeserializeEmbed deserializes an Embed.
func DeserializeEmbed(d []byte) (*Embed, error) {
	var res Embed
	var rows, cols int
	var data *anyvecsave.S
	if err := serializer.DeserializeAny(d, &res.Vocab, &rows, &cols, &data); err != nil {
		return nil, essentials.AddCtx("deserialize Embed", err)
	}
	res.Vectors = &anyvec.Matrix{
		Data: data.Vector,
		Rows: rows,
		Cols: cols,
	}
	return &res, nil
}

// Embed creates an Embed from the target table.
//
// If avg is true, then the target and context tables are
// averaged, as suggested by the GloVe paper.
func (m *Model) Embed(v *nlp.Vocab, avg bool) *Embed {
	if v.Len() != m.Targets.Rows {
		panic("vocabulary size mismatch")
	}
	data := m.Targets.Data.Copy()
	if avg {
		data.Add(m.Contexts.Data)
		data.Scale(data.Creator().MakeNumeric(0.5))
	}
	return &Embed{
		Vocab: v,
		Vectors: &anyvec.Matrix{
			Data: data,
			Rows: m.Targets.Rows,
			Cols: m.Targets.Cols,
		},
	}
}

// Dim returns the dimensionality of the embedding.
func (e *Embed) Dim() int {
	return e.Vectors.Cols
}

// Embed returns the embedding for the token, or nil if
// the token is not in the vocabulary.
func (e *Embed) Embed(token string) anyvec.Vector {
	id, ok := e.Vocab.ID(token)
	if !ok {
		return nil
	}
	return e.EmbedID(id)
}

// EmbedID returns a copy of the embedding for the token ID.
func (e *Embed) EmbedID(id int) anyvec.Vector {
	return extractRow(e.Vectors, id).Copy()
}

// Lookup finds the n token IDs whose vectors have the
// highest cosine similarity to vec, along with their
// similarities.
func (e *Embed) Lookup(vec anyvec.Vector, n int) ([]int, []float64) {
	if vec.Len() != e.Vectors.Cols {
		panic("incorrect vector length")
	}
	if e.Vectors.Rows == 0 || n <= 0 {
		return nil, nil
	}
	sims := e.cosineSimilarities(vec)
	ids := make([]int, len(sims))
	for i := range ids {
		ids[i] = i
	}
	essentials.VoodooSort(sims, func(i, j int) bool {
		return sims[i] > sims[j]
	}, ids)
	if n < len(ids) {
		ids, sims = ids[:n], sims[:n]
	}
	return ids, sims
}

// Token looks up the token for the token ID.
func (e *Embed) Token(id int) string {
	return e.Vocab.Token(id)
}

// WriteTSV writes one vector per line to vectors and the
// corresponding token to metadata, in ID order.
//
// Vector components are tab-separated with five decimal
// places.
func (e *Embed) WriteTSV(vectors, metadata io.Writer) (err error) {
	defer essentials.AddCtxTo("write TSV", &err)
	vecOut := bufio.NewWriter(vectors)
	metaOut := bufio.NewWriter(metadata)

	values := vectorFloats(e.Vectors.Data)
	cols := e.Vectors.Cols
	var line []byte
	for id := 0; id < e.Vectors.Rows; id++ {
		line = line[:0]
		for j, x := range values[id*cols : (id+1)*cols] {
			if j > 0 {
				line = append(line, '\t')
			}
			line = strconv.AppendFloat(line, x, 'f', 5, 64)
		}
		line = append(line, '\n')
		if _, err := vecOut.Write(line); err != nil {
			return err
		}
		if _, err := metaOut.WriteString(e.Vocab.Token(id) + "\n"); err != nil {
			return err
		}
	}
	if err := vecOut.Flush(); err != nil {
		return err
	}
	return metaOut.Flush()
}

// SerializerType returns the unique ID used to serialize
// an Embed with the serializer package.
func (e *Embed) SerializerType() string {
	return "github.com/tavro/nlp/word2vec.Embed"
}

// Serialize serializes the Embed.
func (e *Embed) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		e.Vocab,
		e.Vectors.Rows,
		e.Vectors.Cols,
		&anyvecsave.S{Vector: e.Vectors.Data},
	)
}

func (e *Embed) cosineSimilarities(vec anyvec.Vector) []float64 {
	c := e.Vectors.Data.Creator()
	squares := e.Vectors.Data.Copy()
	anyvec.Pow(squares, c.MakeNumeric(2))
	norms := vectorFloats(anyvec.SumCols(squares, e.Vectors.Rows))

	product := &anyvec.Matrix{
		Data: c.MakeVector(e.Vectors.Rows),
		Rows: e.Vectors.Rows,
		Cols: 1,
	}
	vecMat := &anyvec.Matrix{Data: vec, Rows: vec.Len(), Cols: 1}
	product.Product(false, false, c.MakeNumeric(1), e.Vectors, vecMat, c.MakeNumeric(0))

	res := append([]float64{}, vectorFloats(product.Data)...)
	vecNorm := numericFloat(anyvec.Norm(vec))
	for i, dot := range res {
		denom := math.Sqrt(norms[i]) * vecNorm
		if denom == 0 {
			res[i] = 0
		} else {
			res[i] = dot / denom
		}
	}
	return res
}
