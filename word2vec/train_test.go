package word2vec

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavro/nlp"
	"github.com/tavro/nlp/sgns"
	"github.com/unixpickle/anyvec/anyvec32"
)

type sliceSource struct {
	batches []*sgns.Batch
	err     error
}

func (s *sliceSource) Next() (*sgns.Batch, error) {
	if len(s.batches) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	res := s.batches[0]
	s.batches = s.batches[1:]
	return res, nil
}

func TestTrainerTrain(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var costs []float64
	trainer := &Trainer{
		Model:       NewModel(anyvec32.CurrentCreator(), 6, 4),
		StepSize:    -0.05,
		Log:         logger,
		LogInterval: 2,
		StatusFunc: func(b *sgns.Batch, cost float64) {
			costs = append(costs, cost)
		},
	}
	source := &sliceSource{}
	for i := 0; i < 5; i++ {
		source.batches = append(source.batches, testBatch())
	}
	n, err := trainer.Train(nil, source)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, costs, 5)
	assert.Len(t, hook.AllEntries(), 2)
}

func TestTrainerError(t *testing.T) {
	expected := errors.New("read failed")
	trainer := &Trainer{Model: NewModel(anyvec32.CurrentCreator(), 6, 4), StepSize: -0.05}
	source := &sliceSource{batches: []*sgns.Batch{testBatch()}, err: expected}
	n, err := trainer.Train(nil, source)
	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), expected.Error())
}

func TestTrainerDone(t *testing.T) {
	done := make(chan struct{})
	close(done)
	trainer := &Trainer{Model: NewModel(anyvec32.CurrentCreator(), 6, 4), StepSize: -0.05}
	n, err := trainer.Train(done, &sliceSource{batches: []*sgns.Batch{testBatch()}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestTrainerBatcher(t *testing.T) {
	corpus := nlp.SliceCorpus{
		{"the", "cat", "sat", "on", "the", "mat"},
		{"the", "dog", "sat", "on", "the", "log"},
	}
	v, err := nlp.BuildVocab(corpus, 1)
	require.NoError(t, err)

	opts := sgns.DefaultOptions()
	opts.Threshold = 1
	opts.BatchSize = 4
	opts.NumNS = 2
	opts.Seed = 3

	batcher, err := sgns.NewBatcher(v, corpus, opts)
	require.NoError(t, err)
	defer batcher.Close()

	trainer := &Trainer{Model: NewModel(anyvec32.CurrentCreator(), v.Len(), 5), StepSize: -0.05}
	n, err := trainer.Train(nil, batcher)
	require.NoError(t, err)
	assert.Equal(t, batcher.Stats().Batches, n)
	assert.True(t, n > 0)

	e := trainer.Model.Embed(v, false)
	ids, _ := e.Lookup(e.Embed("cat"), 1)
	assert.Equal(t, []int{1}, ids)
}
