package word2vec

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/tavro/nlp/sgns"
	"github.com/unixpickle/essentials"
)

// A BatchSource produces batches until it returns io.EOF.
//
// *sgns.Batcher is a BatchSource.
type BatchSource interface {
	Next() (*sgns.Batch, error)
}

// A Trainer trains a Model on a stream of batches.
type Trainer struct {
	Model *Model

	// StepSize should be negative for gradient descent.
	StepSize float64

	// Log, if non-nil, receives the mean cost every
	// LogInterval batches.
	// If LogInterval is 0, every batch is logged.
	Log         logrus.FieldLogger
	LogInterval int

	// StatusFunc, if non-nil, is called after every batch
	// with the mean cost of that batch.
	StatusFunc func(b *sgns.Batch, cost float64)
}

// Train trains on batches until the source is exhausted or
// the done channel is closed.
//
// It returns the number of batches used.
func (t *Trainer) Train(done <-chan struct{}, batches BatchSource) (int, error) {
	var numBatches int
	var costSum float64
	var costCount int
	for {
		select {
		case <-done:
			return numBatches, nil
		default:
		}

		batch, err := batches.Next()
		if err == io.EOF {
			return numBatches, nil
		} else if err != nil {
			return numBatches, essentials.AddCtx("train", err)
		}
		if batch.Rows == 0 {
			continue
		}

		cost := t.Model.Step(batch, t.StepSize)
		numBatches++
		if t.StatusFunc != nil {
			t.StatusFunc(batch, cost)
		}

		costSum += cost
		costCount++
		if t.Log != nil && costCount >= t.LogInterval {
			t.Log.WithFields(logrus.Fields{
				"batch": numBatches,
				"rows":  batch.Rows,
				"cost":  costSum / float64(costCount),
			}).Info("trained batch")
			costSum, costCount = 0, 0
		}
	}
}
