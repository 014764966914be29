// Command sgns trains skip-gram word embeddings with
// negative sampling on a text corpus.
package main

import (
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/tavro/nlp"
	"github.com/tavro/nlp/internal/config"
	"github.com/tavro/nlp/sgns"
	"github.com/tavro/nlp/word2vec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var vocabPath string
	var statsOnly bool
	flag.StringVar(&cfgPath, "config", "", "path to YAML config (default $"+config.EnvPath+
		" or "+config.DefaultPath+")")
	flag.StringVar(&vocabPath, "vocab", "", "load a saved vocabulary instead of building one")
	flag.BoolVar(&statsOnly, "stats", false, "report pipeline statistics without training")
	flag.Parse()

	log := logrus.New()
	cfg, err := config.Load(config.Path(cfgPath))
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.SetLevel(cfg.Level())

	corpus, err := cfg.TextCorpus()
	if err != nil {
		log.WithError(err).Fatal("invalid corpus")
	}

	vocab, err := loadVocab(log, cfg, corpus, vocabPath)
	if err != nil {
		log.WithError(err).Fatal("failed to create vocabulary")
	}

	if statsOnly {
		if err := reportStats(log, vocab, corpus, cfg.Options()); err != nil {
			log.WithError(err).Fatal("failed to generate examples")
		}
		return
	}

	embed, err := train(log, cfg, vocab, corpus)
	if err != nil {
		log.WithError(err).Fatal("training failed")
	}
	if err := writeOutputs(log, cfg, embed); err != nil {
		log.WithError(err).Fatal("failed to write outputs")
	}
}

func loadVocab(log logrus.FieldLogger, cfg *config.AppConfig, corpus nlp.Corpus,
	path string) (*nlp.Vocab, error) {
	var vocab *nlp.Vocab
	if path != "" {
		if err := serializer.LoadAny(path, &vocab); err != nil {
			return nil, err
		}
	} else {
		var err error
		vocab, err = nlp.BuildVocab(corpus, cfg.Vocab.MinCount)
		if err != nil {
			return nil, err
		}
	}
	log.WithFields(logrus.Fields{
		"size":        vocab.Len(),
		"total":       vocab.Total(),
		"raw_tokens":  vocab.RawTokens,
		"most_common": vocab.MostCommon(10),
	}).Info("vocabulary ready")

	if cfg.Vocab.SavePath != "" && path == "" {
		if err := serializer.SaveAny(cfg.Vocab.SavePath, vocab); err != nil {
			return nil, err
		}
		log.WithField("path", cfg.Vocab.SavePath).Info("saved vocabulary")
	}
	return vocab, nil
}

func reportStats(log logrus.FieldLogger, vocab *nlp.Vocab, corpus nlp.Corpus,
	opts sgns.Options) error {
	batcher, err := sgns.NewBatcher(vocab, corpus, opts)
	if err != nil {
		return err
	}
	defer batcher.Close()
	for {
		if _, err := batcher.Next(); err == io.EOF {
			break
		} else if err != nil {
			return err
		}
	}
	logStats(log, batcher.Stats())
	return nil
}

func train(log logrus.FieldLogger, cfg *config.AppConfig, vocab *nlp.Vocab,
	corpus nlp.Corpus) (*word2vec.Embed, error) {
	done := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		signal.Stop(c)
		log.Warn("interrupted; finishing current batch")
		close(done)
	}()

	model := word2vec.NewModel(anyvec32.CurrentCreator(), vocab.Len(), cfg.Train.Dim)
	for epoch := 0; epoch < cfg.Train.Epochs; epoch++ {
		opts := epochOptions(cfg, epoch)
		epochLog := log.WithField("epoch", epoch)
		trainer := &word2vec.Trainer{
			Model:       model,
			StepSize:    -cfg.Train.StepSize,
			Log:         epochLog,
			LogInterval: cfg.Train.LogInterval,
		}
		stats, err := trainEpoch(trainer, done, vocab, corpus, opts)
		if err != nil {
			return nil, essentials.AddCtx("epoch", err)
		}
		logStats(epochLog, stats)

		select {
		case <-done:
			return model.Embed(vocab, cfg.Train.Average), nil
		default:
		}
	}
	return model.Embed(vocab, cfg.Train.Average), nil
}

// epochOptions shifts a fixed seed by the epoch number so
// that every epoch sees different samples.
func epochOptions(cfg *config.AppConfig, epoch int) sgns.Options {
	opts := cfg.Options()
	if opts.Seed != 0 {
		opts.Seed += int64(epoch)
	}
	return opts
}

func trainEpoch(t *word2vec.Trainer, done <-chan struct{}, vocab *nlp.Vocab,
	corpus nlp.Corpus, opts sgns.Options) (sgns.BatchStats, error) {
	batcher, err := sgns.NewBatcher(vocab, corpus, opts)
	if err != nil {
		return sgns.BatchStats{}, err
	}
	defer batcher.Close()
	if _, err := t.Train(done, batcher); err != nil {
		return sgns.BatchStats{}, err
	}
	return batcher.Stats(), nil
}

func logStats(log logrus.FieldLogger, stats sgns.BatchStats) {
	log.WithFields(logrus.Fields{
		"sentences":      stats.Sentences,
		"kept_sentences": stats.Kept,
		"tokens":         stats.Tokens,
		"kept_tokens":    stats.KeptTokens,
		"retention":      stats.Retention(),
		"positives":      stats.Positives,
		"positive_ratio": stats.PositiveRatio(),
		"batches":        stats.Batches,
	}).Info("pipeline statistics")
}

func writeOutputs(log logrus.FieldLogger, cfg *config.AppConfig, embed *word2vec.Embed) error {
	out := cfg.Output
	if out.Vectors != "" && out.Metadata != "" {
		if err := writeTSV(embed, out.Vectors, out.Metadata); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"vectors":  out.Vectors,
			"metadata": out.Metadata,
		}).Info("wrote TSV files")
	}
	if out.Embed != "" {
		if err := serializer.SaveAny(out.Embed, embed); err != nil {
			return err
		}
		log.WithField("path", out.Embed).Info("saved embedding")
	}
	return nil
}

func writeTSV(embed *word2vec.Embed, vectorsPath, metadataPath string) (err error) {
	vectors, err := os.Create(vectorsPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := vectors.Close(); err == nil {
			err = closeErr
		}
	}()
	metadata, err := os.Create(metadataPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := metadata.Close(); err == nil {
			err = closeErr
		}
	}()
	return embed.WriteTSV(vectors, metadata)
}
