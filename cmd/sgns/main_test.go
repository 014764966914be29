package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavro/nlp"
	"github.com/tavro/nlp/internal/config"
	"github.com/tavro/nlp/word2vec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/serializer"
)

func TestEpochOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Seed = 10
	assert.Equal(t, int64(10), epochOptions(cfg, 0).Seed)
	assert.Equal(t, int64(13), epochOptions(cfg, 3).Seed)
	assert.Equal(t, cfg.Pipeline.Window, epochOptions(cfg, 3).Window)

	cfg.Pipeline.Seed = 0
	for epoch := 0; epoch < 3; epoch++ {
		assert.Equal(t, int64(0), epochOptions(cfg, epoch).Seed)
	}
}

func TestLoadVocabSaveAndReload(t *testing.T) {
	logger, hook := test.NewNullLogger()
	dir := t.TempDir()
	corpus := nlp.SliceCorpus{{"a", "b", "c"}, {"b", "c"}}

	cfg := config.Default()
	cfg.Vocab.MinCount = 1
	cfg.Vocab.SavePath = filepath.Join(dir, "vocab")
	built, err := loadVocab(logger, cfg, corpus, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, built.Tokens)
	assert.Equal(t, []int{1, 2, 2}, built.Counts)
	_, err = os.Stat(cfg.Vocab.SavePath)
	require.NoError(t, err)

	// A reloaded vocabulary must not depend on the corpus.
	reloaded, err := loadVocab(logger, cfg, nlp.SliceCorpus{}, cfg.Vocab.SavePath)
	require.NoError(t, err)
	assert.Equal(t, built.Tokens, reloaded.Tokens)
	assert.Equal(t, built.Counts, reloaded.Counts)
	assert.Equal(t, built.RawTokens, reloaded.RawTokens)
	assert.NotEmpty(t, hook.AllEntries())

	_, err = loadVocab(logger, cfg, corpus, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestWriteOutputs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	vocab, err := nlp.NewVocab([]string{"x", "y"}, []int{2, 1})
	require.NoError(t, err)
	embed := word2vec.NewModel(anyvec32.CurrentCreator(), vocab.Len(), 3).Embed(vocab, false)

	cfg := config.Default()
	cfg.Output = config.OutputConfig{
		Vectors:  filepath.Join(dir, "vectors.tsv"),
		Metadata: filepath.Join(dir, "metadata.tsv"),
		Embed:    filepath.Join(dir, "embed"),
	}
	require.NoError(t, writeOutputs(logger, cfg, embed))

	metadata, err := os.ReadFile(cfg.Output.Metadata)
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", string(metadata))

	var loaded *word2vec.Embed
	require.NoError(t, serializer.LoadAny(cfg.Output.Embed, &loaded))
	assert.Equal(t, vocab.Tokens, loaded.Vocab.Tokens)
	assert.Equal(t, 3, loaded.Dim())
}
