// Package config loads the YAML configuration of the sgns
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tavro/nlp"
	"github.com/tavro/nlp/sgns"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that may hold the
// path to the config file.
const EnvPath = "SGNS_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath
// names a config file.
const DefaultPath = "sgns.yaml"

// CorpusConfig describes where sentences come from.
type CorpusConfig struct {
	Path         string `yaml:"path"`
	MaxSentences int    `yaml:"max_sentences"`
	Lowercase    bool   `yaml:"lowercase"`

	// Punctuation is one of "keep", "separate" or "drop".
	Punctuation string `yaml:"punctuation"`
}

// VocabConfig configures the vocabulary builder.
type VocabConfig struct {
	MinCount int    `yaml:"min_count"`
	SavePath string `yaml:"save_path"`
}

// PipelineConfig configures example generation.
type PipelineConfig struct {
	Threshold  float64 `yaml:"threshold"`
	Window     int     `yaml:"window"`
	NumNS      int     `yaml:"num_ns"`
	BatchSize  int     `yaml:"batch_size"`
	NSExponent float64 `yaml:"ns_exponent"`
	Seed       int64   `yaml:"seed"`
}

// TrainConfig configures the embedding model.
type TrainConfig struct {
	Dim         int     `yaml:"dim"`
	Epochs      int     `yaml:"epochs"`
	StepSize    float64 `yaml:"step_size"`
	LogInterval int     `yaml:"log_interval"`

	// Average exports the mean of the target and context
	// tables instead of the target table alone.
	Average bool `yaml:"average"`
}

// OutputConfig names the files written after training.
// Empty paths are skipped.
type OutputConfig struct {
	Vectors  string `yaml:"vectors"`
	Metadata string `yaml:"metadata"`
	Embed    string `yaml:"embed"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	LogLevel string         `yaml:"log_level"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Vocab    VocabConfig    `yaml:"vocab"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Train    TrainConfig    `yaml:"train"`
	Output   OutputConfig   `yaml:"output"`
}

// Path picks the config path: the flag value if set, then
// the EnvPath variable, then DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads a config from a path. If the file does not
// exist, the defaults are returned.
//
// The file is decoded over the defaults, so keys that are
// absent keep their default values while explicit zeros
// are kept and rejected by Validate.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the given path, creating
// directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the default configuration.
func Default() *AppConfig {
	opts := sgns.DefaultOptions()
	return &AppConfig{
		LogLevel: "info",
		Corpus:   CorpusConfig{Punctuation: "keep"},
		Vocab:    VocabConfig{MinCount: nlp.DefaultMinCount},
		Pipeline: PipelineConfig{
			Threshold:  opts.Threshold,
			Window:     opts.Window,
			NumNS:      opts.NumNS,
			BatchSize:  opts.BatchSize,
			NSExponent: opts.NSExponent,
		},
		Train: TrainConfig{
			Dim:         100,
			Epochs:      1,
			StepSize:    0.025,
			LogInterval: 10,
		},
	}
}

// Validate checks every setting. Errors wrap
// nlp.ErrConfig.
func (a *AppConfig) Validate() error {
	if _, err := logrus.ParseLevel(a.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", nlp.ErrConfig, err)
	}
	if _, err := a.Tokenizer(); err != nil {
		return err
	}
	switch {
	case a.Corpus.MaxSentences < 0:
		return fmt.Errorf("%w: max_sentences must be non-negative", nlp.ErrConfig)
	case a.Vocab.MinCount <= 0:
		return fmt.Errorf("%w: min_count must be positive", nlp.ErrConfig)
	case a.Train.Dim <= 0:
		return fmt.Errorf("%w: dim must be positive", nlp.ErrConfig)
	case a.Train.Epochs <= 0:
		return fmt.Errorf("%w: epochs must be positive", nlp.ErrConfig)
	case !(a.Train.StepSize > 0):
		return fmt.Errorf("%w: step_size must be positive", nlp.ErrConfig)
	case a.Train.LogInterval < 0:
		return fmt.Errorf("%w: log_interval must be non-negative", nlp.ErrConfig)
	}
	return a.Options().Validate()
}

// Options converts the pipeline section to sgns.Options.
func (a *AppConfig) Options() sgns.Options {
	return sgns.Options{
		Threshold:  a.Pipeline.Threshold,
		Window:     a.Pipeline.Window,
		NumNS:      a.Pipeline.NumNS,
		BatchSize:  a.Pipeline.BatchSize,
		NSExponent: a.Pipeline.NSExponent,
		Seed:       a.Pipeline.Seed,
	}
}

// Tokenizer builds the tokenizer described by the corpus
// section.
func (a *AppConfig) Tokenizer() (nlp.Tokenizer, error) {
	res := nlp.Tokenizer{Lowercase: a.Corpus.Lowercase}
	switch a.Corpus.Punctuation {
	case "keep", "":
		res.PunctuationMode = nlp.KeepPunctuation
	case "separate":
		res.PunctuationMode = nlp.SeparatePunctuation
	case "drop":
		res.PunctuationMode = nlp.DropPunctuation
	default:
		return res, fmt.Errorf("%w: unknown punctuation mode %q", nlp.ErrConfig,
			a.Corpus.Punctuation)
	}
	return res, nil
}

// TextCorpus creates the text corpus described by the
// corpus section.
func (a *AppConfig) TextCorpus() (*nlp.TextCorpus, error) {
	if a.Corpus.Path == "" {
		return nil, fmt.Errorf("%w: corpus path is required", nlp.ErrConfig)
	}
	tok, err := a.Tokenizer()
	if err != nil {
		return nil, err
	}
	return &nlp.TextCorpus{
		Path:         a.Corpus.Path,
		MaxSentences: a.Corpus.MaxSentences,
		Tokenizer:    tok,
	}, nil
}

// Level returns the parsed log level.
func (a *AppConfig) Level() logrus.Level {
	level, err := logrus.ParseLevel(a.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
