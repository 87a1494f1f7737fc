package model

import "time"

// Config is the complete runtime configuration, loadable from
// ~/.mintgraph/config.yaml, MINTGRAPH_* environment variables, or CLI flags.
type Config struct {
	Graph       GraphConfig       `yaml:"graph" mapstructure:"graph"`
	Semantic    SemanticConfig    `yaml:"semantic" mapstructure:"semantic"`
	Beam        BeamConfig        `yaml:"beam" mapstructure:"beam"`
	Rank        RankConfig        `yaml:"rank" mapstructure:"rank"`
	Annotator   AnnotatorConfig   `yaml:"annotator" mapstructure:"annotator"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Embed       EmbedConfig       `yaml:"embed" mapstructure:"embed"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// GraphConfig controls graph construction.
type GraphConfig struct {
	POSFilterEnabled bool     `yaml:"pos_filter_enabled" mapstructure:"pos_filter_enabled"`
	POSFilterTags    []string `yaml:"pos_filter_tags" mapstructure:"pos_filter_tags"`
	AutoSaveGraph    bool     `yaml:"auto_save_graph" mapstructure:"auto_save_graph"`
	AutoSavePath     string   `yaml:"auto_save_path" mapstructure:"auto_save_path"`
}

// SemanticConfig controls the semantic similarity edge builder.
type SemanticConfig struct {
	Enabled             bool    `yaml:"enabled" mapstructure:"enabled"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	TopK                int     `yaml:"top_k" mapstructure:"top_k"`
	UseFastIndex        bool    `yaml:"use_fast_index" mapstructure:"use_fast_index"`
}

// BeamConfig controls the beam search engine.
type BeamConfig struct {
	BeamWidth int `yaml:"beam_width" mapstructure:"beam_width"`
	MaxDepth  int `yaml:"max_depth" mapstructure:"max_depth"`
	MaxPaths  int `yaml:"max_paths" mapstructure:"max_paths"`
}

// RankConfig controls sentence ranking.
type RankConfig struct {
	Method string `yaml:"method" mapstructure:"method"`
	Limit  int    `yaml:"limit" mapstructure:"limit"`
}

// AnnotatorConfig points at the Vietnamese annotation service.
type AnnotatorConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LLMConfig configures the entity extractor backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RPS         float64 `yaml:"rps" mapstructure:"rps"`
}

// EmbedConfig configures the word embedder backend.
type EmbedConfig struct {
	Model   string  `yaml:"model" mapstructure:"model"`
	APIKey  string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout int     `yaml:"timeout" mapstructure:"timeout"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// ConcurrencyConfig controls batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultContentPOS is the retained part-of-speech set: noun, proper noun,
// verb, adjective, noun classifier, numeral, adverb, pronoun.
var DefaultContentPOS = []string{"N", "Np", "V", "A", "Nc", "M", "R", "P"}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			POSFilterEnabled: true,
			POSFilterTags:    append([]string(nil), DefaultContentPOS...),
			AutoSaveGraph:    false,
			AutoSavePath:     "output/text_graph_{timestamp}.gexf",
		},
		Semantic: SemanticConfig{
			Enabled:             true,
			SimilarityThreshold: 0.85,
			TopK:                5,
			UseFastIndex:        true,
		},
		Beam: BeamConfig{
			BeamWidth: 10,
			MaxDepth:  6,
			MaxPaths:  20,
		},
		Rank: RankConfig{
			Method: "frequency",
			Limit:  10,
		},
		Annotator: AnnotatorConfig{
			BaseURL: "http://localhost:9000",
			Timeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:    "",
			Model:       "gpt-4o-mini",
			Timeout:     30,
			Temperature: 0.0,
			MaxTokens:   1000,
			RPS:         2,
		},
		Embed: EmbedConfig{
			Model:   "text-embedding-3-small",
			Timeout: 30,
			RPS:     5,
		},
		Output: OutputConfig{
			Dir: "output",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
