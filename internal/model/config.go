package model

import (
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates the stored pages and images
type PathsConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"` // Holds htmls/, images/ and answer_images/
}

// HTMLDir returns the directory of stored puzzle pages
func (p PathsConfig) HTMLDir() string {
	return filepath.Join(p.DataDir, "htmls")
}

// ImageDir returns the directory of puzzle images
func (p PathsConfig) ImageDir() string {
	return filepath.Join(p.DataDir, "images")
}

// AnswerImageDir returns the directory of answer images
func (p PathsConfig) AnswerImageDir() string {
	return filepath.Join(p.DataDir, "answer_images")
}

// CrawlConfig controls the wiki crawler
type CrawlConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	StartPage     string        `yaml:"start_page" mapstructure:"start_page"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RatePerSecond float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst         int           `yaml:"burst" mapstructure:"burst"`
	Retries       int           `yaml:"retries" mapstructure:"retries"`
	Concurrency   int           `yaml:"concurrency" mapstructure:"concurrency"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	Images        bool          `yaml:"images" mapstructure:"images"`
	Proxy         string        `yaml:"proxy" mapstructure:"proxy"`
}

// ExtractConfig controls the extraction run
type ExtractConfig struct {
	Workers   int  `yaml:"workers" mapstructure:"workers"`
	SkipEmpty bool `yaml:"skip_empty" mapstructure:"skip_empty"` // Drop records with no extracted field
}

// OutputConfig selects the sinks records are written to. Empty values disable a sink.
type OutputConfig struct {
	XLSX            string `yaml:"xlsx" mapstructure:"xlsx"`
	JSONL           string `yaml:"jsonl" mapstructure:"jsonl"`
	Markdown        string `yaml:"markdown" mapstructure:"markdown"`
	SQLite          string `yaml:"sqlite" mapstructure:"sqlite"`
	MongoURI        string `yaml:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database" mapstructure:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection" mapstructure:"mongo_collection"`
}

// LLMConfig configures the optional structuring stage
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // openai, together, ollama, anthropic; empty disables
	Model       string        `yaml:"model" mapstructure:"model"`
	Task        string        `yaml:"task" mapstructure:"task"` // input_structuring or answer_structuring
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
}

// CacheConfig configures the fetch and response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"` // e.g. ":9090"; empty disables
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir: "layton-data",
		},
		Crawl: CrawlConfig{
			BaseURL:       "https://layton.fandom.com",
			StartPage:     "/wiki/Category:All_Puzzles",
			UserAgent:     "laytoneval/1.0 (+https://github.com/ppiankov/laytoneval)",
			Timeout:       30 * time.Second,
			MaxBodyBytes:  10 * 1024 * 1024,
			RatePerSecond: 2,
			Burst:         2,
			Retries:       3,
			Concurrency:   4,
			RespectRobots: true,
			Images:        true,
		},
		Extract: ExtractConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			XLSX:            "layton-annotations.xlsx",
			MongoDatabase:   "laytoneval",
			MongoCollection: "puzzles",
		},
		LLM: LLMConfig{
			Task:        "input_structuring",
			MaxTokens:   512,
			Timeout:     60 * time.Second,
			Concurrency: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
