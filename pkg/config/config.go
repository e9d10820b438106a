package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Corpus struct {
		DocsDir string `yaml:"docs_dir"`
	} `yaml:"corpus"`

	Processor struct {
		MaxPassageWords  int `yaml:"max_passage_words"`
		MinSentenceWords int `yaml:"min_sentence_words"`
	} `yaml:"processor"`

	Retrieval struct {
		TopK     int     `yaml:"top_k"`
		MinScore float64 `yaml:"min_score"`
	} `yaml:"retrieval"`

	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		VectorDim int    `yaml:"vector_dim"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"database"`

	Scraper struct {
		MaxDepth          int      `yaml:"max_depth"`
		RateLimit         float64  `yaml:"rate_limit"`
		IgnorePatterns    []string `yaml:"ignore_patterns"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
	} `yaml:"scraper"`

	UI struct {
		Streaming bool   `yaml:"streaming"`
		Theme     string `yaml:"theme"`
	} `yaml:"ui"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"minirag.yaml",
			"minirag.yml",
			filepath.Join(os.Getenv("HOME"), ".config/minirag/config.yaml"),
			"/etc/minirag/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	// Streaming defaults on; set before unmarshal so an explicit
	// "streaming: false" in the file still takes effect
	var config Config
	config.UI.Streaming = true

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	config.UI.Streaming = true
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Corpus.DocsDir == "" {
		config.Corpus.DocsDir = "docs"
	}

	if config.Processor.MaxPassageWords == 0 {
		config.Processor.MaxPassageWords = 120
	}
	if config.Processor.MinSentenceWords == 0 {
		config.Processor.MinSentenceWords = 5
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 3
	}
	if config.Retrieval.MinScore == 0 {
		config.Retrieval.MinScore = 0.01
	}

	if config.LLM.Model == "" {
		config.LLM.Model = "mistral"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "passages"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}

	if config.Scraper.MaxDepth == 0 {
		config.Scraper.MaxDepth = 3
	}
	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if len(config.Scraper.AllowedExtensions) == 0 {
		config.Scraper.AllowedExtensions = []string{".html", ".htm", "/", ""}
	}

	if config.UI.Theme == "" {
		config.UI.Theme = "default"
	}
}

func mergeWithEnv(config *Config) {
	if docsDir := os.Getenv("MINIRAG_DOCS_DIR"); docsDir != "" {
		config.Corpus.DocsDir = docsDir
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
