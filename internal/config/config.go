package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type MemgraphConfig struct {
	Enabled  bool   `toml:"enabled"`
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// HierarchyEdge is one curated general->specific symptom relation, e.g.
// fever -> high_fever. The graph overlay writes parent->child at weight 2.0
// and child->parent at 0.5.
type HierarchyEdge struct {
	Parent   string   `toml:"parent"`
	Children []string `toml:"children"`
}

type InterviewConfig struct {
	MaxConfirmed   int `toml:"max_confirmed"`
	MaxQuestions   int `toml:"max_questions"`
	FuzzyThreshold int `toml:"fuzzy_threshold"`
}

type DataConfig struct {
	TrainingCSV string `toml:"training_csv"`
	ModelPath   string `toml:"model_path"`
}

type Config struct {
	Data      DataConfig      `toml:"data"`
	Interview InterviewConfig `toml:"interview"`
	Advisory  LLMConfig       `toml:"advisory"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Hierarchy []HierarchyEdge `toml:"hierarchy"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config usable without any config file on disk. The
// hierarchy table here is the curated taxonomy shipped with the engine.
func Default() *Config {
	cfg := &Config{
		Data: DataConfig{
			TrainingCSV: "data/training.csv",
			ModelPath:   "data/model.json",
		},
	}
	cfg.applyDefaults()
	return cfg
}

func DefaultHierarchy() []HierarchyEdge {
	return []HierarchyEdge{
		{Parent: "fever", Children: []string{"high_fever", "low_grade_fever", "night_sweats"}},
		{Parent: "pain", Children: []string{"headache", "chest_pain", "abdominal_pain", "joint_pain", "back_pain"}},
		{Parent: "rash", Children: []string{"skin_rash", "itching", "red_spots"}},
		{Parent: "fatigue", Children: []string{"weakness", "lethargy", "malaise"}},
		{Parent: "cough", Children: []string{"dry_cough", "productive_cough"}},
		{Parent: "nausea", Children: []string{"vomiting", "loss_of_appetite"}},
	}
}

func (c *Config) applyDefaults() {
	if c.Interview.MaxConfirmed <= 0 {
		c.Interview.MaxConfirmed = 5
	}
	if c.Interview.MaxQuestions <= 0 {
		c.Interview.MaxQuestions = 10
	}
	if c.Interview.FuzzyThreshold <= 0 {
		c.Interview.FuzzyThreshold = 85
	}
	if len(c.Hierarchy) == 0 {
		c.Hierarchy = DefaultHierarchy()
	}
}

// ApplyEnv overrides file values with environment variables when present,
// mirroring how the deployment tooling injects secrets.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TRAINING_CSV"); v != "" {
		c.Data.TrainingCSV = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Data.ModelPath = v
	}
	if v := os.Getenv("ADVISORY_PROVIDER"); v != "" {
		c.Advisory.Provider = v
	}
	if v := os.Getenv("ADVISORY_MODEL"); v != "" {
		c.Advisory.Model = v
	}
	if v := os.Getenv("ADVISORY_API_KEY"); v != "" {
		c.Advisory.APIKey = v
	}
	if v := os.Getenv("ADVISORY_BASE_URL"); v != "" {
		c.Advisory.BaseURL = v
	}
	if v := os.Getenv("ADVISORY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Advisory.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
		c.Memgraph.Enabled = true
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
}
