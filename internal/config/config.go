package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the pipeline reads. Values come from
// postsmith.yaml with POSTSMITH_* environment overrides; all heuristics
// (keywords, phrase lists, topic map) are data, not code.
type Config struct {
	PostsDir   string `mapstructure:"posts_dir"`
	AssetsDir  string `mapstructure:"assets_dir"`
	HeroDir    string `mapstructure:"hero_dir"`
	SeenDBPath string `mapstructure:"seen_db_path"`

	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	LogLevel string `mapstructure:"log_level"`

	MaxPosts        int           `mapstructure:"max_posts"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	RetentionWindow time.Duration `mapstructure:"retention_window"`
	// FreshnessWindow of zero disables the recency gate entirely.
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`

	MinTitleLen   int `mapstructure:"min_title_len"`
	MinExcerptLen int `mapstructure:"min_excerpt_len"`
	MinBodyLen    int `mapstructure:"min_body_len"`
	MaxImageBytes int `mapstructure:"max_image_bytes"`

	RelevanceKeywords []string            `mapstructure:"relevance_keywords"`
	PaywallPhrases    []string            `mapstructure:"paywall_phrases"`
	BlacklistPhrases  []string            `mapstructure:"blacklist_phrases"`
	Topics            map[string][]string `mapstructure:"topics"`
	GenericHeroes     []string            `mapstructure:"generic_heroes"`
	FallbackHero      string              `mapstructure:"fallback_hero"`
}

// Load reads the config file (optional) and environment, applies defaults,
// then sanitizes and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("POSTSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	sanitize(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults mirrors the observed deployment values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("posts_dir", "_posts")
	v.SetDefault("assets_dir", "assets/images/news")
	v.SetDefault("hero_dir", "assets/images/heroes")
	v.SetDefault("seen_db_path", ".postsmith/seen.db")
	v.SetDefault("sources_file", "sources.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_posts", 10)
	v.SetDefault("http_timeout", 15*time.Second)
	v.SetDefault("retention_window", 7*24*time.Hour)
	v.SetDefault("freshness_window", time.Duration(0))
	v.SetDefault("min_title_len", 12)
	v.SetDefault("min_excerpt_len", 140)
	v.SetDefault("min_body_len", 500)
	v.SetDefault("max_image_bytes", 5<<20)
	v.SetDefault("relevance_keywords", []string{
		"ai", "artificial intelligence", "machine learning", "deep learning",
		"llm", "large language model", "neural", "openai", "anthropic",
		"deepmind", "chatbot", "generative",
	})
	v.SetDefault("paywall_phrases", []string{
		"only available in paid plans",
		"only for subscribers",
		"subscribe to read",
	})
	v.SetDefault("blacklist_phrases", []string{
		"broadcast", "fixtures", "fixture", "tv guide", "premier league",
		"bundesliga", "kickoff", "line up", "lineup", "vs.",
	})
	v.SetDefault("topics", map[string][]string{
		"policy":    {"regulation", "policy", "law", "act", "government", "senate", "congress"},
		"chips":     {"chip", "gpu", "semiconductor", "nvidia", "tsmc", "hardware"},
		"markets":   {"stock", "shares", "market", "valuation", "ipo", "revenue", "funding"},
		"research":  {"paper", "research", "study", "benchmark", "model", "training"},
		"health":    {"health", "medical", "clinical", "drug", "diagnosis", "patient"},
		"education": {"school", "university", "student", "education", "classroom"},
	})
	v.SetDefault("generic_heroes", []string{
		"hero-circuit.jpg", "hero-grid.jpg", "hero-wave.jpg", "hero-neon.jpg",
	})
	v.SetDefault("fallback_hero", "hero-default.jpg")
}

// sanitize trims and normalizes the loaded values.
func sanitize(cfg *Config) {
	cfg.PostsDir = strings.TrimSpace(cfg.PostsDir)
	cfg.AssetsDir = strings.TrimSpace(cfg.AssetsDir)
	cfg.HeroDir = strings.TrimSpace(cfg.HeroDir)
	cfg.SeenDBPath = strings.TrimSpace(cfg.SeenDBPath)
	cfg.SourcesFile = strings.TrimSpace(cfg.SourcesFile)
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.FallbackHero = strings.TrimSpace(cfg.FallbackHero)

	cfg.RelevanceKeywords = sanitizePhrases(cfg.RelevanceKeywords)
	cfg.PaywallPhrases = sanitizePhrases(cfg.PaywallPhrases)
	cfg.BlacklistPhrases = sanitizePhrases(cfg.BlacklistPhrases)
	cfg.GenericHeroes = sanitizeNames(cfg.GenericHeroes)

	for topic, words := range cfg.Topics {
		cfg.Topics[topic] = sanitizePhrases(words)
	}
}

// sanitizeNames trims and drops empty entries, preserving case; asset
// filenames must match the files on disk exactly.
func sanitizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sanitizePhrases trims, lower-cases and drops empty entries.
func sanitizePhrases(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validate checks that required values are present and sane.
func validate(cfg *Config) error {
	if cfg.PostsDir == "" {
		return errors.New("posts_dir is required")
	}
	if cfg.AssetsDir == "" {
		return errors.New("assets_dir is required")
	}
	if cfg.SeenDBPath == "" {
		return errors.New("seen_db_path is required")
	}
	if cfg.SourcesFile == "" {
		return errors.New("sources_file is required")
	}
	if cfg.FallbackHero == "" {
		return errors.New("fallback_hero is required")
	}
	if cfg.MaxPosts <= 0 {
		return fmt.Errorf("max_posts must be positive, got %d", cfg.MaxPosts)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.RetentionWindow <= 0 {
		return fmt.Errorf("retention_window must be positive, got %s", cfg.RetentionWindow)
	}
	if cfg.MinBodyLen <= 0 {
		return fmt.Errorf("min_body_len must be positive, got %d", cfg.MinBodyLen)
	}
	if cfg.MaxImageBytes <= 0 {
		return fmt.Errorf("max_image_bytes must be positive, got %d", cfg.MaxImageBytes)
	}
	return nil
}
