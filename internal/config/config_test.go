package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PostsDir != "_posts" {
		t.Errorf("PostsDir = %q", cfg.PostsDir)
	}
	if cfg.MaxPosts != 10 {
		t.Errorf("MaxPosts = %d", cfg.MaxPosts)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.RetentionWindow != 7*24*time.Hour {
		t.Errorf("RetentionWindow = %s", cfg.RetentionWindow)
	}
	if cfg.FreshnessWindow != 0 {
		t.Errorf("FreshnessWindow = %s, want disabled", cfg.FreshnessWindow)
	}
	if cfg.MinBodyLen != 500 {
		t.Errorf("MinBodyLen = %d", cfg.MinBodyLen)
	}
	if len(cfg.RelevanceKeywords) == 0 {
		t.Error("RelevanceKeywords empty")
	}
	if len(cfg.Topics) == 0 {
		t.Error("Topics empty")
	}
	if cfg.FallbackHero != "hero-default.jpg" {
		t.Errorf("FallbackHero = %q", cfg.FallbackHero)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	content := `
posts_dir: site/_posts
max_posts: 3
http_timeout: 5s
freshness_window: 48h
relevance_keywords:
  - " AI "
  - ""
  - Robotics
log_level: DEBUG
`
	path := filepath.Join(t.TempDir(), "postsmith.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PostsDir != "site/_posts" {
		t.Errorf("PostsDir = %q", cfg.PostsDir)
	}
	if cfg.MaxPosts != 3 {
		t.Errorf("MaxPosts = %d", cfg.MaxPosts)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.FreshnessWindow != 48*time.Hour {
		t.Errorf("FreshnessWindow = %s", cfg.FreshnessWindow)
	}
	if len(cfg.RelevanceKeywords) != 2 || cfg.RelevanceKeywords[0] != "ai" || cfg.RelevanceKeywords[1] != "robotics" {
		t.Errorf("RelevanceKeywords = %v, want sanitized", cfg.RelevanceKeywords)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want lower-cased", cfg.LogLevel)
	}

	// Untouched keys keep their defaults.
	if cfg.MinExcerptLen != 140 {
		t.Errorf("MinExcerptLen = %d", cfg.MinExcerptLen)
	}
}

func TestLoadKeepsHeroFilenameCase(t *testing.T) {
	content := `
generic_heroes:
  - " Hero-Circuit.JPG "
  - ""
  - hero-grid.jpg
fallback_hero: " Hero-Default.jpg "
`
	path := filepath.Join(t.TempDir(), "postsmith.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"Hero-Circuit.JPG", "hero-grid.jpg"}
	if len(cfg.GenericHeroes) != len(want) {
		t.Fatalf("GenericHeroes = %v, want %v", cfg.GenericHeroes, want)
	}
	for i := range want {
		if cfg.GenericHeroes[i] != want[i] {
			t.Errorf("GenericHeroes[%d] = %q, want %q", i, cfg.GenericHeroes[i], want[i])
		}
	}
	if cfg.FallbackHero != "Hero-Default.jpg" {
		t.Errorf("FallbackHero = %q, want trimmed with case kept", cfg.FallbackHero)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"zero max_posts", "max_posts: 0\n"},
		{"negative timeout", "http_timeout: -1s\n"},
		{"zero retention", "retention_window: 0\n"},
		{"blank posts dir", "posts_dir: \"  \"\n"},
		{"blank fallback hero", "fallback_hero: \"\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "postsmith.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted invalid config")
			}
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postsmith.yaml")
	if err := os.WriteFile(path, []byte(":: not yaml ::"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed yaml")
	}
}
