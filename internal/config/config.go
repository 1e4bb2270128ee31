package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Input
	DocumentDir string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Run control
	Budget time.Duration
	RunTTL time.Duration

	// Selection caps
	MaxSections        int
	MaxSectionsPerDoc  int
	RefineSectionLimit int
	MaxSubsections     int

	// Scoring blend
	KeywordWeight  float64
	SemanticWeight float64

	// Ranking weights
	Lambda              float64
	Mu                  float64
	Nu                  float64
	RedundancyThreshold float64

	// Refinement band, in words
	RefineMinWords int
	RefineMaxWords int

	// Features
	SemanticScoring      bool
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCSIFT_API_KEY"),

		DocumentDir: envOr("DOCUMENT_DIR", "."),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		Budget: envDuration("TIME_BUDGET", 60*time.Second),
		RunTTL: envDuration("RUN_TTL", 1*time.Hour),

		MaxSections:        envInt("MAX_SECTIONS", 15),
		MaxSectionsPerDoc:  envInt("MAX_SECTIONS_PER_DOC", 10),
		RefineSectionLimit: envInt("REFINE_SECTION_LIMIT", 8),
		MaxSubsections:     envInt("MAX_SUBSECTIONS", 15),

		KeywordWeight:  envFloat("KEYWORD_WEIGHT", 0.6),
		SemanticWeight: envFloat("SEMANTIC_WEIGHT", 0.4),

		Lambda:              envFloat("RANK_LAMBDA", 0.6),
		Mu:                  envFloat("RANK_MU", 0.2),
		Nu:                  envFloat("RANK_NU", 0.2),
		RedundancyThreshold: envFloat("REDUNDANCY_THRESHOLD", 0.9),

		RefineMinWords: envInt("REFINE_MIN_WORDS", 40),
		RefineMaxWords: envInt("REFINE_MAX_WORDS", 120),

		SemanticScoring:      envBool("SEMANTIC_SCORING", true),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.Budget <= 0 {
		cfg.Budget = 60 * time.Second
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 1 * time.Hour
	}
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = 15
	}
	if cfg.MaxSectionsPerDoc <= 0 {
		cfg.MaxSectionsPerDoc = 10
	}
	if cfg.RefineSectionLimit <= 0 {
		cfg.RefineSectionLimit = 8
	}
	if cfg.MaxSubsections <= 0 {
		cfg.MaxSubsections = 15
	}
	if cfg.RefineMinWords <= 0 {
		cfg.RefineMinWords = 40
	}
	if cfg.RefineMaxWords <= cfg.RefineMinWords {
		cfg.RefineMaxWords = cfg.RefineMinWords + 80
	}

	return cfg
}

func (c Config) Validate() error {
	if c.KeywordWeight <= 0 && c.SemanticWeight <= 0 {
		return fmt.Errorf("KEYWORD_WEIGHT and SEMANTIC_WEIGHT cannot both be zero")
	}
	if c.Lambda <= 0 {
		return fmt.Errorf("RANK_LAMBDA must be positive")
	}
	if c.Mu < 0 || c.Nu < 0 {
		return fmt.Errorf("RANK_MU and RANK_NU cannot be negative")
	}
	if c.RedundancyThreshold <= 0 || c.RedundancyThreshold > 1 {
		return fmt.Errorf("REDUNDANCY_THRESHOLD must be in (0,1]")
	}
	return nil
}

// ValidateServe adds the checks only serve mode needs.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCSIFT_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
