package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var stylesYAML []byte

type Config struct {
	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	Critic    string // "gemini" (default) or "openai"
	Detector  DetectorConfig
	Embedding EmbeddingConfig
	Database  DatabaseConfig
	Styles    StylesConfig
}

type GeminiConfig struct {
	APIKey        string
	ImageModel    string // defaults to gemini-2.5-flash-image
	CritiqueModel string // defaults to gemini-2.5-flash
}

type OpenAIConfig struct {
	Token string
}

type DetectorConfig struct {
	URL string // face detection server, defaults to http://localhost:8500
}

type EmbeddingConfig struct {
	URL string // defaults to http://localhost:8000
	Dim int    // defaults to 768
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty disables look history
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// StylesConfig holds the fixed palette and aesthetic catalog shipped with the binary.
type StylesConfig struct {
	Palettes   []Palette   `yaml:"palettes"`
	Aesthetics []Aesthetic `yaml:"aesthetics"`
}

// Palette is a fixed recolor palette. Keywords are matched against voice
// transcripts to pick a palette by name.
type Palette struct {
	Name       string   `yaml:"name"`
	Descriptor string   `yaml:"descriptor"`
	Keywords   []string `yaml:"keywords"`
}

// Aesthetic is a named outfit style the generation prompt can reference.
type Aesthetic struct {
	Name       string `yaml:"name"`
	Descriptor string `yaml:"descriptor"`
}

// FindPalette returns the palette with the given name, or nil.
func (s *StylesConfig) FindPalette(name string) *Palette {
	for i := range s.Palettes {
		if s.Palettes[i].Name == name {
			return &s.Palettes[i]
		}
	}
	return nil
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envOr reads an environment variable, falling back to a default when unset.
func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var styles StylesConfig
	if err := yaml.Unmarshal(stylesYAML, &styles); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded styles.yaml: " + err.Error())
	}

	return &Config{
		Gemini: GeminiConfig{
			APIKey:        os.Getenv("GEMINI_API_KEY"),
			ImageModel:    envOr("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			CritiqueModel: envOr("GEMINI_CRITIQUE_MODEL", "gemini-2.5-flash"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Critic: envOr("STYLIST_CRITIC", "gemini"),
		Detector: DetectorConfig{
			URL: os.Getenv("DETECTOR_URL"),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
			Dim: envInt("EMBEDDING_DIM", 768),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Styles: styles,
	}
}
