package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultProjectFile is the optional per-project configuration file.
const DefaultProjectFile = ".cjk-extractor.yml"

// Config holds every setting the tool reads.
type Config struct {
	ExcludeDirs     []string
	IncludeComments bool
	FileExtensions  []string
	WorkerCount     int

	TranslateFile        string
	ConstKeyFile         string
	GenerateConstKeyFile bool
	Namespace            string
	AggregatorClass      string

	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ExcludeDirs:          []string{".git", "build", "node_modules", ".dart_tool"},
		IncludeComments:      false,
		FileExtensions:       []string{".dart"},
		WorkerCount:          8,
		TranslateFile:        "translate/translate.json",
		ConstKeyFile:         "lib/i18n/const_key.dart",
		GenerateConstKeyFile: true,
		Namespace:            "Ikey",
		AggregatorClass:      "I18nKey",
		DatabaseURL:          "postgres://localhost:5432/cjk_extractor?sslmode=disable",
		Neo4jURI:             "bolt://localhost:7687",
		Neo4jUser:            "neo4j",
		Neo4jPassword:        "password",
	}
}

// ProjectFile mirrors the YAML project configuration.
type ProjectFile struct {
	Scan      ScanSection      `yaml:"scan"`
	Translate TranslateSection `yaml:"translate"`
}

// ScanSection holds walker settings.
type ScanSection struct {
	ExcludeDirs     []string `yaml:"exclude_dirs,omitempty"`
	IncludeComments *bool    `yaml:"include_comments,omitempty"`
	FileExtensions  []string `yaml:"file_extensions,omitempty"`
	Workers         int      `yaml:"workers,omitempty"`
}

// TranslateSection holds table and generator settings.
type TranslateSection struct {
	File                 string `yaml:"file,omitempty"`
	ConstKeyFile         string `yaml:"const_key_file,omitempty"`
	GenerateConstKeyFile *bool  `yaml:"generate_const_key_file,omitempty"`
	Namespace            string `yaml:"namespace,omitempty"`
	AggregatorClass      string `yaml:"aggregator_class,omitempty"`
}

// Load builds the configuration: defaults, then the YAML project file (if
// present), then .env and the process environment.
func Load(projectFile string) (*Config, error) {
	cfg := Default()

	if projectFile == "" {
		projectFile = DefaultProjectFile
	}
	pf, err := LoadProjectFile(projectFile)
	if err != nil {
		return nil, err
	}
	pf.Apply(cfg)

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	cfg.applyEnv()

	return cfg, nil
}

// LoadProjectFile parses a YAML project file. A missing file yields an empty
// ProjectFile.
func LoadProjectFile(path string) (*ProjectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ProjectFile{}, nil
		}
		return nil, fmt.Errorf("read project config: %w", err)
	}

	var pf ProjectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("Loaded project config")
	return &pf, nil
}

// Apply overlays the non-empty project settings onto cfg.
func (pf *ProjectFile) Apply(cfg *Config) {
	if pf == nil {
		return
	}
	if len(pf.Scan.ExcludeDirs) > 0 {
		cfg.ExcludeDirs = pf.Scan.ExcludeDirs
	}
	if pf.Scan.IncludeComments != nil {
		cfg.IncludeComments = *pf.Scan.IncludeComments
	}
	if len(pf.Scan.FileExtensions) > 0 {
		cfg.FileExtensions = pf.Scan.FileExtensions
	}
	if pf.Scan.Workers > 0 {
		cfg.WorkerCount = pf.Scan.Workers
	}
	if pf.Translate.File != "" {
		cfg.TranslateFile = pf.Translate.File
	}
	if pf.Translate.ConstKeyFile != "" {
		cfg.ConstKeyFile = pf.Translate.ConstKeyFile
	}
	if pf.Translate.GenerateConstKeyFile != nil {
		cfg.GenerateConstKeyFile = *pf.Translate.GenerateConstKeyFile
	}
	if pf.Translate.Namespace != "" {
		cfg.Namespace = pf.Translate.Namespace
	}
	if pf.Translate.AggregatorClass != "" {
		cfg.AggregatorClass = pf.Translate.AggregatorClass
	}
}

func (c *Config) applyEnv() {
	c.ExcludeDirs = getEnvList("SCAN_EXCLUDE_DIRS", c.ExcludeDirs)
	c.IncludeComments = getEnvBool("SCAN_INCLUDE_COMMENTS", c.IncludeComments)
	c.FileExtensions = getEnvList("SCAN_FILE_EXTENSIONS", c.FileExtensions)
	c.WorkerCount = getEnvInt("WORKER_COUNT", c.WorkerCount)
	c.TranslateFile = getEnv("TRANSLATE_FILE", c.TranslateFile)
	c.ConstKeyFile = getEnv("CONST_KEY_FILE", c.ConstKeyFile)
	c.GenerateConstKeyFile = getEnvBool("GENERATE_CONST_KEY_FILE", c.GenerateConstKeyFile)
	c.Namespace = getEnv("KEY_NAMESPACE", c.Namespace)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.Neo4jURI = getEnv("NEO4J_URI", c.Neo4jURI)
	c.Neo4jUser = getEnv("NEO4J_USER", c.Neo4jUser)
	c.Neo4jPassword = getEnv("NEO4J_PASSWORD", c.Neo4jPassword)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-integer environment value")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-boolean environment value")
		return fallback
	}
	return b
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
