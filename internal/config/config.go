package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/joho/godotenv"
	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/generator"
	"github.com/mcncl/jsontyper/internal/logging"
	"github.com/mcncl/jsontyper/internal/policy"
	"github.com/mcncl/jsontyper/internal/source"
	"gopkg.in/yaml.v3"
)

// serdePrelude is added to Rust output that derives serde traits.
const serdePrelude = "use serde::{Deserialize, Serialize};"

// Config represents the complete configuration for jsontyper
type Config struct {
	Language   string                `yaml:"language"`
	Package    string                `yaml:"package"`
	RootName   string                `yaml:"root_name"`
	Generation GenerationConfig      `yaml:"generation"`
	Types      map[string]TypeConfig `yaml:"types"`
	Formatting FormattingConfig      `yaml:"formatting"`

	// Directory mirroring: every .json file under Src becomes a source
	// file under Dist.
	Src  string `yaml:"src"`
	Dist string `yaml:"dist"`

	// Named sources rendered into DistRoot.
	DistRoot string        `yaml:"dist_root"`
	Sources  []source.Spec `yaml:"sources"`

	Workers int            `yaml:"workers"`
	Log     logging.Config `yaml:"log"`
}

// GenerationConfig holds the global rendering policy. PubAll, on by
// default, outranks every visibility set under types, so it must be turned
// off for a private type or field to take effect.
type GenerationConfig struct {
	PubAll            bool     `yaml:"pub_all"`
	AllOptional       bool     `yaml:"all_optional"`
	JSONMarshal       bool     `yaml:"json_marshal"`
	Derives           []string `yaml:"derives"`
	Whitelist         []string `yaml:"whitelist"`
	Blacklist         []string `yaml:"blacklist"`
	SingularizeArrays bool     `yaml:"singularize_arrays"`
	Prelude           []string `yaml:"prelude"`
}

// TypeConfig overrides the rendering of one type
type TypeConfig struct {
	Visibility string                 `yaml:"visibility"`
	Comment    string                 `yaml:"comment"`
	Attributes []string               `yaml:"attributes"`
	Fields     map[string]FieldConfig `yaml:"fields"`
}

// FieldConfig overrides the rendering of one field. Optional set to false
// requires the field even when all_optional is on.
type FieldConfig struct {
	Visibility string   `yaml:"visibility"`
	Comment    string   `yaml:"comment"`
	Attributes []string `yaml:"attributes"`
	Optional   *bool    `yaml:"optional"`
}

// FormattingConfig controls code formatting options
type FormattingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Language: string(generator.Go),
		Package:  "main",
		RootName: "RootType",
		Generation: GenerationConfig{
			PubAll:      true,
			JSONMarshal: true,
			Derives:     []string{"Debug", "Clone", "Serialize", "Deserialize"},
		},
		Types: make(map[string]TypeConfig),
		Formatting: FormattingConfig{
			Enabled: true,
		},
		Workers: runtime.NumCPU(),
		Log:     logging.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML or JSON file. A .env file next
// to it is loaded first so ${VAR} references in sources can name secrets.
// Relative paths are resolved against the config file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	dir := filepath.Dir(path)
	if err := loadDotEnv(dir); err != nil {
		return nil, errors.NewConfigError("failed to load .env file", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("failed to parse config file", err)
	}

	cfg.expandEnv()
	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(dir string) error {
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(envPath)
}

func (c *Config) expandEnv() {
	for i := range c.Sources {
		s := &c.Sources[i]
		s.URL = os.ExpandEnv(s.URL)
		s.BearerAuth = os.ExpandEnv(s.BearerAuth)
		if s.BasicAuth != nil {
			s.BasicAuth.User = os.ExpandEnv(s.BasicAuth.User)
			s.BasicAuth.Password = os.ExpandEnv(s.BasicAuth.Password)
		}
	}
}

func (c *Config) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Src = resolve(c.Src)
	c.Dist = resolve(c.Dist)
	c.DistRoot = resolve(c.DistRoot)
	c.Log.File = resolve(c.Log.File)
	for i := range c.Sources {
		if !c.Sources[i].IsRemote() {
			c.Sources[i].URL = resolve(c.Sources[i].URL)
		}
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := generator.ParseLanguage(c.Language); err != nil {
		return errors.NewConfigError("invalid language", err)
	}
	for typeName, tc := range c.Types {
		if _, err := policy.ParseVisibility(tc.Visibility); err != nil {
			return errors.NewConfigError(fmt.Sprintf("type %s", typeName), err)
		}
		for field, fc := range tc.Fields {
			if _, err := policy.ParseVisibility(fc.Visibility); err != nil {
				return errors.NewConfigError(fmt.Sprintf("field %s.%s", typeName, field), err)
			}
		}
	}
	for i, s := range c.Sources {
		if s.Name == "" || s.URL == "" {
			return errors.NewConfigError(fmt.Sprintf("source %d needs a name and a url", i), nil)
		}
	}
	return nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFileFrom(currentDir)
}

func findConfigFileFrom(currentDir string) string {
	configNames := []string{".jsontyper.yml", ".jsontyper.yaml", "jsontyper.yml", "jsontyper.yaml", "jsontyper.json"}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// TargetLanguage returns the parsed target language, defaulting to Go.
func (c *Config) TargetLanguage() generator.Language {
	lang, err := generator.ParseLanguage(c.Language)
	if err != nil {
		return generator.Go
	}
	return lang
}

// Builder converts the configuration into a generator builder.
func (c *Config) Builder() (generator.Builder, error) {
	lang, err := generator.ParseLanguage(c.Language)
	if err != nil {
		return generator.Builder{}, errors.NewConfigError("invalid language", err)
	}
	b, err := generator.NewBuilder(lang)
	if err != nil {
		return generator.Builder{}, errors.NewConfigError("invalid language", err)
	}

	g := c.Generation
	if g.PubAll {
		b = b.PubAll()
	}
	b = b.AllOptional(g.AllOptional).
		JSONMarshal(g.JSONMarshal).
		Singularize(g.SingularizeArrays).
		Package(c.Package).
		Derives(g.Derives...).
		Whitelist(g.Whitelist...).
		Blacklist(g.Blacklist...)

	prelude := g.Prelude
	if len(prelude) == 0 && lang == generator.Rust && (g.JSONMarshal || derivesSerde(g.Derives)) {
		prelude = []string{serdePrelude}
	}
	b = b.Prelude(prelude...)

	for _, typeName := range sortedKeys(c.Types) {
		tc := c.Types[typeName]
		if tc.Visibility != "" {
			vis, err := policy.ParseVisibility(tc.Visibility)
			if err != nil {
				return generator.Builder{}, errors.NewConfigError(fmt.Sprintf("type %s", typeName), err)
			}
			b = b.AddVisibility(typeName, vis)
			c.warnPubAll(typeName, vis)
		}
		if tc.Comment != "" {
			b = b.AddComment(typeName, tc.Comment)
		}
		for _, attr := range tc.Attributes {
			b = b.AddAttribute(typeName, attr)
		}

		for _, field := range sortedKeys(tc.Fields) {
			fc := tc.Fields[field]
			if fc.Visibility != "" {
				vis, err := policy.ParseVisibility(fc.Visibility)
				if err != nil {
					return generator.Builder{}, errors.NewConfigError(fmt.Sprintf("field %s.%s", typeName, field), err)
				}
				b = b.AddFieldVisibility(typeName, field, vis)
				c.warnPubAll(typeName+"."+field, vis)
			}
			if fc.Comment != "" {
				b = b.AddFieldComment(typeName, field, fc.Comment)
			}
			for _, attr := range fc.Attributes {
				b = b.AddFieldAttribute(typeName, field, attr)
			}
			if fc.Optional != nil {
				if *fc.Optional {
					b = b.AddOptional(typeName, field)
				} else {
					b = b.AddRequire(typeName, field)
				}
			}
		}
	}
	return b, nil
}

// warnPubAll notes a non-public visibility that pub_all overrides.
func (c *Config) warnPubAll(name string, vis policy.Visibility) {
	if c.Generation.PubAll && vis != policy.Public {
		slog.Debug("visibility overridden by generation.pub_all",
			slog.String("name", name),
			slog.String("visibility", vis.String()),
		)
	}
}

// derivesSerde reports whether any derive needs the serde traits in scope.
func derivesSerde(derives []string) bool {
	for _, d := range derives {
		if d == "Serialize" || d == "Deserialize" {
			return true
		}
	}
	return false
}

// Generator builds the generator described by the configuration.
func (c *Config) Generator() (*generator.Generator, error) {
	b, err := c.Builder()
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Overrides holds command-line values that take precedence over the file.
// Empty strings and false flags leave the file value alone.
type Overrides struct {
	Language    string
	Package     string
	RootName    string
	AllOptional bool
	Singularize bool
	NoFormat    bool
	Debug       bool
}

// LoadConfigWithCLI loads config with CLI argument precedence. An empty
// configPath starts from the defaults.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if o.Language != "" {
		cfg.Language = o.Language
	}
	if o.Package != "" {
		cfg.Package = o.Package
	}
	if o.RootName != "" {
		cfg.RootName = o.RootName
	}
	if o.AllOptional {
		cfg.Generation.AllOptional = true
	}
	if o.Singularize {
		cfg.Generation.SingularizeArrays = true
	}
	if o.NoFormat {
		cfg.Formatting.Enabled = false
	}
	if o.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
