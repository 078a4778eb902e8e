package cliloc

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// Config locates resource files and selects languages.
type Config struct {
	// DataDirs are searched in order for resource files.
	DataDirs []string `env:"CLILOC_DATA_DIRS" envDefault:"." envSeparator:":" yaml:"data_dirs"`

	// FileName overrides the file used by Store; Catalog derives file
	// names from the language instead.
	FileName string `env:"CLILOC_FILE" envDefault:"cliloc.enu" yaml:"file_name"`

	DefaultLang string   `env:"CLILOC_DEFAULT_LANG" envDefault:"en" yaml:"default_lang"`
	Languages   []string `env:"CLILOC_LANGUAGES"    envDefault:"en" yaml:"languages"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`
}

// ConfigFromEnv reads a Config from the environment.
func ConfigFromEnv() (Config, error) {
	return env.ParseAs[Config]()
}

// Level returns the configured log level, info when unset or invalid.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Store returns a Store for FileName found through DataDirs.
func (c Config) Store(opts ...Option) *Store {
	name := c.FileName
	if name == "" {
		name = DefaultFileName
	}
	path, _ := DirLocator(c.DataDirs...)(name) // DirLocator never fails
	return NewStore(path, opts...)
}

// Catalog returns a Catalog for DefaultLang and Languages.
func (c Config) Catalog(opts ...Option) (*Catalog, error) {
	def := language.English
	if c.DefaultLang != "" {
		tag, err := language.Parse(c.DefaultLang)
		if err != nil {
			return nil, fmt.Errorf("default language %q: %w", c.DefaultLang, err)
		}
		def = tag
	}

	others := make([]language.Tag, 0, len(c.Languages))
	for _, lang := range c.Languages {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", lang, err)
		}
		others = append(others, tag)
	}
	return NewCatalog(DirLocator(c.DataDirs...), def, others, opts...), nil
}
