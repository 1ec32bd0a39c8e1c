// Package config loads the application configuration from file and
// environment and owns global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Matcher MatcherConfig `yaml:"matcher" mapstructure:"matcher"`
	Geo     GeoConfig     `yaml:"geo" mapstructure:"geo"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CatalogConfig names the reference turbine type files.
type CatalogConfig struct {
	Files []string `yaml:"files" mapstructure:"files"`
}

// SourcesConfig names the turbine location files to match.
type SourcesConfig struct {
	Files []string `yaml:"files" mapstructure:"files"`

	// RenameRules maps source columns to canonical names, written as
	// "'from' = to" pairs separated by commas.
	RenameRules string `yaml:"rename_rules" mapstructure:"rename_rules"`
}

// MatcherConfig configures the matching cascade.
type MatcherConfig struct {
	// ForbiddenTypes lists type strings to ignore, separated by semicolons.
	ForbiddenTypes         string `yaml:"forbidden_types" mapstructure:"forbidden_types"`
	UseProbabilisticMapper bool   `yaml:"use_probabilistic_mapper" mapstructure:"use_probabilistic_mapper"`
	UseDefaultSelector     bool   `yaml:"use_default_selector" mapstructure:"use_default_selector"`

	// RegionsFile optionally overrides the built-in region grid of the
	// default turbine selector.
	RegionsFile string `yaml:"regions_file" mapstructure:"regions_file"`
}

// ForbiddenTypesList splits the semicolon-separated forbidden type strings.
func (m MatcherConfig) ForbiddenTypesList() []string {
	if m.ForbiddenTypes == "" {
		return nil
	}
	parts := strings.Split(m.ForbiddenTypes, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GeoConfig configures country and offshore backfill from border datasets.
type GeoConfig struct {
	EEZFile        string `yaml:"eez_file" mapstructure:"eez_file"`
	LandFile       string `yaml:"land_file" mapstructure:"land_file"`
	PreferISO3     bool   `yaml:"prefer_iso3" mapstructure:"prefer_iso3"`
	UpdateCountry  bool   `yaml:"update_country" mapstructure:"update_country"`
	UpdateOffshore bool   `yaml:"update_offshore" mapstructure:"update_offshore"`
}

// OutputConfig configures the summary report files.
type OutputConfig struct {
	Directory string `yaml:"directory" mapstructure:"directory"`

	// MatchingSummary is the base summary filename; its extension may name
	// several formats, e.g. "matching_summary.[csv,txt]".
	MatchingSummary   string `yaml:"matching_summary" mapstructure:"matching_summary"`
	SummaryPerCountry bool   `yaml:"matching_summary_per_country" mapstructure:"matching_summary_per_country"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`

	// Schema optionally places the postgres result tables in a named schema.
	Schema   string `yaml:"schema" mapstructure:"schema"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the configuration for a command mode ("match" or
// "catalog") and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "match":
		if len(c.Catalog.Files) == 0 {
			problems = append(problems, "catalog.files is required")
		}
		if len(c.Sources.Files) == 0 {
			problems = append(problems, "sources.files is required")
		}
	case "catalog":
		if len(c.Catalog.Files) == 0 {
			problems = append(problems, "catalog.files is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for the postgres driver")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("JSON2TAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("matcher.use_probabilistic_mapper", true)
	v.SetDefault("matcher.use_default_selector", true)
	v.SetDefault("geo.update_country", true)
	v.SetDefault("geo.update_offshore", true)
	v.SetDefault("output.directory", ".")
	v.SetDefault("output.matching_summary", "matching_summary.[csv,txt]")
	v.SetDefault("output.matching_summary_per_country", false)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "json2tab.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
