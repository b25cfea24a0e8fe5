package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dianapaula19/intoxicated-speech-detection/annotation"
	"github.com/dianapaula19/intoxicated-speech-detection/corpus"
	"github.com/dianapaula19/intoxicated-speech-detection/features"
	"github.com/dianapaula19/intoxicated-speech-detection/utils"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Bundle file formats.
const (
	FormatGob  = "gob"
	FormatJSON = "json"
)

// Config is the full job configuration.
type Config struct {
	Corpus   CorpusConfig    `yaml:"corpus"`
	Features features.Config `yaml:"features"`
	Output   OutputConfig    `yaml:"output"`
	Catalog  CatalogConfig   `yaml:"catalog"`
	Log      LogConfig       `yaml:"log"`
	Progress bool            `yaml:"progress"`
}

// CorpusConfig describes where recordings live and how they are named.
type CorpusConfig struct {
	Root              string `yaml:"root" validate:"required"`
	AudioSuffix       string `yaml:"audio_suffix" validate:"required"`
	AnnotationSuffix  string `yaml:"annotation_suffix" validate:"required"`
	IdentityDelimiter string `yaml:"identity_delimiter" validate:"required"`
	IntoxicatedValue  string `yaml:"intoxicated_value" validate:"required"`
}

type OutputConfig struct {
	SummaryCSV string `yaml:"summary_csv" validate:"required"`
	BundleDir  string `yaml:"bundle_dir" validate:"required"`
	Format     string `yaml:"format" validate:"oneof=gob json"`
}

// CatalogConfig selects the optional run catalog. An empty driver disables it.
type CatalogConfig struct {
	Driver   string `yaml:"driver" validate:"omitempty,oneof=sqlite sqlite3 mongo mongodb"`
	DSN      string `yaml:"dsn" validate:"required_with=Driver"`
	Database string `yaml:"database"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the ALC corpus layout with 13x100 MFCC bundles.
func Default() Config {
	return Config{
		Corpus: CorpusConfig{
			Root:              "ALC",
			AudioSuffix:       corpus.DefaultAudioSuffix,
			AnnotationSuffix:  corpus.DefaultAnnotationSuffix,
			IdentityDelimiter: corpus.DefaultIdentityDelimiter,
			IntoxicatedValue:  annotation.DefaultIntoxicatedValue,
		},
		Features: features.DefaultConfig(),
		Output: OutputConfig{
			SummaryCSV: "annotation_analysis.csv",
			BundleDir:  "Processed_Stats_ALC",
			Format:     FormatGob,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Progress: true,
	}
}

// Load layers the YAML file at path (skipped when path is empty) and then the
// ISD_* environment over Default. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Corpus.Root = utils.GetEnv("ISD_ROOT", c.Corpus.Root)
	c.Corpus.IntoxicatedValue = utils.GetEnv("ISD_INTOXICATED_VALUE", c.Corpus.IntoxicatedValue)

	c.Features.FrameLength = utils.GetEnvInt("ISD_FRAME_LENGTH", c.Features.FrameLength)
	c.Features.Coefficients = utils.GetEnvInt("ISD_COEFFICIENTS", c.Features.Coefficients)

	c.Output.SummaryCSV = utils.GetEnv("ISD_SUMMARY_CSV", c.Output.SummaryCSV)
	c.Output.BundleDir = utils.GetEnv("ISD_BUNDLE_DIR", c.Output.BundleDir)
	c.Output.Format = utils.GetEnv("ISD_BUNDLE_FORMAT", c.Output.Format)

	c.Catalog.Driver = utils.GetEnv("ISD_CATALOG_DRIVER", c.Catalog.Driver)
	c.Catalog.DSN = utils.GetEnv("ISD_CATALOG_DSN", c.Catalog.DSN)
	c.Catalog.Database = utils.GetEnv("ISD_CATALOG_DATABASE", c.Catalog.Database)

	c.Log.Level = utils.GetEnv("ISD_LOG_LEVEL", c.Log.Level)
	c.Log.Format = utils.GetEnv("ISD_LOG_FORMAT", c.Log.Format)

	c.Progress = utils.GetEnvBool("ISD_PROGRESS", c.Progress)
}

// Validate checks the struct tags and reports every failing field.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
