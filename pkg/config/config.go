// Package config loads the YAML configuration shared by the command line
// tools. Flags given on the command line override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-rlbwt/pkg/objectstore"
	"github.com/dd0wney/cluso-rlbwt/pkg/rlbwt"
	"github.com/dd0wney/cluso-rlbwt/pkg/textio"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root of a configuration file.
type Config struct {
	Engine  rlbwt.Config          `yaml:"engine"`
	LZ77    LZ77Config            `yaml:"lz77"`
	Input   InputConfig           `yaml:"input"`
	BWT     BWTConfig             `yaml:"bwt"`
	Logging LoggingConfig         `yaml:"logging"`
	Metrics MetricsConfig         `yaml:"metrics"`
	S3      objectstore.S3Options `yaml:"s3"`
}

// LZ77Config controls the factor stream.
type LZ77Config struct {
	// Width is the bit width of offsets and lengths in the record format.
	Width int `yaml:"width" validate:"oneof=32 64"`
}

// InputConfig controls how input text is read.
type InputConfig struct {
	// Newline is the newline remap policy: none, zero or one.
	Newline string `yaml:"newline" validate:"omitempty,oneof=none zero one"`
	// FASTA parses the input as FASTA records.
	FASTA bool `yaml:"fasta"`
	// Progress logs every N records; zero disables progress output.
	Progress int `yaml:"progress" validate:"gte=0"`
}

// BWTConfig controls BWT export.
type BWTConfig struct {
	Format string `yaml:"format" validate:"omitempty,oneof=runs snappy expanded"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// MetricsConfig names where the metrics exposition is written at exit.
type MetricsConfig struct {
	Output string `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine:  rlbwt.DefaultConfig(),
		LZ77:    LZ77Config{Width: 64},
		Input:   InputConfig{Newline: string(textio.NewlineNone), Progress: 1000},
		BWT:     BWTConfig{Format: "runs"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the file at path on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct-tag rules and the cross-field constraints.
func (c Config) Validate() error {
	v := NewValidator("config").Struct(c)
	v.When(c.Input.FASTA, func(v *Validator) {
		v.OneOf("input.newline", c.Input.Newline, []string{"", string(textio.NewlineNone)})
	})
	v.When(c.S3.AccessKeyID != "", func(v *Validator) {
		v.Required("s3.secret_access_key", c.S3.SecretAccessKey)
	})
	v.Custom("input.newline", func() error {
		_, err := textio.ParseNewlineMode(c.Input.Newline)
		return err
	})
	return v.Validate()
}

// Newline returns the parsed newline policy.
func (c Config) Newline() textio.NewlineMode {
	mode, _ := textio.ParseNewlineMode(c.Input.Newline)
	return mode
}

// Format returns the parsed BWT export format.
func (c Config) Format() rlbwt.Format {
	f, _ := rlbwt.ParseFormat(c.BWT.Format)
	return f
}
