// Settings of the gotlb command, read from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const DefaultFileName string = "gotlb.yaml"

var Formats = []string{"yaml", "json", "text"}

type Config struct {
	// Type library to read: a .winmd file or a YAML description.
	MetadataPath string `yaml:"metadataPath"`
	// Download the Windows metadata package when MetadataPath does not exist.
	Download bool `yaml:"download"`
	// Output format, one of Formats.
	Format string `yaml:"format"`
	// Only report interfaces with these names. Empty reports all.
	Interfaces []string `yaml:"interfaces"`
	// Skip the pass that sets the usage-role flags.
	SkipLink bool   `yaml:"skipLink"`
	LogLevel string `yaml:"logLevel"`
}

func Default() Config {
	return Config{
		MetadataPath: "Windows.Win32.winmd",
		Format:       "yaml",
		LogLevel:     "info",
	}
}

// Reads the file under path over the defaults. A missing file is not an
// error when optional is set. The result is not validated, callers apply
// their overrides first and call Validate.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("could not read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config file '%s': %w", path, err)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.MetadataPath == "" {
		return errors.New("metadataPath must not be empty")
	}
	if !slices.Contains(Formats, cfg.Format) {
		return fmt.Errorf("unknown format '%s', expected one of %v", cfg.Format, Formats)
	}
	return nil
}

// Reports whether the interface with given name should be reported.
func (cfg Config) Selects(name string) bool {
	return len(cfg.Interfaces) == 0 || slices.Contains(cfg.Interfaces, name)
}
