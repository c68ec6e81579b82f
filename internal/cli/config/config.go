// Package config loads the Strata project configuration from strata.yml or
// strata.yaml, with environment variable overrides.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the Strata project configuration
type Config struct {
	ProjectName string          `mapstructure:"project_name"`
	Protocol    ProtocolConfig  `mapstructure:"protocol"`
	Generator   GeneratorConfig `mapstructure:"generator"`
}

// ProtocolConfig locates the entity definition documents
type ProtocolConfig struct {
	// Dir holds the root module's entity definition documents
	Dir string `mapstructure:"dir"`
	// Modules are additional modules contributing entity definitions
	Modules []ModuleConfig `mapstructure:"modules"`
}

// ModuleConfig is one additional module's document location
type ModuleConfig struct {
	Name string `mapstructure:"name"`
	Dir  string `mapstructure:"dir"`
}

// GeneratorConfig controls where generated code is written
type GeneratorConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// Load loads the configuration from strata.yml or strata.yaml
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("protocol.dir", "protocol")
	v.SetDefault("generator.output_dir", "generated")

	v.SetConfigName("strata")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STRATA")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(c *Config) error {
	if c.Protocol.Dir == "" {
		return fmt.Errorf("protocol.dir must not be empty")
	}
	seen := make(map[string]bool)
	for _, m := range c.Protocol.Modules {
		if m.Name == "" {
			return fmt.Errorf("every protocol module needs a name")
		}
		if m.Dir == "" {
			return fmt.Errorf("protocol module %q needs a dir", m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("protocol module %q is declared twice", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}
