package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string `yaml:"address" env:"MENTOR_SERVER_ADDRESS" validate:"required"`
		Mode    string `yaml:"mode" env:"MENTOR_SERVER_MODE" validate:"oneof=debug release test"`
	} `yaml:"server"`

	// Catalog names where requirements come from: a JSON directory, a SQLite database
	// or another instance's API. The first one set wins, in that order.
	Catalog struct {
		Dir     string        `yaml:"dir" env:"MENTOR_CATALOG_DIR"`
		SQLite  string        `yaml:"sqlite" env:"MENTOR_CATALOG_SQLITE"`
		URL     string        `yaml:"url" env:"MENTOR_CATALOG_URL" validate:"omitempty,url"`
		Timeout time.Duration `yaml:"timeout" env:"MENTOR_CATALOG_TIMEOUT" validate:"gt=0"`
	} `yaml:"catalog"`

	Store struct {
		// Path of the session database; empty keeps sessions in memory
		Path       string        `yaml:"path" env:"MENTOR_STORE_PATH"`
		GCInterval time.Duration `yaml:"gc_interval" env:"MENTOR_STORE_GC_INTERVAL" validate:"gte=0"`
	} `yaml:"store"`

	Planner struct {
		MaxTermCredits int `yaml:"max_term_credits" env:"MENTOR_MAX_TERM_CREDITS" validate:"gt=0"`
		InitialTerms   int `yaml:"initial_terms" env:"MENTOR_INITIAL_TERMS" validate:"gt=0"`
	} `yaml:"planner"`

	Logging struct {
		Level  string `yaml:"level" env:"MENTOR_LOG_LEVEL" validate:"oneof=trace debug info warn error"`
		Pretty bool   `yaml:"pretty" env:"MENTOR_LOG_PRETTY"`
	} `yaml:"logging"`
}

var ErrNoCatalog = errors.New("no catalog source configured")

func Default() *Config {
	config := &Config{}
	config.Server.Address = ":8080"
	config.Server.Mode = "release"
	config.Catalog.Timeout = 5 * time.Second
	config.Store.GCInterval = 5 * time.Minute
	config.Planner.MaxTermCredits = 30
	config.Planner.InitialTerms = 1
	config.Logging.Level = "info"
	return config
}

// Load reads the YAML file at path, when it exists, over the defaults and then applies
// the environment overrides
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(content, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := loadFromEnv(reflect.ValueOf(config).Elem()); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (config *Config) Validate() error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}
	if config.Catalog.Dir == "" && config.Catalog.SQLite == "" && config.Catalog.URL == "" {
		return ErrNoCatalog
	}
	return nil
}

// loadFromEnv walks the struct and overrides every field whose env variable is set
func loadFromEnv(value reflect.Value) error {
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		structField := value.Type().Field(i)

		if field.Kind() == reflect.Struct {
			if err := loadFromEnv(field); err != nil {
				return err
			}
			continue
		}

		name := structField.Tag.Get("env")
		raw, ok := os.LookupEnv(name)
		if name == "" || !ok {
			continue
		}

		switch {
		case field.Type() == reflect.TypeOf(time.Duration(0)):
			duration, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			field.SetInt(int64(duration))
		case field.Kind() == reflect.String:
			field.SetString(raw)
		case field.Kind() == reflect.Int:
			number, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			field.SetInt(int64(number))
		case field.Kind() == reflect.Bool:
			flag, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			field.SetBool(flag)
		}
	}
	return nil
}
