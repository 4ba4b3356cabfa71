// Package config loads paber's settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"deedles.dev/paber/internal/generate"
	"deedles.dev/paber/internal/paint"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Generator names.
const (
	GeneratorRemote = "remote"
	GeneratorLocal  = "local"
)

// Config is the contents of the configuration file. Every field can be
// overridden from the command line.
type Config struct {
	Color               string        `yaml:"color"`
	Monitors            []string      `yaml:"monitors"`
	Interval            time.Duration `yaml:"interval"`
	Scale               string        `yaml:"scale"`
	RedrawOnReconfigure bool          `yaml:"redraw_on_reconfigure"`
	Namespace           string        `yaml:"namespace"`
	Generator           string        `yaml:"generator"` // "remote" or "local"
	Output              string        `yaml:"output"`    // Where generated images are saved.
	Local               Local         `yaml:"local"`

	Env Env `yaml:"-"`
}

// Local configures the local image generator.
type Local struct {
	Command string `yaml:"command"`
	Nice    int    `yaml:"nice"`
}

// Env holds the settings that only come from the environment.
type Env struct {
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"PABER_GEMINI_MODEL" default:"gemini-2.5-flash-image"`
	GeminiBaseURL string `envconfig:"PABER_GEMINI_BASE_URL"`
	ConfigPath    string `envconfig:"PABER_CONFIG"`
	LogLevel      string `envconfig:"PABER_LOG_LEVEL" default:"info"`
}

// Default returns the configuration used for anything that the file
// doesn't set.
func Default() Config {
	return Config{
		Color:               "#ffffff",
		Interval:            time.Hour,
		Scale:               paint.Stretch.String(),
		RedrawOnReconfigure: true,
		Namespace:           "paber",
		Generator:           GeneratorRemote,
		Output:              defaultOutput(),
		Local: Local{
			Command: generate.DefaultCommand,
			Nice:    19,
		},
	}
}

func defaultOutput() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "paber", "generated.png")
}

// Path returns the default location of the configuration file.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "paber", "config.yaml")
}

// Load reads a .env file from the working directory if there is one,
// then the environment, and then the configuration file named by
// $PABER_CONFIG or at Path.
func Load() (Config, error) {
	_ = godotenv.Load()

	var env Env
	err := envconfig.Process("", &env)
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	path := env.ConfigPath
	if path == "" {
		path = Path()
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg.Env = env
	return cfg, nil
}

// LoadFile reads the configuration file at path on top of Default. A
// missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %v: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks for settings that can't be used.
func (cfg Config) Validate() error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, not %v", cfg.Interval)
	}
	if _, err := paint.ParseScale(cfg.Scale); err != nil {
		return err
	}
	switch cfg.Generator {
	case GeneratorRemote, GeneratorLocal:
	default:
		return fmt.Errorf("unknown generator %q", cfg.Generator)
	}
	return nil
}

// NewGenerator returns the generator selected by the configuration. If
// local is true, the local generator is used regardless.
func (cfg Config) NewGenerator(local bool) generate.Generator {
	if local || (cfg.Generator == GeneratorLocal) {
		return generate.Local{
			Command: cfg.Local.Command,
			Nice:    cfg.Local.Nice,
		}
	}

	return generate.Remote{
		APIKey:  cfg.Env.GeminiAPIKey,
		Model:   cfg.Env.GeminiModel,
		BaseURL: cfg.Env.GeminiBaseURL,
	}
}
