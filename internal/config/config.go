package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Copy      CopyConfig      `toml:"copy"`
	UI        UIConfig        `toml:"ui"`
	Log       LogConfig       `toml:"log"`
	Templates TemplatesConfig `toml:"templates"`
}

type CopyConfig struct {
	Workers int `toml:"workers"`
}

type UIConfig struct {
	ResizePoll string `toml:"resize_poll"` // Go duration, e.g. "200ms"
	QueueSize  int    `toml:"queue_size"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug | info | warn | error
}

type TemplatesConfig struct {
	Dir string `toml:"dir"`
}

func Default(templatesDir string) Config {
	return Config{
		Copy: CopyConfig{
			Workers: 20,
		},
		UI: UIConfig{
			ResizePoll: "200ms",
			QueueSize:  10,
		},
		Log: LogConfig{
			Level: "info",
		},
		Templates: TemplatesConfig{
			Dir: templatesDir,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Copy.Workers < 1 || c.Copy.Workers > 256 {
		return fmt.Errorf("copy.workers must be between 1 and 256, got %d", c.Copy.Workers)
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.UI.ResizePoll))
	if err != nil {
		return fmt.Errorf("invalid ui.resize_poll: %w", err)
	}
	if d < 10*time.Millisecond {
		return fmt.Errorf("ui.resize_poll must be at least 10ms, got %s", d)
	}
	if c.UI.QueueSize < 1 {
		return fmt.Errorf("ui.queue_size must be >= 1, got %d", c.UI.QueueSize)
	}
	if _, err := log.ParseLevel(strings.TrimSpace(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if strings.TrimSpace(c.Templates.Dir) == "" {
		return errors.New("templates.dir is required")
	}
	return nil
}

// ResizePoll returns ui.resize_poll as a duration. It assumes Validate passed.
func (c Config) ResizePoll() time.Duration {
	d, _ := time.ParseDuration(strings.TrimSpace(c.UI.ResizePoll))
	return d
}

// LogLevel returns log.level parsed, falling back to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(strings.TrimSpace(c.Log.Level))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
