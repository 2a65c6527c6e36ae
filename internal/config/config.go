package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Alexander-D-Karpov/sides/internal/platform"
)

const EnvPrefix = "SIDES"

type Config struct {
	Debug bool `mapstructure:"debug"`

	Release struct {
		Title       string `mapstructure:"title"`
		Background  string `mapstructure:"background"`
		Artwork     string `mapstructure:"artwork"`
		CatalogFile string `mapstructure:"catalog_file"`
	} `mapstructure:"release"`

	Assets struct {
		Dir               string  `mapstructure:"dir"`
		BaseURL           string  `mapstructure:"base_url"`
		Timeout           int     `mapstructure:"timeout"`
		Retries           int     `mapstructure:"retries"`
		RequestsPerSecond float64 `mapstructure:"requests_per_second"`
		BurstSize         int     `mapstructure:"burst_size"`
		UserAgent         string  `mapstructure:"user_agent"`
	} `mapstructure:"assets"`

	Storage struct {
		CacheDir string `mapstructure:"cache_dir"`
	} `mapstructure:"storage"`

	Audio struct {
		SampleRate      int  `mapstructure:"sample_rate"`
		BufferMs        int  `mapstructure:"buffer_ms"`
		ResampleQuality int  `mapstructure:"resample_quality"`
		TimeUpdateMs    int  `mapstructure:"time_update_ms"`
		PlatformOptimal bool `mapstructure:"platform_optimal"`
	} `mapstructure:"audio"`

	UI struct {
		Theme         string `mapstructure:"theme"`
		WindowWidth   int    `mapstructure:"window_width"`
		WindowHeight  int    `mapstructure:"window_height"`
		ShowRemaining bool   `mapstructure:"show_remaining"`
	} `mapstructure:"ui"`

	v *viper.Viper
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"debug":      "debug",
	"assets-dir": "assets.dir",
	"assets-url": "assets.base_url",
	"catalog":    "release.catalog_file",
	"theme":      "ui.theme",
	"remaining":  "ui.show_remaining",
}

// Flags returns the flag set understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("sides", pflag.ContinueOnError)
	fs.String("config", "", "Path to configuration file")
	fs.Bool("debug", false, "Enable debug logging")
	fs.String("assets-dir", "", "Directory holding the release audio and images")
	fs.String("assets-url", "", "Base URL to fetch release assets from")
	fs.String("catalog", "", "YAML tracklist replacing the built-in one")
	fs.String("theme", "", "Theme variant (dark or light)")
	fs.Bool("remaining", false, "Show remaining time instead of total duration")
	return fs
}

// Load reads configuration from the given file (or the default search path),
// the environment and, when non-nil, the parsed flag set.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir, err := platform.GetConfigDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(configDir)
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	optimizeForPlatform(cfg)

	return cfg, nil
}

func DefaultMobileConfig() *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{v: v}
	_ = v.Unmarshal(cfg)

	cfg.UI.WindowWidth = 400
	cfg.UI.WindowHeight = 800
	cfg.Audio.BufferMs = 200

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("release.title", "Steve and John's Album")
	v.SetDefault("release.background", "Yutah.jpg")
	v.SetDefault("release.artwork", "stevejohn.png")
	v.SetDefault("release.catalog_file", "")

	v.SetDefault("assets.dir", platform.GetAssetsDir())
	v.SetDefault("assets.base_url", "")
	v.SetDefault("assets.timeout", 30)
	v.SetDefault("assets.retries", 3)
	v.SetDefault("assets.requests_per_second", 4)
	v.SetDefault("assets.burst_size", 2)
	v.SetDefault("assets.user_agent", "Sides/1.0.0")

	cacheDir, _ := platform.GetCacheDir()
	v.SetDefault("storage.cache_dir", cacheDir)

	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.buffer_ms", getDefaultBufferMs())
	v.SetDefault("audio.resample_quality", 4)
	v.SetDefault("audio.time_update_ms", 250)
	v.SetDefault("audio.platform_optimal", true)

	v.SetDefault("ui.theme", "dark")
	v.SetDefault("ui.window_width", 960)
	v.SetDefault("ui.window_height", 640)
	v.SetDefault("ui.show_remaining", false)
}

func getDefaultBufferMs() int {
	switch runtime.GOOS {
	case "linux", "android":
		return 200
	default:
		return 100
	}
}

func optimizeForPlatform(cfg *Config) {
	if !cfg.Audio.PlatformOptimal {
		return
	}

	switch runtime.GOOS {
	case "linux":
		if cfg.Audio.BufferMs < 100 {
			cfg.Audio.BufferMs = 200
		}
	case "android":
		cfg.Audio.BufferMs = 200
		cfg.UI.WindowWidth = 400
		cfg.UI.WindowHeight = 800
	}

	if cfg.Audio.TimeUpdateMs <= 0 {
		cfg.Audio.TimeUpdateMs = 250
	}
}

func ensureDirectories(cfg *Config) error {
	if cfg.Storage.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Storage.CacheDir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	return nil
}

// Save writes the current settings to config.yaml in the platform config dir.
func (c *Config) Save() error {
	configDir, err := platform.GetConfigDir()
	if err != nil {
		return err
	}
	return c.SaveAs(filepath.Join(configDir, "config.yaml"))
}

func (c *Config) SaveAs(path string) error {
	if c.v == nil {
		c.v = viper.New()
		setDefaults(c.v)
	}

	c.v.Set("ui.theme", c.UI.Theme)
	c.v.Set("ui.window_width", c.UI.WindowWidth)
	c.v.Set("ui.window_height", c.UI.WindowHeight)
	c.v.Set("ui.show_remaining", c.UI.ShowRemaining)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return c.v.WriteConfigAs(path)
}
