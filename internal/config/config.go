package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Addr        string         `mapstructure:"addr"`
	DBPath      string         `mapstructure:"db_path"`
	Suwayomi    SuwayomiConfig `mapstructure:"suwayomi"`
	AniList     TrackerConfig  `mapstructure:"anilist"`
	MyAnimeList TrackerConfig  `mapstructure:"myanimelist"`
	Sync        SyncConfig     `mapstructure:"sync"`
	Logging     LoggingConfig  `mapstructure:"logging"`
}

type SuwayomiConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// TrackerConfig: un token vide désactive le tracker.
type TrackerConfig struct {
	Token    string `mapstructure:"token"`
	Endpoint string `mapstructure:"endpoint"`
}

type SyncConfig struct {
	Workers int `mapstructure:"workers"`
	// TrackerRequests plafonne les appels simultanés aux trackers.
	TrackerRequests int `mapstructure:"tracker_requests"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// File reçoit les logs du TUI, qui ne peut pas écrire sur le terminal.
	File string `mapstructure:"file"`
}

func Default() Config {
	return Config{
		Addr:     "127.0.0.1:8080",
		DBPath:   "mangaread.db",
		Suwayomi: SuwayomiConfig{URL: "http://127.0.0.1:4567"},
		Sync:     SyncConfig{Workers: 4, TrackerRequests: 2},
		Logging:  LoggingConfig{Level: "info", File: defaultLogPath()},
	}
}

func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "mangaread", "mangaread.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "mangaread", "mangaread.log")
	}
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "mangaread")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "mangaread")
	}
}

// Load lit le fichier de configuration (path, sinon mangaread.yaml dans le
// dossier de config ou le dossier courant) puis les variables MANGAREAD_*.
// Un fichier absent n'est pas une erreur, sauf s'il est donné explicitement.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mangaread")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MANGAREAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Suwayomi.URL = strings.TrimRight(strings.TrimSpace(cfg.Suwayomi.URL), "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AutomaticEnv ne voit que les clés connues de viper.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("addr", d.Addr)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("suwayomi.url", d.Suwayomi.URL)
	v.SetDefault("suwayomi.username", d.Suwayomi.Username)
	v.SetDefault("suwayomi.password", d.Suwayomi.Password)
	v.SetDefault("anilist.token", d.AniList.Token)
	v.SetDefault("anilist.endpoint", d.AniList.Endpoint)
	v.SetDefault("myanimelist.token", d.MyAnimeList.Token)
	v.SetDefault("myanimelist.endpoint", d.MyAnimeList.Endpoint)
	v.SetDefault("sync.workers", d.Sync.Workers)
	v.SetDefault("sync.tracker_requests", d.Sync.TrackerRequests)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr is empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db_path is empty")
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("config: sync.workers must be >= 1, got %d", c.Sync.Workers)
	}
	if c.Sync.TrackerRequests < 1 {
		return fmt.Errorf("config: sync.tracker_requests must be >= 1, got %d", c.Sync.TrackerRequests)
	}
	return nil
}
