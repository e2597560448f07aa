package cmd

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LogConfig configures rotation of the relay's on-disk log file,
// mirroring the on-disk shape lumberjack.Logger expects.
type LogConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// Config is the top-level shape of the YAML file passed via --config
// to the serve subcommand.
type Config struct {
	Listen          string    `yaml:"listen"`
	WebsocketPrefix string    `yaml:"websocketPrefix"`
	DictionaryPath  string    `yaml:"dictionaryPath"`
	Logs            LogConfig `yaml:"logs"`
}

func defaultConfig() Config {
	return Config{
		Listen:          ":8000",
		WebsocketPrefix: "/realtime",
		Logs: LogConfig{
			Directory:  "./logs",
			MaxSizeMB:  25,
			MaxAgeDays: 7,
			MaxBackups: 5,
			Compress:   true,
		},
	}
}

// loadConfig reads and validates a YAML configuration file, filling
// in defaults for anything left unset. An empty path returns the
// defaults untouched.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}

	if cfg.DictionaryPath != "" && !filepath.IsAbs(cfg.DictionaryPath) {
		cfg.DictionaryPath = filepath.Join(filepath.Dir(path), cfg.DictionaryPath)
	}
	if cfg.Logs.Directory == "" {
		cfg.Logs.Directory = "./logs"
	}
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 25
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 7
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 5
	}
	return cfg, nil
}
