// Package config provides YAML-based application configuration with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stretch/internal/core"
)

// Bounds applied by Validate.
const (
	MinTickRate  = core.MinTickRate
	MaxTickRate  = core.MaxTickRate
	MinQueueSize = 16
)

// App is the process-wide configuration.
type App struct {
	// DataDir holds the log file and the replay database.
	DataDir string `yaml:"data_dir" env:"STRETCH_DATA_DIR"`

	// SaveDir holds the user layer of each settings mapper.
	SaveDir string `yaml:"save_dir" env:"STRETCH_SAVE_DIR"`

	// ReplayDir holds recorded input streams.
	ReplayDir string `yaml:"replay_dir" env:"STRETCH_REPLAY_DIR"`

	// DBPath is the replay index. Empty means <DataDir>/stretch.db.
	DBPath string `yaml:"db_path" env:"STRETCH_DB_PATH"`

	// TickRate is the simulation rate unless tick-rate was set with
	// "stretch params set".
	TickRate int `yaml:"tick_rate" env:"STRETCH_TICK_RATE"`

	QueueSize int    `yaml:"queue_size" env:"STRETCH_QUEUE_SIZE"`
	LogLevel  string `yaml:"log_level"  env:"STRETCH_LOG_LEVEL"`
}

// Default returns the hardcoded configuration.
func Default() App {
	return App{
		DataDir:   "~/.stretch",
		SaveDir:   "~/.stretch/settings",
		ReplayDir: "~/.stretch/replays",
		TickRate:  30,
		QueueSize: 256,
		LogLevel:  "info",
	}
}

// Validate fills derived paths, expands a leading ~ in every path and clamps
// numeric fields. It fails only on an unknown log level. Call it again after
// changing fields.
func (a *App) Validate() error {
	if _, err := log.ParseLevel(a.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.LogLevel, err)
	}

	def := Default()
	if a.DataDir == "" {
		a.DataDir = def.DataDir
	}
	if a.SaveDir == "" {
		a.SaveDir = filepath.Join(a.DataDir, "settings")
	}
	if a.ReplayDir == "" {
		a.ReplayDir = filepath.Join(a.DataDir, "replays")
	}
	if a.DBPath == "" {
		a.DBPath = filepath.Join(a.DataDir, "stretch.db")
	}
	a.expandPaths()

	if a.TickRate < MinTickRate {
		a.TickRate = MinTickRate
	}
	if a.TickRate > MaxTickRate {
		a.TickRate = MaxTickRate
	}
	if a.QueueSize < MinQueueSize {
		a.QueueSize = MinQueueSize
	}
	return nil
}

// Level returns the parsed log level, or info if it is invalid.
func (a App) Level() log.Level {
	lvl, err := log.ParseLevel(a.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// expandPaths resolves a leading ~ in every path field.
func (a *App) expandPaths() {
	for _, p := range []*string{&a.DataDir, &a.SaveDir, &a.ReplayDir, &a.DBPath} {
		*p = expandHome(*p)
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
