// Package config handles loading kanban.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/paths"
)

// FileName is the name of the per-board config file inside the board directory.
const FileName = "kanban.toml"

// Config represents the kanban.toml configuration file.
type Config struct {
	History       History       `toml:"history"`
	Participation Participation `toml:"participation"`
	Categories    Categories    `toml:"categories"`
	Statuses      Statuses      `toml:"statuses"`
	Log           Log           `toml:"log"`
}

// History contains undo/redo configuration.
type History struct {
	// Limit caps the number of history entries. Zero keeps every entry.
	Limit int `toml:"limit"`

	// CoalesceToggles folds repeated toggles of one category into one entry.
	CoalesceToggles bool `toml:"coalesce-toggles"`
}

// Participation contains participation request configuration.
type Participation struct {
	// Dedupe collapses repeated requests from one user for one task.
	Dedupe bool `toml:"dedupe"`
}

// Categories contains category configuration.
type Categories struct {
	// Palette lists the colors assigned to new categories, in order.
	Palette []string `toml:"palette"`
}

// Statuses overrides the display labels of the three statuses.
type Statuses struct {
	TodoLabel  string `toml:"todo-label"`
	DoingLabel string `toml:"doing-label"`
	DoneLabel  string `toml:"done-label"`
}

// Log contains logging configuration.
type Log struct {
	// Level is a logrus level name such as "info" or "debug".
	Level string `toml:"level"`
}

// Load loads configuration from the board directory and the global config file.
// Returns an empty config if no config files exist.
func Load(boardDir string) (*Config, error) {
	globalPath, err := paths.GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(boardDir, FileName))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	if err := merged.validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.History.Limit = mergeValue(projectMeta.IsDefined("history", "limit"), projectCfg.History.Limit, globalCfg.History.Limit)
	merged.History.CoalesceToggles = mergeValue(projectMeta.IsDefined("history", "coalesce-toggles"), projectCfg.History.CoalesceToggles, globalCfg.History.CoalesceToggles)
	merged.Participation.Dedupe = mergeValue(projectMeta.IsDefined("participation", "dedupe"), projectCfg.Participation.Dedupe, globalCfg.Participation.Dedupe)
	merged.Statuses.TodoLabel = mergeString(projectMeta.IsDefined("statuses", "todo-label"), projectCfg.Statuses.TodoLabel, globalCfg.Statuses.TodoLabel)
	merged.Statuses.DoingLabel = mergeString(projectMeta.IsDefined("statuses", "doing-label"), projectCfg.Statuses.DoingLabel, globalCfg.Statuses.DoingLabel)
	merged.Statuses.DoneLabel = mergeString(projectMeta.IsDefined("statuses", "done-label"), projectCfg.Statuses.DoneLabel, globalCfg.Statuses.DoneLabel)
	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)
	if projectMeta.IsDefined("categories", "palette") {
		merged.Categories.Palette = append([]string(nil), projectCfg.Categories.Palette...)
	} else if globalMeta.IsDefined("categories", "palette") {
		merged.Categories.Palette = append([]string(nil), globalCfg.Categories.Palette...)
	}

	return &merged
}

func mergeValue[T any](projectDefined bool, projectValue, globalValue T) T {
	if projectDefined {
		return projectValue
	}
	return globalValue
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	return strings.TrimSpace(mergeValue(projectDefined, projectValue, globalValue))
}

func (c *Config) validate() error {
	if c.History.Limit < 0 {
		return fmt.Errorf("history limit must not be negative, got %d", c.History.Limit)
	}
	for _, color := range c.Categories.Palette {
		if err := board.ValidateColor(color); err != nil {
			return fmt.Errorf("categories palette: %w", err)
		}
	}
	return nil
}

// StatusTable returns the default status chain with any configured labels.
func (c *Config) StatusTable() board.StatusTable {
	return board.DefaultStatusTable().WithLabels(map[board.Status]string{
		board.StatusTodo:  c.Statuses.TodoLabel,
		board.StatusDoing: c.Statuses.DoingLabel,
		board.StatusDone:  c.Statuses.DoneLabel,
	})
}

// StoreOptions returns the board options the config describes.
func (c *Config) StoreOptions() board.Options {
	return board.Options{
		HistoryLimit:    c.History.Limit,
		CoalesceToggles: c.History.CoalesceToggles,
		Palette:         append([]string(nil), c.Categories.Palette...),
		Statuses:        c.StatusTable(),
	}
}
