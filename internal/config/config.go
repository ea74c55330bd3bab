package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DeleteModePositional = "positional"
	DeleteModeLinked     = "linked"

	JournalSQLite = "sqlite"
	JournalJSONL  = "jsonl"
	JournalOff    = "off"
)

type Config struct {
	// MaxLogRoots bounds the number of root-level activity log entries.
	MaxLogRoots int `yaml:"max_log_roots" json:"max_log_roots"`
	// MaxHistory bounds retained image snapshots; 0 keeps every snapshot.
	MaxHistory int `yaml:"max_history" json:"max_history"`
	// DeleteMode selects how deleting a log node picks the history entry to drop.
	DeleteMode string `yaml:"delete_mode" json:"delete_mode"`

	// Theme is auto, light or dark; Glyphs is unicode or ascii.
	Theme  string `yaml:"theme" json:"theme"`
	Glyphs string `yaml:"glyphs" json:"glyphs"`

	// Journal is sqlite, jsonl or off.
	Journal  string `yaml:"journal" json:"journal"`
	LogFile  string `yaml:"log_file" json:"log_file"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DefaultSavePath is where plain "save" writes the current image.
	DefaultSavePath string `yaml:"default_save_path" json:"default_save_path"`
}

func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.MaxLogRoots <= 0 {
		c.MaxLogRoots = 50
	}
	if c.MaxHistory < 0 {
		c.MaxHistory = 0
	}
	c.DeleteMode = strings.ToLower(strings.TrimSpace(c.DeleteMode))
	if c.DeleteMode == "" {
		c.DeleteMode = DeleteModePositional
	}
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if c.Theme == "" {
		c.Theme = "auto"
	}
	c.Glyphs = strings.ToLower(strings.TrimSpace(c.Glyphs))
	if c.Glyphs == "" {
		c.Glyphs = "unicode"
	}
	c.Journal = strings.ToLower(strings.TrimSpace(c.Journal))
	if c.Journal == "" {
		c.Journal = JournalSQLite
	}
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = "image_editor.log"
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
	if strings.TrimSpace(c.DefaultSavePath) == "" {
		c.DefaultSavePath = "temp_image.png"
	}
}

func (c *Config) Validate() error {
	switch c.DeleteMode {
	case DeleteModePositional, DeleteModeLinked:
	default:
		return fmt.Errorf("invalid delete_mode %q (want positional|linked)", c.DeleteMode)
	}
	switch c.Journal {
	case JournalSQLite, JournalJSONL, JournalOff:
	default:
		return fmt.Errorf("invalid journal %q (want sqlite|jsonl|off)", c.Journal)
	}
	switch c.Theme {
	case "auto", "light", "dark":
	default:
		return fmt.Errorf("invalid theme %q (want auto|light|dark)", c.Theme)
	}
	switch c.Glyphs {
	case "unicode", "ascii":
	default:
		return fmt.Errorf("invalid glyphs %q (want unicode|ascii)", c.Glyphs)
	}
	return nil
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.imgedit).
	if v := strings.TrimSpace(os.Getenv("IMGEDIT_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".imgedit"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ResolvePath makes p absolute relative to the config dir.
func ResolvePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

// Load reads the config file. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Keep a copy of the previous config; ignore errors so a bad backup
	// never blocks saving.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.yaml.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

// Set assigns a single key by its yaml name. c is left untouched on error.
func (c *Config) Set(key, value string) error {
	next := *c
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s: expected integer, got %q", key, value)
		}
		return n, nil
	}
	switch key {
	case "max_log_roots":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.MaxLogRoots = n
	case "max_history":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.MaxHistory = n
	case "delete_mode":
		next.DeleteMode = value
	case "theme":
		next.Theme = value
	case "glyphs":
		next.Glyphs = value
	case "journal":
		next.Journal = value
	case "log_file":
		next.LogFile = value
	case "log_level":
		next.LogLevel = value
	case "default_save_path":
		next.DefaultSavePath = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	next.applyDefaults()
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
