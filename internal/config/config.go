package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directories landscaper writes its own files to. Neither is
// ever inside the tree being processed unless the user configures it so.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Images controls which files are considered and what montages may be written as.
type Images struct {
	Extensions    []string `toml:"extensions"`
	OutputFormats []string `toml:"output_formats"`
	MontageSuffix string   `toml:"montage_suffix"`
}

// Montage holds the per-run behaviour defaults. CLI flags override these.
type Montage struct {
	OutputFormat string `toml:"output_format"`
	Resize       bool   `toml:"resize"`
	DryRun       bool   `toml:"dry_run"`
	Disposition  string `toml:"disposition"`
	Recursive    bool   `toml:"recursive"`
}

// Archive contains configuration for archiving originals with 7-Zip.
type Archive struct {
	Binary      string `toml:"binary"`
	Extension   string `toml:"extension"`
	DirName     string `toml:"dir_name"`
	Password    string `toml:"password"`
	UsePassword bool   `toml:"use_password"`
}

// ImageMagick contains configuration for the identify/append/scale tool.
type ImageMagick struct {
	Binary string `toml:"binary"`
	// TimeoutSeconds bounds each invocation. Zero waits indefinitely.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Journal controls the SQLite ledger of produced montages.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for landscaper.
//
// Configuration sections by subsystem:
//   - Paths: log and state directories
//   - Images: candidate extensions, permitted output formats, montage suffix
//   - Montage: default run behaviour (format, resize, dry run, disposition)
//   - Archive: 7-Zip binary, archive naming and password
//   - ImageMagick: binary and optional per-call timeout
//   - Journal: SQLite montage ledger
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Images      Images      `toml:"images"`
	Montage     Montage     `toml:"montage"`
	Archive     Archive     `toml:"archive"`
	ImageMagick ImageMagick `toml:"imagemagick"`
	Journal     Journal     `toml:"journal"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/landscaper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("landscaper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log, state and journal directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.StateDir}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.Journal.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MagickBinary returns the ImageMagick executable name.
func (c *Config) MagickBinary() string {
	if b := strings.TrimSpace(c.ImageMagick.Binary); b != "" {
		return b
	}
	return defaultMagickBinary
}

// SevenZipBinary returns the 7-Zip executable name.
func (c *Config) SevenZipBinary() string {
	if b := strings.TrimSpace(c.Archive.Binary); b != "" {
		return b
	}
	return defaultArchiveBinary
}

// IsImageExtension reports whether ext (with or without the leading dot) is a
// candidate image type. Matching ignores case.
func (c *Config) IsImageExtension(ext string) bool {
	ext = normalizeExtension(ext)
	if ext == "" {
		return false
	}
	for _, allowed := range c.Images.Extensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

// IsOutputFormat reports whether format is one of the permitted montage formats.
func (c *Config) IsOutputFormat(format string) bool {
	format = normalizeExtension(format)
	for _, allowed := range c.Images.OutputFormats {
		if allowed == format {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
