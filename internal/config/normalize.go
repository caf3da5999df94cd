package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeImages()
	c.normalizeMontage()
	c.normalizeArchive()
	c.normalizeImageMagick()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	// An empty log_dir disables the log file.
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeImages() {
	c.Images.Extensions = normalizeExtensionList(c.Images.Extensions, []string{"png", "jpg"})
	c.Images.OutputFormats = normalizeExtensionList(c.Images.OutputFormats, []string{"png", "jpg"})
	c.Images.MontageSuffix = strings.TrimSpace(c.Images.MontageSuffix)
	if c.Images.MontageSuffix == "" {
		c.Images.MontageSuffix = defaultMontageSuffix
	}
}

func (c *Config) normalizeMontage() {
	c.Montage.OutputFormat = normalizeExtension(c.Montage.OutputFormat)
	if c.Montage.OutputFormat == "" {
		c.Montage.OutputFormat = defaultOutputFormat
	}
	c.Montage.Disposition = strings.ToLower(strings.TrimSpace(c.Montage.Disposition))
	switch c.Montage.Disposition {
	case "":
		c.Montage.Disposition = defaultDisposition
	case "zip", "7z":
		c.Montage.Disposition = DispositionArchive
	case "remove":
		c.Montage.Disposition = DispositionDelete
	}
}

func (c *Config) normalizeArchive() {
	c.Archive.Binary = strings.TrimSpace(c.Archive.Binary)
	if c.Archive.Binary == "" {
		c.Archive.Binary = defaultArchiveBinary
	}
	c.Archive.Extension = normalizeExtension(c.Archive.Extension)
	if c.Archive.Extension == "" {
		c.Archive.Extension = defaultArchiveExt
	}
	c.Archive.DirName = strings.TrimSpace(c.Archive.DirName)
	if c.Archive.DirName == "" {
		c.Archive.DirName = defaultArchiveDirName
	}
	if c.Archive.Password == "" {
		if value, ok := os.LookupEnv(archivePasswordEnvName); ok {
			c.Archive.Password = value
		}
	}
}

func (c *Config) normalizeImageMagick() {
	c.ImageMagick.Binary = strings.TrimSpace(c.ImageMagick.Binary)
	if c.ImageMagick.Binary == "" {
		c.ImageMagick.Binary = defaultMagickBinary
	}
	if c.ImageMagick.TimeoutSeconds < 0 {
		c.ImageMagick.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = filepath.Join(c.Paths.StateDir, defaultJournalFile)
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func normalizeExtensionList(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := normalizeExtension(value)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
