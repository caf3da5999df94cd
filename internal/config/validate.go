package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateMontage(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateImages() error {
	if len(c.Images.Extensions) == 0 {
		return errors.New("images.extensions must include at least one extension")
	}
	if len(c.Images.OutputFormats) == 0 {
		return errors.New("images.output_formats must include at least one format")
	}
	if strings.ContainsAny(c.Images.MontageSuffix, `/\`) {
		return fmt.Errorf("images.montage_suffix %q must not contain path separators", c.Images.MontageSuffix)
	}
	return nil
}

func (c *Config) validateMontage() error {
	if !c.IsOutputFormat(c.Montage.OutputFormat) {
		return fmt.Errorf("montage.output_format %q must be one of %s", c.Montage.OutputFormat, strings.Join(c.Images.OutputFormats, ", "))
	}
	switch c.Montage.Disposition {
	case DispositionNone, DispositionDelete, DispositionArchive:
	default:
		return fmt.Errorf("montage.disposition %q must be one of none, delete, archive", c.Montage.Disposition)
	}
	return nil
}

func (c *Config) validateArchive() error {
	if strings.ContainsAny(c.Archive.DirName, `/\`) {
		return fmt.Errorf("archive.dir_name %q must be a single directory name", c.Archive.DirName)
	}
	if c.Archive.DirName == "." || c.Archive.DirName == ".." {
		return fmt.Errorf("archive.dir_name %q must name a subdirectory", c.Archive.DirName)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
