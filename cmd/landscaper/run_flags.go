package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"landscaper/internal/config"
	"landscaper/internal/montage"
	"landscaper/internal/services"
)

type runFlags struct {
	outputFormat    string
	dryRun          bool
	resize          bool
	deleteOriginals bool
	zipOriginals    bool
	noPassword      bool
	passwordPrompt  bool
	noRecursive     bool
	noJournal       bool
}

// runSettings is the effective configuration of one run after flags are
// layered over the loaded config.
type runSettings struct {
	Options   montage.Options `json:"-"`
	Format    string          `json:"output_format"`
	Resize    bool            `json:"resize"`
	DryRun    bool            `json:"dry_run"`
	Dispose   string          `json:"disposition"`
	Password  bool            `json:"password"`
	Recursive bool            `json:"recursive"`
	Journal   bool            `json:"journal"`
}

func (f *runFlags) bind(cmd *cobra.Command, recursion bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.outputFormat, "output-format", "o", "", "Montage output format (e.g. jpg, png)")
	flags.BoolVarP(&f.dryRun, "dry", "s", false, "Skip composing montages")
	flags.BoolVarP(&f.resize, "resize", "r", false, "Rescale the taller image so heights match")
	flags.BoolVarP(&f.deleteOriginals, "delete-originals", "d", false, "Delete source images after composing")
	flags.BoolVarP(&f.zipOriginals, "zip-originals", "z", false, "Move source images into 7z archives after composing")
	flags.BoolVarP(&f.noPassword, "no-password", "n", false, "Create archives without a password")
	flags.BoolVar(&f.passwordPrompt, "password-prompt", false, "Read the archive password from the terminal")
	flags.BoolVar(&f.noJournal, "no-journal", false, "Do not record the run in the journal")
	if recursion {
		flags.BoolVar(&f.noRecursive, "no-recursive", false, "Only process the top-level directory")
	}
	cmd.MarkFlagsMutuallyExclusive("delete-originals", "zip-originals")
	cmd.MarkFlagsMutuallyExclusive("no-password", "password-prompt")
}

// resolve layers the flags over cfg. The prompt reader is only consulted when
// --password-prompt applies.
func (f *runFlags) resolve(cmd *cobra.Command, cfg *config.Config) (runSettings, error) {
	settings := runSettings{
		Format:    cfg.Montage.OutputFormat,
		Resize:    cfg.Montage.Resize || f.resize,
		DryRun:    cfg.Montage.DryRun || f.dryRun,
		Dispose:   cfg.Montage.Disposition,
		Password:  cfg.Archive.UsePassword && !f.noPassword,
		Recursive: cfg.Montage.Recursive && !f.noRecursive,
		Journal:   cfg.Journal.Enabled && !f.noJournal,
	}
	if format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f.outputFormat), ".")); format != "" {
		if !cfg.IsOutputFormat(format) {
			return runSettings{}, services.Wrap(services.ErrValidation, "cli", "output-format",
				fmt.Sprintf("unsupported format %q (allowed: %s)", format, strings.Join(cfg.Images.OutputFormats, ", ")), nil)
		}
		settings.Format = format
	}
	switch {
	case f.deleteOriginals:
		settings.Dispose = config.DispositionDelete
	case f.zipOriginals:
		settings.Dispose = config.DispositionArchive
	}

	password := cfg.Archive.Password
	if settings.Dispose == config.DispositionArchive && settings.Password {
		if f.passwordPrompt {
			value, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return runSettings{}, err
			}
			password = value
		}
		if password == "" {
			return runSettings{}, services.Wrap(services.ErrConfiguration, "cli", "archive password",
				"no password set (use archive.password, LANDSCAPER_ARCHIVE_PASSWORD, --password-prompt or --no-password)", nil)
		}
	}

	settings.Options = montage.Options{
		Resize:           settings.Resize,
		OutputFormat:     settings.Format,
		DryRun:           settings.DryRun,
		Disposition:      montage.Disposition(settings.Dispose),
		ArchivePassword:  password,
		UsePassword:      settings.Password,
		ArchiveExtension: cfg.Archive.Extension,
		ArchiveDirName:   cfg.Archive.DirName,
		Suffix:           cfg.Images.MontageSuffix,
	}
	return settings, nil
}

func (s runSettings) encode() string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func promptPassword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Archive password: ")
	defer fmt.Fprintln(out)
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		data, err := term.ReadPassword(int(file.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
